/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/growthzi/apiserver/cmd"

func main() {
	cmd.Execute()
}
