package publish

import (
	"bytes"
	"encoding/json"
	"html/template"
)

// siteTemplate turns the structured site content into a standalone
// page. Fields the content does not provide render empty rather than
// failing, since edited content is opaque to the rest of the system.
var siteTemplate = template.Must(template.New("site").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<header class="hero">
<h1>{{.Hero.Headline}}</h1>
<p>{{.Hero.Subheading}}</p>
<button>{{.Hero.CTAButtonText}}</button>
</header>
<section class="about">
<h2>{{.About.Title}}</h2>
<p>{{.About.Text}}</p>
</section>
<section class="services">
{{range .Services}}<article>
<h3>{{.Name}}</h3>
<p>{{.Description}}</p>
</article>
{{end}}</section>
</body>
</html>
`))

// RenderSite renders an opaque content payload through the site
// template. Content that is not valid JSON fails; unknown fields are
// ignored.
func RenderSite(content json.RawMessage) ([]byte, error) {
	var data struct {
		Title string `json:"title"`
		Hero  struct {
			Headline      string `json:"headline"`
			Subheading    string `json:"subheading"`
			CTAButtonText string `json:"cta_button_text"`
		} `json:"hero"`
		About struct {
			Title string `json:"title"`
			Text  string `json:"text"`
		} `json:"about"`
		Services []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"services"`
	}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := siteTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
