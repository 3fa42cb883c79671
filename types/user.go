package types

import "time"

// User represents an account in the system.
// It contains identity, role reference, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Email is the user's unique login email, stored case-sensitive.
	Email string `json:"email" db:"email"`

	// RoleID references the role that defines the user's permissions.
	// Every user must reference an existing role; a dangling reference
	// is a data-integrity fault, not a normal not-found.
	RoleID string `json:"role_id" db:"role_id"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
