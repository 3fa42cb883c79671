package types

// Role is a named bundle of permission strings.
type Role struct {
	// ID is the unique identifier of the role.
	ID string `json:"id" db:"id"`

	// Name is the unique role name (e.g. "Admin", "Editor").
	Name string `json:"name" db:"name"`

	// Permissions holds the role's permission strings. Each string is
	// an atomic "resource:scope" token; membership is checked by exact
	// string comparison, never by parsing.
	Permissions []string `json:"permissions" db:"permissions"`
}

// HasPermission reports whether the role holds the given permission.
func (r Role) HasPermission(perm string) bool {
	for _, p := range r.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the role holds at least one of the
// given permissions.
func (r Role) HasAnyPermission(perms ...string) bool {
	for _, perm := range perms {
		if r.HasPermission(perm) {
			return true
		}
	}
	return false
}
