package auth

// Permission strings. Each is an atomic "resource:scope" token; the
// gate checks exact membership and never parses the parts.
const (
	PermUsersManage = "users:manage"
	PermRolesManage = "roles:manage"

	PermWebsitesCreate    = "websites:create"
	PermWebsitesReadAll   = "websites:read_all"
	PermWebsitesReadOwn   = "websites:read_own"
	PermWebsitesEditAll   = "websites:edit_all"
	PermWebsitesEditOwn   = "websites:edit_own"
	PermWebsitesDeleteAll = "websites:delete_all"
	PermWebsitesDeleteOwn = "websites:delete_own"
)

// Scope pairs for ownership-gated website operations.
var (
	WebsitesReadScope   = ScopePair{All: PermWebsitesReadAll, Own: PermWebsitesReadOwn}
	WebsitesEditScope   = ScopePair{All: PermWebsitesEditAll, Own: PermWebsitesEditOwn}
	WebsitesDeleteScope = ScopePair{All: PermWebsitesDeleteAll, Own: PermWebsitesDeleteOwn}
)

// Well-known role names.
const (
	AdminRoleName  = "Admin"
	EditorRoleName = "Editor"
	ViewerRoleName = "Viewer"

	// DefaultSignupRole is assigned to newly registered users.
	DefaultSignupRole = EditorRoleName
)

// RoleSeed is one entry of the fixed role catalog.
type RoleSeed struct {
	Name        string
	Permissions []string
}

// DefaultRoles returns the fixed role catalog seeded at startup.
func DefaultRoles() []RoleSeed {
	return []RoleSeed{
		{
			Name: AdminRoleName,
			Permissions: []string{
				PermUsersManage, PermRolesManage,
				PermWebsitesCreate, PermWebsitesReadAll, PermWebsitesEditAll, PermWebsitesDeleteAll,
			},
		},
		{
			Name: EditorRoleName,
			Permissions: []string{
				PermWebsitesCreate, PermWebsitesReadOwn, PermWebsitesEditOwn, PermWebsitesDeleteOwn,
			},
		},
		{
			Name:        ViewerRoleName,
			Permissions: []string{PermWebsitesReadAll, PermWebsitesReadOwn},
		},
	}
}
