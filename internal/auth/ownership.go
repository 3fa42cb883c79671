package auth

import "github.com/growthzi/apiserver/types"

// ScopePair is the (*_all, *_own) permission convention for
// ownership-gated resource access.
type ScopePair struct {
	All string
	Own string
}

// CanAccess decides resource-level access for a caller whose role has
// already passed the permission gate for this scope pair. A role
// holding the all-scope permission may act on any resource; a role
// holding only the own-scope permission may act only on resources it
// owns. Callers must confirm the resource exists before checking.
func CanAccess(role types.Role, userID, ownerID string, pair ScopePair) bool {
	if role.HasPermission(pair.All) {
		return true
	}
	return role.HasPermission(pair.Own) && ownerID == userID
}
