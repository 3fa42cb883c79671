package auth

import "errors"

var (
	// ErrMissingCredential is returned when the Authorization header is
	// absent or not a bearer credential.
	ErrMissingCredential = errors.New("missing or malformed authorization")

	// ErrInvalidToken is returned for a malformed token or a signature
	// that does not verify.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrIdentityNotFound is returned when a verified token's subject
	// does not resolve to a user (stale or forged token).
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrRoleIntegrity indicates a user whose role reference does not
	// resolve. This is a server-side invariant violation, never a
	// client error.
	ErrRoleIntegrity = errors.New("role integrity fault")

	// ErrPermissionDenied is returned when the caller's role holds none
	// of the permissions required by the route.
	ErrPermissionDenied = errors.New("permission denied")
)
