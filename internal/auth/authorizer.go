package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/growthzi/apiserver/internal/store"
	"github.com/growthzi/apiserver/types"
)

// UserSource resolves a token subject to a user record.
type UserSource interface {
	GetByID(ctx context.Context, id string) (types.User, error)
}

// RoleSource resolves a user's role reference to a role record.
type RoleSource interface {
	GetByID(ctx context.Context, id string) (types.Role, error)
}

// Authorizer turns a bearer token into an authorized actor. It is the
// single gate every protected route passes through.
type Authorizer struct {
	secret []byte
	users  UserSource
	roles  RoleSource
}

// NewAuthorizer constructs an Authorizer with the provided dependencies.
func NewAuthorizer(jwtSecret string, users UserSource, roles RoleSource) *Authorizer {
	return &Authorizer{
		secret: []byte(jwtSecret),
		users:  users,
		roles:  roles,
	}
}

// Authorize verifies the token, resolves the caller's user and role,
// and checks that the role holds at least one of the required
// permissions (OR semantics). An empty required set means any
// authenticated caller passes.
//
// Failures short-circuit: no partial authorization state is ever
// returned alongside an error.
func (a *Authorizer) Authorize(ctx context.Context, token string, required ...string) (Actor, error) {
	subject, err := ParseToken(token, a.secret)
	if err != nil {
		return Actor{}, err
	}

	user, err := a.users.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Actor{}, ErrIdentityNotFound
		}
		return Actor{}, err
	}

	role, err := a.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Actor{}, fmt.Errorf("%w: user %s references missing role %s", ErrRoleIntegrity, user.ID, user.RoleID)
		}
		return Actor{}, err
	}

	if len(required) > 0 && !role.HasAnyPermission(required...) {
		return Actor{}, ErrPermissionDenied
	}

	return Actor{User: user, Role: role}, nil
}
