package auth

import (
	"context"

	"github.com/growthzi/apiserver/types"
)

// Actor is the authorized request context: the resolved user and role
// of the caller. It exists only after the permission gate has passed
// and lives for a single request.
type Actor struct {
	User types.User
	Role types.Role
}

type actorContextKey struct{}

// WithActor stores the actor in context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
