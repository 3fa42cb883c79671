package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/growthzi/apiserver/internal/auth"
	"github.com/rs/zerolog"
)

// Gate adapts the authorizer into route middleware. It runs before any
// handler logic on every protected route; handlers learn who is
// calling only through the actor it places in context.
type Gate struct {
	authorizer *auth.Authorizer
	logger     zerolog.Logger
}

// NewGate constructs a Gate with the provided dependencies.
func NewGate(authorizer *auth.Authorizer, logger zerolog.Logger) *Gate {
	return &Gate{authorizer: authorizer, logger: logger}
}

// RequirePermission returns middleware that authorizes the request
// against the given permission set (OR semantics). With no permissions
// it only requires a valid authenticated identity.
func (g *Gate) RequirePermission(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "authorization header is missing or invalid")
				return
			}

			actor, err := g.authorizer.Authorize(r.Context(), tokenString, required...)
			if err != nil {
				g.writeAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

func (g *Gate) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "token has expired")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, auth.ErrIdentityNotFound):
		writeError(w, http.StatusUnauthorized, "user not found")
	case errors.Is(err, auth.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "forbidden: you don't have the required permission for this action")
	case errors.Is(err, auth.ErrRoleIntegrity):
		// Integrity faults carry internal detail; log it, return an
		// opaque failure.
		g.logger.Error().Err(err).Msg("role integrity fault during authorization")
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		g.logger.Error().Err(err).Msg("authorization failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", auth.ErrMissingCredential
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", auth.ErrMissingCredential
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", auth.ErrMissingCredential
	}
	return token, nil
}
