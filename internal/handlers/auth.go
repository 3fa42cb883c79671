package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/growthzi/apiserver/internal/auth"
	"github.com/growthzi/apiserver/internal/events"
	"github.com/growthzi/apiserver/internal/services"
	"github.com/growthzi/apiserver/internal/store"
	"github.com/growthzi/apiserver/types"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler provides signup, login and identity endpoints.
type AuthHandler struct {
	userService *services.UserService
	roleService *services.RoleService
	events      *events.Publisher
	secret      []byte
	tokenTTL    time.Duration
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, roleService *services.RoleService, publisher *events.Publisher, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = auth.DefaultTokenTTL
	}
	return &AuthHandler{
		userService: userService,
		roleService: roleService,
		events:      publisher,
		secret:      []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		validate:    validator.New(),
		logger:      logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler, gate *Gate) {
	r.Post("/signup", handler.Signup)
	r.Post("/login", handler.Login)
	r.With(gate.RequirePermission()).Get("/me", handler.Me)
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Signup creates a user account with the default signup role.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	defaultRole, err := h.roleService.GetByName(r.Context(), auth.DefaultSignupRole)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.logger.Error().Str("role", auth.DefaultSignupRole).Msg("default signup role missing")
			writeError(w, http.StatusInternalServerError, "default user role not configured")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Email:        req.Email,
		PasswordHash: string(hashed),
		RoleID:       defaultRole.ID,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "user with this email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	if err := h.events.Publish(r.Context(), events.UserSignedUp, map[string]string{"user_id": user.ID}); err != nil {
		h.logger.Warn().Err(err).Msg("failed to publish signup event")
	}

	writeJSON(w, http.StatusCreated, map[string]string{"user_id": user.ID})
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.IssueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":    actor.User.ID,
		"email": actor.User.Email,
		"role":  actor.Role.Name,
	})
}
