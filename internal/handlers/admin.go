package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/growthzi/apiserver/internal/auth"
	"github.com/growthzi/apiserver/internal/services"
	"github.com/growthzi/apiserver/internal/store"
	"github.com/growthzi/apiserver/types"
	"github.com/rs/zerolog"
)

// AdminHandler provides role and user management endpoints.
type AdminHandler struct {
	roleService *services.RoleService
	userService *services.UserService
	logger      zerolog.Logger
}

// NewAdminHandler constructs an AdminHandler with the provided services.
func NewAdminHandler(roleService *services.RoleService, userService *services.UserService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		roleService: roleService,
		userService: userService,
		logger:      logger,
	}
}

// AdminRouter registers admin routes on the given router.
func AdminRouter(r chi.Router, handler *AdminHandler, gate *Gate) {
	r.With(gate.RequirePermission(auth.PermRolesManage)).Get("/roles", handler.ListRoles)
	r.With(gate.RequirePermission(auth.PermRolesManage)).Post("/roles", handler.CreateRole)
	r.With(gate.RequirePermission(auth.PermUsersManage)).Get("/users", handler.ListUsers)
	r.With(gate.RequirePermission(auth.PermUsersManage)).Put("/users/{userID}/assign-role", handler.AssignRole)
}

type CreateRoleRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type AssignRoleRequest struct {
	RoleName string `json:"role_name"`
}

func (h *AdminHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list roles")
		writeError(w, http.StatusInternalServerError, "failed to list roles")
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

func (h *AdminHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Permissions) == 0 {
		writeError(w, http.StatusBadRequest, "role name and permissions are required")
		return
	}

	role, err := h.roleService.Create(r.Context(), types.Role{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "role with this name already exists")
			return
		}
		h.logger.Error().Err(err).Msg("failed to create role")
		writeError(w, http.StatusInternalServerError, "failed to create role")
		return
	}

	writeJSON(w, http.StatusCreated, role)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list users")
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var req AssignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.RoleName = strings.TrimSpace(req.RoleName)
	if req.RoleName == "" {
		writeError(w, http.StatusBadRequest, "role_name is required")
		return
	}

	role, err := h.roleService.GetByName(r.Context(), req.RoleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("role %q not found", req.RoleName))
			return
		}
		h.logger.Error().Err(err).Msg("failed to load role")
		writeError(w, http.StatusInternalServerError, "failed to assign role")
		return
	}

	if err := h.userService.AssignRole(r.Context(), userID, role.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to assign role")
		writeError(w, http.StatusInternalServerError, "failed to assign role")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("user %s assigned role %q", userID, role.Name),
	})
}
