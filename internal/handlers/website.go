package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/growthzi/apiserver/internal/auth"
	"github.com/growthzi/apiserver/internal/genai"
	"github.com/growthzi/apiserver/internal/services"
	"github.com/growthzi/apiserver/internal/store"
	"github.com/growthzi/apiserver/types"
	"github.com/rs/zerolog"
)

// WebsiteHandler provides HTTP handlers for website CRUD, generation
// and snapshot publishing.
type WebsiteHandler struct {
	service  *services.WebsiteService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewWebsiteHandler constructs a handler with the provided service.
func NewWebsiteHandler(service *services.WebsiteService, logger zerolog.Logger) *WebsiteHandler {
	return &WebsiteHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// WebsiteRouter registers website routes on the given router. Every
// route passes the permission gate; the per-resource ownership check
// happens inside the handlers after existence is confirmed.
func WebsiteRouter(r chi.Router, handler *WebsiteHandler, gate *Gate) {
	r.With(gate.RequirePermission(auth.PermWebsitesReadAll, auth.PermWebsitesReadOwn)).Get("/", handler.List)
	r.With(gate.RequirePermission(auth.PermWebsitesCreate)).Post("/", handler.Create)
	r.With(gate.RequirePermission(auth.PermWebsitesCreate)).Post("/generate", handler.Generate)
	r.Route("/{websiteID}", func(r chi.Router) {
		r.With(gate.RequirePermission(auth.PermWebsitesReadAll, auth.PermWebsitesReadOwn)).Get("/", handler.Get)
		r.With(gate.RequirePermission(auth.PermWebsitesEditAll, auth.PermWebsitesEditOwn)).Put("/", handler.Update)
		r.With(gate.RequirePermission(auth.PermWebsitesEditAll, auth.PermWebsitesEditOwn)).Post("/publish", handler.Publish)
		r.With(gate.RequirePermission(auth.PermWebsitesDeleteAll, auth.PermWebsitesDeleteOwn)).Delete("/", handler.Delete)
	})
}

type WebsiteUpsertRequest struct {
	Content json.RawMessage `json:"content"`
}

type GenerateRequest struct {
	BusinessType string `json:"business_type" validate:"required"`
	Industry     string `json:"industry" validate:"required"`
}

func (h *WebsiteHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Callers without the all-resources read permission see only what
	// they own.
	ownerID := ""
	if !actor.Role.HasPermission(auth.PermWebsitesReadAll) {
		ownerID = actor.User.ID
	}

	sites, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list websites")
		writeError(w, http.StatusInternalServerError, "failed to list websites")
		return
	}

	writeJSON(w, http.StatusOK, sites)
}

func (h *WebsiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req WebsiteUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Content) == 0 {
		writeError(w, http.StatusBadRequest, "request body must contain 'content' field")
		return
	}

	site, err := h.service.Create(r.Context(), actor.User.ID, req.Content)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create website")
		writeError(w, http.StatusInternalServerError, "failed to create website")
		return
	}

	writeJSON(w, http.StatusCreated, site)
}

func (h *WebsiteHandler) Generate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.BusinessType = strings.TrimSpace(req.BusinessType)
	req.Industry = strings.TrimSpace(req.Industry)
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "business_type and industry are required")
		return
	}

	site, err := h.service.Generate(r.Context(), actor.User.ID, req.BusinessType, req.Industry)
	if err != nil {
		h.logger.Error().Err(err).Msg("content generation failed")
		if errors.Is(err, genai.ErrBadContent) {
			writeError(w, http.StatusInternalServerError, "failed to parse content from AI service")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to generate content from AI service")
		return
	}

	writeJSON(w, http.StatusCreated, site)
}

func (h *WebsiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, site, ok := h.loadForAccess(w, r, auth.WebsitesReadScope)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, site)
}

func (h *WebsiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, site, ok := h.loadForAccess(w, r, auth.WebsitesEditScope)
	if !ok {
		return
	}

	var req WebsiteUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Content) == 0 {
		writeError(w, http.StatusBadRequest, "request body must contain 'content' field")
		return
	}

	updated, err := h.service.UpdateContent(r.Context(), site.ID, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "website not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to update website")
		writeError(w, http.StatusInternalServerError, "failed to update website")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *WebsiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, site, ok := h.loadForAccess(w, r, auth.WebsitesDeleteScope)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), site.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "website not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to delete website")
		writeError(w, http.StatusInternalServerError, "failed to delete website")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WebsiteHandler) Publish(w http.ResponseWriter, r *http.Request) {
	_, site, ok := h.loadForAccess(w, r, auth.WebsitesEditScope)
	if !ok {
		return
	}

	key, err := h.service.PublishSnapshot(r.Context(), site)
	if err != nil {
		if errors.Is(err, services.ErrSnapshotsDisabled) {
			writeError(w, http.StatusServiceUnavailable, "snapshot publishing is not configured")
			return
		}
		h.logger.Error().Err(err).Str("website_id", site.ID).Msg("failed to publish snapshot")
		writeError(w, http.StatusInternalServerError, "failed to publish website")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"object_key": key})
}

// loadForAccess fetches the website and applies the ownership policy
// for the given scope pair. Existence is confirmed before ownership is
// checked. On failure the response is already written.
func (h *WebsiteHandler) loadForAccess(w http.ResponseWriter, r *http.Request, pair auth.ScopePair) (auth.Actor, types.Website, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return auth.Actor{}, types.Website{}, false
	}

	id, err := parseIDParam(r, "websiteID")
	if err != nil {
		writeError(w, http.StatusNotFound, "website not found")
		return auth.Actor{}, types.Website{}, false
	}

	site, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "website not found")
			return auth.Actor{}, types.Website{}, false
		}
		h.logger.Error().Err(err).Msg("failed to fetch website")
		writeError(w, http.StatusInternalServerError, "failed to fetch website")
		return auth.Actor{}, types.Website{}, false
	}

	if !auth.CanAccess(actor.Role, actor.User.ID, site.OwnerID, pair) {
		writeError(w, http.StatusForbidden, "forbidden: you can only access your own websites")
		return auth.Actor{}, types.Website{}, false
	}

	return actor, site, true
}
