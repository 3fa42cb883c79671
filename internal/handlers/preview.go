package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/growthzi/apiserver/internal/publish"
	"github.com/growthzi/apiserver/internal/services"
	"github.com/growthzi/apiserver/internal/store"
	"github.com/rs/zerolog"
)

// PreviewHandler renders public, unauthenticated site previews.
type PreviewHandler struct {
	service *services.WebsiteService
	logger  zerolog.Logger
}

// NewPreviewHandler constructs a PreviewHandler with the provided service.
func NewPreviewHandler(service *services.WebsiteService, logger zerolog.Logger) *PreviewHandler {
	return &PreviewHandler{service: service, logger: logger}
}

// PreviewRouter registers the public preview route.
func PreviewRouter(r chi.Router, handler *PreviewHandler) {
	r.Get("/{websiteID}", handler.Render)
}

// Render fetches a website by id and renders it as HTML. The route is
// public; a malformed id folds into not-found.
func (h *PreviewHandler) Render(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "websiteID")
	if err != nil {
		http.Error(w, "Website not found.", http.StatusNotFound)
		return
	}

	site, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Website not found.", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Msg("failed to fetch website for preview")
		http.Error(w, "Internal server error.", http.StatusInternalServerError)
		return
	}

	html, err := publish.RenderSite(site.Content)
	if err != nil {
		h.logger.Error().Err(err).Str("website_id", site.ID).Msg("failed to render preview")
		http.Error(w, "Failed to render website.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}
