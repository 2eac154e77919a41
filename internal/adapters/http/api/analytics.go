package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AnalyticsHandler serves price aggregates per property.
type AnalyticsHandler struct {
	deps Dependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps Dependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// HandleGetAnalytics handles GET /properties/{propertyID}/analytics.
func (h *AnalyticsHandler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")

	analytics, err := h.deps.Analytics(r.Context(), propertyID)
	if err != nil {
		writeRepositoryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}
