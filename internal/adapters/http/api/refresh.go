package api

import (
	"errors"
	"net/http"

	service "github.com/xsmartbartx/system-rezerwacji/internal/app"
)

// RefreshHandler exposes the manual batch trigger.
type RefreshHandler struct {
	deps Dependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps Dependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// HandleRefresh handles POST /refresh. The run executes synchronously and
// returns its report; a trigger arriving during a run gets 409.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.RefreshAll(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrRefreshInProgress) {
			writeError(w, http.StatusConflict, "refresh_in_progress", err)
			return
		}
		writeRepositoryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
