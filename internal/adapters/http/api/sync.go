// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/sked/internal/domain/types"
)

// SyncDependencies defines the interface for feed refresh operations
type SyncDependencies interface {
	Sync(ctx context.Context) (types.SyncResult, error)
}

// SyncHandler handles manual feed refresh requests
type SyncHandler struct {
	deps SyncDependencies
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(deps SyncDependencies) *SyncHandler {
	return &SyncHandler{deps: deps}
}

// HandlePostSync handles POST /sync requests. A pass where every feed
// failed returns 502 with the result attached so clients can surface the
// failure while keeping the previous snapshot.
func (h *SyncHandler) HandlePostSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	result, err := h.deps.Sync(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
