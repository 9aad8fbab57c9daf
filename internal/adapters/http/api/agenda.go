// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/sked/internal/domain/types"
)

// Agenda view names accepted by GET /agenda.
const (
	ViewDaily   = "daily"
	ViewWeekly  = "weekly"
	ViewMonthly = "monthly"
)

// AgendaDependencies defines the interface for agenda read operations
type AgendaDependencies interface {
	Daily(ctx context.Context) (types.DailyView, error)
	Weekly(ctx context.Context) ([]types.WeekGroup, error)
	Monthly(ctx context.Context) ([]types.MonthGroup, error)
}

// AgendaHandler handles agenda view requests
type AgendaHandler struct {
	deps AgendaDependencies
}

// NewAgendaHandler creates a new agenda handler
func NewAgendaHandler(deps AgendaDependencies) *AgendaHandler {
	return &AgendaHandler{deps: deps}
}

// agendaResponse names the view so clients can render without inspecting
// the payload shape.
type agendaResponse struct {
	View    string             `json:"view"`
	Daily   *types.DailyView   `json:"daily,omitempty"`
	Weekly  []types.WeekGroup  `json:"weekly,omitempty"`
	Monthly []types.MonthGroup `json:"monthly,omitempty"`
}

// HandleGetAgenda handles GET /agenda?view=daily|weekly|monthly requests.
// The view defaults to daily.
func (h *AgendaHandler) HandleGetAgenda(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_agenda"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	view := r.URL.Query().Get("view")
	if view == "" {
		view = ViewDaily
	}

	switch view {
	case ViewDaily:
		daily, err := h.deps.Daily(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, agendaResponse{View: ViewDaily, Daily: &daily})

	case ViewWeekly:
		weekly, err := h.deps.Weekly(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		if weekly == nil {
			weekly = []types.WeekGroup{}
		}
		writeJSON(w, http.StatusOK, agendaResponse{View: ViewWeekly, Weekly: weekly})

	case ViewMonthly:
		monthly, err := h.deps.Monthly(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		if monthly == nil {
			monthly = []types.MonthGroup{}
		}
		writeJSON(w, http.StatusOK, agendaResponse{View: ViewMonthly, Monthly: monthly})

	default:
		writeError(w, http.StatusBadRequest, "unknown_view", NewKind(op, ErrBadRequest))
	}
}
