// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/sked/internal/domain/model"
	"github.com/okian/sked/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Read operations expose the classified agenda views.
	Daily(ctx context.Context) (types.DailyView, error)
	Weekly(ctx context.Context) ([]types.WeekGroup, error)
	Monthly(ctx context.Context) ([]types.MonthGroup, error)

	// Task operations manage locally stored personal tasks.
	Tasks(ctx context.Context) ([]model.Event, error)
	AddTask(ctx context.Context, title, date, timeRange string) (model.Event, error)
	RemoveTask(ctx context.Context, id string) error

	// Sync refreshes the official event snapshot from the feeds.
	Sync(ctx context.Context) (types.SyncResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	agendaHandler    *AgendaHandler
	tasksHandler     *TasksHandler
	syncHandler      *SyncHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		agendaHandler:    NewAgendaHandler(deps),
		tasksHandler:     NewTasksHandler(deps),
		syncHandler:      NewSyncHandler(deps),
		dashboardHandler: newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/agenda", MetricsMiddleware(s.agendaHandler.HandleGetAgenda, "agenda"))
	mux.HandleFunc("/tasks", MetricsMiddleware(s.tasksHandler.HandleTasks, "tasks"))
	mux.HandleFunc("/tasks/", MetricsMiddleware(s.tasksHandler.HandleTaskByID, "tasks"))
	mux.HandleFunc("/sync", MetricsMiddleware(s.syncHandler.HandlePostSync, "sync"))
}

// taskRequest mirrors the wire schema for POST /tasks.
type taskRequest struct {
	Title     string `json:"title"`
	Date      string `json:"date,omitempty"`
	TimeRange string `json:"time_range,omitempty"`
}

func (t taskRequest) validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("missing title")
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
