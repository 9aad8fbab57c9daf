// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/sked/internal/adapters/taskstore"
	"github.com/okian/sked/internal/domain/model"
)

// TaskDependencies defines the interface for personal task operations
type TaskDependencies interface {
	Tasks(ctx context.Context) ([]model.Event, error)
	AddTask(ctx context.Context, title, date, timeRange string) (model.Event, error)
	RemoveTask(ctx context.Context, id string) error
}

// TasksHandler handles personal task requests
type TasksHandler struct {
	deps TaskDependencies
}

// NewTasksHandler creates a new tasks handler
func NewTasksHandler(deps TaskDependencies) *TasksHandler {
	return &TasksHandler{deps: deps}
}

// HandleTasks handles GET /tasks and POST /tasks requests
func (h *TasksHandler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *TasksHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_tasks"
	tasks, err := h.deps.Tasks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if tasks == nil {
		tasks = []model.Event{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TasksHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_task"
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	task, err := h.deps.AddTask(r.Context(), req.Title, req.Date, req.TimeRange)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// HandleTaskByID handles DELETE /tasks/{id} requests
func (h *TasksHandler) HandleTaskByID(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_task"
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/tasks/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	if err := h.deps.RemoveTask(r.Context(), id); err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
