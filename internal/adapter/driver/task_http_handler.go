package driver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alorle/iptv-catalog/internal/scheduler"
)

// TaskLister reports the registered background tasks.
type TaskLister interface {
	ListTasks() []scheduler.TaskInfo
}

// TaskHTTPHandler exposes scheduled tasks over HTTP.
type TaskHTTPHandler struct {
	tasks TaskLister
}

// NewTaskHTTPHandler creates a new HTTP handler for scheduled tasks.
func NewTaskHTTPHandler(tasks TaskLister) *TaskHTTPHandler {
	return &TaskHTTPHandler{tasks: tasks}
}

// RegisterRoutes mounts the task endpoints on r.
func (h *TaskHTTPHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tasks", h.handleList).Methods(http.MethodGet)
}

// handleList handles GET /api/tasks
func (h *TaskHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tasks.ListTasks())
}
