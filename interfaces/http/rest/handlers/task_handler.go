package handlers

import (
	"net/http"

	"pm-backend/application/services"
	"pm-backend/pkg/auth"
	"pm-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TaskHandler handles task requests
type TaskHandler struct {
	tasks  *services.TaskService
	logger *zap.Logger
}

// NewTaskHandler creates a task handler
func NewTaskHandler(tasks *services.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input services.CreateTaskInput
	if err := common.ParseJSONBody(r, &input, maxBodyBytes); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.tasks.Create(r.Context(), caller, tenantFor(r, caller), input)
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, task)
}

// List handles GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter := services.TaskFilter{
		ProjectID: r.URL.Query().Get("projectId"),
		Status:    r.URL.Query().Get("status"),
		Priority:  r.URL.Query().Get("priority"),
	}

	tasks, err := h.tasks.List(r.Context(), caller, tenantFor(r, caller), filter)
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, tasks)
}

// Get handles GET /api/tasks/{taskID}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	task, err := h.tasks.Get(r.Context(), caller, tenantFor(r, caller), chi.URLParam(r, "taskID"))
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, task)
}

// Update handles PUT /api/tasks/{taskID}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input services.UpdateTaskInput
	if err := common.ParseJSONBody(r, &input, maxBodyBytes); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.tasks.Update(r.Context(), caller, tenantFor(r, caller), chi.URLParam(r, "taskID"), input)
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, task)
}

// Approve handles POST /api/tasks/{taskID}/approve
func (h *TaskHandler) Approve(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	task, err := h.tasks.Approve(r.Context(), caller, tenantFor(r, caller), chi.URLParam(r, "taskID"))
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{taskID}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	taskID := chi.URLParam(r, "taskID")
	if err := h.tasks.Delete(r.Context(), caller, tenantFor(r, caller), taskID); err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"deleted": taskID})
}
