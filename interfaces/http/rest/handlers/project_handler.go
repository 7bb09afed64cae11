package handlers

import (
	"net/http"

	"pm-backend/application/services"
	"pm-backend/pkg/auth"
	"pm-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProjectHandler handles project requests. The target partition defaults to
// the caller's own; members of another account's project address it with the
// owner query parameter.
type ProjectHandler struct {
	projects *services.ProjectService
	logger   *zap.Logger
}

// NewProjectHandler creates a project handler
func NewProjectHandler(projects *services.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// tenantFor resolves the target partition for a request
func tenantFor(r *http.Request, caller *auth.CallerContext) string {
	if owner := r.URL.Query().Get("owner"); owner != "" {
		return owner
	}
	return caller.AccountID
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input services.CreateProjectInput
	if err := common.ParseJSONBody(r, &input, maxBodyBytes); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.projects.Create(r.Context(), caller, input)
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, project)
}

// List handles GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	projects, err := h.projects.List(r.Context(), caller, tenantFor(r, caller))
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, projects)
}

// Get handles GET /api/projects/{projectID}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	project, err := h.projects.Get(r.Context(), caller, tenantFor(r, caller), chi.URLParam(r, "projectID"))
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, project)
}

// Update handles PUT /api/projects/{projectID}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input services.UpdateProjectInput
	if err := common.ParseJSONBody(r, &input, maxBodyBytes); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.projects.Update(r.Context(), caller, tenantFor(r, caller), chi.URLParam(r, "projectID"), input)
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{projectID}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	projectID := chi.URLParam(r, "projectID")
	if err := h.projects.Delete(r.Context(), caller, tenantFor(r, caller), projectID); err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"deleted": projectID})
}

// AddMember handles POST /api/projects/{projectID}/members
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input services.AddMemberInput
	if err := common.ParseJSONBody(r, &input, maxBodyBytes); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.projects.AddMember(r.Context(), caller, tenantFor(r, caller), chi.URLParam(r, "projectID"), input)
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, project)
}

// RemoveMember handles DELETE /api/projects/{projectID}/members/{email}
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	force := r.URL.Query().Get("force") == "true"
	project, err := h.projects.RemoveMember(r.Context(), caller, tenantFor(r, caller),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "email"), force)
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, project)
}
