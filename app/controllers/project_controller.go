package controllers

import (
	"net/http"

	"tasktime/app/services"

	"github.com/gorilla/mux"
)

// ProjectController handles HTTP requests for projects.
type ProjectController struct {
	Service *services.ProjectService
}

// NewProjectController creates a new ProjectController.
func NewProjectController(service *services.ProjectService) *ProjectController {
	return &ProjectController{Service: service}
}

// GetProjects handles GET /projects.
func (c *ProjectController) GetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := c.Service.GetProjects(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// CreateProject handles POST /projects.
func (c *ProjectController) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in services.ProjectInput
	if !decode(w, r, &in) {
		return
	}
	project, err := c.Service.CreateProject(r.Context(), UserID(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// GetProjectByID handles GET /projects/{projectID}.
func (c *ProjectController) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	project, err := c.Service.GetProjectByID(r.Context(), UserID(r.Context()), mux.Vars(r)["projectID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// UpdateProject handles PUT and PATCH /projects/{projectID}.
func (c *ProjectController) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var in services.ProjectInput
	if !decode(w, r, &in) {
		return
	}
	project, err := c.Service.UpdateProject(r.Context(), UserID(r.Context()), mux.Vars(r)["projectID"], in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject handles DELETE /projects/{projectID}.
func (c *ProjectController) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteProject(r.Context(), UserID(r.Context()), mux.Vars(r)["projectID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
