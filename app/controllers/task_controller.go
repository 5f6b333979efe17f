package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"tasktime/app/services"
	"tasktime/app/store"

	"github.com/gorilla/mux"
)

// TaskController handles HTTP requests for tasks.
type TaskController struct {
	Service *services.TaskService
}

// NewTaskController creates a new TaskController.
func NewTaskController(service *services.TaskService) *TaskController {
	return &TaskController{Service: service}
}

// GetTasks handles GET /tasks.
func (c *TaskController) GetTasks(w http.ResponseWriter, r *http.Request) {
	f, err := taskFilter(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	tasks, err := c.Service.GetTasks(r.Context(), UserID(r.Context()), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask handles POST /tasks.
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in services.TaskInput
	if !decode(w, r, &in) {
		return
	}
	task, err := c.Service.CreateTask(r.Context(), UserID(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// GetTaskByID handles GET /tasks/{taskID}.
func (c *TaskController) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	task, err := c.Service.GetTaskByID(r.Context(), UserID(r.Context()), mux.Vars(r)["taskID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// GetTaskDuration handles GET /tasks/{taskID}/duration.
func (c *TaskController) GetTaskDuration(w http.ResponseWriter, r *http.Request) {
	d, err := c.Service.GetTaskDuration(r.Context(), UserID(r.Context()), mux.Vars(r)["taskID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// UpdateTask handles PUT and PATCH /tasks/{taskID}. Only the fields present
// in the body change.
func (c *TaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var in services.TaskInput
	if !decode(w, r, &in) {
		return
	}
	task, err := c.Service.UpdateTask(r.Context(), UserID(r.Context()), mux.Vars(r)["taskID"], in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{taskID}.
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteTask(r.Context(), UserID(r.Context()), mux.Vars(r)["taskID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var orderings = map[string]bool{
	store.OrderCreatedAsc:  true,
	store.OrderCreatedDesc: true,
	store.OrderNameAsc:     true,
	store.OrderNameDesc:    true,
}

// taskFilter reads project, parent, tags and ordering. "null" selects tasks
// without a project or parent.
func taskFilter(q url.Values) (store.TaskFilter, error) {
	var f store.TaskFilter
	if v := q.Get("project"); v == "null" {
		f.NoProject = true
	} else if v != "" {
		f.ProjectID = &v
	}
	if v := q.Get("parent"); v == "null" {
		f.NoParent = true
	} else if v != "" {
		f.ParentID = &v
	}
	if v := q.Get("tags"); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.TagIDs = append(f.TagIDs, id)
			}
		}
	}
	if v := q.Get("ordering"); v != "" {
		if !orderings[v] {
			return f, inputError("ordering", "select one of created_at, -created_at, name, -name")
		}
		f.Ordering = v
	}
	return f, nil
}
