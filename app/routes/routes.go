package routes

import (
	"net/http"

	"tasktime/app/controllers"

	"github.com/gorilla/mux"
)

// Controllers groups the handlers mounted by RegisterRoutes.
type Controllers struct {
	Projects    *controllers.ProjectController
	Tags        *controllers.TagController
	Tasks       *controllers.TaskController
	TimeEntries *controllers.TimeEntryController
}

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(router *mux.Router, c Controllers) {
	router.Use(LogRequests)
	router.HandleFunc("/health", controllers.Health).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(RequireUser)

	api.HandleFunc("/projects", c.Projects.GetProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", c.Projects.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}", c.Projects.GetProjectByID).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID}", c.Projects.UpdateProject).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/projects/{projectID}", c.Projects.DeleteProject).Methods(http.MethodDelete)

	api.HandleFunc("/tags", c.Tags.GetTags).Methods(http.MethodGet)
	api.HandleFunc("/tags", c.Tags.CreateTag).Methods(http.MethodPost)
	api.HandleFunc("/tags/{tagID}", c.Tags.GetTagByID).Methods(http.MethodGet)
	api.HandleFunc("/tags/{tagID}", c.Tags.UpdateTag).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/tags/{tagID}", c.Tags.DeleteTag).Methods(http.MethodDelete)

	api.HandleFunc("/tasks", c.Tasks.GetTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", c.Tasks.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}", c.Tasks.GetTaskByID).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}", c.Tasks.UpdateTask).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/tasks/{taskID}", c.Tasks.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskID}/duration", c.Tasks.GetTaskDuration).Methods(http.MethodGet)

	api.HandleFunc("/time-entries", c.TimeEntries.GetTimeEntries).Methods(http.MethodGet)
	api.HandleFunc("/time-entries", c.TimeEntries.CreateTimeEntry).Methods(http.MethodPost)
	api.HandleFunc("/time-entries/{entryID}", c.TimeEntries.GetTimeEntryByID).Methods(http.MethodGet)
	api.HandleFunc("/time-entries/{entryID}", c.TimeEntries.UpdateTimeEntry).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/time-entries/{entryID}", c.TimeEntries.DeleteTimeEntry).Methods(http.MethodDelete)
	api.HandleFunc("/time-entries/{entryID}/stop", c.TimeEntries.StopTimeEntry).Methods(http.MethodPost)
}
