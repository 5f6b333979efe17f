package controllers

import (
	"net/http"
	"net/url"
	"strconv"

	"tasktime/app/services"
	"tasktime/app/store"

	"github.com/gorilla/mux"
)

// TimeEntryController handles HTTP requests for time entries.
type TimeEntryController struct {
	Service *services.TimeEntryService
}

// NewTimeEntryController creates a new TimeEntryController.
func NewTimeEntryController(service *services.TimeEntryService) *TimeEntryController {
	return &TimeEntryController{Service: service}
}

// GetTimeEntries handles GET /time-entries, newest first.
func (c *TimeEntryController) GetTimeEntries(w http.ResponseWriter, r *http.Request) {
	f, err := entryFilter(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := c.Service.GetTimeEntries(r.Context(), UserID(r.Context()), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// CreateTimeEntry handles POST /time-entries. Without an end time the entry
// is running.
func (c *TimeEntryController) CreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	var in services.TimeEntryInput
	if !decode(w, r, &in) {
		return
	}
	entry, err := c.Service.CreateTimeEntry(r.Context(), UserID(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// GetTimeEntryByID handles GET /time-entries/{entryID}.
func (c *TimeEntryController) GetTimeEntryByID(w http.ResponseWriter, r *http.Request) {
	entry, err := c.Service.GetTimeEntryByID(r.Context(), UserID(r.Context()), mux.Vars(r)["entryID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// UpdateTimeEntry handles PUT and PATCH /time-entries/{entryID}.
func (c *TimeEntryController) UpdateTimeEntry(w http.ResponseWriter, r *http.Request) {
	var in services.TimeEntryInput
	if !decode(w, r, &in) {
		return
	}
	entry, err := c.Service.UpdateTimeEntry(r.Context(), UserID(r.Context()), mux.Vars(r)["entryID"], in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// StopTimeEntry handles POST /time-entries/{entryID}/stop.
func (c *TimeEntryController) StopTimeEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := c.Service.StopTimeEntry(r.Context(), UserID(r.Context()), mux.Vars(r)["entryID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteTimeEntry handles DELETE /time-entries/{entryID}.
func (c *TimeEntryController) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteTimeEntry(r.Context(), UserID(r.Context()), mux.Vars(r)["entryID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func entryFilter(q url.Values) (store.EntryFilter, error) {
	var f store.EntryFilter
	if v := q.Get("task"); v != "" {
		f.TaskIDs = []string{v}
	}
	if v := q.Get("project"); v != "" {
		f.ProjectID = &v
	}
	if v := q.Get("running"); v != "" {
		running, err := strconv.ParseBool(v)
		if err != nil {
			return f, inputError("running", "must be true or false")
		}
		f.Running = &running
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, inputError("limit", "must be a positive integer")
		}
		f.Limit = n
	}
	return f, nil
}
