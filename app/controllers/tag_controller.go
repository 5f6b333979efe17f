package controllers

import (
	"net/http"

	"tasktime/app/services"

	"github.com/gorilla/mux"
)

// TagController handles HTTP requests for tags.
type TagController struct {
	Service *services.TagService
}

// NewTagController creates a new TagController.
func NewTagController(service *services.TagService) *TagController {
	return &TagController{Service: service}
}

// GetTags handles GET /tags.
func (c *TagController) GetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := c.Service.GetTags(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// CreateTag handles POST /tags.
func (c *TagController) CreateTag(w http.ResponseWriter, r *http.Request) {
	var in services.TagInput
	if !decode(w, r, &in) {
		return
	}
	tag, err := c.Service.CreateTag(r.Context(), UserID(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// GetTagByID handles GET /tags/{tagID}.
func (c *TagController) GetTagByID(w http.ResponseWriter, r *http.Request) {
	tag, err := c.Service.GetTagByID(r.Context(), UserID(r.Context()), mux.Vars(r)["tagID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// UpdateTag handles PUT and PATCH /tags/{tagID}.
func (c *TagController) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var in services.TagInput
	if !decode(w, r, &in) {
		return
	}
	tag, err := c.Service.UpdateTag(r.Context(), UserID(r.Context()), mux.Vars(r)["tagID"], in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// DeleteTag handles DELETE /tags/{tagID}.
func (c *TagController) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteTag(r.Context(), UserID(r.Context()), mux.Vars(r)["tagID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
