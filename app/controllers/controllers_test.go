package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"tasktime/app/services"
	"tasktime/app/store"

	"github.com/matryer/is"
)

func TestTaskFilter(t *testing.T) {
	t.Run("null selects missing values", func(t *testing.T) {
		is := is.New(t)
		f, err := taskFilter(url.Values{"project": {"null"}, "parent": {"null"}})
		is.NoErr(err)
		is.True(f.NoProject)
		is.True(f.NoParent)
		is.Equal(f.ProjectID, nil)
	})

	t.Run("ids and tags", func(t *testing.T) {
		is := is.New(t)
		f, err := taskFilter(url.Values{"project": {"p"}, "tags": {"a, b,,c"}, "ordering": {"-name"}})
		is.NoErr(err)
		is.Equal(*f.ProjectID, "p")
		is.Equal(f.TagIDs, []string{"a", "b", "c"})
		is.Equal(f.Ordering, store.OrderNameDesc)
	})

	t.Run("bad ordering", func(t *testing.T) {
		is := is.New(t)
		_, err := taskFilter(url.Values{"ordering": {"level"}})
		is.True(errors.Is(err, services.ErrInput))
	})
}

func TestEntryFilter(t *testing.T) {
	is := is.New(t)
	f, err := entryFilter(url.Values{"task": {"t"}, "running": {"false"}, "limit": {"20"}})
	is.NoErr(err)
	is.Equal(f.TaskIDs, []string{"t"})
	is.Equal(*f.Running, false)
	is.Equal(f.Limit, 20)

	_, err = entryFilter(url.Values{"running": {"maybe"}})
	is.True(errors.Is(err, services.ErrInput))
	_, err = entryFilter(url.Values{"limit": {"-1"}})
	is.True(errors.Is(err, services.ErrInput))
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", &services.ValidationError{Kind: services.ErrUniqueness, Field: "name", Message: "taken"}, http.StatusBadRequest, "uniqueness"},
		{"wrapped validation", fmt.Errorf("create: %w", &services.ValidationError{Kind: services.ErrStructural, Message: "cycle"}), http.StatusBadRequest, "structural"},
		{"storage conflict", fmt.Errorf("create tag: %w", store.ErrConflict), http.StatusBadRequest, "uniqueness"},
		{"not found", services.ErrNotFound, http.StatusNotFound, ""},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)
			is.Equal(rec.Code, tt.status)
			is.Equal(rec.Header().Get("Content-Type"), "application/json")
			var body errorBody
			is.NoErr(json.NewDecoder(rec.Body).Decode(&body))
			is.Equal(body.Kind, tt.kind)
		})
	}
}

func TestUserContext(t *testing.T) {
	is := is.New(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	is.Equal(UserID(req.Context()), "")
	is.Equal(UserID(WithUser(req.Context(), "alice")), "alice")
}
