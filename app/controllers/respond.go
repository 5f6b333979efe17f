package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tasktime/app/services"
	"tasktime/app/store"
)

type userKey struct{}

// WithUser returns a context carrying the requesting user's id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID returns the requesting user's id, or "" outside an authenticated request.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}

var kindNames = map[error]string{
	services.ErrStructural: "structural",
	services.ErrUniqueness: "uniqueness",
	services.ErrInput:      "input",
}

type errorBody struct {
	Kind   string              `json:"kind,omitempty"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		field := verr.Field
		if field == "" {
			field = "non_field_errors"
		}
		writeJSON(w, http.StatusBadRequest, errorBody{
			Kind:   kindNames[verr.Kind],
			Errors: map[string][]string{field: {verr.Message}},
		})
	case errors.Is(err, store.ErrConflict):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Kind:   kindNames[services.ErrUniqueness],
			Errors: map[string][]string{"non_field_errors": {"a resource with these values already exists"}},
		})
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "Not found."})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "Internal server error."})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return false
	}
	return true
}

func inputError(field, message string) error {
	return &services.ValidationError{Kind: services.ErrInput, Field: field, Message: message}
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
