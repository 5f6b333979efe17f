package services

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

// Optional distinguishes an absent JSON field from an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns an Optional explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// ProjectInput carries the client-settable project fields.
type ProjectInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// TagInput carries the client-settable tag fields.
type TagInput struct {
	Name *string `json:"name"`
}

// TaskInput carries the client-settable task fields. Level, root and
// duration are derived and have no input.
type TaskInput struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Parent          Optional[string] `json:"parent"`
	Project         Optional[string] `json:"project"`
	EstimateMinutes Optional[int]    `json:"estimate_minutes"`
	Tags            *[]string        `json:"tags"`
}

// TimeEntryInput carries the client-settable time entry fields. Name and
// project are ignored when the entry is linked to a task.
type TimeEntryInput struct {
	Name      *string             `json:"name"`
	Task      Optional[string]    `json:"task"`
	Project   Optional[string]    `json:"project"`
	StartTime *time.Time          `json:"start_time"`
	EndTime   Optional[time.Time] `json:"end_time"`
}

const (
	maxProjectName = 100
	maxTagName     = 50
	maxTaskName    = 100
	maxEntryName   = 100
)

// requiredName trims s and rejects blank or overlong values.
func requiredName(field string, s *string, max int) (string, error) {
	if s == nil {
		return "", invalid(field, "this field is required")
	}
	name := strings.TrimSpace(*s)
	if name == "" {
		return "", invalid(field, "this field may not be blank")
	}
	if utf8.RuneCountInString(name) > max {
		return "", invalid(field, "ensure this field has no more than %d characters", max)
	}
	return name, nil
}
