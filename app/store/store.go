// Package store defines the persistence contract shared by the storage
// backends. Lookups by id are not scoped to a user; callers check ownership.
package store

import (
	"context"
	"errors"
	"time"

	"tasktime/app/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("unique constraint violated")
)

// Task orderings accepted by TaskFilter.Ordering.
const (
	OrderCreatedAsc  = "created_at"
	OrderCreatedDesc = "-created_at"
	OrderNameAsc     = "name"
	OrderNameDesc    = "-name"
)

// TaskFilter narrows ListTasks. Nil fields are ignored. NoProject and NoParent
// select rows where the column is null.
type TaskFilter struct {
	ProjectID *string
	NoProject bool
	ParentID  *string
	NoParent  bool
	RootID    *string
	TagIDs    []string
	Ordering  string
}

// EntryFilter narrows ListTimeEntries. Entries are returned newest start first.
type EntryFilter struct {
	TaskIDs   []string
	ProjectID *string
	Running   *bool
	Limit     int
}

// Tx is a unit of work against a backend.
type Tx interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) error
	// DeleteProject removes the project and nulls it on tasks and time entries.
	DeleteProject(ctx context.Context, id string) error

	GetTag(ctx context.Context, id string) (*models.Tag, error)
	FindTag(ctx context.Context, userID, name string) (*models.Tag, error)
	ListTags(ctx context.Context, userID string) ([]models.Tag, error)
	CreateTag(ctx context.Context, t *models.Tag) error
	UpdateTag(ctx context.Context, t *models.Tag) error
	// DeleteTag removes the tag and its task links.
	DeleteTag(ctx context.Context, id string) error

	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, userID string, f TaskFilter) ([]models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	// UpdateTask rewrites every column of the task, including its tag set.
	UpdateTask(ctx context.Context, t *models.Task) error
	SetTaskProject(ctx context.Context, id string, projectID *string, at time.Time) error
	SetTaskDuration(ctx context.Context, id string, seconds int64, at time.Time) error
	// SetTaskTree rewrites the derived tree columns of a descendant after its
	// ancestor moved.
	SetTaskTree(ctx context.Context, id string, level int, rootID, projectID *string, at time.Time) error
	// DeleteTasks removes the given tasks and nulls the task of their time entries.
	DeleteTasks(ctx context.Context, ids []string) error

	GetTimeEntry(ctx context.Context, id string) (*models.TimeEntry, error)
	ListTimeEntries(ctx context.Context, userID string, f EntryFilter) ([]models.TimeEntry, error)
	CreateTimeEntry(ctx context.Context, e *models.TimeEntry) error
	UpdateTimeEntry(ctx context.Context, e *models.TimeEntry) error
	DeleteTimeEntry(ctx context.Context, id string) error
	// SumCompletedDurations totals duration_seconds over completed entries of the tasks.
	SumCompletedDurations(ctx context.Context, taskIDs []string) (int64, error)
}

// Store hands out transactions. A Write callback returning an error leaves no
// trace of its writes.
type Store interface {
	Read(ctx context.Context, fn func(Tx) error) error
	Write(ctx context.Context, fn func(Tx) error) error
	Close(ctx context.Context) error
}
