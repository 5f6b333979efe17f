package models

import "time"

// MaxLevel is the deepest level a task may sit at (0 root, 1 child, 2 grandchild).
const MaxLevel = 2

// Task is a node in a user's task tree.
type Task struct {
	ID              string    `json:"id"`
	UserID          string    `json:"-"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	ProjectID       *string   `json:"project"`
	ParentID        *string   `json:"parent"`
	RootID          *string   `json:"root"`
	Level           int       `json:"level"`
	EstimateMinutes *int      `json:"estimate_minutes"`
	DurationSeconds int64     `json:"duration_seconds"`
	TagIDs          []string  `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsRoot reports whether the task has no parent.
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

// TreeRootID returns the id of the level-0 task this task hangs from,
// which is the task itself for roots.
func (t *Task) TreeRootID() string {
	if t.RootID != nil {
		return *t.RootID
	}
	return t.ID
}

// TaskDuration holds the derived duration totals of a task and its descendants.
type TaskDuration struct {
	TaskID           string `json:"task"`
	CompletedSeconds int64  `json:"completed_seconds"`
	CurrentSeconds   int64  `json:"current_seconds"`
	RunningEntries   int    `json:"running_entries"`
}
