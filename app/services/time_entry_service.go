package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"tasktime/app/models"
	"tasktime/app/store"
)

// TimeEntryService records work sessions and keeps task durations in step
// with them.
type TimeEntryService struct {
	base
}

// NewTimeEntryService creates a new instance of TimeEntryService.
func NewTimeEntryService(st store.Store) *TimeEntryService {
	return &TimeEntryService{base: newBase(st)}
}

// GetTimeEntries lists the user's time entries, newest first.
func (s *TimeEntryService) GetTimeEntries(ctx context.Context, userID string, f store.EntryFilter) ([]models.TimeEntry, error) {
	var out []models.TimeEntry
	err := s.store.Read(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.ListTimeEntries(ctx, userID, f)
		return err
	})
	return out, err
}

// GetTimeEntryByID retrieves a single time entry owned by the user.
func (s *TimeEntryService) GetTimeEntryByID(ctx context.Context, userID, entryID string) (*models.TimeEntry, error) {
	var out *models.TimeEntry
	err := s.store.Read(ctx, func(tx store.Tx) error {
		var err error
		out, err = ownedEntry(ctx, tx, userID, entryID)
		return err
	})
	return out, err
}

// CreateTimeEntry starts a timer, or logs a finished session when an end
// time is given. Start defaults to now.
func (s *TimeEntryService) CreateTimeEntry(ctx context.Context, userID string, in TimeEntryInput) (*models.TimeEntry, error) {
	now := s.now()
	e := &models.TimeEntry{
		ID:        s.newID(),
		UserID:    userID,
		StartTime: now,
		CreatedAt: now,
	}
	err := s.store.Write(ctx, func(tx store.Tx) error {
		if err := applyEntryFields(ctx, tx, e, in); err != nil {
			return err
		}
		if err := tx.CreateTimeEntry(ctx, e); err != nil {
			return err
		}
		return refreshEntryTasks(ctx, tx, nil, e, now)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateTimeEntry applies the fields set in the input. Completing an entry
// recomputes the durations of its task and the task's ancestors.
func (s *TimeEntryService) UpdateTimeEntry(ctx context.Context, userID, entryID string, in TimeEntryInput) (*models.TimeEntry, error) {
	var e *models.TimeEntry
	err := s.store.Write(ctx, func(tx store.Tx) error {
		var err error
		e, err = ownedEntry(ctx, tx, userID, entryID)
		if err != nil {
			return err
		}
		before := *e
		if err := applyEntryFields(ctx, tx, e, in); err != nil {
			return err
		}
		if err := tx.UpdateTimeEntry(ctx, e); err != nil {
			return err
		}
		return refreshEntryTasks(ctx, tx, &before, e, s.now())
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// StopTimeEntry completes a running entry at the current time.
func (s *TimeEntryService) StopTimeEntry(ctx context.Context, userID, entryID string) (*models.TimeEntry, error) {
	var e *models.TimeEntry
	err := s.store.Write(ctx, func(tx store.Tx) error {
		var err error
		e, err = ownedEntry(ctx, tx, userID, entryID)
		if err != nil {
			return err
		}
		if e.Completed() {
			return invalid("end_time", "time entry is already stopped")
		}
		before := *e
		now := s.now()
		if now.Before(e.StartTime) {
			now = e.StartTime
		}
		if err := applyEntryFields(ctx, tx, e, TimeEntryInput{EndTime: Some(now)}); err != nil {
			return err
		}
		if err := tx.UpdateTimeEntry(ctx, e); err != nil {
			return err
		}
		return refreshEntryTasks(ctx, tx, &before, e, now)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteTimeEntry deletes an entry and recomputes the durations it counted toward.
func (s *TimeEntryService) DeleteTimeEntry(ctx context.Context, userID, entryID string) error {
	return s.store.Write(ctx, func(tx store.Tx) error {
		e, err := ownedEntry(ctx, tx, userID, entryID)
		if err != nil {
			return err
		}
		if err := tx.DeleteTimeEntry(ctx, entryID); err != nil {
			return err
		}
		return refreshEntryTasks(ctx, tx, e, nil, s.now())
	})
}

// applyEntryFields validates the input and derives name, project and
// duration. A linked task always wins over a supplied name or project.
func applyEntryFields(ctx context.Context, tx store.Tx, e *models.TimeEntry, in TimeEntryInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if utf8.RuneCountInString(name) > maxEntryName {
			return invalid("name", "ensure this field has no more than %d characters", maxEntryName)
		}
		e.Name = name
	}
	if in.Project.Set {
		e.ProjectID = nil
		if in.Project.Value != nil {
			p, err := lookupProject(ctx, tx, e.UserID, *in.Project.Value)
			if err != nil {
				return err
			}
			e.ProjectID = &p.ID
		}
	}
	if in.Task.Set {
		e.TaskID = in.Task.Value
	}
	if in.StartTime != nil {
		e.StartTime = in.StartTime.UTC()
	}
	if in.EndTime.Set {
		e.EndTime = nil
		if in.EndTime.Value != nil {
			end := in.EndTime.Value.UTC()
			e.EndTime = &end
		}
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return invalid("end_time", "end time must not be before start time")
	}
	e.ComputeDuration()

	if e.TaskID == nil {
		return nil
	}
	task, err := tx.GetTask(ctx, *e.TaskID)
	if errors.Is(err, store.ErrNotFound) {
		return invalid("task", "task %q does not exist", *e.TaskID)
	}
	if err != nil {
		return err
	}
	if task.UserID != e.UserID {
		return structural("task", "the selected task does not belong to this user")
	}
	e.Name = task.Name
	e.ProjectID = task.ProjectID
	return nil
}

// refreshEntryTasks recomputes durations for the tasks whose completed
// totals the write from before to after may have changed.
func refreshEntryTasks(ctx context.Context, tx store.Tx, before, after *models.TimeEntry, at time.Time) error {
	var ids []string
	if before != nil && before.TaskID != nil && before.Completed() {
		ids = append(ids, *before.TaskID)
	}
	if after != nil && after.TaskID != nil && after.Completed() {
		if len(ids) == 0 || ids[0] != *after.TaskID {
			ids = append(ids, *after.TaskID)
		}
	}
	for _, id := range ids {
		if err := refreshDurations(ctx, tx, id, at); err != nil {
			return err
		}
	}
	return nil
}

func ownedEntry(ctx context.Context, tx store.Tx, userID, entryID string) (*models.TimeEntry, error) {
	e, err := tx.GetTimeEntry(ctx, entryID)
	if err != nil {
		return nil, notFound(err)
	}
	if e.UserID != userID {
		return nil, ErrNotFound
	}
	return e, nil
}
