package services

import (
	"context"
	"time"

	"tasktime/app/models"
	"tasktime/app/store"

	"github.com/google/uuid"
)

// clock and id generation shared by the services; tests replace them.
type base struct {
	store store.Store
	now   func() time.Time
	newID func() string
}

func newBase(st store.Store) base {
	return base{
		store: st,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID: func() string { return uuid.New().String() },
	}
}

// TaskService maintains the task tree: depth, root and project inheritance,
// and the duration totals of every task.
type TaskService struct {
	base
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(st store.Store) *TaskService {
	return &TaskService{base: newBase(st)}
}

// GetTasks lists the user's tasks.
func (s *TaskService) GetTasks(ctx context.Context, userID string, f store.TaskFilter) ([]models.Task, error) {
	var tasks []models.Task
	err := s.store.Read(ctx, func(tx store.Tx) error {
		var err error
		tasks, err = tx.ListTasks(ctx, userID, f)
		return err
	})
	return tasks, err
}

// GetTaskByID retrieves a single task owned by the user.
func (s *TaskService) GetTaskByID(ctx context.Context, userID, taskID string) (*models.Task, error) {
	var task *models.Task
	err := s.store.Read(ctx, func(tx store.Tx) error {
		var err error
		task, err = ownedTask(ctx, tx, userID, taskID)
		return err
	})
	return task, err
}

// GetTaskDuration reports the completed and current duration of a task
// including its descendants. Current duration counts running entries up to now.
func (s *TaskService) GetTaskDuration(ctx context.Context, userID, taskID string) (*models.TaskDuration, error) {
	var out models.TaskDuration
	err := s.store.Read(ctx, func(tx store.Tx) error {
		task, err := ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		out, err = currentDuration(ctx, tx, task, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask validates and inserts a task. A root task takes the supplied
// project; a child takes its root's.
func (s *TaskService) CreateTask(ctx context.Context, userID string, in TaskInput) (*models.Task, error) {
	name, err := requiredName("name", in.Name, maxTaskName)
	if err != nil {
		return nil, err
	}
	now := s.now()
	task := &models.Task{
		ID:        s.newID(),
		UserID:    userID,
		Name:      name,
		TagIDs:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != nil {
		task.Description = *in.Description
	}

	err = s.store.Write(ctx, func(tx store.Tx) error {
		if err := applyTaskFields(ctx, tx, task, in); err != nil {
			return err
		}
		var parent *models.Task
		if in.Parent.Value != nil {
			p, err := lookupParent(ctx, tx, userID, *in.Parent.Value)
			if err != nil {
				return err
			}
			parent = p
		}
		if err := place(ctx, tx, task, parent); err != nil {
			return err
		}
		return tx.CreateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies the fields set in the input. Moving a task moves its
// descendants with it; the descendants' level, root and project follow.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, in TaskInput) (*models.Task, error) {
	var task *models.Task
	err := s.store.Write(ctx, func(tx store.Tx) error {
		var err error
		task, err = ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		before := *task
		desc, err := descendants(ctx, tx, &before)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := requiredName("name", in.Name, maxTaskName)
			if err != nil {
				return err
			}
			task.Name = name
		}
		if in.Description != nil {
			task.Description = *in.Description
		}
		if err := applyTaskFields(ctx, tx, task, in); err != nil {
			return err
		}

		parentID := before.ParentID
		if in.Parent.Set {
			parentID = in.Parent.Value
		}
		var parent *models.Task
		if parentID != nil {
			parent, err = lookupParent(ctx, tx, userID, *parentID)
			if err != nil {
				return err
			}
		}
		if err := place(ctx, tx, task, parent); err != nil {
			return err
		}
		if task.Level+height(&before, desc) > models.MaxLevel {
			return structural("parent", "max depth exceeded: moving this task would nest its descendants deeper than %d levels", models.MaxLevel+1)
		}

		now := s.now()
		task.UpdatedAt = now
		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}

		moved := !sameID(before.ParentID, task.ParentID)
		if moved {
			if err := reseat(ctx, tx, task, before.Level, desc, now); err != nil {
				return err
			}
			if before.ParentID != nil {
				if err := refreshDurations(ctx, tx, *before.ParentID, now); err != nil {
					return err
				}
			}
			return refreshDurations(ctx, tx, task.ID, now)
		}
		if task.Level == 0 {
			return cascadeProject(ctx, tx, task, desc, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask deletes a task and its descendants. Their time entries survive
// with the task cleared; ancestor durations are recomputed.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	return s.store.Write(ctx, func(tx store.Tx) error {
		task, err := ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		ids, err := subtreeIDs(ctx, tx, task)
		if err != nil {
			return err
		}
		if err := tx.DeleteTasks(ctx, ids); err != nil {
			return err
		}
		if task.ParentID != nil {
			return refreshDurations(ctx, tx, *task.ParentID, s.now())
		}
		return nil
	})
}

// applyTaskFields validates and copies the project, estimate and tags of the
// input onto task.
func applyTaskFields(ctx context.Context, tx store.Tx, task *models.Task, in TaskInput) error {
	if in.Project.Set {
		task.ProjectID = nil
		if in.Project.Value != nil {
			p, err := lookupProject(ctx, tx, task.UserID, *in.Project.Value)
			if err != nil {
				return err
			}
			task.ProjectID = &p.ID
		}
	}
	if in.EstimateMinutes.Set {
		if in.EstimateMinutes.Value != nil && *in.EstimateMinutes.Value < 0 {
			return invalid("estimate_minutes", "ensure this value is greater than or equal to 0")
		}
		task.EstimateMinutes = in.EstimateMinutes.Value
	}
	if in.Tags != nil {
		tags, err := ownedTags(ctx, tx, task.UserID, *in.Tags)
		if err != nil {
			return err
		}
		task.TagIDs = tags
	}
	return nil
}

// ownedTags checks every tag belongs to userID and drops duplicates.
func ownedTags(ctx context.Context, tx store.Tx, userID string, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		tag, err := tx.GetTag(ctx, id)
		if err != nil {
			if notFound(err) == ErrNotFound {
				return nil, invalid("tags", "tag %q does not exist", id)
			}
			return nil, err
		}
		if tag.UserID != userID {
			return nil, structural("tags", "the selected tag does not belong to this user")
		}
		out = append(out, id)
	}
	return out, nil
}

// ownedTask fetches a task and hides it from everyone but its owner.
func ownedTask(ctx context.Context, tx store.Tx, userID, taskID string) (*models.Task, error) {
	task, err := tx.GetTask(ctx, taskID)
	if err != nil {
		return nil, notFound(err)
	}
	if task.UserID != userID {
		return nil, ErrNotFound
	}
	return task, nil
}
