package services

import (
	"context"
	"errors"
	"time"

	"tasktime/app/models"
	"tasktime/app/store"
)

// descendants returns the children and grandchildren of t. Roots find their
// whole tree through root_id in one query; level 1 tasks only have children.
func descendants(ctx context.Context, tx store.Tx, t *models.Task) ([]models.Task, error) {
	var f store.TaskFilter
	switch t.Level {
	case 0:
		f.RootID = &t.ID
	case 1:
		f.ParentID = &t.ID
	default:
		return nil, nil
	}
	return tx.ListTasks(ctx, t.UserID, f)
}

// subtreeIDs returns t's id followed by the ids of its descendants.
func subtreeIDs(ctx context.Context, tx store.Tx, t *models.Task) ([]string, error) {
	desc, err := descendants(ctx, tx, t)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(desc)+1)
	ids = append(ids, t.ID)
	for _, d := range desc {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// ancestors returns the parent chain of t, nearest first.
func ancestors(ctx context.Context, tx store.Tx, t *models.Task) ([]models.Task, error) {
	var out []models.Task
	seen := map[string]bool{t.ID: true}
	next := t.ParentID
	for next != nil {
		if seen[*next] {
			return nil, structural("parent", "circular reference detected")
		}
		seen[*next] = true
		p, err := tx.GetTask(ctx, *next)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
		next = p.ParentID
	}
	return out, nil
}

// height is how many levels hang below t in desc.
func height(t *models.Task, desc []models.Task) int {
	h := 0
	for _, d := range desc {
		if d.Level-t.Level > h {
			h = d.Level - t.Level
		}
	}
	return h
}

// lookupProject fetches a project referenced by a task or entry owned by userID.
func lookupProject(ctx context.Context, tx store.Tx, userID, projectID string) (*models.Project, error) {
	p, err := tx.GetProject(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalid("project", "project %q does not exist", projectID)
	}
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, structural("project", "the selected project does not belong to this user")
	}
	return p, nil
}

// lookupParent fetches a task referenced as a parent by a task owned by userID.
func lookupParent(ctx context.Context, tx store.Tx, userID, parentID string) (*models.Task, error) {
	p, err := tx.GetTask(ctx, parentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalid("parent", "task %q does not exist", parentID)
	}
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, structural("parent", "the selected parent task does not belong to this user")
	}
	return p, nil
}

// place sets the level, root and project of t for the given parent.
// Children always take the project of their root, whatever was supplied.
func place(ctx context.Context, tx store.Tx, t *models.Task, parent *models.Task) error {
	if parent == nil {
		t.ParentID = nil
		t.RootID = nil
		t.Level = 0
		return nil
	}
	if parent.Level >= models.MaxLevel {
		return structural("parent", "max depth exceeded: a grandchild task cannot have children")
	}
	level := parent.Level + 1
	rootID := parent.TreeRootID()
	root := parent
	if parent.RootID != nil {
		r, err := tx.GetTask(ctx, rootID)
		if err != nil {
			return err
		}
		root = r
	}
	if err := checkCycle(ctx, tx, t.ID, parent); err != nil {
		return err
	}
	t.ParentID = &parent.ID
	t.RootID = &rootID
	t.Level = level
	t.ProjectID = root.ProjectID
	return nil
}

// checkCycle walks up from parent and fails if taskID shows up.
func checkCycle(ctx context.Context, tx store.Tx, taskID string, parent *models.Task) error {
	visited := map[string]bool{}
	cur := parent
	for cur != nil {
		if cur.ID == taskID || visited[cur.ID] {
			return structural("parent", "circular reference detected")
		}
		visited[cur.ID] = true
		if cur.ParentID == nil {
			return nil
		}
		next, err := tx.GetTask(ctx, *cur.ParentID)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

// cascadeProject copies a root's project onto its descendants, touching only
// the project and updated_at columns.
func cascadeProject(ctx context.Context, tx store.Tx, root *models.Task, desc []models.Task, at time.Time) error {
	for _, d := range desc {
		if sameID(d.ProjectID, root.ProjectID) {
			continue
		}
		if err := tx.SetTaskProject(ctx, d.ID, root.ProjectID, at); err != nil {
			return err
		}
	}
	return nil
}

// reseat rewrites level, root and project of the descendants of a task that
// moved from oldLevel to t.Level.
func reseat(ctx context.Context, tx store.Tx, t *models.Task, oldLevel int, desc []models.Task, at time.Time) error {
	rootID := t.TreeRootID()
	for _, d := range desc {
		level := t.Level + d.Level - oldLevel
		if err := tx.SetTaskTree(ctx, d.ID, level, &rootID, t.ProjectID, at); err != nil {
			return err
		}
	}
	return nil
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
