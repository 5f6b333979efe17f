package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"tasktime/app/models"
	"tasktime/app/store"
)

var errReadOnly = errors.New("memory: write in read transaction")

type projectRow struct {
	models.Project
	seq int64
}

type tagRow struct {
	models.Tag
	seq int64
}

type taskRow struct {
	models.Task
	seq int64
}

func (r taskRow) clone() taskRow {
	r.Task = copyTask(r.Task)
	return r
}

type entryRow struct {
	models.TimeEntry
	seq int64
}

func (r entryRow) clone() entryRow {
	r.TimeEntry = copyEntry(r.TimeEntry)
	return r
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTask(t models.Task) models.Task {
	t.ProjectID = copyString(t.ProjectID)
	t.ParentID = copyString(t.ParentID)
	t.RootID = copyString(t.RootID)
	if t.EstimateMinutes != nil {
		v := *t.EstimateMinutes
		t.EstimateMinutes = &v
	}
	t.TagIDs = append([]string{}, t.TagIDs...)
	return t
}

func copyEntry(e models.TimeEntry) models.TimeEntry {
	e.TaskID = copyString(e.TaskID)
	e.ProjectID = copyString(e.ProjectID)
	if e.EndTime != nil {
		v := *e.EndTime
		e.EndTime = &v
	}
	if e.DurationSeconds != nil {
		v := *e.DurationSeconds
		e.DurationSeconds = &v
	}
	return e
}

func eq(a *string, b string) bool {
	return a != nil && *a == b
}

type tx struct {
	d        *data
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *tx) GetProject(_ context.Context, id string) (*models.Project, error) {
	r, ok := t.d.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p := r.Project
	return &p, nil
}

func (t *tx) ListProjects(_ context.Context, userID string) ([]models.Project, error) {
	rows := []projectRow{}
	for _, r := range t.d.projects {
		if r.UserID == userID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].seq < rows[j].seq
	})
	out := make([]models.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Project)
	}
	return out, nil
}

func (t *tx) CreateProject(_ context.Context, p *models.Project) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.d.projects[p.ID] = projectRow{Project: *p, seq: t.d.next()}
	return nil
}

func (t *tx) UpdateProject(_ context.Context, p *models.Project) error {
	if err := t.writable(); err != nil {
		return err
	}
	r, ok := t.d.projects[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	r.Project = *p
	t.d.projects[p.ID] = r
	return nil
}

func (t *tx) DeleteProject(_ context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.d.projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.d.projects, id)
	for k, r := range t.d.tasks {
		if eq(r.ProjectID, id) {
			r.ProjectID = nil
			t.d.tasks[k] = r
		}
	}
	for k, r := range t.d.entries {
		if eq(r.ProjectID, id) {
			r.ProjectID = nil
			t.d.entries[k] = r
		}
	}
	return nil
}

func (t *tx) GetTag(_ context.Context, id string) (*models.Tag, error) {
	r, ok := t.d.tags[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	tag := r.Tag
	return &tag, nil
}

func (t *tx) FindTag(_ context.Context, userID, name string) (*models.Tag, error) {
	for _, r := range t.d.tags {
		if r.UserID == userID && r.Name == name {
			tag := r.Tag
			return &tag, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *tx) ListTags(_ context.Context, userID string) ([]models.Tag, error) {
	rows := []tagRow{}
	for _, r := range t.d.tags {
		if r.UserID == userID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	out := make([]models.Tag, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Tag)
	}
	return out, nil
}

func (t *tx) tagNameTaken(tag *models.Tag) bool {
	for _, r := range t.d.tags {
		if r.ID != tag.ID && r.UserID == tag.UserID && r.Name == tag.Name {
			return true
		}
	}
	return false
}

func (t *tx) CreateTag(_ context.Context, tag *models.Tag) error {
	if err := t.writable(); err != nil {
		return err
	}
	if t.tagNameTaken(tag) {
		return store.ErrConflict
	}
	t.d.tags[tag.ID] = tagRow{Tag: *tag, seq: t.d.next()}
	return nil
}

func (t *tx) UpdateTag(_ context.Context, tag *models.Tag) error {
	if err := t.writable(); err != nil {
		return err
	}
	r, ok := t.d.tags[tag.ID]
	if !ok {
		return store.ErrNotFound
	}
	if t.tagNameTaken(tag) {
		return store.ErrConflict
	}
	r.Tag = *tag
	t.d.tags[tag.ID] = r
	return nil
}

func (t *tx) DeleteTag(_ context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.d.tags[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.d.tags, id)
	for k, r := range t.d.tasks {
		kept := r.TagIDs[:0]
		for _, tagID := range r.TagIDs {
			if tagID != id {
				kept = append(kept, tagID)
			}
		}
		r.TagIDs = kept
		t.d.tasks[k] = r
	}
	return nil
}

func (t *tx) GetTask(_ context.Context, id string) (*models.Task, error) {
	r, ok := t.d.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	task := copyTask(r.Task)
	return &task, nil
}

func hasAnyTag(task models.Task, tagIDs []string) bool {
	for _, have := range task.TagIDs {
		for _, want := range tagIDs {
			if have == want {
				return true
			}
		}
	}
	return false
}

func matchTask(r taskRow, f store.TaskFilter) bool {
	switch {
	case f.NoProject && r.ProjectID != nil:
		return false
	case f.ProjectID != nil && !eq(r.ProjectID, *f.ProjectID):
		return false
	case f.NoParent && r.ParentID != nil:
		return false
	case f.ParentID != nil && !eq(r.ParentID, *f.ParentID):
		return false
	case f.RootID != nil && !eq(r.RootID, *f.RootID):
		return false
	case len(f.TagIDs) > 0 && !hasAnyTag(r.Task, f.TagIDs):
		return false
	}
	return true
}

func (t *tx) ListTasks(_ context.Context, userID string, f store.TaskFilter) ([]models.Task, error) {
	rows := []taskRow{}
	for _, r := range t.d.tasks {
		if r.UserID == userID && matchTask(r, f) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch f.Ordering {
		case store.OrderNameAsc:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.seq < b.seq
		case store.OrderNameDesc:
			if a.Name != b.Name {
				return a.Name > b.Name
			}
			return a.seq > b.seq
		case store.OrderCreatedAsc:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.seq < b.seq
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.seq > b.seq
		}
	})
	out := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, copyTask(r.Task))
	}
	return out, nil
}

func (t *tx) CreateTask(_ context.Context, task *models.Task) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.d.tasks[task.ID] = taskRow{Task: copyTask(*task), seq: t.d.next()}
	return nil
}

func (t *tx) UpdateTask(_ context.Context, task *models.Task) error {
	if err := t.writable(); err != nil {
		return err
	}
	r, ok := t.d.tasks[task.ID]
	if !ok {
		return store.ErrNotFound
	}
	r.Task = copyTask(*task)
	t.d.tasks[task.ID] = r
	return nil
}

func (t *tx) updateTask(id string, fn func(*models.Task)) error {
	if err := t.writable(); err != nil {
		return err
	}
	r, ok := t.d.tasks[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(&r.Task)
	t.d.tasks[id] = r
	return nil
}

func (t *tx) SetTaskProject(_ context.Context, id string, projectID *string, at time.Time) error {
	return t.updateTask(id, func(task *models.Task) {
		task.ProjectID = copyString(projectID)
		task.UpdatedAt = at
	})
}

func (t *tx) SetTaskDuration(_ context.Context, id string, seconds int64, at time.Time) error {
	return t.updateTask(id, func(task *models.Task) {
		task.DurationSeconds = seconds
		task.UpdatedAt = at
	})
}

func (t *tx) SetTaskTree(_ context.Context, id string, level int, rootID, projectID *string, at time.Time) error {
	return t.updateTask(id, func(task *models.Task) {
		task.Level = level
		task.RootID = copyString(rootID)
		task.ProjectID = copyString(projectID)
		task.UpdatedAt = at
	})
}

func (t *tx) DeleteTasks(_ context.Context, ids []string) error {
	if err := t.writable(); err != nil {
		return err
	}
	gone := map[string]bool{}
	for _, id := range ids {
		gone[id] = true
		delete(t.d.tasks, id)
	}
	for k, r := range t.d.entries {
		if r.TaskID != nil && gone[*r.TaskID] {
			r.TaskID = nil
			t.d.entries[k] = r
		}
	}
	return nil
}

func (t *tx) GetTimeEntry(_ context.Context, id string) (*models.TimeEntry, error) {
	r, ok := t.d.entries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	e := copyEntry(r.TimeEntry)
	return &e, nil
}

func matchEntry(r entryRow, f store.EntryFilter) bool {
	if len(f.TaskIDs) > 0 {
		found := false
		for _, id := range f.TaskIDs {
			if eq(r.TaskID, id) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ProjectID != nil && !eq(r.ProjectID, *f.ProjectID) {
		return false
	}
	if f.Running != nil && *f.Running == r.Completed() {
		return false
	}
	return true
}

func (t *tx) ListTimeEntries(_ context.Context, userID string, f store.EntryFilter) ([]models.TimeEntry, error) {
	rows := []entryRow{}
	for _, r := range t.d.entries {
		if r.UserID == userID && matchEntry(r, f) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].StartTime.Equal(rows[j].StartTime) {
			return rows[i].StartTime.After(rows[j].StartTime)
		}
		return rows[i].seq > rows[j].seq
	})
	if f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}
	out := make([]models.TimeEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, copyEntry(r.TimeEntry))
	}
	return out, nil
}

func (t *tx) CreateTimeEntry(_ context.Context, e *models.TimeEntry) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.d.entries[e.ID] = entryRow{TimeEntry: copyEntry(*e), seq: t.d.next()}
	return nil
}

func (t *tx) UpdateTimeEntry(_ context.Context, e *models.TimeEntry) error {
	if err := t.writable(); err != nil {
		return err
	}
	r, ok := t.d.entries[e.ID]
	if !ok {
		return store.ErrNotFound
	}
	r.TimeEntry = copyEntry(*e)
	t.d.entries[e.ID] = r
	return nil
}

func (t *tx) DeleteTimeEntry(_ context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.d.entries[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.d.entries, id)
	return nil
}

func (t *tx) SumCompletedDurations(_ context.Context, taskIDs []string) (int64, error) {
	want := map[string]bool{}
	for _, id := range taskIDs {
		want[id] = true
	}
	var total int64
	for _, r := range t.d.entries {
		if r.TaskID == nil || !want[*r.TaskID] || !r.Completed() || r.DurationSeconds == nil {
			continue
		}
		total += *r.DurationSeconds
	}
	return total, nil
}
