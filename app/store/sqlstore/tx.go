package sqlstore

import (
	"context"
	"time"

	"tasktime/app/models"
	"tasktime/app/store"

	"gorm.io/gorm"
)

type txn struct {
	db *gorm.DB
}

var taskOrderings = map[string]string{
	store.OrderCreatedAsc:  "created_at, id",
	store.OrderCreatedDesc: "created_at DESC, id DESC",
	store.OrderNameAsc:     "name, id",
	store.OrderNameDesc:    "name DESC, id DESC",
}

func (t *txn) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var row projectRow
	if err := t.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	p := row.model()
	return &p, nil
}

func (t *txn) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	var rows []projectRow
	err := t.db.WithContext(ctx).Where("user_id = ?", userID).Order("name, created_at").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (t *txn) CreateProject(ctx context.Context, p *models.Project) error {
	row := projectToRow(p)
	return conflict(t.db.WithContext(ctx).Create(&row).Error)
}

func (t *txn) UpdateProject(ctx context.Context, p *models.Project) error {
	return affected(t.db.WithContext(ctx).Model(&projectRow{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":       p.Name,
		"color":      p.Color,
		"updated_at": p.UpdatedAt,
	}))
}

func (t *txn) DeleteProject(ctx context.Context, id string) error {
	db := t.db.WithContext(ctx)
	if _, err := t.GetProject(ctx, id); err != nil {
		return err
	}
	if err := db.Model(&taskRow{}).Where("project_id = ?", id).Update("project_id", nil).Error; err != nil {
		return err
	}
	if err := db.Model(&entryRow{}).Where("project_id = ?", id).Update("project_id", nil).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&projectRow{}).Error
}

func (t *txn) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	var row tagRow
	if err := t.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	tag := row.model()
	return &tag, nil
}

func (t *txn) FindTag(ctx context.Context, userID, name string) (*models.Tag, error) {
	var row tagRow
	if err := t.db.WithContext(ctx).First(&row, "user_id = ? AND name = ?", userID, name).Error; err != nil {
		return nil, notFound(err)
	}
	tag := row.model()
	return &tag, nil
}

func (t *txn) ListTags(ctx context.Context, userID string) ([]models.Tag, error) {
	var rows []tagRow
	if err := t.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Tag, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (t *txn) CreateTag(ctx context.Context, tag *models.Tag) error {
	row := tagToRow(tag)
	return conflict(t.db.WithContext(ctx).Create(&row).Error)
}

func (t *txn) UpdateTag(ctx context.Context, tag *models.Tag) error {
	return affected(t.db.WithContext(ctx).Model(&tagRow{}).Where("id = ?", tag.ID).Update("name", tag.Name))
}

func (t *txn) DeleteTag(ctx context.Context, id string) error {
	db := t.db.WithContext(ctx)
	if err := db.Where("tag_id = ?", id).Delete(&taskTagRow{}).Error; err != nil {
		return err
	}
	return affected(db.Where("id = ?", id).Delete(&tagRow{}))
}

// tagsOf loads the tag ids of the given tasks.
func (t *txn) tagsOf(ctx context.Context, taskIDs []string) (map[string][]string, error) {
	out := map[string][]string{}
	if len(taskIDs) == 0 {
		return out, nil
	}
	var links []taskTagRow
	err := t.db.WithContext(ctx).Where("task_id IN ?", taskIDs).Order("task_id, tag_id").Find(&links).Error
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		out[l.TaskID] = append(out[l.TaskID], l.TagID)
	}
	return out, nil
}

func (t *txn) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var row taskRow
	if err := t.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	tags, err := t.tagsOf(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	task := row.model(tags[id])
	return &task, nil
}

func (t *txn) ListTasks(ctx context.Context, userID string, f store.TaskFilter) ([]models.Task, error) {
	db := t.db.WithContext(ctx)
	q := db.Model(&taskRow{}).Where("user_id = ?", userID)
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.NoProject {
		q = q.Where("project_id IS NULL")
	}
	if f.ParentID != nil {
		q = q.Where("parent_id = ?", *f.ParentID)
	}
	if f.NoParent {
		q = q.Where("parent_id IS NULL")
	}
	if f.RootID != nil {
		q = q.Where("root_id = ?", *f.RootID)
	}
	if len(f.TagIDs) > 0 {
		q = q.Where("id IN (?)", db.Model(&taskTagRow{}).Select("task_id").Where("tag_id IN ?", f.TagIDs))
	}
	order, ok := taskOrderings[f.Ordering]
	if !ok {
		order = taskOrderings[store.OrderCreatedDesc]
	}

	var rows []taskRow
	if err := q.Order(order).Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	tags, err := t.tagsOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model(tags[r.ID]))
	}
	return out, nil
}

func (t *txn) CreateTask(ctx context.Context, task *models.Task) error {
	row := taskToRow(task)
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		return conflict(err)
	}
	return t.setTags(ctx, task)
}

func (t *txn) UpdateTask(ctx context.Context, task *models.Task) error {
	err := affected(t.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", task.ID).Updates(map[string]any{
		"name":             task.Name,
		"description":      task.Description,
		"project_id":       task.ProjectID,
		"parent_id":        task.ParentID,
		"root_id":          task.RootID,
		"level":            task.Level,
		"estimate_minutes": task.EstimateMinutes,
		"duration_seconds": task.DurationSeconds,
		"updated_at":       task.UpdatedAt,
	}))
	if err != nil {
		return err
	}
	return t.setTags(ctx, task)
}

// setTags replaces the tag links of the task.
func (t *txn) setTags(ctx context.Context, task *models.Task) error {
	db := t.db.WithContext(ctx)
	if err := db.Where("task_id = ?", task.ID).Delete(&taskTagRow{}).Error; err != nil {
		return err
	}
	if len(task.TagIDs) == 0 {
		return nil
	}
	links := make([]taskTagRow, 0, len(task.TagIDs))
	for _, id := range task.TagIDs {
		links = append(links, taskTagRow{TaskID: task.ID, TagID: id})
	}
	return conflict(db.Create(&links).Error)
}

func (t *txn) setTask(ctx context.Context, id string, cols map[string]any) error {
	return affected(t.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", id).Updates(cols))
}

func (t *txn) SetTaskProject(ctx context.Context, id string, projectID *string, at time.Time) error {
	return t.setTask(ctx, id, map[string]any{"project_id": projectID, "updated_at": at})
}

func (t *txn) SetTaskDuration(ctx context.Context, id string, seconds int64, at time.Time) error {
	return t.setTask(ctx, id, map[string]any{"duration_seconds": seconds, "updated_at": at})
}

func (t *txn) SetTaskTree(ctx context.Context, id string, level int, rootID, projectID *string, at time.Time) error {
	return t.setTask(ctx, id, map[string]any{
		"level":      level,
		"root_id":    rootID,
		"project_id": projectID,
		"updated_at": at,
	})
}

func (t *txn) DeleteTasks(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	db := t.db.WithContext(ctx)
	if err := db.Model(&entryRow{}).Where("task_id IN ?", ids).Update("task_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("task_id IN ?", ids).Delete(&taskTagRow{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&taskRow{}).Error
}

func (t *txn) GetTimeEntry(ctx context.Context, id string) (*models.TimeEntry, error) {
	var row entryRow
	if err := t.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	e := row.model()
	return &e, nil
}

func (t *txn) ListTimeEntries(ctx context.Context, userID string, f store.EntryFilter) ([]models.TimeEntry, error) {
	q := t.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(f.TaskIDs) > 0 {
		q = q.Where("task_id IN ?", f.TaskIDs)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.Running != nil {
		if *f.Running {
			q = q.Where("end_time IS NULL")
		} else {
			q = q.Where("end_time IS NOT NULL")
		}
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []entryRow
	if err := q.Order("start_time DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.TimeEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (t *txn) CreateTimeEntry(ctx context.Context, e *models.TimeEntry) error {
	row := entryToRow(e)
	return conflict(t.db.WithContext(ctx).Create(&row).Error)
}

func (t *txn) UpdateTimeEntry(ctx context.Context, e *models.TimeEntry) error {
	return affected(t.db.WithContext(ctx).Model(&entryRow{}).Where("id = ?", e.ID).Updates(map[string]any{
		"name":             e.Name,
		"task_id":          e.TaskID,
		"project_id":       e.ProjectID,
		"start_time":       e.StartTime,
		"end_time":         e.EndTime,
		"duration_seconds": e.DurationSeconds,
	}))
}

func (t *txn) DeleteTimeEntry(ctx context.Context, id string) error {
	return affected(t.db.WithContext(ctx).Where("id = ?", id).Delete(&entryRow{}))
}

func (t *txn) SumCompletedDurations(ctx context.Context, taskIDs []string) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	var total int64
	err := t.db.WithContext(ctx).Model(&entryRow{}).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Where("task_id IN ? AND end_time IS NOT NULL", taskIDs).
		Scan(&total).Error
	return total, err
}
