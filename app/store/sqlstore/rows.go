package sqlstore

import (
	"time"

	"tasktime/app/models"
)

type projectRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:64;not null;index:idx_projects_user_created,priority:1"`
	Name      string    `gorm:"size:100;not null"`
	Color     string    `gorm:"size:7;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;index:idx_projects_user_created,priority:2"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (projectRow) TableName() string { return "projects" }

type tagRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_tags_user_name,priority:1"`
	Name      string    `gorm:"size:50;not null;uniqueIndex:idx_tags_user_name,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (tagRow) TableName() string { return "tags" }

type taskRow struct {
	ID              string  `gorm:"primaryKey;size:36"`
	UserID          string  `gorm:"size:64;not null;index:idx_tasks_user_created,priority:1"`
	Name            string  `gorm:"size:100;not null"`
	Description     string  `gorm:"not null;default:''"`
	ProjectID       *string `gorm:"size:36;index"`
	ParentID        *string `gorm:"size:36;index"`
	RootID          *string `gorm:"size:36;index:idx_tasks_root_level,priority:1"`
	Level           int     `gorm:"not null;default:0;check:chk_tasks_level,level <= 2;index:idx_tasks_root_level,priority:2"`
	EstimateMinutes *int
	DurationSeconds int64     `gorm:"not null;default:0"`
	CreatedAt       time.Time `gorm:"autoCreateTime:false;index:idx_tasks_user_created,priority:2"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
}

func (taskRow) TableName() string { return "tasks" }

type taskTagRow struct {
	TaskID string `gorm:"primaryKey;size:36"`
	TagID  string `gorm:"primaryKey;size:36;index"`
}

func (taskTagRow) TableName() string { return "task_tags" }

type entryRow struct {
	ID              string     `gorm:"primaryKey;size:36"`
	UserID          string     `gorm:"size:64;not null;index:idx_entries_user_start,priority:1"`
	Name            string     `gorm:"size:100;not null;default:''"`
	TaskID          *string    `gorm:"size:36;index"`
	ProjectID       *string    `gorm:"size:36;index"`
	StartTime       time.Time  `gorm:"not null;index:idx_entries_user_start,priority:2"`
	EndTime         *time.Time
	DurationSeconds *int64
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
}

func (entryRow) TableName() string { return "time_entries" }

func projectToRow(p *models.Project) projectRow {
	return projectRow{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		Color:     p.Color,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r projectRow) model() models.Project {
	return models.Project{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Color:     r.Color,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func tagToRow(t *models.Tag) tagRow {
	return tagRow{ID: t.ID, UserID: t.UserID, Name: t.Name, CreatedAt: t.CreatedAt}
}

func (r tagRow) model() models.Tag {
	return models.Tag{ID: r.ID, UserID: r.UserID, Name: r.Name, CreatedAt: r.CreatedAt.UTC()}
}

func taskToRow(t *models.Task) taskRow {
	return taskRow{
		ID:              t.ID,
		UserID:          t.UserID,
		Name:            t.Name,
		Description:     t.Description,
		ProjectID:       t.ProjectID,
		ParentID:        t.ParentID,
		RootID:          t.RootID,
		Level:           t.Level,
		EstimateMinutes: t.EstimateMinutes,
		DurationSeconds: t.DurationSeconds,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (r taskRow) model(tagIDs []string) models.Task {
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return models.Task{
		ID:              r.ID,
		UserID:          r.UserID,
		Name:            r.Name,
		Description:     r.Description,
		ProjectID:       r.ProjectID,
		ParentID:        r.ParentID,
		RootID:          r.RootID,
		Level:           r.Level,
		EstimateMinutes: r.EstimateMinutes,
		DurationSeconds: r.DurationSeconds,
		TagIDs:          tagIDs,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

func entryToRow(e *models.TimeEntry) entryRow {
	return entryRow{
		ID:              e.ID,
		UserID:          e.UserID,
		Name:            e.Name,
		TaskID:          e.TaskID,
		ProjectID:       e.ProjectID,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		DurationSeconds: e.DurationSeconds,
		CreatedAt:       e.CreatedAt,
	}
}

func (r entryRow) model() models.TimeEntry {
	e := models.TimeEntry{
		ID:              r.ID,
		UserID:          r.UserID,
		Name:            r.Name,
		TaskID:          r.TaskID,
		ProjectID:       r.ProjectID,
		StartTime:       r.StartTime.UTC(),
		DurationSeconds: r.DurationSeconds,
		CreatedAt:       r.CreatedAt.UTC(),
	}
	if r.EndTime != nil {
		end := r.EndTime.UTC()
		e.EndTime = &end
	}
	return e
}
