package neo4jstore

import (
	"time"

	"tasktime/app/models"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// value returns the record value under key, nil when missing or null.
func value(rec *neo4j.Record, key string) any {
	v, ok := rec.Get(key)
	if !ok {
		return nil
	}
	return v
}

func str(rec *neo4j.Record, key string) string {
	s, _ := value(rec, key).(string)
	return s
}

func optStr(rec *neo4j.Record, key string) *string {
	s, ok := value(rec, key).(string)
	if !ok {
		return nil
	}
	return &s
}

func integer(rec *neo4j.Record, key string) int64 {
	n, _ := value(rec, key).(int64)
	return n
}

func optInt(rec *neo4j.Record, key string) *int64 {
	n, ok := value(rec, key).(int64)
	if !ok {
		return nil
	}
	return &n
}

func timestamp(rec *neo4j.Record, key string) time.Time {
	t, _ := value(rec, key).(time.Time)
	return t.UTC()
}

func optTime(rec *neo4j.Record, key string) *time.Time {
	t, ok := value(rec, key).(time.Time)
	if !ok {
		return nil
	}
	t = t.UTC()
	return &t
}

func strs(rec *neo4j.Record, key string) []string {
	list, _ := value(rec, key).([]any)
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// nullable turns an optional value into a query parameter; nil removes the
// property when SET.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func optIntParam(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func projectFromRecord(rec *neo4j.Record) models.Project {
	return models.Project{
		ID:        str(rec, "id"),
		UserID:    str(rec, "user_id"),
		Name:      str(rec, "name"),
		Color:     str(rec, "color"),
		CreatedAt: timestamp(rec, "created_at"),
		UpdatedAt: timestamp(rec, "updated_at"),
	}
}

func tagFromRecord(rec *neo4j.Record) models.Tag {
	return models.Tag{
		ID:        str(rec, "id"),
		UserID:    str(rec, "user_id"),
		Name:      str(rec, "name"),
		CreatedAt: timestamp(rec, "created_at"),
	}
}

func taskFromRecord(rec *neo4j.Record) models.Task {
	t := models.Task{
		ID:              str(rec, "id"),
		UserID:          str(rec, "user_id"),
		Name:            str(rec, "name"),
		Description:     str(rec, "description"),
		ProjectID:       optStr(rec, "project_id"),
		ParentID:        optStr(rec, "parent_id"),
		RootID:          optStr(rec, "root_id"),
		Level:           int(integer(rec, "level")),
		DurationSeconds: integer(rec, "duration_seconds"),
		TagIDs:          strs(rec, "tag_ids"),
		CreatedAt:       timestamp(rec, "created_at"),
		UpdatedAt:       timestamp(rec, "updated_at"),
	}
	if est := optInt(rec, "estimate_minutes"); est != nil {
		v := int(*est)
		t.EstimateMinutes = &v
	}
	return t
}

func entryFromRecord(rec *neo4j.Record) models.TimeEntry {
	return models.TimeEntry{
		ID:              str(rec, "id"),
		UserID:          str(rec, "user_id"),
		Name:            str(rec, "name"),
		TaskID:          optStr(rec, "task_id"),
		ProjectID:       optStr(rec, "project_id"),
		StartTime:       timestamp(rec, "start_time"),
		EndTime:         optTime(rec, "end_time"),
		DurationSeconds: optInt(rec, "duration_seconds"),
		CreatedAt:       timestamp(rec, "created_at"),
	}
}
