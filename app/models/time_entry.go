package models

import "time"

// TimeEntry is a single work session. An entry without EndTime is running.
type TimeEntry struct {
	ID              string     `json:"id"`
	UserID          string     `json:"-"`
	Name            string     `json:"name"`
	TaskID          *string    `json:"task"`
	ProjectID       *string    `json:"project"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationSeconds *int64     `json:"duration_seconds"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Completed reports whether the entry has been stopped.
func (e *TimeEntry) Completed() bool {
	return e.EndTime != nil
}

// ComputeDuration sets DurationSeconds from the start and end times,
// truncated to whole seconds, or clears it while the entry is running.
func (e *TimeEntry) ComputeDuration() {
	if e.EndTime == nil {
		e.DurationSeconds = nil
		return
	}
	d := int64(e.EndTime.Sub(e.StartTime) / time.Second)
	e.DurationSeconds = &d
}

// Elapsed returns the whole seconds a running entry has been open at now.
func (e *TimeEntry) Elapsed(now time.Time) int64 {
	if e.EndTime != nil {
		if e.DurationSeconds != nil {
			return *e.DurationSeconds
		}
		return int64(e.EndTime.Sub(e.StartTime) / time.Second)
	}
	if now.Before(e.StartTime) {
		return 0
	}
	return int64(now.Sub(e.StartTime) / time.Second)
}
