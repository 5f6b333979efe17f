package models

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestTimeEntry_ComputeDuration(t *testing.T) {
	start := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	t.Run("completed entry", func(t *testing.T) {
		is := is.New(t)
		end := start.Add(2*time.Hour + 30*time.Minute + 45*time.Second)
		e := TimeEntry{StartTime: start, EndTime: &end}
		e.ComputeDuration()
		is.True(e.DurationSeconds != nil)
		is.Equal(*e.DurationSeconds, int64(9045))
		is.True(e.Completed())
	})

	t.Run("fractional seconds are truncated", func(t *testing.T) {
		is := is.New(t)
		end := start.Add(10*time.Second + 900*time.Millisecond)
		e := TimeEntry{StartTime: start, EndTime: &end}
		e.ComputeDuration()
		is.Equal(*e.DurationSeconds, int64(10))
	})

	t.Run("running entry has no duration", func(t *testing.T) {
		is := is.New(t)
		d := int64(42)
		e := TimeEntry{StartTime: start, DurationSeconds: &d}
		e.ComputeDuration()
		is.Equal(e.DurationSeconds, nil)
		is.True(!e.Completed())
	})
}

func TestTimeEntry_Elapsed(t *testing.T) {
	is := is.New(t)
	start := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	e := TimeEntry{StartTime: start}
	is.Equal(e.Elapsed(start.Add(90*time.Second)), int64(90))
	is.Equal(e.Elapsed(start.Add(-time.Minute)), int64(0))
}

func TestTask_TreeRootID(t *testing.T) {
	is := is.New(t)
	root := Task{ID: "a"}
	is.Equal(root.TreeRootID(), "a")
	is.True(root.IsRoot())

	rootID := "a"
	child := Task{ID: "b", ParentID: &rootID, RootID: &rootID, Level: 1}
	is.Equal(child.TreeRootID(), "a")
	is.True(!child.IsRoot())
}
