package sqlstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"
	"time"

	"tasktime/app/models"
	"tasktime/app/services"
	"tasktime/app/store"

	"github.com/glebarez/sqlite"
	"github.com/matryer/is"
	"gorm.io/gorm"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	is := is.New(t)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	st, err := Open(DialectSQLite, dsn)
	is.NoErr(err)
	sqlDB, err := st.db.DB()
	is.NoErr(err)
	sqlDB.SetMaxOpenConns(1)
	is.NoErr(st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close(context.Background()) })
	return st
}

var at = time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, st *Store) {
	t.Helper()
	is := is.New(t)
	err := st.Write(context.Background(), func(tx store.Tx) error {
		ctx := context.Background()
		if err := tx.CreateProject(ctx, &models.Project{ID: "p", UserID: "alice", Name: "Work", Color: models.DefaultProjectColor, CreatedAt: at, UpdatedAt: at}); err != nil {
			return err
		}
		if err := tx.CreateTag(ctx, &models.Tag{ID: "g", UserID: "alice", Name: "urgent", CreatedAt: at}); err != nil {
			return err
		}
		tasks := []models.Task{
			{ID: "r", UserID: "alice", Name: "Root", ProjectID: ptr("p"), TagIDs: []string{"g"}},
			{ID: "c", UserID: "alice", Name: "Child", ProjectID: ptr("p"), ParentID: ptr("r"), RootID: ptr("r"), Level: 1},
			{ID: "k", UserID: "alice", Name: "Grandchild", ProjectID: ptr("p"), ParentID: ptr("c"), RootID: ptr("r"), Level: 2},
			{ID: "o", UserID: "bob", Name: "Other"},
		}
		for i := range tasks {
			tasks[i].CreatedAt = at.Add(time.Duration(i) * time.Minute)
			tasks[i].UpdatedAt = tasks[i].CreatedAt
			if err := tx.CreateTask(ctx, &tasks[i]); err != nil {
				return err
			}
		}
		entries := []models.TimeEntry{
			{ID: "e1", UserID: "alice", TaskID: ptr("c"), ProjectID: ptr("p"), StartTime: at, EndTime: ptr(at.Add(15 * time.Minute))},
			{ID: "e2", UserID: "alice", TaskID: ptr("k"), ProjectID: ptr("p"), StartTime: at.Add(time.Hour), EndTime: ptr(at.Add(2 * time.Hour))},
			{ID: "e3", UserID: "alice", TaskID: ptr("k"), ProjectID: ptr("p"), StartTime: at.Add(3 * time.Hour)},
		}
		for i := range entries {
			entries[i].ComputeDuration()
			entries[i].CreatedAt = entries[i].StartTime
			if err := tx.CreateTimeEntry(ctx, &entries[i]); err != nil {
				return err
			}
		}
		return nil
	})
	is.NoErr(err)
}

func TestTasks(t *testing.T) {
	st := openTest(t)
	seed(t, st)
	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(st.Read(ctx, func(tx store.Tx) error {
			task, err := tx.GetTask(ctx, "r")
			is.NoErr(err)
			is.Equal(task.Name, "Root")
			is.Equal(task.TagIDs, []string{"g"})
			is.True(task.CreatedAt.Equal(at))

			child, err := tx.GetTask(ctx, "k")
			is.NoErr(err)
			is.Equal(child.Level, 2)
			is.Equal(*child.RootID, "r")
			is.Equal(child.TagIDs, []string{})

			_, err = tx.GetTask(ctx, "missing")
			is.True(errors.Is(err, store.ErrNotFound))
			return nil
		}))
	})

	t.Run("filters", func(t *testing.T) {
		is := is.New(t)
		ids := func(f store.TaskFilter) []string {
			var out []string
			is.NoErr(st.Read(ctx, func(tx store.Tx) error {
				tasks, err := tx.ListTasks(ctx, "alice", f)
				for _, task := range tasks {
					out = append(out, task.ID)
				}
				return err
			}))
			return out
		}
		is.Equal(ids(store.TaskFilter{}), []string{"k", "c", "r"})
		is.Equal(ids(store.TaskFilter{NoParent: true}), []string{"r"})
		is.Equal(ids(store.TaskFilter{ParentID: ptr("c")}), []string{"k"})
		is.Equal(ids(store.TaskFilter{RootID: ptr("r"), Ordering: store.OrderNameAsc}), []string{"c", "k"})
		is.Equal(ids(store.TaskFilter{TagIDs: []string{"g"}}), []string{"r"})
		is.Equal(ids(store.TaskFilter{NoProject: true}), nil)
	})

	t.Run("tree update", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(st.Write(ctx, func(tx store.Tx) error {
			return tx.SetTaskTree(ctx, "k", 1, ptr("r"), nil, at.Add(time.Hour))
		}))
		is.NoErr(st.Read(ctx, func(tx store.Tx) error {
			task, err := tx.GetTask(ctx, "k")
			is.NoErr(err)
			is.Equal(task.Level, 1)
			is.Equal(task.ProjectID, nil)
			is.True(task.UpdatedAt.Equal(at.Add(time.Hour)))
			return nil
		}))
		err := st.Write(ctx, func(tx store.Tx) error {
			return tx.SetTaskDuration(ctx, "missing", 1, at)
		})
		is.True(errors.Is(err, store.ErrNotFound))
	})
}

func TestDurations(t *testing.T) {
	is := is.New(t)
	st := openTest(t)
	seed(t, st)
	ctx := context.Background()

	is.NoErr(st.Read(ctx, func(tx store.Tx) error {
		total, err := tx.SumCompletedDurations(ctx, []string{"r", "c", "k"})
		is.NoErr(err)
		is.Equal(total, int64(900+3600))

		total, err = tx.SumCompletedDurations(ctx, []string{"r"})
		is.NoErr(err)
		is.Equal(total, int64(0))

		running, err := tx.ListTimeEntries(ctx, "alice", store.EntryFilter{Running: ptr(true)})
		is.NoErr(err)
		is.Equal(len(running), 1)
		is.Equal(running[0].ID, "e3")
		is.Equal(running[0].EndTime, nil)

		latest, err := tx.ListTimeEntries(ctx, "alice", store.EntryFilter{TaskIDs: []string{"c", "k"}, Limit: 2})
		is.NoErr(err)
		is.Equal(len(latest), 2)
		is.Equal(latest[0].ID, "e3")
		is.Equal(latest[1].ID, "e2")
		return nil
	}))
}

func TestDeletes(t *testing.T) {
	is := is.New(t)
	st := openTest(t)
	seed(t, st)
	ctx := context.Background()

	is.NoErr(st.Write(ctx, func(tx store.Tx) error {
		if err := tx.DeleteTasks(ctx, []string{"c", "k"}); err != nil {
			return err
		}
		return tx.DeleteProject(ctx, "p")
	}))
	is.NoErr(st.Read(ctx, func(tx store.Tx) error {
		_, err := tx.GetTask(ctx, "k")
		is.True(errors.Is(err, store.ErrNotFound))

		e, err := tx.GetTimeEntry(ctx, "e2")
		is.NoErr(err)
		is.Equal(e.TaskID, nil)
		is.Equal(e.ProjectID, nil)

		root, err := tx.GetTask(ctx, "r")
		is.NoErr(err)
		is.Equal(root.ProjectID, nil)
		return nil
	}))

	is.NoErr(st.Write(ctx, func(tx store.Tx) error { return tx.DeleteTag(ctx, "g") }))
	is.NoErr(st.Read(ctx, func(tx store.Tx) error {
		root, err := tx.GetTask(ctx, "r")
		is.NoErr(err)
		is.Equal(root.TagIDs, []string{})
		return nil
	}))

	err := st.Write(ctx, func(tx store.Tx) error { return tx.DeleteTimeEntry(ctx, "missing") })
	is.True(errors.Is(err, store.ErrNotFound))
}

func TestTagConflict(t *testing.T) {
	is := is.New(t)
	st := openTest(t)
	seed(t, st)
	ctx := context.Background()

	err := st.Write(ctx, func(tx store.Tx) error {
		return tx.CreateTag(ctx, &models.Tag{ID: "g2", UserID: "alice", Name: "urgent", CreatedAt: at})
	})
	is.True(errors.Is(err, store.ErrConflict))

	// the same name under another user is fine
	is.NoErr(st.Write(ctx, func(tx store.Tx) error {
		return tx.CreateTag(ctx, &models.Tag{ID: "g3", UserID: "bob", Name: "urgent", CreatedAt: at})
	}))
}

func TestServicesOnSQLite(t *testing.T) {
	is := is.New(t)
	st := openTest(t)
	ctx := context.Background()
	tasks := services.NewTaskService(st)
	entries := services.NewTimeEntryService(st)

	root, err := tasks.CreateTask(ctx, "alice", services.TaskInput{Name: ptr("Root")})
	is.NoErr(err)
	child, err := tasks.CreateTask(ctx, "alice", services.TaskInput{Name: ptr("Child"), Parent: services.Some(root.ID)})
	is.NoErr(err)
	is.Equal(child.Level, 1)

	start := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	entry, err := entries.CreateTimeEntry(ctx, "alice", services.TimeEntryInput{
		Task:      services.Some(child.ID),
		StartTime: &start,
		EndTime:   services.Some(start.Add(15 * time.Minute)),
	})
	is.NoErr(err)
	is.Equal(*entry.DurationSeconds, int64(900))

	got, err := tasks.GetTaskByID(ctx, "alice", root.ID)
	is.NoErr(err)
	is.Equal(got.DurationSeconds, int64(900))

	is.NoErr(tasks.DeleteTask(ctx, "alice", child.ID))
	got, err = tasks.GetTaskByID(ctx, "alice", root.ID)
	is.NoErr(err)
	is.Equal(got.DurationSeconds, int64(0))

	entry, err = entries.GetTimeEntryByID(ctx, "alice", entry.ID)
	is.NoErr(err)
	is.Equal(entry.TaskID, nil)
}

func TestWriteKeepsCallbackErrors(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	t.Run("plain error", func(t *testing.T) {
		is := is.New(t)
		cause := errors.New("UNIQUE constraint failed: duplicate key value")
		err := st.Write(ctx, func(store.Tx) error { return cause })
		is.Equal(err, cause)
	})

	t.Run("validation error echoing input", func(t *testing.T) {
		is := is.New(t)
		tasks := services.NewTaskService(st)
		_, err := tasks.CreateTask(ctx, "alice", services.TaskInput{
			Name:   ptr("x"),
			Parent: services.Some("duplicate key value"),
		})
		is.True(errors.Is(err, services.ErrInput))
		is.True(!errors.Is(err, store.ErrConflict))
		var verr *services.ValidationError
		is.True(errors.As(err, &verr))
		is.Equal(verr.Field, "parent")
	})
}

func TestLookupMissesAreNotLogged(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	db, err := gorm.Open(sqlite.Open("file:quietmiss?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormLogger(log.New(&buf, "", 0)),
		TranslateError: true,
	})
	is.NoErr(err)
	st := New(db)
	t.Cleanup(func() { st.Close(context.Background()) })
	ctx := context.Background()
	is.NoErr(st.Migrate(ctx))

	is.NoErr(st.Read(ctx, func(tx store.Tx) error {
		_, err := tx.FindTag(ctx, "alice", "urgent")
		is.True(errors.Is(err, store.ErrNotFound))
		_, err = tx.GetTask(ctx, "missing")
		is.True(errors.Is(err, store.ErrNotFound))
		return nil
	}))
	is.Equal(buf.String(), "")
}
