package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tasktime/app/models"
	"tasktime/app/store/memory"

	"github.com/matryer/is"
)

type fixture struct {
	ctx      context.Context
	clock    time.Time
	ids      int
	projects *ProjectService
	tags     *TagService
	tasks    *TaskService
	entries  *TimeEntryService
}

func newFixture() *fixture {
	st := memory.New()
	f := &fixture{
		ctx:      context.Background(),
		clock:    time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC),
		projects: NewProjectService(st),
		tags:     NewTagService(st),
		tasks:    NewTaskService(st),
		entries:  NewTimeEntryService(st),
	}
	now := func() time.Time { return f.clock }
	newID := func() string {
		f.ids++
		return fmt.Sprintf("id-%03d", f.ids)
	}
	for _, b := range []*base{&f.projects.base, &f.tags.base, &f.tasks.base, &f.entries.base} {
		b.now = now
		b.newID = newID
	}
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *fixture) project(t *testing.T, user, name string) *models.Project {
	t.Helper()
	p, err := f.projects.CreateProject(f.ctx, user, ProjectInput{Name: &name})
	is.New(t).NoErr(err)
	return p
}

func (f *fixture) task(t *testing.T, user, name string, parent *models.Task, project *models.Project) *models.Task {
	t.Helper()
	in := TaskInput{Name: &name}
	if parent != nil {
		in.Parent = Some(parent.ID)
	}
	if project != nil {
		in.Project = Some(project.ID)
	}
	task, err := f.tasks.CreateTask(f.ctx, user, in)
	is.New(t).NoErr(err)
	return task
}

// logged records a completed entry of d against task, ending at the fixture clock.
func (f *fixture) logged(t *testing.T, user string, task *models.Task, d time.Duration) *models.TimeEntry {
	t.Helper()
	start := f.clock.Add(-d)
	e, err := f.entries.CreateTimeEntry(f.ctx, user, TimeEntryInput{
		Task:      Some(task.ID),
		StartTime: &start,
		EndTime:   Some(f.clock),
	})
	is.New(t).NoErr(err)
	return e
}

func (f *fixture) reload(t *testing.T, user string, task *models.Task) *models.Task {
	t.Helper()
	got, err := f.tasks.GetTaskByID(f.ctx, user, task.ID)
	is.New(t).NoErr(err)
	return got
}

func str(s string) *string { return &s }
