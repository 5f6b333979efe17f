package services

import (
	"errors"
	"testing"
	"time"

	"tasktime/app/store"

	"github.com/matryer/is"
)

func TestTaskService_Hierarchy(t *testing.T) {
	f := newFixture()
	proj := f.project(t, "alice", "Work")
	parent := f.task(t, "alice", "Parent", nil, proj)
	child := f.task(t, "alice", "Child", parent, nil)
	grandchild := f.task(t, "alice", "Grandchild", child, nil)

	t.Run("root task", func(t *testing.T) {
		is := is.New(t)
		is.Equal(parent.Level, 0)
		is.Equal(parent.ParentID, nil)
		is.Equal(parent.RootID, nil)
		is.Equal(*parent.ProjectID, proj.ID)
	})

	t.Run("child task", func(t *testing.T) {
		is := is.New(t)
		is.Equal(child.Level, 1)
		is.Equal(*child.ParentID, parent.ID)
		is.Equal(*child.RootID, parent.ID)
		is.Equal(*child.ProjectID, proj.ID) // inherited from the root
	})

	t.Run("grandchild task", func(t *testing.T) {
		is := is.New(t)
		is.Equal(grandchild.Level, 2)
		is.Equal(*grandchild.ParentID, child.ID)
		is.Equal(*grandchild.RootID, parent.ID)
		is.Equal(*grandchild.ProjectID, proj.ID)
	})

	t.Run("level 2 task cannot be a parent", func(t *testing.T) {
		is := is.New(t)
		_, err := f.tasks.CreateTask(f.ctx, "alice", TaskInput{Name: str("Too deep"), Parent: Some(grandchild.ID)})
		is.True(errors.Is(err, ErrStructural))
		var verr *ValidationError
		is.True(errors.As(err, &verr))
		is.Equal(verr.Field, "parent")

		tasks, err := f.tasks.GetTasks(f.ctx, "alice", store.TaskFilter{})
		is.NoErr(err)
		is.Equal(len(tasks), 3) // nothing written
	})

	t.Run("moving under a grandchild fails the same way", func(t *testing.T) {
		is := is.New(t)
		other := f.task(t, "alice", "Other", nil, nil)
		_, err := f.tasks.UpdateTask(f.ctx, "alice", other.ID, TaskInput{Parent: Some(grandchild.ID)})
		is.True(errors.Is(err, ErrStructural))
		is.Equal(f.reload(t, "alice", other).Level, 0)
	})
}

func TestTaskService_ProjectInheritance(t *testing.T) {
	f := newFixture()
	work := f.project(t, "alice", "Work")
	home := f.project(t, "alice", "Home")
	parent := f.task(t, "alice", "Parent", nil, work)

	t.Run("child project is overwritten by the root's", func(t *testing.T) {
		is := is.New(t)
		child := f.task(t, "alice", "Child", parent, home)
		is.Equal(*child.ProjectID, work.ID)

		got, err := f.tasks.UpdateTask(f.ctx, "alice", child.ID, TaskInput{Project: Some(home.ID)})
		is.NoErr(err)
		is.Equal(*got.ProjectID, work.ID)
	})

	t.Run("root project change reaches every descendant", func(t *testing.T) {
		is := is.New(t)
		child := f.task(t, "alice", "Child 2", parent, nil)
		grandchild := f.task(t, "alice", "Grandchild", child, nil)

		_, err := f.tasks.UpdateTask(f.ctx, "alice", parent.ID, TaskInput{Project: Some(home.ID)})
		is.NoErr(err)
		is.Equal(*f.reload(t, "alice", child).ProjectID, home.ID)
		is.Equal(*f.reload(t, "alice", grandchild).ProjectID, home.ID)

		_, err = f.tasks.UpdateTask(f.ctx, "alice", parent.ID, TaskInput{Project: Null[string]()})
		is.NoErr(err)
		is.Equal(f.reload(t, "alice", child).ProjectID, nil)
		is.Equal(f.reload(t, "alice", grandchild).ProjectID, nil)
	})
}

func TestTaskService_CrossOwner(t *testing.T) {
	f := newFixture()
	bobProject := f.project(t, "bob", "Bob's")
	bobTask := f.task(t, "bob", "Bob's task", nil, nil)
	bobTag, err := f.tags.CreateTag(f.ctx, "bob", TagInput{Name: str("urgent")})
	is.New(t).NoErr(err)

	t.Run("parent of another user", func(t *testing.T) {
		is := is.New(t)
		_, err := f.tasks.CreateTask(f.ctx, "alice", TaskInput{Name: str("x"), Parent: Some(bobTask.ID)})
		is.True(errors.Is(err, ErrStructural))
	})

	t.Run("project of another user", func(t *testing.T) {
		is := is.New(t)
		_, err := f.tasks.CreateTask(f.ctx, "alice", TaskInput{Name: str("x"), Project: Some(bobProject.ID)})
		is.True(errors.Is(err, ErrStructural))
	})

	t.Run("tag of another user", func(t *testing.T) {
		is := is.New(t)
		tags := []string{bobTag.ID}
		_, err := f.tasks.CreateTask(f.ctx, "alice", TaskInput{Name: str("x"), Tags: &tags})
		is.True(errors.Is(err, ErrStructural))
	})

	t.Run("rows of another user are not found", func(t *testing.T) {
		is := is.New(t)
		_, err := f.tasks.GetTaskByID(f.ctx, "alice", bobTask.ID)
		is.Equal(err, ErrNotFound)
		is.Equal(f.tasks.DeleteTask(f.ctx, "alice", bobTask.ID), ErrNotFound)
		is.Equal(f.reload(t, "bob", bobTask).Name, "Bob's task")
	})
}

func TestTaskService_Input(t *testing.T) {
	f := newFixture()

	t.Run("blank name", func(t *testing.T) {
		is := is.New(t)
		_, err := f.tasks.CreateTask(f.ctx, "alice", TaskInput{Name: str("   ")})
		is.True(errors.Is(err, ErrInput))
		_, err = f.tasks.CreateTask(f.ctx, "alice", TaskInput{})
		is.True(errors.Is(err, ErrInput))
	})

	t.Run("name is trimmed", func(t *testing.T) {
		is := is.New(t)
		task, err := f.tasks.CreateTask(f.ctx, "alice", TaskInput{Name: str("  write report ")})
		is.NoErr(err)
		is.Equal(task.Name, "write report")
	})

	t.Run("negative estimate", func(t *testing.T) {
		is := is.New(t)
		_, err := f.tasks.CreateTask(f.ctx, "alice", TaskInput{Name: str("x"), EstimateMinutes: Some(-1)})
		is.True(errors.Is(err, ErrInput))
	})

	t.Run("unknown parent", func(t *testing.T) {
		is := is.New(t)
		_, err := f.tasks.CreateTask(f.ctx, "alice", TaskInput{Name: str("x"), Parent: Some("missing")})
		is.True(errors.Is(err, ErrInput))
	})

	t.Run("failed update leaves the task untouched", func(t *testing.T) {
		is := is.New(t)
		task := f.task(t, "alice", "Keep me", nil, nil)
		tags := []string{"missing"}
		_, err := f.tasks.UpdateTask(f.ctx, "alice", task.ID, TaskInput{Name: str("Changed"), Tags: &tags})
		is.True(err != nil)
		is.Equal(f.reload(t, "alice", task).Name, "Keep me")
	})
}

func TestTaskService_Cycle(t *testing.T) {
	is := is.New(t)
	f := newFixture()
	root := f.task(t, "alice", "Root", nil, nil)
	child := f.task(t, "alice", "Child", root, nil)

	_, err := f.tasks.UpdateTask(f.ctx, "alice", root.ID, TaskInput{Parent: Some(child.ID)})
	is.True(errors.Is(err, ErrStructural))

	_, err = f.tasks.UpdateTask(f.ctx, "alice", root.ID, TaskInput{Parent: Some(root.ID)})
	is.True(errors.Is(err, ErrStructural))

	is.Equal(f.reload(t, "alice", root).Level, 0)
	is.Equal(*f.reload(t, "alice", child).ParentID, root.ID)
}

func TestTaskService_Move(t *testing.T) {
	f := newFixture()
	work := f.project(t, "alice", "Work")
	home := f.project(t, "alice", "Home")
	a := f.task(t, "alice", "A", nil, work)
	b := f.task(t, "alice", "B", nil, home)
	bChild := f.task(t, "alice", "B child", b, nil)
	f.logged(t, "alice", bChild, 10*time.Minute)

	t.Run("subtree that would exceed the depth limit", func(t *testing.T) {
		is := is.New(t)
		aChild := f.task(t, "alice", "A child", a, nil)
		_, err := f.tasks.UpdateTask(f.ctx, "alice", b.ID, TaskInput{Parent: Some(aChild.ID)})
		is.True(errors.Is(err, ErrStructural))
		is.Equal(f.reload(t, "alice", bChild).Level, 1)
	})

	t.Run("subtree moves with its root", func(t *testing.T) {
		is := is.New(t)
		moved, err := f.tasks.UpdateTask(f.ctx, "alice", b.ID, TaskInput{Parent: Some(a.ID)})
		is.NoErr(err)
		is.Equal(moved.Level, 1)
		is.Equal(*moved.RootID, a.ID)
		is.Equal(*moved.ProjectID, work.ID)

		got := f.reload(t, "alice", bChild)
		is.Equal(got.Level, 2)
		is.Equal(*got.RootID, a.ID)
		is.Equal(*got.ProjectID, work.ID)

		is.Equal(f.reload(t, "alice", a).DurationSeconds, int64(600))
	})

	t.Run("moving back out recomputes the old ancestor", func(t *testing.T) {
		is := is.New(t)
		moved, err := f.tasks.UpdateTask(f.ctx, "alice", b.ID, TaskInput{Parent: Null[string]()})
		is.NoErr(err)
		is.Equal(moved.Level, 0)
		is.Equal(moved.RootID, nil)
		is.Equal(f.reload(t, "alice", a).DurationSeconds, int64(0))

		got := f.reload(t, "alice", bChild)
		is.Equal(got.Level, 1)
		is.Equal(*got.RootID, b.ID)
		is.Equal(f.reload(t, "alice", b).DurationSeconds, int64(600))
	})
}

func TestTaskService_Delete(t *testing.T) {
	is := is.New(t)
	f := newFixture()
	proj := f.project(t, "alice", "Work")
	root := f.task(t, "alice", "Root", nil, proj)
	child := f.task(t, "alice", "Child", root, nil)
	grandchild := f.task(t, "alice", "Grandchild", child, nil)
	entry := f.logged(t, "alice", grandchild, time.Hour)

	t.Run("deleting a child recomputes the root", func(t *testing.T) {
		is := is.New(t)
		is.Equal(f.reload(t, "alice", root).DurationSeconds, int64(3600))
		other := f.task(t, "alice", "Other child", root, nil)
		f.logged(t, "alice", other, time.Minute)
		is.Equal(f.reload(t, "alice", root).DurationSeconds, int64(3660))

		is.NoErr(f.tasks.DeleteTask(f.ctx, "alice", other.ID))
		is.Equal(f.reload(t, "alice", root).DurationSeconds, int64(3600))
	})

	is.NoErr(f.tasks.DeleteTask(f.ctx, "alice", root.ID))
	for _, task := range []string{root.ID, child.ID, grandchild.ID} {
		_, err := f.tasks.GetTaskByID(f.ctx, "alice", task)
		is.Equal(err, ErrNotFound)
	}

	got, err := f.entries.GetTimeEntryByID(f.ctx, "alice", entry.ID)
	is.NoErr(err)
	is.Equal(got.TaskID, nil)
	is.Equal(got.Name, "Grandchild")
	is.Equal(*got.ProjectID, proj.ID)
}

func TestTaskService_List(t *testing.T) {
	f := newFixture()
	proj := f.project(t, "alice", "Work")
	urgent, err := f.tags.CreateTag(f.ctx, "alice", TagInput{Name: str("urgent")})
	is.New(t).NoErr(err)

	b := f.task(t, "alice", "b", nil, proj)
	f.advance(time.Minute)
	a := f.task(t, "alice", "a", b, nil)
	f.advance(time.Minute)
	tags := []string{urgent.ID}
	c, err := f.tasks.CreateTask(f.ctx, "alice", TaskInput{Name: str("c"), Tags: &tags})
	is.New(t).NoErr(err)
	f.task(t, "bob", "bob's", nil, nil)

	t.Run("default order is newest first", func(t *testing.T) {
		is := is.New(t)
		tasks, err := f.tasks.GetTasks(f.ctx, "alice", store.TaskFilter{})
		is.NoErr(err)
		is.Equal(len(tasks), 3)
		is.Equal(tasks[0].ID, c.ID)
		is.Equal(tasks[2].ID, b.ID)
	})

	t.Run("by name", func(t *testing.T) {
		is := is.New(t)
		tasks, err := f.tasks.GetTasks(f.ctx, "alice", store.TaskFilter{Ordering: store.OrderNameAsc})
		is.NoErr(err)
		is.Equal(tasks[0].Name, "a")
		is.Equal(tasks[2].Name, "c")
	})

	t.Run("by project", func(t *testing.T) {
		is := is.New(t)
		tasks, err := f.tasks.GetTasks(f.ctx, "alice", store.TaskFilter{ProjectID: &proj.ID})
		is.NoErr(err)
		is.Equal(len(tasks), 2)
	})

	t.Run("root tasks only", func(t *testing.T) {
		is := is.New(t)
		tasks, err := f.tasks.GetTasks(f.ctx, "alice", store.TaskFilter{NoParent: true})
		is.NoErr(err)
		is.Equal(len(tasks), 2)
	})

	t.Run("by parent", func(t *testing.T) {
		is := is.New(t)
		tasks, err := f.tasks.GetTasks(f.ctx, "alice", store.TaskFilter{ParentID: &b.ID})
		is.NoErr(err)
		is.Equal(len(tasks), 1)
		is.Equal(tasks[0].ID, a.ID)
	})

	t.Run("by tag", func(t *testing.T) {
		is := is.New(t)
		tasks, err := f.tasks.GetTasks(f.ctx, "alice", store.TaskFilter{TagIDs: []string{urgent.ID}})
		is.NoErr(err)
		is.Equal(len(tasks), 1)
		is.Equal(tasks[0].ID, c.ID)
	})
}
