package neo4jstore

import (
	"context"
	"time"

	"tasktime/app/models"
	"tasktime/app/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type txn struct {
	tx neo4j.ManagedTransaction
}

// exec runs a statement and consumes its result so write errors surface here.
func (t *txn) exec(ctx context.Context, cypher string, params map[string]any) error {
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return conflict(err)
	}
	_, err = res.Consume(ctx)
	return conflict(err)
}

func (t *txn) collect(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return res.Collect(ctx)
}

// one returns the single matching record or store.ErrNotFound.
func (t *txn) one(ctx context.Context, cypher string, params map[string]any) (*neo4j.Record, error) {
	recs, err := t.collect(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, store.ErrNotFound
	}
	return recs[0], nil
}

// touch runs a statement returning "count(x) AS n" and reports a miss as
// store.ErrNotFound.
func (t *txn) touch(ctx context.Context, cypher string, params map[string]any) error {
	rec, err := t.one(ctx, cypher, params)
	if err != nil {
		return conflict(err)
	}
	if integer(rec, "n") == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *txn) GetProject(ctx context.Context, id string) (*models.Project, error) {
	rec, err := t.one(ctx, "MATCH (p:Project {id: $id}) "+projectReturn, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	p := projectFromRecord(rec)
	return &p, nil
}

func (t *txn) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	recs, err := t.collect(ctx,
		"MATCH (p:Project {user_id: $user}) "+projectReturn+" ORDER BY name, created_at",
		map[string]any{"user": userID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]models.Project, 0, len(recs))
	for _, rec := range recs {
		out = append(out, projectFromRecord(rec))
	}
	return out, nil
}

func (t *txn) CreateProject(ctx context.Context, p *models.Project) error {
	return t.exec(ctx,
		"CREATE (p:Project {id: $id, user_id: $user, name: $name, color: $color, "+
			"created_at: $created, updated_at: $updated})",
		map[string]any{
			"id":      p.ID,
			"user":    p.UserID,
			"name":    p.Name,
			"color":   p.Color,
			"created": p.CreatedAt,
			"updated": p.UpdatedAt,
		},
	)
}

func (t *txn) UpdateProject(ctx context.Context, p *models.Project) error {
	return t.touch(ctx,
		"MATCH (p:Project {id: $id}) SET p.name = $name, p.color = $color, p.updated_at = $updated "+
			"RETURN count(p) AS n",
		map[string]any{"id": p.ID, "name": p.Name, "color": p.Color, "updated": p.UpdatedAt},
	)
}

func (t *txn) DeleteProject(ctx context.Context, id string) error {
	params := map[string]any{"id": id}
	if err := t.touch(ctx, "MATCH (p:Project {id: $id}) RETURN count(p) AS n", params); err != nil {
		return err
	}
	if err := t.exec(ctx, "MATCH (n:Task {project_id: $id}) SET n.project_id = null", params); err != nil {
		return err
	}
	if err := t.exec(ctx, "MATCH (n:TimeEntry {project_id: $id}) SET n.project_id = null", params); err != nil {
		return err
	}
	return t.exec(ctx, "MATCH (p:Project {id: $id}) DETACH DELETE p", params)
}

func (t *txn) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	rec, err := t.one(ctx, "MATCH (g:Tag {id: $id}) "+tagReturn, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	tag := tagFromRecord(rec)
	return &tag, nil
}

func (t *txn) FindTag(ctx context.Context, userID, name string) (*models.Tag, error) {
	rec, err := t.one(ctx,
		"MATCH (g:Tag {user_id: $user, name: $name}) "+tagReturn,
		map[string]any{"user": userID, "name": name},
	)
	if err != nil {
		return nil, err
	}
	tag := tagFromRecord(rec)
	return &tag, nil
}

func (t *txn) ListTags(ctx context.Context, userID string) ([]models.Tag, error) {
	recs, err := t.collect(ctx,
		"MATCH (g:Tag {user_id: $user}) "+tagReturn+" ORDER BY name",
		map[string]any{"user": userID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]models.Tag, 0, len(recs))
	for _, rec := range recs {
		out = append(out, tagFromRecord(rec))
	}
	return out, nil
}

func (t *txn) CreateTag(ctx context.Context, tag *models.Tag) error {
	return t.exec(ctx,
		"CREATE (g:Tag {id: $id, user_id: $user, name: $name, created_at: $created})",
		map[string]any{"id": tag.ID, "user": tag.UserID, "name": tag.Name, "created": tag.CreatedAt},
	)
}

func (t *txn) UpdateTag(ctx context.Context, tag *models.Tag) error {
	return t.touch(ctx,
		"MATCH (g:Tag {id: $id}) SET g.name = $name RETURN count(g) AS n",
		map[string]any{"id": tag.ID, "name": tag.Name},
	)
}

func (t *txn) DeleteTag(ctx context.Context, id string) error {
	params := map[string]any{"id": id}
	if err := t.touch(ctx, "MATCH (g:Tag {id: $id}) RETURN count(g) AS n", params); err != nil {
		return err
	}
	return t.exec(ctx, "MATCH (g:Tag {id: $id}) DETACH DELETE g", params)
}

func (t *txn) GetTask(ctx context.Context, id string) (*models.Task, error) {
	rec, err := t.one(ctx, "MATCH (t:Task {id: $id}) "+taskReturn, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	task := taskFromRecord(rec)
	return &task, nil
}

func (t *txn) ListTasks(ctx context.Context, userID string, f store.TaskFilter) ([]models.Task, error) {
	cypher, params := taskListQuery(userID, f)
	recs, err := t.collect(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(recs))
	for _, rec := range recs {
		out = append(out, taskFromRecord(rec))
	}
	return out, nil
}

func taskParams(task *models.Task) map[string]any {
	return map[string]any{
		"id":          task.ID,
		"user":        task.UserID,
		"name":        task.Name,
		"description": task.Description,
		"project":     nullable(task.ProjectID),
		"root":        nullable(task.RootID),
		"level":       int64(task.Level),
		"estimate":    optIntParam(task.EstimateMinutes),
		"duration":    task.DurationSeconds,
		"created":     task.CreatedAt,
		"updated":     task.UpdatedAt,
	}
}

func (t *txn) CreateTask(ctx context.Context, task *models.Task) error {
	err := t.exec(ctx,
		"CREATE (t:Task {id: $id, user_id: $user, name: $name, description: $description, "+
			"project_id: $project, root_id: $root, level: $level, estimate_minutes: $estimate, "+
			"duration_seconds: $duration, created_at: $created, updated_at: $updated})",
		taskParams(task),
	)
	if err != nil {
		return err
	}
	if err := t.linkParent(ctx, task); err != nil {
		return err
	}
	return t.linkTags(ctx, task)
}

func (t *txn) UpdateTask(ctx context.Context, task *models.Task) error {
	err := t.touch(ctx,
		"MATCH (t:Task {id: $id}) SET t.name = $name, t.description = $description, "+
			"t.project_id = $project, t.root_id = $root, t.level = $level, "+
			"t.estimate_minutes = $estimate, t.duration_seconds = $duration, t.updated_at = $updated "+
			"RETURN count(t) AS n",
		taskParams(task),
	)
	if err != nil {
		return err
	}
	if err := t.linkParent(ctx, task); err != nil {
		return err
	}
	return t.linkTags(ctx, task)
}

// linkParent replaces the HAS_PARENT relationship of the task.
func (t *txn) linkParent(ctx context.Context, task *models.Task) error {
	err := t.exec(ctx,
		"MATCH (t:Task {id: $id})-[r:HAS_PARENT]->() DELETE r",
		map[string]any{"id": task.ID},
	)
	if err != nil || task.ParentID == nil {
		return err
	}
	return t.exec(ctx,
		"MATCH (child:Task {id: $childID}), (parent:Task {id: $parentID}) "+
			"CREATE (child)-[:HAS_PARENT]->(parent)",
		map[string]any{"childID": task.ID, "parentID": *task.ParentID},
	)
}

// linkTags replaces the TAGGED relationships of the task.
func (t *txn) linkTags(ctx context.Context, task *models.Task) error {
	err := t.exec(ctx,
		"MATCH (t:Task {id: $id})-[r:TAGGED]->() DELETE r",
		map[string]any{"id": task.ID},
	)
	if err != nil || len(task.TagIDs) == 0 {
		return err
	}
	return t.exec(ctx,
		"MATCH (t:Task {id: $id}) UNWIND $tags AS tag_id "+
			"MATCH (g:Tag {id: tag_id}) MERGE (t)-[:TAGGED]->(g)",
		map[string]any{"id": task.ID, "tags": task.TagIDs},
	)
}

func (t *txn) SetTaskProject(ctx context.Context, id string, projectID *string, at time.Time) error {
	return t.touch(ctx,
		"MATCH (t:Task {id: $id}) SET t.project_id = $project, t.updated_at = $at RETURN count(t) AS n",
		map[string]any{"id": id, "project": nullable(projectID), "at": at},
	)
}

func (t *txn) SetTaskDuration(ctx context.Context, id string, seconds int64, at time.Time) error {
	return t.touch(ctx,
		"MATCH (t:Task {id: $id}) SET t.duration_seconds = $seconds, t.updated_at = $at RETURN count(t) AS n",
		map[string]any{"id": id, "seconds": seconds, "at": at},
	)
}

func (t *txn) SetTaskTree(ctx context.Context, id string, level int, rootID, projectID *string, at time.Time) error {
	return t.touch(ctx,
		"MATCH (t:Task {id: $id}) SET t.level = $level, t.root_id = $root, t.project_id = $project, "+
			"t.updated_at = $at RETURN count(t) AS n",
		map[string]any{
			"id":      id,
			"level":   int64(level),
			"root":    nullable(rootID),
			"project": nullable(projectID),
			"at":      at,
		},
	)
}

func (t *txn) DeleteTasks(ctx context.Context, ids []string) error {
	params := map[string]any{"ids": ids}
	if err := t.exec(ctx, "MATCH (e:TimeEntry) WHERE e.task_id IN $ids SET e.task_id = null", params); err != nil {
		return err
	}
	return t.exec(ctx, "MATCH (t:Task) WHERE t.id IN $ids DETACH DELETE t", params)
}

func (t *txn) GetTimeEntry(ctx context.Context, id string) (*models.TimeEntry, error) {
	rec, err := t.one(ctx, "MATCH (e:TimeEntry {id: $id}) "+entryReturn, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	e := entryFromRecord(rec)
	return &e, nil
}

func (t *txn) ListTimeEntries(ctx context.Context, userID string, f store.EntryFilter) ([]models.TimeEntry, error) {
	cypher, params := entryListQuery(userID, f)
	recs, err := t.collect(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]models.TimeEntry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, entryFromRecord(rec))
	}
	return out, nil
}

func entryParams(e *models.TimeEntry) map[string]any {
	return map[string]any{
		"id":       e.ID,
		"user":     e.UserID,
		"name":     e.Name,
		"task":     nullable(e.TaskID),
		"project":  nullable(e.ProjectID),
		"start":    e.StartTime,
		"end":      nullable(e.EndTime),
		"duration": nullable(e.DurationSeconds),
		"created":  e.CreatedAt,
	}
}

func (t *txn) CreateTimeEntry(ctx context.Context, e *models.TimeEntry) error {
	return t.exec(ctx,
		"CREATE (e:TimeEntry {id: $id, user_id: $user, name: $name, task_id: $task, project_id: $project, "+
			"start_time: $start, end_time: $end, duration_seconds: $duration, created_at: $created})",
		entryParams(e),
	)
}

func (t *txn) UpdateTimeEntry(ctx context.Context, e *models.TimeEntry) error {
	return t.touch(ctx,
		"MATCH (e:TimeEntry {id: $id}) SET e.name = $name, e.task_id = $task, e.project_id = $project, "+
			"e.start_time = $start, e.end_time = $end, e.duration_seconds = $duration "+
			"RETURN count(e) AS n",
		entryParams(e),
	)
}

func (t *txn) DeleteTimeEntry(ctx context.Context, id string) error {
	params := map[string]any{"id": id}
	if err := t.touch(ctx, "MATCH (e:TimeEntry {id: $id}) RETURN count(e) AS n", params); err != nil {
		return err
	}
	return t.exec(ctx, "MATCH (e:TimeEntry {id: $id}) DELETE e", params)
}

func (t *txn) SumCompletedDurations(ctx context.Context, taskIDs []string) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	rec, err := t.one(ctx,
		"MATCH (e:TimeEntry) WHERE e.task_id IN $ids AND e.end_time IS NOT NULL "+
			"RETURN coalesce(sum(e.duration_seconds), 0) AS total",
		map[string]any{"ids": taskIDs},
	)
	if err != nil {
		return 0, err
	}
	return integer(rec, "total"), nil
}
