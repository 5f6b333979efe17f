package neo4jstore

import (
	"strings"

	"tasktime/app/store"
)

const projectReturn = "RETURN p.id AS id, p.user_id AS user_id, p.name AS name, p.color AS color, " +
	"p.created_at AS created_at, p.updated_at AS updated_at"

const tagReturn = "RETURN g.id AS id, g.user_id AS user_id, g.name AS name, g.created_at AS created_at"

const taskReturn = "RETURN t.id AS id, t.user_id AS user_id, t.name AS name, t.description AS description, " +
	"t.project_id AS project_id, [(t)-[:HAS_PARENT]->(p:Task) | p.id][0] AS parent_id, " +
	"t.root_id AS root_id, t.level AS level, t.estimate_minutes AS estimate_minutes, " +
	"t.duration_seconds AS duration_seconds, [(t)-[:TAGGED]->(g:Tag) | g.id] AS tag_ids, " +
	"t.created_at AS created_at, t.updated_at AS updated_at"

const entryReturn = "RETURN e.id AS id, e.user_id AS user_id, e.name AS name, e.task_id AS task_id, " +
	"e.project_id AS project_id, e.start_time AS start_time, e.end_time AS end_time, " +
	"e.duration_seconds AS duration_seconds, e.created_at AS created_at"

var taskOrderings = map[string]string{
	store.OrderCreatedAsc:  "ORDER BY created_at, id",
	store.OrderCreatedDesc: "ORDER BY created_at DESC, id DESC",
	store.OrderNameAsc:     "ORDER BY name, id",
	store.OrderNameDesc:    "ORDER BY name DESC, id DESC",
}

// taskListQuery builds the Cypher and parameters for ListTasks.
func taskListQuery(userID string, f store.TaskFilter) (string, map[string]any) {
	params := map[string]any{"user": userID}
	var where []string
	if f.ProjectID != nil {
		where = append(where, "t.project_id = $project")
		params["project"] = *f.ProjectID
	}
	if f.NoProject {
		where = append(where, "t.project_id IS NULL")
	}
	if f.ParentID != nil {
		where = append(where, "EXISTS { (t)-[:HAS_PARENT]->(:Task {id: $parent}) }")
		params["parent"] = *f.ParentID
	}
	if f.NoParent {
		where = append(where, "NOT EXISTS { (t)-[:HAS_PARENT]->(:Task) }")
	}
	if f.RootID != nil {
		where = append(where, "t.root_id = $root")
		params["root"] = *f.RootID
	}
	if len(f.TagIDs) > 0 {
		where = append(where, "EXISTS { (t)-[:TAGGED]->(g:Tag) WHERE g.id IN $tags }")
		params["tags"] = f.TagIDs
	}

	var b strings.Builder
	b.WriteString("MATCH (t:Task {user_id: $user}) ")
	if len(where) > 0 {
		b.WriteString("WHERE ")
		b.WriteString(strings.Join(where, " AND "))
		b.WriteString(" ")
	}
	b.WriteString(taskReturn)
	b.WriteString(" ")
	order, ok := taskOrderings[f.Ordering]
	if !ok {
		order = taskOrderings[store.OrderCreatedDesc]
	}
	b.WriteString(order)
	return b.String(), params
}

// entryListQuery builds the Cypher and parameters for ListTimeEntries.
func entryListQuery(userID string, f store.EntryFilter) (string, map[string]any) {
	params := map[string]any{"user": userID}
	var where []string
	if len(f.TaskIDs) > 0 {
		where = append(where, "e.task_id IN $tasks")
		params["tasks"] = f.TaskIDs
	}
	if f.ProjectID != nil {
		where = append(where, "e.project_id = $project")
		params["project"] = *f.ProjectID
	}
	if f.Running != nil {
		if *f.Running {
			where = append(where, "e.end_time IS NULL")
		} else {
			where = append(where, "e.end_time IS NOT NULL")
		}
	}

	var b strings.Builder
	b.WriteString("MATCH (e:TimeEntry {user_id: $user}) ")
	if len(where) > 0 {
		b.WriteString("WHERE ")
		b.WriteString(strings.Join(where, " AND "))
		b.WriteString(" ")
	}
	b.WriteString(entryReturn)
	b.WriteString(" ORDER BY start_time DESC, id DESC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT $limit")
		params["limit"] = int64(f.Limit)
	}
	return b.String(), params
}
