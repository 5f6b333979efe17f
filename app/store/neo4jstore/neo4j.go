// Package neo4jstore keeps tasks in Neo4j. Parent links are HAS_PARENT
// relationships and tags are TAGGED relationships; everything else is a
// node property.
package neo4jstore

import (
	"context"
	"errors"

	"tasktime/app/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const constraintFailed = "Neo.ClientError.Schema.ConstraintValidationFailed"

// Store runs every unit of work in a managed transaction of its own session.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ store.Store = &Store{}

// New wraps a driver. An empty database selects the server default.
func New(driver neo4j.DriverWithContext, database string) *Store {
	return &Store{driver: driver, database: database}
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

func (s *Store) Read(ctx context.Context, fn func(store.Tx) error) error {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(&txn{tx: tx})
	})
	return err
}

func (s *Store) Write(ctx context.Context, fn func(store.Tx) error) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(&txn{tx: tx})
	})
	return conflict(err)
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

var schema = []string{
	"CREATE CONSTRAINT project_id IF NOT EXISTS FOR (p:Project) REQUIRE p.id IS UNIQUE",
	"CREATE CONSTRAINT tag_id IF NOT EXISTS FOR (g:Tag) REQUIRE g.id IS UNIQUE",
	"CREATE CONSTRAINT tag_user_name IF NOT EXISTS FOR (g:Tag) REQUIRE (g.user_id, g.name) IS UNIQUE",
	"CREATE CONSTRAINT task_id IF NOT EXISTS FOR (t:Task) REQUIRE t.id IS UNIQUE",
	"CREATE CONSTRAINT time_entry_id IF NOT EXISTS FOR (e:TimeEntry) REQUIRE e.id IS UNIQUE",
	"CREATE INDEX task_user_created IF NOT EXISTS FOR (t:Task) ON (t.user_id, t.created_at)",
	"CREATE INDEX task_root IF NOT EXISTS FOR (t:Task) ON (t.root_id)",
	"CREATE INDEX task_project IF NOT EXISTS FOR (t:Task) ON (t.project_id)",
	"CREATE INDEX time_entry_task IF NOT EXISTS FOR (e:TimeEntry) ON (e.task_id)",
	"CREATE INDEX time_entry_user_start IF NOT EXISTS FOR (e:TimeEntry) ON (e.user_id, e.start_time)",
}

// EnsureSchema creates the constraints and indexes the queries rely on.
// Schema statements cannot share a transaction with data writes, so each
// runs on its own.
func (s *Store) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, stmt := range schema {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, stmt, nil)
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// conflict maps a uniqueness constraint failure to store.ErrConflict.
func conflict(err error) error {
	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) && nerr.Code == constraintFailed {
		return store.ErrConflict
	}
	return err
}
