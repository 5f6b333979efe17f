// Package sqlstore keeps tasks in a relational database through gorm.
// Subtrees are found through the root_id and parent_id columns.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"tasktime/app/store"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Store wraps a gorm handle.
type Store struct {
	db *gorm.DB
}

var _ store.Store = &Store{}

// Open connects to the database named by dialect and dsn.
func Open(dialect, dsn string) (*Store, error) {
	var d gorm.Dialector
	switch dialect {
	case DialectPostgres:
		d = postgres.Open(dsn)
	case DialectSQLite:
		d = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("sqlstore: unknown dialect %q", dialect)
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger:         gormLogger(log.New(os.Stderr, "", log.LstdFlags)),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// gormLogger reports slow queries and failures. Lookup misses are an
// ordinary outcome and stay quiet.
func gormLogger(out logger.Writer) logger.Interface {
	return logger.New(out, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// New wraps an open gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&projectRow{},
		&tagRow{},
		&taskRow{},
		&taskTagRow{},
		&entryRow{},
	)
}

func (s *Store) Read(ctx context.Context, fn func(store.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txn{db: tx})
	})
}

func (s *Store) Write(ctx context.Context, fn func(store.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txn{db: tx})
	})
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// conflict maps a unique-key violation reported by the driver to
// store.ErrConflict. Only errors from gorm calls pass through here.
func conflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrConflict
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

// affected reports a write that matched no row as store.ErrNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return conflict(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
