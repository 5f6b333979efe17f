package config

import (
	"context"
	"fmt"

	"tasktime/app/store"
	"tasktime/app/store/memory"
	"tasktime/app/store/neo4jstore"
	"tasktime/app/store/sqlstore"
)

// OpenStore connects the configured backend and prepares its schema.
func OpenStore(ctx context.Context, cfg *Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case DriverMemory:
		return memory.New(), nil

	case DriverNeo4j:
		driver, err := InitNeo4j(cfg.Neo4j)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Neo4j connection: %w", err)
		}
		if err := driver.VerifyConnectivity(ctx); err != nil {
			driver.Close(ctx)
			return nil, fmt.Errorf("neo4j unreachable at %s: %w", cfg.Neo4j.URI, err)
		}
		st := neo4jstore.New(driver, cfg.Neo4j.Database)
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close(ctx)
			return nil, fmt.Errorf("neo4j schema: %w", err)
		}
		return st, nil

	case DriverSQL:
		st, err := sqlstore.Open(cfg.SQL.Dialect, cfg.SQL.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s database: %w", cfg.SQL.Dialect, err)
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close(ctx)
			return nil, fmt.Errorf("sql migrate: %w", err)
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
