package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/tursodatabase/go-libsql"
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// Open connects to the libSQL database at path. File databases use WAL and
// a 5 s busy timeout; an in-memory database is pinned to one connection so
// every query sees the same data. Foreign keys are always enforced.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{"PRAGMA foreign_keys=ON"}
	if path == Memory {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000")
	}

	// Some PRAGMAs return a row and libSQL refuses those in Exec, so all of
	// them go through Query.
	for _, p := range pragmas {
		rows, err := db.QueryContext(ctx, p)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %s: %w", p, err)
		}
		rows.Close()
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}
