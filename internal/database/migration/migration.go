package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"datasync/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

// The schema is portable between PostgreSQL and SQLite.
var steps = []migrationStep{
	{
		Name: "create_table_entities",
		SQL: `CREATE TABLE IF NOT EXISTS entities (
  collection TEXT      NOT NULL,
  id         TEXT      NOT NULL,
  payload    TEXT      NOT NULL,
  updated_at TIMESTAMP NOT NULL,
  PRIMARY KEY (collection, id)
);`,
	},
	{
		Name: "create_index_entities_updated_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_entities_updated_at ON entities (collection, updated_at);`,
	},
}

var sentinelQueries = map[string]string{
	"postgres": "SELECT to_regclass('public.entities') IS NOT NULL",
	"sqlite":   "SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = 'entities'",
}

// EnsureMigrated checks if the 'entities' table exists and runs migrations if it doesn't.
// dialect is "postgres" or "sqlite".
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logging.Logger, dialect string) error {
	start := time.Now()

	sentinel, ok := sentinelQueries[dialect]
	if !ok {
		return fmt.Errorf("unsupported migration dialect %q", dialect)
	}

	log.Log(map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"dialect":   dialect,
	})

	var exists bool
	if err := db.QueryRowContext(ctx, sentinel).Scan(&exists); err != nil {
		log.Log(map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"dialect":       dialect,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Log(map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"dialect":     dialect,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Log(map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"dialect":          dialect,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Log(map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"dialect":          dialect,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	log.Log(map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"dialect":     dialect,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}
