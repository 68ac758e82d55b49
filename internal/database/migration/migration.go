package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  username      TEXT        NOT NULL UNIQUE,
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_items",
		SQL: `CREATE TABLE IF NOT EXISTS items (
  id                  UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  owner_id            UUID          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  name                TEXT          NOT NULL,
  description         TEXT          NOT NULL DEFAULT '',
  category            TEXT          NOT NULL DEFAULT '',
  quantity            INTEGER       NOT NULL CHECK (quantity >= 0),
  price               NUMERIC(12,2) NOT NULL CHECK (price >= 0),
  low_stock_threshold INTEGER       NOT NULL DEFAULT 5,
  created_at          TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_items_owner_name",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_items_owner_name ON items (owner_id, lower(name));`,
	},
	{
		Name: "create_index_items_owner_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_items_owner_category ON items (owner_id, lower(category));`,
	},
	{
		Name: "create_table_sessions",
		SQL: `CREATE TABLE IF NOT EXISTS sessions (
  token      TEXT        PRIMARY KEY,
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  expires_at TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_index_sessions_expires_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at);`,
	},
	{
		Name: "create_table_alert_settings",
		SQL: `CREATE TABLE IF NOT EXISTS alert_settings (
  user_id      UUID        PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
  enabled      BOOLEAN     NOT NULL DEFAULT false,
  phone_number TEXT        NOT NULL DEFAULT '',
  low_stock    BOOLEAN     NOT NULL DEFAULT true,
  out_of_stock BOOLEAN     NOT NULL DEFAULT true,
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// sentinelTable is created by the last step; its presence means the schema is complete.
const sentinelTable = "public.alert_settings"

// EnsureMigrated checks if the sentinel table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))
	start := time.Now()

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
