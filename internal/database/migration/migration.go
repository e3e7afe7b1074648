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
		Name: "create_table_folders",
		SQL: `CREATE TABLE IF NOT EXISTS folders (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name       TEXT        NOT NULL,
  color      TEXT        NOT NULL DEFAULT '',
  created_by TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_assets",
		SQL: `CREATE TABLE IF NOT EXISTS assets (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title        TEXT        NOT NULL,
  file_name    TEXT        NOT NULL,
  size_bytes   BIGINT      NOT NULL CHECK (size_bytes >= 0),
  content_type TEXT        NOT NULL,
  kind         TEXT        NOT NULL DEFAULT '',
  storage_key  TEXT        NOT NULL UNIQUE,
  folder_id    UUID        REFERENCES folders (id) ON DELETE SET NULL,
  owner_id     TEXT        NOT NULL,
  duration     DOUBLE PRECISION,
  sample_rate  INTEGER,
  bpm          INTEGER,
  key          TEXT,
  genre        TEXT,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_assets_owner",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_assets_owner_id ON assets (owner_id);`,
	},
	{
		Name: "create_index_assets_folder",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_assets_folder_id ON assets (folder_id);`,
	},
	{
		Name: "create_index_assets_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_assets_created_at ON assets (created_at);`,
	},
	{
		Name: "create_index_folders_created_by",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_folders_created_by ON folders (created_by);`,
	},
}

// EnsureMigrated checks whether the vault schema exists and applies the
// migration steps when it does not. Folder membership is intentionally not
// stored on folders: assets.folder_id is the single source of truth.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *zap.SugaredLogger) error {
	start := time.Now()

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.assets') IS NOT NULL").Scan(&exists); err != nil {
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}
	if exists {
		logger.Debugw("schema already exists, skipping migration")
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logger.Errorw("migration step failed",
				"migration_step", step.Name,
				"error", err,
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		logger.Debugw("migration step applied",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	logger.Infow("schema migrated",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
