package db

import (
	"database/sql"
	"fmt"
)

// Migrate creates the schema. Every statement is idempotent, so it runs on
// each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		short_id    TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL,
		client      TEXT NOT NULL DEFAULT '',
		location    TEXT NOT NULL DEFAULT '',
		start_date  TEXT NOT NULL,
		target_date TEXT,
		status      TEXT NOT NULL DEFAULT 'active'
		            CHECK(status IN ('active','on_hold','completed','archived')),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_short_id ON projects(short_id) WHERE short_id != ''`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id               TEXT PRIMARY KEY,
		project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		parent_id        TEXT REFERENCES tasks(id) ON DELETE CASCADE,
		wbs_code         TEXT NOT NULL DEFAULT '',
		name             TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		kind             TEXT NOT NULL DEFAULT 'task'
		                 CHECK(kind IN ('task','phase','milestone')),
		planned_start    TEXT,
		planned_end      TEXT,
		percent_complete INTEGER NOT NULL DEFAULT 0
		                 CHECK(percent_complete BETWEEN 0 AND 100),
		order_index      INTEGER NOT NULL DEFAULT 0,
		level            INTEGER NOT NULL DEFAULT 0 CHECK(level >= 0),
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL,
		CHECK(parent_id IS NULL OR parent_id != id),
		CHECK(planned_start IS NULL OR planned_end IS NULL OR planned_end >= planned_start)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id)`,

	`CREATE TABLE IF NOT EXISTS dependencies (
		id             TEXT PRIMARY KEY,
		project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		predecessor_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		successor_id   TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		type           TEXT NOT NULL DEFAULT 'FS'
		               CHECK(type IN ('FS','SS','FF','SF')),
		lag_days       INTEGER NOT NULL DEFAULT 0,
		created_at     TEXT NOT NULL,
		CHECK(predecessor_id != successor_id),
		UNIQUE(predecessor_id, successor_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_dependencies_project ON dependencies(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dependencies_successor ON dependencies(successor_id)`,
}
