package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository
// tests load it via GetSchemaSQL(), so a column referenced by repository
// code but missing here fails immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration to migrations.go
//  2. Update SchemaSQL here
//  3. Bump the expected version in migrations_test.go
const SchemaSQL = `
-- Category tree (max depth 5)
CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	icon TEXT,
	parent_id TEXT,
	level INTEGER NOT NULL CHECK(level BETWEEN 1 AND 5),
	path TEXT NOT NULL,
	display_order INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (parent_id) REFERENCES categories(id)
);

CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_id);
CREATE INDEX IF NOT EXISTS idx_categories_level ON categories(level, display_order);

-- Manuals; parent_id is the version-chain root (self for a fresh manual)
CREATE TABLE IF NOT EXISTS manuals (
	id TEXT PRIMARY KEY,
	parent_id TEXT,
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	flowchart_data TEXT NOT NULL DEFAULT '',
	version INTEGER NOT NULL DEFAULT 1,
	status TEXT NOT NULL CHECK(status IN ('draft', 'published', 'archived')) DEFAULT 'draft',
	is_favorite INTEGER NOT NULL DEFAULT 0,
	revision INTEGER NOT NULL DEFAULT 0,
	created_by TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_manuals_parent ON manuals(parent_id);
CREATE INDEX IF NOT EXISTS idx_manuals_updated ON manuals(updated_at DESC);

-- Category <-> manual links
CREATE TABLE IF NOT EXISTS category_manuals (
	category_id TEXT NOT NULL,
	manual_id TEXT NOT NULL,
	entry_point TEXT,
	display_order INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (category_id, manual_id),
	FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE,
	FOREIGN KEY (manual_id) REFERENCES manuals(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_category_manuals_manual ON category_manuals(manual_id);

-- Tags
CREATE TABLE IF NOT EXISTS tags (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	color TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS manual_tags (
	manual_id TEXT NOT NULL,
	tag_id TEXT NOT NULL,
	PRIMARY KEY (manual_id, tag_id),
	FOREIGN KEY (manual_id) REFERENCES manuals(id) ON DELETE CASCADE,
	FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
);

-- Images stored under <data root>/media
CREATE TABLE IF NOT EXISTS manual_images (
	id TEXT PRIMARY KEY,
	manual_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	original_name TEXT,
	file_path TEXT NOT NULL,
	file_size INTEGER NOT NULL DEFAULT 0,
	mime_type TEXT,
	alt_text TEXT,
	display_order INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (manual_id) REFERENCES manuals(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_manual_images_manual ON manual_images(manual_id, display_order);

-- Append-only pre-update snapshots
CREATE TABLE IF NOT EXISTS manual_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	manual_id TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	flowchart_data TEXT NOT NULL DEFAULT '',
	version INTEGER NOT NULL,
	changed_by TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (manual_id) REFERENCES manuals(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_manual_history_manual ON manual_history(manual_id, id);

-- Advisory edit locks; resource is "manual:<id>" or "category-tree"
CREATE TABLE IF NOT EXISTS edit_locks (
	resource TEXT PRIMARY KEY,
	holder TEXT NOT NULL,
	token TEXT NOT NULL UNIQUE,
	acquired_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Audit log
CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	actor TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete', 'force_release')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_type, entity_id);
`

// InitSchema creates the schema on a fresh database, or migrates an existing one.
func InitSchema(database *sql.DB) error {
	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	// Databases written by the desktop app carry the baseline tables
	// but no schema_version row.
	var legacyCount int
	err = database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('manuals', 'categories')").Scan(&legacyCount)
	if err != nil {
		return err
	}

	if err := createVersionTable(database); err != nil {
		return err
	}

	if legacyCount > 0 {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
			return fmt.Errorf("failed to mark baseline migration: %w", err)
		}
		return RunMigrations(database)
	}

	// Completely fresh install - create the current schema directly
	// and mark every migration as applied.
	if _, err := database.Exec(SchemaSQL); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
