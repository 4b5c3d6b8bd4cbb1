package db

import (
	"database/sql"
	"fmt"
	"os"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_baseline_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_revision_to_manuals",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "replace_manual_locks_with_edit_locks",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "add_original_name_to_manual_images",
		Up:      migrationV4,
	},
	{
		Version: 5,
		Name:    "create_audit_log",
		Up:      migrationV5,
	},
}

// LatestVersion returns the version reached after all migrations.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

func createVersionTable(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations applies every pending migration, each in its own transaction.
func RunMigrations(database *sql.DB) error {
	if err := createVersionTable(database); err != nil {
		return err
	}

	// Get current schema version
	var currentVersion int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Fprintf(os.Stderr, "Running migration %d: %s\n", migration.Version, migration.Name)

		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the tables shipped with the first desktop release.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
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

		CREATE TABLE IF NOT EXISTS manuals (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			flowchart_data TEXT NOT NULL DEFAULT '',
			version INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL CHECK(status IN ('draft', 'published', 'archived')) DEFAULT 'draft',
			is_favorite INTEGER NOT NULL DEFAULT 0,
			created_by TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

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

		CREATE TABLE IF NOT EXISTS manual_images (
			id TEXT PRIMARY KEY,
			manual_id TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_size INTEGER NOT NULL DEFAULT 0,
			mime_type TEXT,
			alt_text TEXT,
			display_order INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (manual_id) REFERENCES manuals(id) ON DELETE CASCADE
		);

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

		CREATE TABLE IF NOT EXISTS manual_locks (
			manual_id TEXT PRIMARY KEY,
			locked_by TEXT NOT NULL,
			locked_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_id);
		CREATE INDEX IF NOT EXISTS idx_categories_level ON categories(level, display_order);
		CREATE INDEX IF NOT EXISTS idx_manuals_parent ON manuals(parent_id);
		CREATE INDEX IF NOT EXISTS idx_manuals_updated ON manuals(updated_at DESC);
		CREATE INDEX IF NOT EXISTS idx_category_manuals_manual ON category_manuals(manual_id);
		CREATE INDEX IF NOT EXISTS idx_manual_images_manual ON manual_images(manual_id, display_order);
		CREATE INDEX IF NOT EXISTS idx_manual_history_manual ON manual_history(manual_id, id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create baseline tables: %w", err)
	}
	return nil
}

// migrationV2 adds the per-row update counter used for conditional updates.
func migrationV2(tx *sql.Tx) error {
	if _, err := tx.Exec("ALTER TABLE manuals ADD COLUMN revision INTEGER NOT NULL DEFAULT 0"); err != nil {
		return fmt.Errorf("failed to add revision column: %w", err)
	}
	return nil
}

// migrationV3 moves manual_locks into token-based edit_locks.
// Existing locks keep their holder and receive a random token.
func migrationV3(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE edit_locks (
			resource TEXT PRIMARY KEY,
			holder TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			acquired_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create edit_locks: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO edit_locks (resource, holder, token, acquired_at)
		SELECT 'manual:' || manual_id, locked_by, lower(hex(randomblob(16))), locked_at
		FROM manual_locks
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate manual locks: %w", err)
	}

	if _, err := tx.Exec("DROP TABLE manual_locks"); err != nil {
		return fmt.Errorf("failed to drop manual_locks: %w", err)
	}
	return nil
}

// migrationV4 keeps the uploaded file name alongside the generated one.
func migrationV4(tx *sql.Tx) error {
	if _, err := tx.Exec("ALTER TABLE manual_images ADD COLUMN original_name TEXT"); err != nil {
		return fmt.Errorf("failed to add original_name column: %w", err)
	}
	return nil
}

// migrationV5 creates the audit log.
func migrationV5(tx *sql.Tx) error {
	_, err := tx.Exec(`
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
	`)
	if err != nil {
		return fmt.Errorf("failed to create audit_log: %w", err)
	}
	return nil
}
