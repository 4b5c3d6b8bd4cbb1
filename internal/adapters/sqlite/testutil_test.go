// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/guidebook/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// A single connection is kept so every statement sees the same database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on&_txlock=immediate")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedCategory inserts a category and returns its ID.
func seedCategory(t *testing.T, db *sql.DB, id, parentID, name string, level int, path string) string {
	t.Helper()
	var parent any
	if parentID != "" {
		parent = parentID
	}
	_, err := db.Exec(
		"INSERT INTO categories (id, name, parent_id, level, path, created_at, updated_at) VALUES (?, ?, ?, ?, ?, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')",
		id, name, parent, level, path,
	)
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return id
}

// seedManual inserts a version-1 manual that is its own chain root.
func seedManual(t *testing.T, db *sql.DB, id, title string) string {
	t.Helper()
	if title == "" {
		title = "Test Manual"
	}
	_, err := db.Exec(
		"INSERT INTO manuals (id, parent_id, title, content, created_at, updated_at) VALUES (?, ?, ?, '', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')",
		id, id, title,
	)
	if err != nil {
		t.Fatalf("failed to seed manual: %v", err)
	}
	return id
}

// setUpdatedAt pins a manual's updated_at so ordering tests are deterministic.
func setUpdatedAt(t *testing.T, db *sql.DB, id, ts string) {
	t.Helper()
	if _, err := db.Exec("UPDATE manuals SET updated_at = ? WHERE id = ?", ts, id); err != nil {
		t.Fatalf("failed to set updated_at: %v", err)
	}
}

// seedLink links a manual to a category.
func seedLink(t *testing.T, db *sql.DB, categoryID, manualID, entryPoint string, order int) {
	t.Helper()
	var entry any
	if entryPoint != "" {
		entry = entryPoint
	}
	_, err := db.Exec(
		"INSERT INTO category_manuals (category_id, manual_id, entry_point, display_order) VALUES (?, ?, ?, ?)",
		categoryID, manualID, entry, order,
	)
	if err != nil {
		t.Fatalf("failed to seed link: %v", err)
	}
}

// countRows returns the number of rows in table matching where.
func countRows(t *testing.T, db *sql.DB, table, where string, args ...any) int {
	t.Helper()
	var n int
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// mustExec runs a fixture statement.
func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("fixture failed: %v\n%s", err, query)
	}
}
