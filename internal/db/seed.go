package db

import (
	"database/sql"
	"fmt"
	"time"
)

// sampleFlow is a three-step reception guide with one branch.
const sampleFlow = `{"nodes":[` +
	`{"id":"start","type":"input","data":{"label":"来客対応開始"},"position":{"x":50,"y":50}},` +
	`{"id":"check","data":{"label":"予約の有無を確認","comment":"受付表で氏名を検索する"},"position":{"x":260,"y":50}},` +
	`{"id":"guide","data":{"label":"会議室へ案内"},"position":{"x":470,"y":0}},` +
	`{"id":"wait","type":"output","data":{"label":"待合スペースへ案内"},"position":{"x":470,"y":100}}` +
	`],"edges":[` +
	`{"id":"e1","source":"start","target":"check"},` +
	`{"id":"e2","source":"check","target":"guide","label":"予約あり"},` +
	`{"id":"e3","source":"check","target":"wait","label":"予約なし"}` +
	`]}`

// SeedFixtures populates the database with a small sample library.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)

	categories := []struct {
		id, name, parentID, path string
		level, order             int
	}{
		{"CAT-001", "受付", "", "受付", 1, 0},
		{"CAT-002", "受付サブ", "CAT-001", "受付/受付サブ", 2, 0},
		{"CAT-003", "経理", "", "経理", 1, 1},
	}
	for _, c := range categories {
		var parent sql.NullString
		if c.parentID != "" {
			parent = sql.NullString{String: c.parentID, Valid: true}
		}
		if _, err := database.Exec(
			"INSERT INTO categories (id, name, parent_id, level, path, display_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			c.id, c.name, parent, c.level, c.path, c.order, now, now,
		); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}

	manuals := []struct{ id, title, content, flow string }{
		{"MAN-001", "来客対応", "来客時の基本的な流れ", sampleFlow},
		{"MAN-002", "経費精算", "月末締めの経費精算手順", ""},
	}
	for _, m := range manuals {
		if _, err := database.Exec(
			"INSERT INTO manuals (id, parent_id, title, content, flowchart_data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			m.id, m.id, m.title, m.content, m.flow, now, now,
		); err != nil {
			return fmt.Errorf("seed manuals: %w", err)
		}
	}

	links := []struct{ categoryID, manualID, entry string }{
		{"CAT-001", "MAN-001", ""},
		{"CAT-002", "MAN-001", "check"},
		{"CAT-003", "MAN-002", ""},
	}
	for i, l := range links {
		var entry sql.NullString
		if l.entry != "" {
			entry = sql.NullString{String: l.entry, Valid: true}
		}
		if _, err := database.Exec(
			"INSERT INTO category_manuals (category_id, manual_id, entry_point, display_order, created_at) VALUES (?, ?, ?, ?, ?)",
			l.categoryID, l.manualID, entry, i, now,
		); err != nil {
			return fmt.Errorf("seed links: %w", err)
		}
	}

	if _, err := database.Exec(
		"INSERT INTO tags (id, name, color, created_at) VALUES ('TAG-001', '新人向け', '#4caf50', ?)", now,
	); err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	if _, err := database.Exec("INSERT INTO manual_tags (manual_id, tag_id) VALUES ('MAN-001', 'TAG-001')"); err != nil {
		return fmt.Errorf("seed manual tags: %w", err)
	}

	return nil
}
