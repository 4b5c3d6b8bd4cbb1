package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/secondary"
)

// LinkRepository implements secondary.LinkRepository with SQLite.
type LinkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new SQLite category/manual link repository.
func NewLinkRepository(db *sql.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// upsertLink appends a new link to the end of the category, or updates the entry
// point of an existing one in place.
func upsertLink(ctx context.Context, e execer, link *secondary.LinkRecord) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO category_manuals (category_id, manual_id, entry_point, display_order, created_at)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(display_order), -1) + 1 FROM category_manuals WHERE category_id = ?), ?)
		ON CONFLICT(category_id, manual_id) DO UPDATE SET entry_point = excluded.entry_point`,
		link.CategoryID, link.ManualID, nullString(link.EntryPoint), link.CategoryID, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to link manual %s to category %s: %w", link.ManualID, link.CategoryID, err)
	}
	return nil
}

// Upsert links a manual to a category.
func (r *LinkRepository) Upsert(ctx context.Context, link *secondary.LinkRecord) error {
	return upsertLink(ctx, r.db, link)
}

// Delete removes a link.
func (r *LinkRepository) Delete(ctx context.Context, categoryID, manualID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM category_manuals WHERE category_id = ? AND manual_id = ?", categoryID, manualID)
	if err != nil {
		return fmt.Errorf("failed to unlink manual: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.NotFound("manual %s is not linked to category %s", manualID, categoryID)
	}

	return nil
}

// Move relinks a manual to another category, keeping its entry point.
// The link is appended to the end of the target category.
func (r *LinkRepository) Move(ctx context.Context, manualID, fromCategoryID, toCategoryID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var entry sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT entry_point FROM category_manuals WHERE category_id = ? AND manual_id = ?",
		fromCategoryID, manualID,
	).Scan(&entry)
	if err == sql.ErrNoRows {
		return apperr.NotFound("manual %s is not linked to category %s", manualID, fromCategoryID)
	}
	if err != nil {
		return fmt.Errorf("failed to read link: %w", err)
	}

	if fromCategoryID == toCategoryID {
		return nil
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM category_manuals WHERE category_id = ? AND manual_id = ?",
		toCategoryID, manualID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to read link: %w", err)
	}
	if exists > 0 {
		return apperr.Conflict("manual %s is already linked to category %s", manualID, toCategoryID)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM category_manuals WHERE category_id = ? AND manual_id = ?",
		fromCategoryID, manualID,
	); err != nil {
		return fmt.Errorf("failed to unlink manual: %w", err)
	}

	if err := upsertLink(ctx, tx, &secondary.LinkRecord{
		CategoryID: toCategoryID,
		ManualID:   manualID,
		EntryPoint: entry.String,
	}); err != nil {
		return err
	}

	return tx.Commit()
}

// ListByCategory retrieves the manuals of a category ordered by link display order.
func (r *LinkRepository) ListByCategory(ctx context.Context, categoryID string) ([]*secondary.LinkedManualRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.parent_id, m.title, m.content, m.flowchart_data, m.version, m.status,
			m.is_favorite, m.revision, m.created_by, m.created_at, m.updated_at,
			cm.entry_point, cm.display_order
		FROM category_manuals cm
		JOIN manuals m ON m.id = cm.manual_id
		WHERE cm.category_id = ?
		ORDER BY cm.display_order ASC, cm.rowid ASC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list category manuals: %w", err)
	}
	defer rows.Close()

	var linked []*secondary.LinkedManualRecord
	for rows.Next() {
		var (
			entry sql.NullString
			order int
		)
		m, err := scanManual(rowWithTail{rows, []any{&entry, &order}})
		if err != nil {
			return nil, fmt.Errorf("failed to scan category manual: %w", err)
		}
		linked = append(linked, &secondary.LinkedManualRecord{
			Manual:       m,
			EntryPoint:   entry.String,
			DisplayOrder: order,
		})
	}
	return linked, rows.Err()
}

// ListByManual retrieves the categories a manual is linked to.
func (r *LinkRepository) ListByManual(ctx context.Context, manualID string) ([]*secondary.LinkedCategoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.icon, c.parent_id, c.level, c.path, c.display_order, c.created_at, c.updated_at,
			cm.entry_point
		FROM category_manuals cm
		JOIN categories c ON c.id = cm.category_id
		WHERE cm.manual_id = ?
		ORDER BY c.level ASC, c.display_order ASC, c.rowid ASC`, manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to list manual categories: %w", err)
	}
	defer rows.Close()

	var linked []*secondary.LinkedCategoryRecord
	for rows.Next() {
		var entry sql.NullString
		c, err := scanCategory(rowWithTail{rows, []any{&entry}})
		if err != nil {
			return nil, fmt.Errorf("failed to scan manual category: %w", err)
		}
		linked = append(linked, &secondary.LinkedCategoryRecord{
			Category:   c,
			EntryPoint: entry.String,
		})
	}
	return linked, rows.Err()
}

// rowWithTail scans extra trailing columns after the ones a scan helper asks for.
type rowWithTail struct {
	s    scanner
	tail []any
}

func (r rowWithTail) Scan(dest ...any) error {
	return r.s.Scan(append(dest, r.tail...)...)
}

// Ensure LinkRepository implements the interface.
var _ secondary.LinkRepository = (*LinkRepository)(nil)
