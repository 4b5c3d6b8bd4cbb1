package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/secondary"
)

const categoryColumns = "id, name, icon, parent_id, level, path, display_order, created_at, updated_at"

// subtreeCTE selects every descendant of the bound category id.
const subtreeCTE = `WITH RECURSIVE subtree(id, depth) AS (
	SELECT id, 1 FROM categories WHERE parent_id = ?
	UNION ALL
	SELECT c.id, s.depth + 1 FROM categories c JOIN subtree s ON c.parent_id = s.id
)`

// CategoryRepository implements secondary.CategoryRepository with SQLite.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new SQLite category repository.
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create persists a new category. An empty ID is allocated in the same
// transaction as the insert.
func (r *CategoryRepository) Create(ctx context.Context, category *secondary.CategoryRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := category.ID
	if id == "" {
		if id, err = allocateID(ctx, tx, "categories", "CAT"); err != nil {
			return err
		}
	}

	ts := now()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO categories (id, name, icon, parent_id, level, path, display_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, category.Name, nullString(category.Icon), nullString(category.ParentID),
		category.Level, category.Path, category.DisplayOrder, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	category.ID = id
	category.CreatedAt = recordTime(ts)
	category.UpdatedAt = recordTime(ts)
	return nil
}

func scanCategory(s scanner) (*secondary.CategoryRecord, error) {
	var (
		icon      sql.NullString
		parentID  sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.CategoryRecord{}
	if err := s.Scan(&record.ID, &record.Name, &icon, &parentID, &record.Level, &record.Path,
		&record.DisplayOrder, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	record.Icon = icon.String
	record.ParentID = parentID.String
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)
	return record, nil
}

// GetByID retrieves a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*secondary.CategoryRecord, error) {
	record, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("category %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return record, nil
}

// GetByPath retrieves a category by its materialized path.
func (r *CategoryRepository) GetByPath(ctx context.Context, path string) (*secondary.CategoryRecord, error) {
	record, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE path = ? ORDER BY rowid LIMIT 1", path))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("category '%s' not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return record, nil
}

// List retrieves all categories ordered by level, then display order.
func (r *CategoryRepository) List(ctx context.Context) ([]*secondary.CategoryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories ORDER BY level ASC, display_order ASC, rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*secondary.CategoryRecord
	for rows.Next() {
		record, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, record)
	}
	return categories, rows.Err()
}

// Update applies the supplied fields and rewrites the subtree when path or level change.
func (r *CategoryRepository) Update(ctx context.Context, id string, update secondary.CategoryUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		oldPath  string
		oldLevel int
	)
	err = tx.QueryRowContext(ctx, "SELECT path, level FROM categories WHERE id = ?", id).Scan(&oldPath, &oldLevel)
	if err == sql.ErrNoRows {
		return apperr.NotFound("category %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}

	ts := now()
	builder := sq.Update("categories").Set("updated_at", ts).Where(sq.Eq{"id": id})
	if update.Name != nil {
		builder = builder.Set("name", *update.Name)
	}
	if update.Icon != nil {
		builder = builder.Set("icon", nullString(*update.Icon))
	}
	if update.ParentID != nil {
		builder = builder.Set("parent_id", nullString(*update.ParentID))
	}
	if update.DisplayOrder != nil {
		builder = builder.Set("display_order", *update.DisplayOrder)
	}
	newPath, newLevel := oldPath, oldLevel
	if update.Path != nil {
		newPath = *update.Path
		builder = builder.Set("path", newPath)
	}
	if update.Level != nil {
		newLevel = *update.Level
		builder = builder.Set("level", newLevel)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build category update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	if newPath != oldPath || newLevel != oldLevel {
		_, err := tx.ExecContext(ctx, subtreeCTE+`
			UPDATE categories
			SET path = ? || substr(path, ?), level = level + ?, updated_at = ?
			WHERE id IN (SELECT id FROM subtree)`,
			id, newPath, utf8.RuneCountInString(oldPath)+1, newLevel-oldLevel, ts,
		)
		if err != nil {
			return fmt.Errorf("failed to rewrite subtree of %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// Delete removes a single category.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.NotFound("category %s not found", id)
	}

	return nil
}

// DeleteSubtree removes a category and its descendants, deepest first.
func (r *CategoryRepository) DeleteSubtree(ctx context.Context, id string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, subtreeCTE+" SELECT id FROM subtree ORDER BY depth DESC", id)
	if err != nil {
		return 0, fmt.Errorf("failed to collect subtree: %w", err)
	}
	var ids []string
	for rows.Next() {
		var childID string
		if err := rows.Scan(&childID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan subtree: %w", err)
		}
		ids = append(ids, childID)
	}
	rows.Close()
	ids = append(ids, id)

	deleted := 0
	for _, cid := range ids {
		result, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", cid)
		if err != nil {
			return 0, fmt.Errorf("failed to delete category %s: %w", cid, err)
		}
		n, _ := result.RowsAffected()
		deleted += int(n)
	}
	if deleted == 0 {
		return 0, apperr.NotFound("category %s not found", id)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

// CountChildren returns the number of direct subcategories.
func (r *CategoryRepository) CountChildren(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories WHERE parent_id = ?", id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subcategories: %w", err)
	}
	return count, nil
}

// Ensure CategoryRepository implements the interface.
var _ secondary.CategoryRepository = (*CategoryRepository)(nil)
