package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/secondary"
)

// TagRepository implements secondary.TagRepository with SQLite.
type TagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new SQLite tag repository.
func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create persists a new tag.
func (r *TagRepository) Create(ctx context.Context, tag *secondary.TagRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := tag.ID
	if id == "" {
		if id, err = allocateID(ctx, tx, "tags", "TAG"); err != nil {
			return err
		}
	}

	ts := now()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO tags (id, name, color, created_at) VALUES (?, ?, ?, ?)",
		id, tag.Name, nullString(tag.Color), ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	tag.ID = id
	tag.CreatedAt = recordTime(ts)
	return nil
}

func scanTag(s scanner) (*secondary.TagRecord, error) {
	var (
		color     sql.NullString
		createdAt time.Time
	)

	record := &secondary.TagRecord{}
	if err := s.Scan(&record.ID, &record.Name, &color, &createdAt); err != nil {
		return nil, err
	}

	record.Color = color.String
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

// GetByID retrieves a tag by its ID.
func (r *TagRepository) GetByID(ctx context.Context, id string) (*secondary.TagRecord, error) {
	record, err := scanTag(r.db.QueryRowContext(ctx,
		"SELECT id, name, color, created_at FROM tags WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("tag %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return record, nil
}

// GetByName retrieves a tag by its name.
func (r *TagRepository) GetByName(ctx context.Context, name string) (*secondary.TagRecord, error) {
	record, err := scanTag(r.db.QueryRowContext(ctx,
		"SELECT id, name, color, created_at FROM tags WHERE name = ?", name))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("tag '%s' not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return record, nil
}

func (r *TagRepository) queryTags(ctx context.Context, query string, args ...any) ([]*secondary.TagRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []*secondary.TagRecord
	for rows.Next() {
		record, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, record)
	}
	return tags, rows.Err()
}

// List retrieves all tags ordered by name.
func (r *TagRepository) List(ctx context.Context) ([]*secondary.TagRecord, error) {
	return r.queryTags(ctx, "SELECT id, name, color, created_at FROM tags ORDER BY name ASC")
}

// ListByManual retrieves the tags of a manual ordered by name.
func (r *TagRepository) ListByManual(ctx context.Context, manualID string) ([]*secondary.TagRecord, error) {
	return r.queryTags(ctx, `
		SELECT t.id, t.name, t.color, t.created_at
		FROM manual_tags mt JOIN tags t ON t.id = mt.tag_id
		WHERE mt.manual_id = ?
		ORDER BY t.name ASC`, manualID)
}

// Delete removes a tag. Assignments cascade.
func (r *TagRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.NotFound("tag %s not found", id)
	}

	return nil
}

// Assign attaches a tag to a manual. Assigning twice is a no-op.
func (r *TagRepository) Assign(ctx context.Context, manualID, tagID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO manual_tags (manual_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING", manualID, tagID)
	if err != nil {
		return fmt.Errorf("failed to tag manual: %w", err)
	}
	return nil
}

// Unassign detaches a tag from a manual.
func (r *TagRepository) Unassign(ctx context.Context, manualID, tagID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM manual_tags WHERE manual_id = ? AND tag_id = ?", manualID, tagID)
	if err != nil {
		return fmt.Errorf("failed to untag manual: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.NotFound("manual %s does not carry tag %s", manualID, tagID)
	}

	return nil
}

// Ensure TagRepository implements the interface.
var _ secondary.TagRepository = (*TagRepository)(nil)
