package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/core/lock"
	"github.com/example/guidebook/internal/core/manual"
	"github.com/example/guidebook/internal/ports/secondary"
)

const manualColumns = "id, parent_id, title, content, flowchart_data, version, status, is_favorite, revision, created_by, created_at, updated_at"

// ManualRepository implements secondary.ManualRepository with SQLite.
type ManualRepository struct {
	db *sql.DB
}

// NewManualRepository creates a new SQLite manual repository.
func NewManualRepository(db *sql.DB) *ManualRepository {
	return &ManualRepository{db: db}
}

func scanManual(s scanner) (*secondary.ManualRecord, error) {
	var (
		parentID   sql.NullString
		createdBy  sql.NullString
		isFavorite int
		createdAt  time.Time
		updatedAt  time.Time
	)

	record := &secondary.ManualRecord{}
	if err := s.Scan(&record.ID, &parentID, &record.Title, &record.Content, &record.FlowchartData,
		&record.Version, &record.Status, &isFavorite, &record.Revision, &createdBy,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	record.ParentID = manual.ChainRoot(record.ID, parentID.String)
	record.IsFavorite = isFavorite == 1
	record.CreatedBy = createdBy.String
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)
	return record, nil
}

func (r *ManualRepository) queryManuals(ctx context.Context, q queryer, query string, args ...any) ([]*secondary.ManualRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list manuals: %w", err)
	}
	defer rows.Close()

	var manuals []*secondary.ManualRecord
	for rows.Next() {
		record, err := scanManual(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manual: %w", err)
		}
		manuals = append(manuals, record)
	}
	return manuals, rows.Err()
}

// Create persists a new manual. A fresh manual is the root of its own version
// chain. An empty ID is allocated in the same transaction as the insert.
func (r *ManualRepository) Create(ctx context.Context, m *secondary.ManualRecord, link *secondary.LinkRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if m.ID == "" {
		if m.ID, err = allocateID(ctx, tx, "manuals", "MAN"); err != nil {
			return err
		}
	}
	if m.ParentID == "" {
		m.ParentID = m.ID
	}
	if m.Status == "" {
		m.Status = manual.StatusDraft
	}
	if m.Version == 0 {
		m.Version = 1
	}
	ts := now()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO manuals ("+manualColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.ParentID, m.Title, m.Content, m.FlowchartData, m.Version, m.Status,
		boolToInt(m.IsFavorite), 0, nullString(m.CreatedBy), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create manual: %w", err)
	}

	if link != nil {
		link.ManualID = m.ID
		if err := upsertLink(ctx, tx, link); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	m.Revision = 0
	m.CreatedAt = recordTime(ts)
	m.UpdatedAt = recordTime(ts)
	return nil
}

// GetByID retrieves a manual by its ID.
func (r *ManualRepository) GetByID(ctx context.Context, id string) (*secondary.ManualRecord, error) {
	return getManual(ctx, r.db, id)
}

func getManual(ctx context.Context, q rowQueryer, id string) (*secondary.ManualRecord, error) {
	record, err := scanManual(q.QueryRowContext(ctx, "SELECT "+manualColumns+" FROM manuals WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("manual %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get manual: %w", err)
	}
	return record, nil
}

// List retrieves every manual, favorites first, then most recently updated.
func (r *ManualRepository) List(ctx context.Context) ([]*secondary.ManualRecord, error) {
	return r.queryManuals(ctx, r.db,
		"SELECT "+manualColumns+" FROM manuals ORDER BY is_favorite DESC, updated_at DESC, rowid DESC")
}

// ListUnassigned retrieves manuals without any category link.
func (r *ManualRepository) ListUnassigned(ctx context.Context) ([]*secondary.ManualRecord, error) {
	return r.queryManuals(ctx, r.db,
		"SELECT "+manualColumns+" FROM manuals WHERE id NOT IN (SELECT manual_id FROM category_manuals) ORDER BY updated_at DESC, rowid DESC")
}

// Search retrieves manuals whose title or content contains query, most recently updated first.
func (r *ManualRepository) Search(ctx context.Context, query string) ([]*secondary.ManualRecord, error) {
	pattern := likePattern(query)
	return r.queryManuals(ctx, r.db,
		"SELECT "+manualColumns+` FROM manuals
		WHERE title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\'
		ORDER BY updated_at DESC, rowid DESC`,
		pattern, pattern)
}

// Update snapshots the stored row into manual_history, then applies the supplied fields.
// Both writes share one transaction, so a failed update leaves no snapshot behind.
func (r *ManualRepository) Update(ctx context.Context, id string, update secondary.ManualUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getManual(ctx, tx, id)
	if err != nil {
		return err
	}

	if update.ExpectedRevision != nil && *update.ExpectedRevision != current.Revision {
		return apperr.Conflict("manual %s was modified (revision %d, expected %d)",
			id, current.Revision, *update.ExpectedRevision)
	}

	ts := now()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO manual_history (manual_id, title, content, flowchart_data, version, changed_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		current.ID, current.Title, current.Content, current.FlowchartData, current.Version,
		nullString(update.ChangedBy), ts,
	)
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	builder := sq.Update("manuals").
		Set("updated_at", ts).
		Set("revision", sq.Expr("revision + 1")).
		Where(sq.Eq{"id": id, "revision": current.Revision})
	if update.Title != nil {
		builder = builder.Set("title", *update.Title)
	}
	if update.Content != nil {
		builder = builder.Set("content", *update.Content)
	}
	if update.FlowchartData != nil {
		builder = builder.Set("flowchart_data", *update.FlowchartData)
	}
	if update.Status != nil {
		builder = builder.Set("status", *update.Status)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build manual update: %w", err)
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update manual: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.Conflict("manual %s was modified concurrently", id)
	}

	return tx.Commit()
}

// SetFavorite sets the favorite flag without touching history.
func (r *ManualRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	result, err := r.db.ExecContext(ctx, "UPDATE manuals SET is_favorite = ? WHERE id = ?", boolToInt(favorite), id)
	if err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.NotFound("manual %s not found", id)
	}

	return nil
}

// CreateVersion inserts the next version of sourceID's chain.
// The row ID and the version number are both allocated inside one immediate
// transaction, so concurrent writers cannot produce the same values.
func (r *ManualRepository) CreateVersion(ctx context.Context, sourceID string, fields secondary.ManualVersionFields) (*secondary.ManualRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	root, err := chainRoot(ctx, tx, sourceID)
	if err != nil {
		return nil, err
	}

	id := fields.ID
	if id == "" {
		if id, err = allocateID(ctx, tx, "manuals", "MAN"); err != nil {
			return nil, err
		}
	}

	ts := now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO manuals (id, parent_id, title, content, flowchart_data, version, status, is_favorite, revision, created_by, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, COALESCE(MAX(version), 0) + 1, ?, 0, 0, ?, ?, ?
		FROM manuals WHERE id = ? OR parent_id = ?`,
		id, root, fields.Title, fields.Content, fields.FlowchartData, manual.StatusDraft,
		nullString(fields.CreatedBy), ts, ts, root, root,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create version: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO category_manuals (category_id, manual_id, entry_point, display_order, created_at)
		SELECT category_id, ?, entry_point, display_order, ? FROM category_manuals WHERE manual_id = ?`,
		id, ts, sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to copy category links: %w", err)
	}

	record, err := getManual(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return record, nil
}

// ListVersions retrieves every row of id's version chain, newest version first.
func (r *ManualRepository) ListVersions(ctx context.Context, id string) ([]*secondary.ManualRecord, error) {
	root, err := chainRoot(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return r.queryManuals(ctx, r.db,
		"SELECT "+manualColumns+" FROM manuals WHERE id = ? OR parent_id = ? ORDER BY version DESC, rowid DESC",
		root, root)
}

func chainRoot(ctx context.Context, q rowQueryer, id string) (string, error) {
	var parentID sql.NullString
	err := q.QueryRowContext(ctx, "SELECT parent_id FROM manuals WHERE id = ?", id).Scan(&parentID)
	if err == sql.ErrNoRows {
		return "", apperr.NotFound("manual %s not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve version chain: %w", err)
	}
	return manual.ChainRoot(id, parentID.String), nil
}

// Delete removes a manual and everything hanging off it in one transaction.
// It returns the image file paths so the caller can remove them after commit.
func (r *ManualRepository) Delete(ctx context.Context, id string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "SELECT file_path FROM manual_images WHERE manual_id = ? ORDER BY display_order", id)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		paths = append(paths, p)
	}
	rows.Close()

	for _, stmt := range []string{
		"DELETE FROM category_manuals WHERE manual_id = ?",
		"DELETE FROM manual_history WHERE manual_id = ?",
		"DELETE FROM manual_tags WHERE manual_id = ?",
		"DELETE FROM manual_images WHERE manual_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return nil, fmt.Errorf("failed to delete manual dependents: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM edit_locks WHERE resource = ?", lock.ManualResource(id)); err != nil {
		return nil, fmt.Errorf("failed to delete manual lock: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM manuals WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete manual: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("manual %s not found", id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return paths, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Ensure ManualRepository implements the interface.
var _ secondary.ManualRepository = (*ManualRepository)(nil)
