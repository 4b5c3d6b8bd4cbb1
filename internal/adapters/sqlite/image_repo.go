package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/secondary"
)

const imageColumns = "id, manual_id, file_name, original_name, file_path, file_size, mime_type, alt_text, display_order, created_at"

// ImageRepository implements secondary.ImageRepository with SQLite.
type ImageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new SQLite image metadata repository.
func NewImageRepository(db *sql.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create persists image metadata at the end of the manual's display order.
func (r *ImageRepository) Create(ctx context.Context, image *secondary.ImageRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := image.ID
	if id == "" {
		if id, err = allocateID(ctx, tx, "manual_images", "IMG"); err != nil {
			return err
		}
	}

	var order int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(display_order), -1) + 1 FROM manual_images WHERE manual_id = ?", image.ManualID,
	).Scan(&order)
	if err != nil {
		return fmt.Errorf("failed to get image order: %w", err)
	}

	ts := now()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO manual_images ("+imageColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, image.ManualID, image.FileName, nullString(image.OriginalName), image.FilePath,
		image.FileSize, nullString(image.MimeType), nullString(image.AltText), order, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	image.ID = id
	image.DisplayOrder = order
	image.CreatedAt = recordTime(ts)
	return nil
}

func scanImage(s scanner) (*secondary.ImageRecord, error) {
	var (
		originalName sql.NullString
		mimeType     sql.NullString
		altText      sql.NullString
		createdAt    time.Time
	)

	record := &secondary.ImageRecord{}
	if err := s.Scan(&record.ID, &record.ManualID, &record.FileName, &originalName, &record.FilePath,
		&record.FileSize, &mimeType, &altText, &record.DisplayOrder, &createdAt); err != nil {
		return nil, err
	}

	record.OriginalName = originalName.String
	record.MimeType = mimeType.String
	record.AltText = altText.String
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

// GetByID retrieves an image by its ID.
func (r *ImageRepository) GetByID(ctx context.Context, id string) (*secondary.ImageRecord, error) {
	record, err := scanImage(r.db.QueryRowContext(ctx, "SELECT "+imageColumns+" FROM manual_images WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("image %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return record, nil
}

// ListByManual retrieves a manual's images by display order.
func (r *ImageRepository) ListByManual(ctx context.Context, manualID string) ([]*secondary.ImageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+imageColumns+" FROM manual_images WHERE manual_id = ? ORDER BY display_order ASC, rowid ASC", manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []*secondary.ImageRecord
	for rows.Next() {
		record, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, record)
	}
	return images, rows.Err()
}

// Delete removes image metadata.
func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM manual_images WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.NotFound("image %s not found", id)
	}

	return nil
}

// Ensure ImageRepository implements the interface.
var _ secondary.ImageRepository = (*ImageRepository)(nil)
