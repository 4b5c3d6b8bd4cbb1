package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/guidebook/internal/ports/secondary"
)

// HistoryRepository implements secondary.HistoryRepository with SQLite.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new SQLite manual history repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// List retrieves the snapshots of a manual in insertion order.
func (r *HistoryRepository) List(ctx context.Context, manualID string) ([]*secondary.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, manual_id, title, content, flowchart_data, version, changed_by, created_at FROM manual_history WHERE manual_id = ? ORDER BY id ASC",
		manualID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var history []*secondary.HistoryRecord
	for rows.Next() {
		var (
			changedBy sql.NullString
			createdAt time.Time
		)

		record := &secondary.HistoryRecord{}
		err := rows.Scan(&record.ID, &record.ManualID, &record.Title, &record.Content,
			&record.FlowchartData, &record.Version, &changedBy, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}

		record.ChangedBy = changedBy.String
		record.CreatedAt = formatTime(createdAt)
		history = append(history, record)
	}

	return history, rows.Err()
}

// Ensure HistoryRepository implements the interface.
var _ secondary.HistoryRepository = (*HistoryRepository)(nil)
