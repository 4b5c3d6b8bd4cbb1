package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/example/guidebook/internal/ports/secondary"
)

// AuditRepository implements secondary.AuditRepository with SQLite.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new SQLite audit log repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create persists an audit entry.
func (r *AuditRepository) Create(ctx context.Context, entry *secondary.AuditRecord) error {
	ts := now()
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO audit_log (actor, entity_type, entity_id, action, field_name, old_value, new_value, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		nullString(entry.Actor), entry.EntityType, entry.EntityID, entry.Action,
		nullString(entry.FieldName), nullString(entry.OldValue), nullString(entry.NewValue), ts,
	)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	entry.ID, _ = result.LastInsertId()
	entry.CreatedAt = recordTime(ts)
	return nil
}

// List retrieves entries matching the filters, newest first.
func (r *AuditRepository) List(ctx context.Context, filters secondary.AuditFilters) ([]*secondary.AuditRecord, error) {
	builder := sq.Select("id", "actor", "entity_type", "entity_id", "action", "field_name", "old_value", "new_value", "created_at").
		From("audit_log").
		OrderBy("id DESC")
	if filters.EntityType != "" {
		builder = builder.Where(sq.Eq{"entity_type": filters.EntityType})
	}
	if filters.EntityID != "" {
		builder = builder.Where(sq.Eq{"entity_id": filters.EntityID})
	}
	if filters.Limit > 0 {
		builder = builder.Limit(uint64(filters.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.AuditRecord
	for rows.Next() {
		var (
			actor, field, oldValue, newValue sql.NullString
			createdAt                        time.Time
		)
		record := &secondary.AuditRecord{}
		if err := rows.Scan(&record.ID, &actor, &record.EntityType, &record.EntityID, &record.Action,
			&field, &oldValue, &newValue, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		record.Actor = actor.String
		record.FieldName = field.String
		record.OldValue = oldValue.String
		record.NewValue = newValue.String
		record.CreatedAt = formatTime(createdAt)
		entries = append(entries, record)
	}
	return entries, rows.Err()
}

// Ensure AuditRepository implements the interface.
var _ secondary.AuditRepository = (*AuditRepository)(nil)
