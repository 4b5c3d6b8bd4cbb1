package secondary

import "context"

// LogWriter defines the interface for writing audit log entries.
// Implementations extract the actor from context.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDelete logs a delete operation for an entity.
	LogDelete(ctx context.Context, entityType, entityID string) error

	// LogForceRelease logs that a lock was broken; holder is the displaced holder.
	LogForceRelease(ctx context.Context, resource, holder string) error
}

// AuditRepository defines the secondary port for audit log persistence.
type AuditRepository interface {
	// Create persists an audit entry.
	Create(ctx context.Context, entry *AuditRecord) error

	// List retrieves entries matching the filters, newest first.
	List(ctx context.Context, filters AuditFilters) ([]*AuditRecord, error)
}

// AuditRecord represents one audit log entry.
type AuditRecord struct {
	ID         int64
	Actor      string
	EntityType string
	EntityID   string
	Action     string
	FieldName  string
	OldValue   string
	NewValue   string
	CreatedAt  string
}

// AuditFilters contains filter options for querying the audit log.
type AuditFilters struct {
	EntityType string
	EntityID   string
	Limit      int
}
