package primary

import "context"

// AuditService defines the primary port for reading the audit log.
type AuditService interface {
	// ListEntries retrieves audit entries, newest first.
	ListEntries(ctx context.Context, filters AuditFilters) ([]*AuditEntry, error)
}

// AuditFilters narrows an audit listing.
type AuditFilters struct {
	EntityType string
	EntityID   string
	Limit      int
}

// AuditEntry is one audit log line.
type AuditEntry struct {
	ID         int64  `json:"id"`
	Actor      string `json:"actor,omitempty"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Action     string `json:"action"`
	FieldName  string `json:"field_name,omitempty"`
	OldValue   string `json:"old_value,omitempty"`
	NewValue   string `json:"new_value,omitempty"`
	CreatedAt  string `json:"created_at"`
}
