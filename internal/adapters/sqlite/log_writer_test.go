package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/guidebook/internal/adapters/sqlite"
	"github.com/example/guidebook/internal/ctxutil"
	"github.com/example/guidebook/internal/ports/secondary"
)

func TestLogWriterAdapter_WritesAuditRows(t *testing.T) {
	db := setupTestDB(t)
	audit := sqlite.NewAuditRepository(db)
	writer := sqlite.NewLogWriterAdapter(audit)
	ctx := ctxutil.WithActorID(context.Background(), "alice")

	if err := writer.LogCreate(ctx, "manual", "MAN-001"); err != nil {
		t.Fatalf("LogCreate failed: %v", err)
	}
	if err := writer.LogUpdate(ctx, "manual", "MAN-001", "title", "old", "new"); err != nil {
		t.Fatalf("LogUpdate failed: %v", err)
	}
	if err := writer.LogForceRelease(ctx, "manual:MAN-001", "bob"); err != nil {
		t.Fatalf("LogForceRelease failed: %v", err)
	}
	if err := writer.LogDelete(ctx, "category", "CAT-001"); err != nil {
		t.Fatalf("LogDelete failed: %v", err)
	}

	entries, err := audit.List(context.Background(), secondary.AuditFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	// Newest first
	if entries[0].Action != "delete" || entries[0].EntityType != "category" {
		t.Errorf("unexpected newest entry: %+v", entries[0])
	}
	force := entries[1]
	if force.Action != "force_release" || force.EntityID != "manual:MAN-001" || force.OldValue != "bob" || force.Actor != "alice" {
		t.Errorf("unexpected force release entry: %+v", force)
	}
	if entries[2].FieldName != "title" || entries[2].NewValue != "new" {
		t.Errorf("unexpected update entry: %+v", entries[2])
	}
}

func TestAuditRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	audit := sqlite.NewAuditRepository(db)
	ctx := context.Background()

	for _, e := range []secondary.AuditRecord{
		{EntityType: "manual", EntityID: "MAN-001", Action: "create"},
		{EntityType: "manual", EntityID: "MAN-002", Action: "create"},
		{EntityType: "category", EntityID: "CAT-001", Action: "create"},
		{EntityType: "manual", EntityID: "MAN-001", Action: "update"},
	} {
		entry := e
		if err := audit.Create(ctx, &entry); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if entry.ID == 0 {
			t.Error("expected ID assigned")
		}
	}

	entries, err := audit.List(ctx, secondary.AuditFilters{EntityType: "manual", EntityID: "MAN-001"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != "update" {
		t.Errorf("unexpected filtered entries: %+v", entries)
	}

	entries, _ = audit.List(ctx, secondary.AuditFilters{Limit: 1})
	if len(entries) != 1 {
		t.Errorf("expected limit 1, got %d", len(entries))
	}
}

func TestAuditRepository_RejectsUnknownAction(t *testing.T) {
	db := setupTestDB(t)
	audit := sqlite.NewAuditRepository(db)

	err := audit.Create(context.Background(), &secondary.AuditRecord{EntityType: "manual", EntityID: "MAN-001", Action: "rename"})
	if err == nil {
		t.Error("expected CHECK constraint failure")
	}
}
