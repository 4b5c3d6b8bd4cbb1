package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/guidebook/internal/adapters/sqlite"
	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/secondary"
)

func setupLinkFixtures(t *testing.T) (*sqlite.LinkRepository, context.Context) {
	t.Helper()
	db := setupTestDB(t)
	seedCategory(t, db, "CAT-001", "", "受付", 1, "受付")
	seedCategory(t, db, "CAT-002", "", "経理", 1, "経理")
	seedManual(t, db, "MAN-001", "来客対応")
	seedManual(t, db, "MAN-002", "経費精算")
	return sqlite.NewLinkRepository(db), context.Background()
}

func TestLinkRepository_Upsert(t *testing.T) {
	repo, ctx := setupLinkFixtures(t)

	if err := repo.Upsert(ctx, &secondary.LinkRecord{CategoryID: "CAT-001", ManualID: "MAN-001"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.Upsert(ctx, &secondary.LinkRecord{CategoryID: "CAT-001", ManualID: "MAN-002", EntryPoint: "start"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	// Linking again updates the entry point in place
	if err := repo.Upsert(ctx, &secondary.LinkRecord{CategoryID: "CAT-001", ManualID: "MAN-001", EntryPoint: "check"}); err != nil {
		t.Fatalf("re-Upsert failed: %v", err)
	}

	linked, err := repo.ListByCategory(ctx, "CAT-001")
	if err != nil {
		t.Fatalf("ListByCategory failed: %v", err)
	}
	if len(linked) != 2 {
		t.Fatalf("expected 2 links, got %d", len(linked))
	}
	if linked[0].Manual.ID != "MAN-001" || linked[0].EntryPoint != "check" || linked[0].DisplayOrder != 0 {
		t.Errorf("unexpected first link: %+v", linked[0])
	}
	if linked[1].Manual.ID != "MAN-002" || linked[1].DisplayOrder != 1 {
		t.Errorf("unexpected second link: %+v", linked[1])
	}
	if linked[0].Manual.Title != "来客対応" {
		t.Errorf("expected manual fields joined, got %+v", linked[0].Manual)
	}
}

func TestLinkRepository_Delete(t *testing.T) {
	repo, ctx := setupLinkFixtures(t)

	if err := repo.Upsert(ctx, &secondary.LinkRecord{CategoryID: "CAT-001", ManualID: "MAN-001"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "CAT-001", "MAN-001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(ctx, "CAT-001", "MAN-001"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLinkRepository_Move_KeepsEntryPoint(t *testing.T) {
	repo, ctx := setupLinkFixtures(t)

	if err := repo.Upsert(ctx, &secondary.LinkRecord{CategoryID: "CAT-001", ManualID: "MAN-001", EntryPoint: "check"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Move(ctx, "MAN-001", "CAT-001", "CAT-002"); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	cats, err := repo.ListByManual(ctx, "MAN-001")
	if err != nil {
		t.Fatalf("ListByManual failed: %v", err)
	}
	if len(cats) != 1 || cats[0].Category.ID != "CAT-002" || cats[0].EntryPoint != "check" {
		t.Errorf("unexpected links after move: %+v", cats)
	}
}

func TestLinkRepository_Move_Errors(t *testing.T) {
	repo, ctx := setupLinkFixtures(t)

	if err := repo.Move(ctx, "MAN-001", "CAT-001", "CAT-002"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing source link, got %v", err)
	}

	for _, cat := range []string{"CAT-001", "CAT-002"} {
		if err := repo.Upsert(ctx, &secondary.LinkRecord{CategoryID: cat, ManualID: "MAN-001"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.Move(ctx, "MAN-001", "CAT-001", "CAT-002"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected ErrConflict when already linked to target, got %v", err)
	}
	if err := repo.Move(ctx, "MAN-001", "CAT-001", "CAT-001"); err != nil {
		t.Errorf("moving onto the same category should be a no-op, got %v", err)
	}
}
