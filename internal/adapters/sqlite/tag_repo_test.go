package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/guidebook/internal/adapters/sqlite"
	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/secondary"
)

// createTestTag is a helper that creates a tag with an allocated ID.
func createTestTag(t *testing.T, repo *sqlite.TagRepository, ctx context.Context, name, color string) *secondary.TagRecord {
	t.Helper()

	tag := &secondary.TagRecord{
		Name:  name,
		Color: color,
	}

	err := repo.Create(ctx, tag)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	return tag
}

func TestTagRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTagRepository(db)
	ctx := context.Background()

	tag := &secondary.TagRecord{
		ID:    "TAG-001",
		Name:  "新人向け",
		Color: "#ff8800",
	}

	err := repo.Create(ctx, tag)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, "TAG-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.Name != "新人向け" {
		t.Errorf("expected name '新人向け', got '%s'", retrieved.Name)
	}
	if retrieved.Color != "#ff8800" {
		t.Errorf("expected color '#ff8800', got '%s'", retrieved.Color)
	}
	if retrieved.CreatedAt == "" {
		t.Error("expected created_at to be set")
	}
}

func TestTagRepository_Create_DuplicateName(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTagRepository(db)
	ctx := context.Background()

	createTestTag(t, repo, ctx, "urgent", "")

	err := repo.Create(ctx, &secondary.TagRecord{ID: "TAG-002", Name: "urgent"})
	if err == nil {
		t.Error("expected error for duplicate name")
	}
}

func TestTagRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTagRepository(db)

	_, err := repo.GetByID(context.Background(), "TAG-999")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTagRepository_GetByName(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTagRepository(db)
	ctx := context.Background()

	tag := createTestTag(t, repo, ctx, "bug", "")

	retrieved, err := repo.GetByName(ctx, "bug")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if retrieved.ID != tag.ID {
		t.Errorf("expected ID '%s', got '%s'", tag.ID, retrieved.ID)
	}

	if _, err := repo.GetByName(ctx, "nonexistent"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTagRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTagRepository(db)
	ctx := context.Background()

	// Create tags - should be sorted by name
	createTestTag(t, repo, ctx, "zeta", "")
	createTestTag(t, repo, ctx, "alpha", "")
	createTestTag(t, repo, ctx, "beta", "")

	tags, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}

	for i, want := range []string{"alpha", "beta", "zeta"} {
		if tags[i].Name != want {
			t.Errorf("tags[%d] = '%s', want '%s'", i, tags[i].Name, want)
		}
	}
}

func TestTagRepository_AssignAndUnassign(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTagRepository(db)
	ctx := context.Background()

	seedManual(t, db, "MAN-001", "来客対応")
	tag := createTestTag(t, repo, ctx, "新人向け", "")

	if err := repo.Assign(ctx, "MAN-001", tag.ID); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	// Second assign is a no-op
	if err := repo.Assign(ctx, "MAN-001", tag.ID); err != nil {
		t.Fatalf("second Assign failed: %v", err)
	}

	tags, err := repo.ListByManual(ctx, "MAN-001")
	if err != nil {
		t.Fatalf("ListByManual failed: %v", err)
	}
	if len(tags) != 1 || tags[0].ID != tag.ID {
		t.Fatalf("expected one tag %s, got %+v", tag.ID, tags)
	}

	if err := repo.Unassign(ctx, "MAN-001", tag.ID); err != nil {
		t.Fatalf("Unassign failed: %v", err)
	}
	if err := repo.Unassign(ctx, "MAN-001", tag.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second unassign, got %v", err)
	}
}

func TestTagRepository_Delete_CascadesAssignments(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTagRepository(db)
	ctx := context.Background()

	seedManual(t, db, "MAN-001", "")
	tag := createTestTag(t, repo, ctx, "to-delete", "")
	if err := repo.Assign(ctx, "MAN-001", tag.ID); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	if err := repo.Delete(ctx, tag.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n := countRows(t, db, "manual_tags", ""); n != 0 {
		t.Errorf("expected assignments to cascade, %d left", n)
	}

	if err := repo.Delete(ctx, tag.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTagRepository_CreateAllocatesID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewTagRepository(db)
	ctx := context.Background()

	first := createTestTag(t, repo, ctx, "test", "")
	if first.ID != "TAG-001" {
		t.Errorf("expected TAG-001, got %s", first.ID)
	}

	second := createTestTag(t, repo, ctx, "other", "")
	if second.ID != "TAG-002" {
		t.Errorf("expected TAG-002, got %s", second.ID)
	}
}
