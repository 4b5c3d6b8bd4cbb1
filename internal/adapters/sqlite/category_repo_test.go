package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/guidebook/internal/adapters/sqlite"
	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/secondary"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCategoryRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCategoryRepository(db)
	ctx := context.Background()

	root := &secondary.CategoryRecord{ID: "CAT-001", Name: "受付", Icon: "bell", Level: 1, Path: "受付"}
	if err := repo.Create(ctx, root); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	child := &secondary.CategoryRecord{ID: "CAT-002", Name: "受付サブ", ParentID: "CAT-001", Level: 2, Path: "受付/受付サブ"}
	if err := repo.Create(ctx, child); err != nil {
		t.Fatalf("Create child failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "CAT-002")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ParentID != "CAT-001" || got.Level != 2 || got.Path != "受付/受付サブ" {
		t.Errorf("unexpected category: %+v", got)
	}
	if got.CreatedAt == "" {
		t.Error("expected created_at to be set")
	}

	byPath, err := repo.GetByPath(ctx, "受付")
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if byPath.ID != "CAT-001" || byPath.Icon != "bell" {
		t.Errorf("unexpected category by path: %+v", byPath)
	}

	if _, err := repo.GetByID(ctx, "CAT-999"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryRepository_Create_RejectsLevelSix(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCategoryRepository(db)

	err := repo.Create(context.Background(), &secondary.CategoryRecord{ID: "CAT-001", Name: "deep", Level: 6, Path: "deep"})
	if err == nil {
		t.Error("expected CHECK constraint to reject level 6")
	}
}

func TestCategoryRepository_List_Order(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCategoryRepository(db)
	ctx := context.Background()

	seedCategory(t, db, "CAT-001", "", "b", 1, "b")
	seedCategory(t, db, "CAT-002", "CAT-001", "child", 2, "b/child")
	seedCategory(t, db, "CAT-003", "", "a", 1, "a")
	if _, err := db.Exec("UPDATE categories SET display_order = 1 WHERE id = 'CAT-001'"); err != nil {
		t.Fatal(err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"CAT-003", "CAT-001", "CAT-002"}
	if len(list) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("list[%d] = %s, want %s", i, list[i].ID, id)
		}
	}
}

func TestCategoryRepository_Update_EmptyIsNoop(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCategoryRepository(db)

	if err := repo.Update(context.Background(), "CAT-404", secondary.CategoryUpdate{}); err != nil {
		t.Errorf("expected empty update to succeed, got %v", err)
	}
}

func TestCategoryRepository_Update_RenameRewritesSubtreePaths(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCategoryRepository(db)
	ctx := context.Background()

	seedCategory(t, db, "CAT-001", "", "受付", 1, "受付")
	seedCategory(t, db, "CAT-002", "CAT-001", "受付サブ", 2, "受付/受付サブ")
	seedCategory(t, db, "CAT-003", "CAT-002", "深い", 3, "受付/受付サブ/深い")

	err := repo.Update(ctx, "CAT-001", secondary.CategoryUpdate{
		Name: strPtr("フロント"),
		Path: strPtr("フロント"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	deep, err := repo.GetByID(ctx, "CAT-003")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if deep.Path != "フロント/受付サブ/深い" {
		t.Errorf("expected rewritten path, got %q", deep.Path)
	}
	if deep.Level != 3 {
		t.Errorf("rename must not change level, got %d", deep.Level)
	}
}

func TestCategoryRepository_Update_ReparentShiftsLevels(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCategoryRepository(db)
	ctx := context.Background()

	seedCategory(t, db, "CAT-001", "", "経理", 1, "経理")
	seedCategory(t, db, "CAT-002", "", "受付", 1, "受付")
	seedCategory(t, db, "CAT-003", "CAT-002", "受付サブ", 2, "受付/受付サブ")

	err := repo.Update(ctx, "CAT-002", secondary.CategoryUpdate{
		ParentID: strPtr("CAT-001"),
		Path:     strPtr("経理/受付"),
		Level:    intPtr(2),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	moved, _ := repo.GetByID(ctx, "CAT-002")
	if moved.ParentID != "CAT-001" || moved.Level != 2 {
		t.Errorf("unexpected moved category: %+v", moved)
	}
	child, _ := repo.GetByID(ctx, "CAT-003")
	if child.Level != 3 || child.Path != "経理/受付/受付サブ" {
		t.Errorf("subtree not shifted: %+v", child)
	}

	// And back to the root
	err = repo.Update(ctx, "CAT-002", secondary.CategoryUpdate{
		ParentID: strPtr(""),
		Path:     strPtr("受付"),
		Level:    intPtr(1),
	})
	if err != nil {
		t.Fatalf("Update to root failed: %v", err)
	}
	moved, _ = repo.GetByID(ctx, "CAT-002")
	if moved.ParentID != "" {
		t.Errorf("expected root category, parent = %q", moved.ParentID)
	}
	child, _ = repo.GetByID(ctx, "CAT-003")
	if child.Level != 2 || child.Path != "受付/受付サブ" {
		t.Errorf("subtree not shifted back: %+v", child)
	}
}

func TestCategoryRepository_Update_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCategoryRepository(db)

	err := repo.Update(context.Background(), "CAT-404", secondary.CategoryUpdate{DisplayOrder: intPtr(3)})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryRepository_Delete_CascadesLinks(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCategoryRepository(db)
	ctx := context.Background()

	seedCategory(t, db, "CAT-001", "", "受付", 1, "受付")
	seedManual(t, db, "MAN-001", "")
	seedLink(t, db, "CAT-001", "MAN-001", "", 0)

	if err := repo.Delete(ctx, "CAT-001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n := countRows(t, db, "category_manuals", ""); n != 0 {
		t.Errorf("expected links to cascade, %d left", n)
	}
	if n := countRows(t, db, "manuals", ""); n != 1 {
		t.Errorf("manual must survive category deletion")
	}

	if err := repo.Delete(ctx, "CAT-001"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryRepository_DeleteSubtree(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCategoryRepository(db)
	ctx := context.Background()

	seedCategory(t, db, "CAT-001", "", "a", 1, "a")
	seedCategory(t, db, "CAT-002", "CAT-001", "b", 2, "a/b")
	seedCategory(t, db, "CAT-003", "CAT-002", "c", 3, "a/b/c")
	seedCategory(t, db, "CAT-004", "", "other", 1, "other")

	n, err := repo.DeleteSubtree(ctx, "CAT-001")
	if err != nil {
		t.Fatalf("DeleteSubtree failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 deleted, got %d", n)
	}
	if left := countRows(t, db, "categories", ""); left != 1 {
		t.Errorf("expected 1 category left, got %d", left)
	}

	if _, err := repo.DeleteSubtree(ctx, "CAT-001"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryRepository_CountChildrenAndAllocatedID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCategoryRepository(db)
	ctx := context.Background()

	seedCategory(t, db, "CAT-001", "", "a", 1, "a")
	seedCategory(t, db, "CAT-002", "CAT-001", "b", 2, "a/b")
	seedCategory(t, db, "CAT-010", "CAT-001", "c", 2, "a/c")

	count, err := repo.CountChildren(ctx, "CAT-001")
	if err != nil {
		t.Fatalf("CountChildren failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 children, got %d", count)
	}

	created := &secondary.CategoryRecord{Name: "d", Level: 1, Path: "d"}
	if err := repo.Create(ctx, created); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != "CAT-011" {
		t.Errorf("expected CAT-011, got %s", created.ID)
	}
}
