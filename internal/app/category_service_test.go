package app

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/core/lock"
	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/ports/secondary"
)

type categoryFixture struct {
	service      *CategoryServiceImpl
	categoryRepo *mockCategoryRepository
	linkRepo     *mockLinkRepository
	lockRepo     *mockLockRepository
	logWriter    *mockLogWriter
}

// newTestCategoryService seeds:
//
//	CAT-001 受付 (1)
//	└── CAT-002 受付サブ (2)
//	    └── CAT-003 詳細 (3)
//	CAT-004 経理 (1)
func newTestCategoryService() *categoryFixture {
	categoryRepo := newMockCategoryRepository()
	categoryRepo.add(&secondary.CategoryRecord{ID: "CAT-001", Name: "受付", Level: 1, Path: "受付"})
	categoryRepo.add(&secondary.CategoryRecord{ID: "CAT-002", Name: "受付サブ", ParentID: "CAT-001", Level: 2, Path: "受付/受付サブ"})
	categoryRepo.add(&secondary.CategoryRecord{ID: "CAT-003", Name: "詳細", ParentID: "CAT-002", Level: 3, Path: "受付/受付サブ/詳細"})
	categoryRepo.add(&secondary.CategoryRecord{ID: "CAT-004", Name: "経理", Level: 1, Path: "経理", DisplayOrder: -1})

	linkRepo := newMockLinkRepository()
	lockRepo := newMockLockRepository()
	logWriter := &mockLogWriter{}
	locks := NewLockService(lockRepo, newMockManualRepository(), logWriter, zap.NewNop())

	return &categoryFixture{
		service:      NewCategoryService(categoryRepo, linkRepo, locks, logWriter, zap.NewNop()),
		categoryRepo: categoryRepo,
		linkRepo:     linkRepo,
		lockRepo:     lockRepo,
		logWriter:    logWriter,
	}
}

func TestCreateCategory_ComputesLevelAndPath(t *testing.T) {
	f := newTestCategoryService()

	resp, err := f.service.CreateCategory(context.Background(), primary.CreateCategoryRequest{
		Name:     "新規",
		ParentID: "CAT-002",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.CategoryID != "CAT-005" {
		t.Errorf("expected CAT-005, got %s", resp.CategoryID)
	}
	if resp.Category.Level != 3 {
		t.Errorf("expected level 3, got %d", resp.Category.Level)
	}
	if resp.Category.Path != "受付/受付サブ/新規" {
		t.Errorf("expected computed path, got %q", resp.Category.Path)
	}
	if len(f.logWriter.entries) != 1 || f.logWriter.entries[0] != "create category CAT-005" {
		t.Errorf("expected create audit entry, got %v", f.logWriter.entries)
	}
}

func TestCreateCategory_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  primary.CreateCategoryRequest
	}{
		{name: "blank name", req: primary.CreateCategoryRequest{Name: " "}},
		{name: "missing parent", req: primary.CreateCategoryRequest{Name: "x", ParentID: "CAT-404"}},
		{name: "level mismatch", req: primary.CreateCategoryRequest{Name: "x", ParentID: "CAT-001", Level: 3}},
		{name: "root with level 2", req: primary.CreateCategoryRequest{Name: "x", Level: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestCategoryService()

			_, err := f.service.CreateCategory(context.Background(), tt.req)

			if !apperr.IsInvalid(err) {
				t.Fatalf("expected invalid error, got %v", err)
			}
			if len(f.categoryRepo.order) != 4 {
				t.Error("expected no category to be created")
			}
		})
	}
}

func TestCreateCategory_DepthLimit(t *testing.T) {
	f := newTestCategoryService()
	f.categoryRepo.add(&secondary.CategoryRecord{ID: "CAT-010", Name: "L5", ParentID: "CAT-003", Level: 5, Path: "a/b/c/d/L5"})

	_, err := f.service.CreateCategory(context.Background(), primary.CreateCategoryRequest{Name: "L6", ParentID: "CAT-010"})

	if !apperr.IsInvalid(err) {
		t.Fatalf("expected invalid error for level 6, got %v", err)
	}
}

func TestUpdateCategory_EmptyIsNoOp(t *testing.T) {
	f := newTestCategoryService()

	cat, err := f.service.UpdateCategory(context.Background(), primary.UpdateCategoryRequest{CategoryID: "CAT-002"})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cat.Name != "受付サブ" {
		t.Errorf("expected unchanged category, got %q", cat.Name)
	}
	if len(f.categoryRepo.updates) != 0 {
		t.Error("expected no repository update")
	}
}

func TestUpdateCategory_RenameRewritesPath(t *testing.T) {
	f := newTestCategoryService()
	name := "窓口"

	cat, err := f.service.UpdateCategory(context.Background(), primary.UpdateCategoryRequest{
		CategoryID: "CAT-002",
		Name:       &name,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cat.Path != "受付/窓口" {
		t.Errorf("expected path 受付/窓口, got %q", cat.Path)
	}
	u := f.categoryRepo.updates[0]
	if u.ParentID != nil || u.Level != nil {
		t.Error("rename must not change parent or level")
	}
}

func TestUpdateCategory_Reparent(t *testing.T) {
	f := newTestCategoryService()
	parent := "CAT-004"

	cat, err := f.service.UpdateCategory(context.Background(), primary.UpdateCategoryRequest{
		CategoryID: "CAT-002",
		ParentID:   &parent,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cat.ParentID != "CAT-004" || cat.Level != 2 || cat.Path != "経理/受付サブ" {
		t.Errorf("unexpected moved category: %+v", cat)
	}
}

func TestUpdateCategory_ReparentToRoot(t *testing.T) {
	f := newTestCategoryService()
	root := ""

	cat, err := f.service.UpdateCategory(context.Background(), primary.UpdateCategoryRequest{
		CategoryID: "CAT-003",
		ParentID:   &root,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cat.ParentID != "" || cat.Level != 1 || cat.Path != "詳細" {
		t.Errorf("unexpected root category: %+v", cat)
	}
}

func TestUpdateCategory_ReparentRejected(t *testing.T) {
	tests := []struct {
		name     string
		category string
		parent   string
	}{
		{name: "own parent", category: "CAT-001", parent: "CAT-001"},
		{name: "under descendant", category: "CAT-001", parent: "CAT-003"},
		{name: "missing parent", category: "CAT-002", parent: "CAT-404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestCategoryService()
			parent := tt.parent

			_, err := f.service.UpdateCategory(context.Background(), primary.UpdateCategoryRequest{
				CategoryID: tt.category,
				ParentID:   &parent,
			})

			if !apperr.IsInvalid(err) {
				t.Fatalf("expected invalid error, got %v", err)
			}
			if len(f.categoryRepo.updates) != 0 {
				t.Error("expected no repository update")
			}
		})
	}
}

func TestUpdateCategory_ReparentDepthLimit(t *testing.T) {
	tests := []struct {
		name    string
		parent  string
		allowed bool
	}{
		{name: "deepest lands on level 5", parent: "CAT-004", allowed: true},
		{name: "deepest would land on level 6", parent: "CAT-007", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestCategoryService()
			// CAT-002 gets three levels below it
			f.categoryRepo.add(&secondary.CategoryRecord{ID: "CAT-005", Name: "L4", ParentID: "CAT-003", Level: 4, Path: "受付/受付サブ/詳細/L4"})
			f.categoryRepo.add(&secondary.CategoryRecord{ID: "CAT-006", Name: "L5", ParentID: "CAT-005", Level: 5, Path: "受付/受付サブ/詳細/L4/L5"})
			f.categoryRepo.add(&secondary.CategoryRecord{ID: "CAT-007", Name: "支払", ParentID: "CAT-004", Level: 2, Path: "経理/支払"})
			parent := tt.parent

			_, err := f.service.UpdateCategory(context.Background(), primary.UpdateCategoryRequest{
				CategoryID: "CAT-002",
				ParentID:   &parent,
			})

			if tt.allowed && err != nil {
				t.Fatalf("expected move to succeed, got %v", err)
			}
			if !tt.allowed && !apperr.IsInvalid(err) {
				t.Fatalf("expected depth violation, got %v", err)
			}
		})
	}
}

func TestDeleteCategory(t *testing.T) {
	t.Run("with children requires recursive", func(t *testing.T) {
		f := newTestCategoryService()

		err := f.service.DeleteCategory(context.Background(), "CAT-001", false)

		if !apperr.IsInvalid(err) {
			t.Fatalf("expected invalid error, got %v", err)
		}
		if len(f.categoryRepo.categories) != 4 {
			t.Error("expected nothing to be deleted")
		}
	})

	t.Run("recursive removes subtree", func(t *testing.T) {
		f := newTestCategoryService()

		if err := f.service.DeleteCategory(context.Background(), "CAT-001", true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(f.categoryRepo.categories) != 1 {
			t.Errorf("expected only CAT-004 left, got %d categories", len(f.categoryRepo.categories))
		}
	})

	t.Run("leaf", func(t *testing.T) {
		f := newTestCategoryService()

		if err := f.service.DeleteCategory(context.Background(), "CAT-003", false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := f.categoryRepo.categories["CAT-003"]; ok {
			t.Error("expected CAT-003 to be deleted")
		}
		if f.logWriter.entries[len(f.logWriter.entries)-1] != "delete category CAT-003" {
			t.Errorf("expected delete audit entry, got %v", f.logWriter.entries)
		}
	})

	t.Run("missing", func(t *testing.T) {
		f := newTestCategoryService()

		if err := f.service.DeleteCategory(context.Background(), "CAT-404", true); !apperr.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestGetCategoryTree(t *testing.T) {
	f := newTestCategoryService()

	tree, err := f.service.GetCategoryTree(context.Background())

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree))
	}
	// 経理 has display order -1 and sorts first
	if tree[0].ID != "CAT-004" || tree[1].ID != "CAT-001" {
		t.Errorf("unexpected root order: %s, %s", tree[0].ID, tree[1].ID)
	}
	if len(tree[1].Children) != 1 || len(tree[1].Children[0].Children) != 1 {
		t.Error("expected 受付 > 受付サブ > 詳細")
	}
}

func TestGetCategoryManuals(t *testing.T) {
	f := newTestCategoryService()
	f.linkRepo.byCategory["CAT-001"] = []*secondary.LinkedManualRecord{
		{Manual: &secondary.ManualRecord{ID: "MAN-001", Title: "受付手順"}, EntryPoint: "n1", DisplayOrder: 0},
	}

	manuals, err := f.service.GetCategoryManuals(context.Background(), "CAT-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(manuals) != 1 || manuals[0].Manual.ID != "MAN-001" || manuals[0].EntryPoint != "n1" {
		t.Errorf("unexpected manuals: %+v", manuals)
	}

	if _, err := f.service.GetCategoryManuals(context.Background(), "CAT-404"); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCategoryGlobalLock(t *testing.T) {
	f := newTestCategoryService()
	ctx := context.Background()

	got, err := f.service.AcquireGlobalLock(ctx, "alice")
	if err != nil || !got.Acquired {
		t.Fatalf("expected global lock, got %+v, %v", got, err)
	}
	if _, held := f.lockRepo.locks[lock.CategoryTreeResource]; !held {
		t.Fatal("expected category-tree resource to be locked")
	}

	status, err := f.service.CheckGlobalLock(ctx)
	if err != nil || status.Holder != "alice" {
		t.Errorf("expected alice to hold the lock, got %+v, %v", status, err)
	}

	if err := f.service.ReleaseGlobalLock(ctx, got.Token); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if _, err := f.service.AcquireGlobalLock(ctx, "bob"); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	status, err = f.service.ForceReleaseGlobalLock(ctx)
	if err != nil || status.Holder != "bob" {
		t.Errorf("expected bob to be displaced, got %+v, %v", status, err)
	}
}
