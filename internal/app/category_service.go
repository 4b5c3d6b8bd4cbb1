package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/core/category"
	"github.com/example/guidebook/internal/core/lock"
	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/ports/secondary"
)

// CategoryServiceImpl implements the CategoryService interface.
type CategoryServiceImpl struct {
	categoryRepo secondary.CategoryRepository
	linkRepo     secondary.LinkRepository
	locks        primary.LockService
	logWriter    secondary.LogWriter
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService with injected dependencies.
func NewCategoryService(
	categoryRepo secondary.CategoryRepository,
	linkRepo secondary.LinkRepository,
	locks primary.LockService,
	logWriter secondary.LogWriter,
	logger *zap.Logger,
) *CategoryServiceImpl {
	return &CategoryServiceImpl{
		categoryRepo: categoryRepo,
		linkRepo:     linkRepo,
		locks:        locks,
		logWriter:    logWriter,
		logger:       logger,
	}
}

// ListCategories retrieves all categories, shallowest first.
func (s *CategoryServiceImpl) ListCategories(ctx context.Context) ([]*primary.Category, error) {
	records, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]*primary.Category, len(records))
	for i, r := range records {
		categories[i] = recordToCategory(r)
	}
	return categories, nil
}

// GetCategory retrieves a category by ID.
func (s *CategoryServiceImpl) GetCategory(ctx context.Context, categoryID string) (*primary.Category, error) {
	record, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return recordToCategory(record), nil
}

// GetCategoryTree returns the categories as a forest.
func (s *CategoryServiceImpl) GetCategoryTree(ctx context.Context) ([]*primary.CategoryNode, error) {
	records, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	byID := make(map[string]*secondary.CategoryRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	var convert func(nodes []*category.TreeNode) []*primary.CategoryNode
	convert = func(nodes []*category.TreeNode) []*primary.CategoryNode {
		out := make([]*primary.CategoryNode, len(nodes))
		for i, n := range nodes {
			out[i] = &primary.CategoryNode{
				Category: recordToCategory(byID[n.ID]),
				Children: convert(n.Children),
			}
		}
		return out
	}
	return convert(category.BuildTree(recordsToItems(records))), nil
}

// CreateCategory creates a category, computing its level and path when not supplied.
func (s *CategoryServiceImpl) CreateCategory(ctx context.Context, req primary.CreateCategoryRequest) (*primary.CreateCategoryResponse, error) {
	var parent *secondary.CategoryRecord
	if req.ParentID != "" {
		p, err := s.categoryRepo.GetByID(ctx, req.ParentID)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, fmt.Errorf("failed to validate parent category: %w", err)
		}
		parent = p
	}

	guardCtx := category.CreateCategoryContext{
		Name:         req.Name,
		ParentID:     req.ParentID,
		ParentExists: parent != nil,
		Level:        req.Level,
	}
	if parent != nil {
		guardCtx.ParentLevel = parent.Level
	}
	if result := category.CanCreateCategory(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	name := strings.TrimSpace(req.Name)
	level := category.ExpectedLevel(parent != nil, guardCtx.ParentLevel)
	path := req.Path
	if path == "" {
		parentPath := ""
		if parent != nil {
			parentPath = parent.Path
		}
		path = category.JoinPath(parentPath, name)
	}

	record := &secondary.CategoryRecord{
		Name:         name,
		Icon:         req.Icon,
		ParentID:     req.ParentID,
		Level:        level,
		Path:         path,
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.categoryRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	created, err := s.categoryRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created category: %w", err)
	}
	s.audit(s.logWriter.LogCreate(ctx, "category", created.ID))

	return &primary.CreateCategoryResponse{
		CategoryID: created.ID,
		Category:   recordToCategory(created),
	}, nil
}

// UpdateCategory applies the supplied fields. Renames and moves rewrite the
// path of the whole subtree, moves also shift its levels.
func (s *CategoryServiceImpl) UpdateCategory(ctx context.Context, req primary.UpdateCategoryRequest) (*primary.Category, error) {
	current, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apperr.Invalid("category name cannot be empty")
	}

	update := secondary.CategoryUpdate{
		Icon:         req.Icon,
		DisplayOrder: req.DisplayOrder,
	}

	name := current.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name != current.Name {
			update.Name = &name
		}
	}

	moving := req.ParentID != nil && *req.ParentID != current.ParentID
	if moving || update.Name != nil {
		parentID := current.ParentID
		if moving {
			parentID = *req.ParentID
		}

		parentPath, parentLevel, err := s.resolveParent(ctx, current, parentID, moving)
		if err != nil {
			return nil, err
		}

		path := category.JoinPath(parentPath, name)
		update.Path = &path
		if moving {
			level := category.ExpectedLevel(parentID != "", parentLevel)
			update.ParentID = &parentID
			update.Level = &level
		}
	}

	if update.IsEmpty() {
		return recordToCategory(current), nil
	}

	if err := s.categoryRepo.Update(ctx, req.CategoryID, update); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	if update.Name != nil {
		s.audit(s.logWriter.LogUpdate(ctx, "category", current.ID, "name", current.Name, name))
	}
	if update.ParentID != nil {
		s.audit(s.logWriter.LogUpdate(ctx, "category", current.ID, "parent_id", current.ParentID, *update.ParentID))
	}

	updated, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated category: %w", err)
	}
	return recordToCategory(updated), nil
}

// resolveParent returns the path and level of the (new) parent. When moving,
// the move is checked against the current tree first.
func (s *CategoryServiceImpl) resolveParent(ctx context.Context, current *secondary.CategoryRecord, parentID string, moving bool) (string, int, error) {
	var parent *secondary.CategoryRecord
	if parentID != "" && parentID != current.ID {
		p, err := s.categoryRepo.GetByID(ctx, parentID)
		if err != nil && !apperr.IsNotFound(err) {
			return "", 0, fmt.Errorf("failed to validate parent category: %w", err)
		}
		parent = p
	}

	if moving {
		records, err := s.categoryRepo.List(ctx)
		if err != nil {
			return "", 0, fmt.Errorf("failed to list categories: %w", err)
		}
		items := recordsToItems(records)

		guardCtx := category.ReparentContext{
			CategoryID:      current.ID,
			NewParentID:     parentID,
			NewParentExists: parent != nil,
			IsDescendant:    parentID != "" && category.IsDescendant(items, current.ID, parentID),
			SubtreeHeight:   category.SubtreeHeight(items, current.ID),
		}
		if parent != nil {
			guardCtx.NewParentLevel = parent.Level
		}
		if result := category.CanReparent(guardCtx); !result.Allowed {
			return "", 0, result.Error()
		}
	}

	if parent == nil {
		return "", 0, nil
	}
	return parent.Path, parent.Level, nil
}

// DeleteCategory deletes a category. Subcategories are only removed when recursive is set.
func (s *CategoryServiceImpl) DeleteCategory(ctx context.Context, categoryID string, recursive bool) error {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return err
	}

	childCount, err := s.categoryRepo.CountChildren(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to count subcategories: %w", err)
	}

	guardCtx := category.DeleteCategoryContext{
		CategoryID: categoryID,
		ChildCount: childCount,
		Recursive:  recursive,
	}
	if result := category.CanDeleteCategory(guardCtx); !result.Allowed {
		return result.Error()
	}

	if childCount > 0 {
		removed, err := s.categoryRepo.DeleteSubtree(ctx, categoryID)
		if err != nil {
			return fmt.Errorf("failed to delete category subtree: %w", err)
		}
		s.logger.Info("category subtree deleted", zap.String("category_id", categoryID), zap.Int("removed", removed))
	} else if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.audit(s.logWriter.LogDelete(ctx, "category", categoryID))
	return nil
}

// GetCategoryManuals retrieves the manuals linked to a category in link order.
func (s *CategoryServiceImpl) GetCategoryManuals(ctx context.Context, categoryID string) ([]*primary.CategoryManual, error) {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}

	records, err := s.linkRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list category manuals: %w", err)
	}
	return linkedToCategoryManuals(records), nil
}

// AcquireGlobalLock takes the category tree lock.
func (s *CategoryServiceImpl) AcquireGlobalLock(ctx context.Context, holder string) (*primary.LockResult, error) {
	return s.locks.Acquire(ctx, lock.CategoryTreeResource, holder)
}

// ReleaseGlobalLock releases the category tree lock.
func (s *CategoryServiceImpl) ReleaseGlobalLock(ctx context.Context, token string) error {
	return s.locks.Release(ctx, lock.CategoryTreeResource, token)
}

// ForceReleaseGlobalLock breaks the category tree lock.
func (s *CategoryServiceImpl) ForceReleaseGlobalLock(ctx context.Context) (*primary.LockStatus, error) {
	return s.locks.ForceRelease(ctx, lock.CategoryTreeResource)
}

// CheckGlobalLock reports who holds the category tree lock.
func (s *CategoryServiceImpl) CheckGlobalLock(ctx context.Context) (*primary.LockStatus, error) {
	return s.locks.Check(ctx, lock.CategoryTreeResource)
}

func (s *CategoryServiceImpl) audit(err error) {
	if err != nil {
		s.logger.Error("failed to write audit entry", zap.Error(err))
	}
}

func recordsToItems(records []*secondary.CategoryRecord) []category.Item {
	items := make([]category.Item, len(records))
	for i, r := range records {
		items[i] = category.Item{
			ID:           r.ID,
			ParentID:     r.ParentID,
			Name:         r.Name,
			Level:        r.Level,
			DisplayOrder: r.DisplayOrder,
		}
	}
	return items
}

func recordToCategory(r *secondary.CategoryRecord) *primary.Category {
	return &primary.Category{
		ID:           r.ID,
		Name:         r.Name,
		Icon:         r.Icon,
		ParentID:     r.ParentID,
		Level:        r.Level,
		Path:         r.Path,
		DisplayOrder: r.DisplayOrder,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func linkedToCategoryManuals(records []*secondary.LinkedManualRecord) []*primary.CategoryManual {
	out := make([]*primary.CategoryManual, len(records))
	for i, r := range records {
		out[i] = &primary.CategoryManual{
			Manual:       recordToManualSummary(r.Manual),
			EntryPoint:   r.EntryPoint,
			DisplayOrder: r.DisplayOrder,
		}
	}
	return out
}

// Ensure CategoryServiceImpl implements the interface
var _ primary.CategoryService = (*CategoryServiceImpl)(nil)
