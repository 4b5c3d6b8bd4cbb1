// Package primary defines the primary ports (driving adapters) of the application:
// the service interfaces the CLI and HTTP layers call.
package primary

import "context"

// CategoryService defines the primary port for category tree operations.
type CategoryService interface {
	// ListCategories retrieves all categories ordered by level, then display order.
	ListCategories(ctx context.Context) ([]*Category, error)

	// GetCategory retrieves a category by ID.
	GetCategory(ctx context.Context, categoryID string) (*Category, error)

	// GetCategoryTree returns the category forest built from the flat rows.
	GetCategoryTree(ctx context.Context) ([]*CategoryNode, error)

	// CreateCategory creates a category under an optional parent.
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CreateCategoryResponse, error)

	// UpdateCategory applies the supplied fields. Rename and reparent rewrite the subtree.
	UpdateCategory(ctx context.Context, req UpdateCategoryRequest) (*Category, error)

	// DeleteCategory deletes a category; recursive also deletes its subcategories.
	DeleteCategory(ctx context.Context, categoryID string, recursive bool) error

	// GetCategoryManuals retrieves the manuals linked to a category with their entry points.
	GetCategoryManuals(ctx context.Context, categoryID string) ([]*CategoryManual, error)

	// AcquireGlobalLock locks the category tree for structural edits.
	AcquireGlobalLock(ctx context.Context, holder string) (*LockResult, error)

	// ReleaseGlobalLock releases the category tree lock held with token.
	ReleaseGlobalLock(ctx context.Context, token string) error

	// ForceReleaseGlobalLock breaks the category tree lock regardless of holder.
	ForceReleaseGlobalLock(ctx context.Context) (*LockStatus, error)

	// CheckGlobalLock reports who holds the category tree lock.
	CheckGlobalLock(ctx context.Context) (*LockStatus, error)
}

// CreateCategoryRequest contains parameters for creating a category.
// Level 0 and an empty Path are computed from the parent.
type CreateCategoryRequest struct {
	Name         string `json:"name"`
	ParentID     string `json:"parent_id,omitempty"`
	Icon         string `json:"icon,omitempty"`
	Level        int    `json:"level,omitempty"`
	Path         string `json:"path,omitempty"`
	DisplayOrder int    `json:"display_order,omitempty"`
}

// CreateCategoryResponse contains the result of creating a category.
type CreateCategoryResponse struct {
	CategoryID string    `json:"id"`
	Category   *Category `json:"category"`
}

// UpdateCategoryRequest contains the fields to change. Nil fields are left alone;
// a ParentID pointing at "" moves the category to the root.
type UpdateCategoryRequest struct {
	CategoryID   string  `json:"-"`
	Name         *string `json:"name,omitempty"`
	Icon         *string `json:"icon,omitempty"`
	ParentID     *string `json:"parent_id,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
}

// Category represents a category at the port boundary.
type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Icon         string `json:"icon,omitempty"`
	ParentID     string `json:"parent_id,omitempty"`
	Level        int    `json:"level"`
	Path         string `json:"path"`
	DisplayOrder int    `json:"display_order"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// CategoryNode is one category of the transient tree view.
type CategoryNode struct {
	*Category
	Children []*CategoryNode `json:"children"`
}

// CategoryManual is a manual as listed inside a category.
type CategoryManual struct {
	Manual       *ManualSummary `json:"manual"`
	EntryPoint   string         `json:"entry_point,omitempty"`
	DisplayOrder int            `json:"display_order"`
}
