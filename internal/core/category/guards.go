// Package category contains the pure business logic for the category tree.
// Guards are pure functions that evaluate preconditions without side effects.
package category

import (
	"fmt"
	"strings"

	"github.com/example/guidebook/internal/apperr"
)

// MaxDepth is the deepest level a category may sit at.
const MaxDepth = 5

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an ErrInvalid error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.Invalid("%s", r.Reason)
}

// CreateCategoryContext provides context for category creation guards.
type CreateCategoryContext struct {
	Name         string
	ParentID     string // empty for a root category
	ParentExists bool
	ParentLevel  int
	Level        int // level supplied by the caller; 0 means "compute it"
}

// ReparentContext provides context for moving a category under a new parent.
type ReparentContext struct {
	CategoryID      string
	NewParentID     string // empty to make it a root
	NewParentExists bool
	NewParentLevel  int
	IsDescendant    bool // NewParentID lies inside CategoryID's subtree
	SubtreeHeight   int  // 0 for a leaf
}

// DeleteCategoryContext provides context for category deletion guards.
type DeleteCategoryContext struct {
	CategoryID string
	ChildCount int
	Recursive  bool
}

// ExpectedLevel returns the level a child of parentLevel must have.
// A category without parent sits at level 1.
func ExpectedLevel(hasParent bool, parentLevel int) int {
	if !hasParent {
		return 1
	}
	return parentLevel + 1
}

// CanCreateCategory evaluates whether a category can be created.
// Rules:
// - Name must not be blank
// - Parent must exist (if parent_id provided)
// - Supplied level must equal parent level + 1 (or 1 for a root)
// - Resulting level must not exceed MaxDepth
func CanCreateCategory(ctx CreateCategoryContext) GuardResult {
	if strings.TrimSpace(ctx.Name) == "" {
		return GuardResult{Allowed: false, Reason: "category name is required"}
	}

	if ctx.ParentID != "" && !ctx.ParentExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("parent category %s not found", ctx.ParentID),
		}
	}

	want := ExpectedLevel(ctx.ParentID != "", ctx.ParentLevel)
	if ctx.Level != 0 && ctx.Level != want {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("level %d does not match parent level; expected %d", ctx.Level, want),
		}
	}

	if want > MaxDepth {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("category tree is limited to %d levels", MaxDepth),
		}
	}

	return GuardResult{Allowed: true}
}

// CanReparent evaluates whether a category can be moved under a new parent.
// Rules:
// - A category cannot be its own parent
// - New parent must exist (if provided)
// - New parent must not be inside the moved subtree
// - The deepest moved descendant must stay within MaxDepth
func CanReparent(ctx ReparentContext) GuardResult {
	if ctx.NewParentID == ctx.CategoryID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("category %s cannot be its own parent", ctx.CategoryID),
		}
	}

	if ctx.NewParentID != "" && !ctx.NewParentExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("parent category %s not found", ctx.NewParentID),
		}
	}

	if ctx.IsDescendant {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot move category %s under its own descendant %s", ctx.CategoryID, ctx.NewParentID),
		}
	}

	newLevel := ExpectedLevel(ctx.NewParentID != "", ctx.NewParentLevel)
	if newLevel+ctx.SubtreeHeight > MaxDepth {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("moving category %s would exceed %d levels", ctx.CategoryID, MaxDepth),
		}
	}

	return GuardResult{Allowed: true}
}

// CanDeleteCategory evaluates whether a category can be deleted.
// Rules:
// - A category with subcategories is only deleted recursively
func CanDeleteCategory(ctx DeleteCategoryContext) GuardResult {
	if ctx.ChildCount > 0 && !ctx.Recursive {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("category %s has %d subcategories. Move them first or delete recursively", ctx.CategoryID, ctx.ChildCount),
		}
	}
	return GuardResult{Allowed: true}
}
