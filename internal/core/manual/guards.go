// Package manual contains the pure business logic for manuals and their
// version chains.
package manual

import (
	"fmt"
	"strings"

	"github.com/example/guidebook/internal/apperr"
)

// Manual statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// ValidStatus reports whether s is a known manual status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// ChainRoot returns the root of the version chain a manual row belongs to.
// Rows written before parent ids were tracked have no parent and are their own root.
func ChainRoot(id, parentID string) string {
	if parentID == "" {
		return id
	}
	return parentID
}

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

// CreateManualContext provides context for manual creation guards.
type CreateManualContext struct {
	Title          string
	Status         string // empty means draft
	CategoryID     string // optional initial link
	CategoryExists bool
}

// UpdateManualContext provides context for manual update guards.
// Only fields that are being changed are set.
type UpdateManualContext struct {
	ManualID string
	Title    *string
	Status   *string
}

// LinkCategoryContext provides context for linking a manual to a category.
type LinkCategoryContext struct {
	ManualID         string
	ManualExists     bool
	CategoryID       string
	CategoryExists   bool
	EntryPoint       string
	EntryPointExists bool
}

// CanCreateManual evaluates whether a manual can be created.
// Rules:
// - Title must not be blank
// - Status, when given, must be draft, published or archived
// - Category must exist (if category_id provided)
func CanCreateManual(ctx CreateManualContext) GuardResult {
	if strings.TrimSpace(ctx.Title) == "" {
		return GuardResult{Allowed: false, Reason: "manual title is required"}
	}

	if ctx.Status != "" && !ValidStatus(ctx.Status) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid status %q", ctx.Status),
		}
	}

	if ctx.CategoryID != "" && !ctx.CategoryExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("category %s not found", ctx.CategoryID),
		}
	}

	return GuardResult{Allowed: true}
}

// CanUpdateManual evaluates whether the supplied fields may be written.
// Rules:
// - Title, when supplied, must not be blank
// - Status, when supplied, must be valid
func CanUpdateManual(ctx UpdateManualContext) GuardResult {
	if ctx.Title != nil && strings.TrimSpace(*ctx.Title) == "" {
		return GuardResult{Allowed: false, Reason: "manual title cannot be empty"}
	}

	if ctx.Status != nil && !ValidStatus(*ctx.Status) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid status %q", *ctx.Status),
		}
	}

	return GuardResult{Allowed: true}
}

// CanLinkCategory evaluates whether a manual can be linked to a category.
// Rules:
// - Manual and category must exist
// - Entry point, when given, must be a node of the manual's flow
func CanLinkCategory(ctx LinkCategoryContext) GuardResult {
	if !ctx.ManualExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("manual %s not found", ctx.ManualID),
		}
	}

	if !ctx.CategoryExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("category %s not found", ctx.CategoryID),
		}
	}

	if ctx.EntryPoint != "" && !ctx.EntryPointExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("entry point %s is not a step of manual %s", ctx.EntryPoint, ctx.ManualID),
		}
	}

	return GuardResult{Allowed: true}
}
