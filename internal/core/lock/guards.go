// Package lock contains the pure rules for advisory edit locks.
package lock

import (
	"fmt"
	"strings"

	"github.com/example/guidebook/internal/apperr"
)

// CategoryTreeResource is the single lock guarding structural edits of the category tree.
const CategoryTreeResource = "category-tree"

const manualPrefix = "manual:"

// ManualResource returns the lock resource for a manual.
func ManualResource(manualID string) string {
	return manualPrefix + manualID
}

// ParseResource returns the manual id of a manual resource.
// ok is false for the category-tree lock or an unknown resource.
func ParseResource(resource string) (manualID string, ok bool) {
	if !strings.HasPrefix(resource, manualPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(resource, manualPrefix)
	return id, id != ""
}

// ValidResource reports whether resource names a lockable thing.
func ValidResource(resource string) bool {
	if resource == CategoryTreeResource {
		return true
	}
	_, ok := ParseResource(resource)
	return ok
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	// Conflict marks a refusal caused by another holder rather than bad input.
	Conflict bool
	// NotFound marks a refusal because the locked thing does not exist.
	NotFound bool
}

// Error converts the guard result to an apperr error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	switch {
	case r.Conflict:
		return apperr.Conflict("%s", r.Reason)
	case r.NotFound:
		return apperr.NotFound("%s", r.Reason)
	}
	return apperr.Invalid("%s", r.Reason)
}

// AcquireContext provides context for lock acquisition guards.
type AcquireContext struct {
	Resource     string
	Holder       string
	ManualExists bool // only consulted for manual resources
}

// ReleaseContext provides context for lock release guards.
type ReleaseContext struct {
	Resource  string
	Locked    bool
	HeldToken string
	Token     string
}

// CanAcquire evaluates whether a lock request is well formed.
// Rules:
// - Resource must be a manual or the category tree
// - Holder must not be blank
// - A manual resource requires the manual to exist
func CanAcquire(ctx AcquireContext) GuardResult {
	if !ValidResource(ctx.Resource) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown lock resource %q", ctx.Resource),
		}
	}

	if strings.TrimSpace(ctx.Holder) == "" {
		return GuardResult{Allowed: false, Reason: "lock holder is required"}
	}

	if id, ok := ParseResource(ctx.Resource); ok && !ctx.ManualExists {
		return GuardResult{
			Allowed:  false,
			NotFound: true,
			Reason:   fmt.Sprintf("manual %s not found", id),
		}
	}

	return GuardResult{Allowed: true}
}

// CanRelease evaluates whether a token may release a lock.
// Rules:
// - Releasing an unlocked resource is allowed (no-op)
// - The token must match the one handed out on acquire
func CanRelease(ctx ReleaseContext) GuardResult {
	if !ctx.Locked {
		return GuardResult{Allowed: true}
	}

	if ctx.Token == "" || ctx.Token != ctx.HeldToken {
		return GuardResult{
			Allowed:  false,
			Conflict: true,
			Reason:   fmt.Sprintf("lock on %s is held with a different token", ctx.Resource),
		}
	}

	return GuardResult{Allowed: true}
}
