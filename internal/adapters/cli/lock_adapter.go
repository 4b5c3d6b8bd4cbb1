package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/guidebook/internal/core/lock"
	"github.com/example/guidebook/internal/ports/primary"
)

// LockAdapter translates CLI operations to LockService calls.
type LockAdapter struct {
	service primary.LockService
	out     io.Writer
}

// NewLockAdapter creates a new LockAdapter with the given service.
func NewLockAdapter(service primary.LockService, out io.Writer) *LockAdapter {
	return &LockAdapter{
		service: service,
		out:     out,
	}
}

// ResolveResource maps a CLI target to a lock resource: "tree" names the
// category tree, anything else a manual ID.
func ResolveResource(target string) string {
	switch {
	case target == "tree" || target == lock.CategoryTreeResource:
		return lock.CategoryTreeResource
	case strings.Contains(target, ":"):
		return target
	default:
		return lock.ManualResource(target)
	}
}

// Acquire locks target for holder and prints the token on success.
func (a *LockAdapter) Acquire(ctx context.Context, target, holder string) (*primary.LockResult, error) {
	resource := ResolveResource(target)
	res, err := a.service.Acquire(ctx, resource, holder)
	if err != nil {
		return nil, err
	}
	if !res.Acquired {
		fmt.Fprintf(a.out, "%s %s is locked by %s since %s\n",
			color.New(color.FgYellow).Sprint("!"), resource, res.Holder, res.AcquiredAt)
		return res, nil
	}
	fmt.Fprintf(a.out, "✓ Locked %s for %s\n", resource, res.Holder)
	fmt.Fprintf(a.out, "  token: %s\n", res.Token)
	return res, nil
}

// Release releases target with token.
func (a *LockAdapter) Release(ctx context.Context, target, token string) error {
	resource := ResolveResource(target)
	if err := a.service.Release(ctx, resource, token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Released %s\n", resource)
	return nil
}

// ForceRelease breaks target's lock and reports who held it.
func (a *LockAdapter) ForceRelease(ctx context.Context, target string) (*primary.LockStatus, error) {
	resource := ResolveResource(target)
	status, err := a.service.ForceRelease(ctx, resource)
	if err != nil {
		return nil, err
	}
	if status.Holder != "" {
		fmt.Fprintf(a.out, "✓ Force released %s (was held by %s)\n", resource, status.Holder)
	} else {
		fmt.Fprintf(a.out, "✓ %s was not locked\n", resource)
	}
	return status, nil
}

// Check prints who holds target.
func (a *LockAdapter) Check(ctx context.Context, target string) (*primary.LockStatus, error) {
	status, err := a.service.Check(ctx, ResolveResource(target))
	if err != nil {
		return nil, err
	}
	if !status.Locked {
		fmt.Fprintf(a.out, "%s is not locked\n", status.Resource)
		return status, nil
	}
	fmt.Fprintf(a.out, "%s is locked by %s since %s\n", status.Resource, status.Holder, status.AcquiredAt)
	return status, nil
}

// List prints every held lock.
func (a *LockAdapter) List(ctx context.Context) ([]*primary.LockStatus, error) {
	locks, err := a.service.ListLocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locks: %w", err)
	}
	if len(locks) == 0 {
		fmt.Fprintln(a.out, "No locks held.")
		return locks, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RESOURCE\tHOLDER\tSINCE")
	fmt.Fprintln(w, "--------\t------\t-----")
	for _, l := range locks {
		fmt.Fprintf(w, "%s\t%s\t%s\n", l.Resource, l.Holder, l.AcquiredAt)
	}
	w.Flush()
	return locks, nil
}
