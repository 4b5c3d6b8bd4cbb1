package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/guidebook/internal/ports/primary"
)

// ManualAdapter translates CLI operations to ManualService calls.
type ManualAdapter struct {
	service primary.ManualService
	out     io.Writer
}

// NewManualAdapter creates a new ManualAdapter with the given service.
func NewManualAdapter(service primary.ManualService, out io.Writer) *ManualAdapter {
	return &ManualAdapter{
		service: service,
		out:     out,
	}
}

func (a *ManualAdapter) printSummaries(manuals []*primary.ManualSummary) {
	star := color.New(color.FgYellow).Sprint("★")
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tVER\tSTATUS\tTITLE\tUPDATED")
	fmt.Fprintln(w, "--\t---\t------\t-----\t-------")
	for _, m := range manuals {
		title := m.Title
		if m.IsFavorite {
			title = star + " " + title
		}
		fmt.Fprintf(w, "%s\tv%d\t%s\t%s\t%s\n", m.ID, m.Version, m.Status, title, m.UpdatedAt)
	}
	w.Flush()
}

// List prints every manual, or only the unassigned ones.
func (a *ManualAdapter) List(ctx context.Context, unassigned bool) ([]*primary.ManualSummary, error) {
	var (
		manuals []*primary.ManualSummary
		err     error
	)
	if unassigned {
		manuals, err = a.service.GetUnassignedManuals(ctx)
	} else {
		manuals, err = a.service.ListManuals(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list manuals: %w", err)
	}

	if len(manuals) == 0 {
		fmt.Fprintln(a.out, "No manuals found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Create your first manual:")
		fmt.Fprintln(a.out, "  guidebook manual create \"受付手順\" --category CAT-001")
		return manuals, nil
	}
	a.printSummaries(manuals)
	return manuals, nil
}

// Search prints the manuals whose title or content contains query.
func (a *ManualAdapter) Search(ctx context.Context, query string) ([]*primary.ManualSummary, error) {
	manuals, err := a.service.SearchManuals(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search manuals: %w", err)
	}
	if len(manuals) == 0 {
		fmt.Fprintf(a.out, "No manuals match %q.\n", query)
		return manuals, nil
	}
	a.printSummaries(manuals)
	return manuals, nil
}

// Show displays a manual with its categories and guide size.
func (a *ManualAdapter) Show(ctx context.Context, manualID string) (*primary.Manual, error) {
	m, err := a.service.GetManual(ctx, manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to get manual: %w", err)
	}
	categories, err := a.service.GetManualCategories(ctx, manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to list manual categories: %w", err)
	}

	fmt.Fprintf(a.out, "\nManual: %s\n", m.ID)
	fmt.Fprintf(a.out, "Title:    %s\n", m.Title)
	fmt.Fprintf(a.out, "Status:   %s\n", m.Status)
	fmt.Fprintf(a.out, "Version:  %d (revision %d)\n", m.Version, m.Revision)
	if m.ParentID != "" {
		fmt.Fprintf(a.out, "Previous: %s\n", m.ParentID)
	}
	if m.CreatedBy != "" {
		fmt.Fprintf(a.out, "Author:   %s\n", m.CreatedBy)
	}
	fmt.Fprintf(a.out, "Updated:  %s\n", m.UpdatedAt)

	switch {
	case m.DocumentError != "":
		fmt.Fprintf(a.out, "Guide:    %s\n", color.New(color.FgRed).Sprintf("unreadable (%s)", m.DocumentError))
	case m.Document != nil:
		fmt.Fprintf(a.out, "Guide:    %d steps, %d transitions\n", len(m.Document.Nodes), len(m.Document.Edges))
	}

	if len(categories) > 0 {
		fmt.Fprintln(a.out, "\nCategories:")
		for _, c := range categories {
			fmt.Fprintf(a.out, "  %s  %s\n", c.Category.ID, c.Category.Path)
		}
	}
	if m.Content != "" {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, m.Content)
	}
	fmt.Fprintln(a.out)
	return m, nil
}

// Create creates a manual, optionally linked to a category.
func (a *ManualAdapter) Create(ctx context.Context, req primary.CreateManualRequest) (*primary.CreateManualResponse, error) {
	resp, err := a.service.CreateManual(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Created manual %s: %s\n", resp.ManualID, resp.Manual.Title)
	return resp, nil
}

// Update applies the supplied fields.
func (a *ManualAdapter) Update(ctx context.Context, req primary.UpdateManualRequest) (*primary.Manual, error) {
	m, err := a.service.UpdateManual(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Manual %s saved (revision %d)\n", m.ID, m.Revision)
	return m, nil
}

// SaveVersion stores the next version of a manual's chain.
func (a *ManualAdapter) SaveVersion(ctx context.Context, req primary.SaveVersionRequest) (*primary.SaveVersionResponse, error) {
	resp, err := a.service.SaveAsNewVersion(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Saved %s as version %d of %s\n", resp.ManualID, resp.Version, req.ManualID)
	return resp, nil
}

// Versions prints a manual's version chain, newest first.
func (a *ManualAdapter) Versions(ctx context.Context, manualID string) ([]*primary.ManualSummary, error) {
	versions, err := a.service.GetVersions(ctx, manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	a.printSummaries(versions)
	return versions, nil
}

// History prints the pre-update snapshots of a manual.
func (a *ManualAdapter) History(ctx context.Context, manualID string) ([]*primary.HistoryEntry, error) {
	history, err := a.service.GetHistory(ctx, manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	if len(history) == 0 {
		fmt.Fprintf(a.out, "No history for %s.\n", manualID)
		return history, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "#\tSAVED\tBY\tTITLE")
	for _, h := range history {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", h.ID, h.CreatedAt, h.ChangedBy, h.Title)
	}
	w.Flush()
	return history, nil
}

// Link links a manual to a category.
func (a *ManualAdapter) Link(ctx context.Context, req primary.LinkCategoryRequest) error {
	if err := a.service.LinkCategory(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Linked %s to %s\n", req.ManualID, req.CategoryID)
	return nil
}

// Unlink removes a manual from a category.
func (a *ManualAdapter) Unlink(ctx context.Context, manualID, categoryID string) error {
	if err := a.service.UnlinkCategory(ctx, manualID, categoryID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Unlinked %s from %s\n", manualID, categoryID)
	return nil
}

// Move moves a manual between categories.
func (a *ManualAdapter) Move(ctx context.Context, manualID, from, to string) error {
	if err := a.service.MoveCategory(ctx, manualID, from, to); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Moved %s\n", manualID)
	fmt.Fprintf(a.out, "  %s → %s\n", from, to)
	return nil
}

// Favorite sets or clears the favorite flag.
func (a *ManualAdapter) Favorite(ctx context.Context, manualID string, favorite bool) error {
	if err := a.service.ToggleFavorite(ctx, manualID, favorite); err != nil {
		return err
	}
	if favorite {
		fmt.Fprintf(a.out, "✓ %s marked as favorite\n", manualID)
	} else {
		fmt.Fprintf(a.out, "✓ %s removed from favorites\n", manualID)
	}
	return nil
}

// Delete deletes a manual and everything attached to it.
func (a *ManualAdapter) Delete(ctx context.Context, manualID string) error {
	m, err := a.service.GetManual(ctx, manualID)
	if err != nil {
		return fmt.Errorf("failed to get manual: %w", err)
	}
	if err := a.service.DeleteManual(ctx, manualID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted manual %s: %s\n", m.ID, m.Title)
	return nil
}
