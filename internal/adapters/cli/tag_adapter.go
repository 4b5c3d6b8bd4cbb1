package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/guidebook/internal/ports/primary"
)

// TagAdapter translates CLI operations to TagService calls.
type TagAdapter struct {
	service primary.TagService
	out     io.Writer
}

// NewTagAdapter creates a new TagAdapter with the given service.
func NewTagAdapter(service primary.TagService, out io.Writer) *TagAdapter {
	return &TagAdapter{
		service: service,
		out:     out,
	}
}

// List prints every tag.
func (a *TagAdapter) List(ctx context.Context) ([]*primary.Tag, error) {
	tags, err := a.service.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	if len(tags) == 0 {
		fmt.Fprintln(a.out, "No tags found.")
		return tags, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR")
	fmt.Fprintln(w, "--\t----\t-----")
	for _, t := range tags {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Name, t.Color)
	}
	w.Flush()
	return tags, nil
}

// Create creates a tag.
func (a *TagAdapter) Create(ctx context.Context, name, color string) (*primary.Tag, error) {
	resp, err := a.service.CreateTag(ctx, primary.CreateTagRequest{Name: name, Color: color})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Created tag %s: %s\n", resp.TagID, resp.Tag.Name)
	return resp.Tag, nil
}

// Delete deletes a tag and its assignments.
func (a *TagAdapter) Delete(ctx context.Context, tagID string) error {
	if err := a.service.DeleteTag(ctx, tagID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted tag %s\n", tagID)
	return nil
}

// Add tags a manual by name.
func (a *TagAdapter) Add(ctx context.Context, manualID, name string) (*primary.Tag, error) {
	tag, err := a.service.TagManual(ctx, manualID, name)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Tagged %s with %s\n", manualID, tag.Name)
	return tag, nil
}

// Remove untags a manual. The tag may be named by ID or by name.
func (a *TagAdapter) Remove(ctx context.Context, manualID, tag string) error {
	tagID := tag
	if !strings.HasPrefix(tag, "TAG-") {
		t, err := a.service.GetTagByName(ctx, tag)
		if err != nil {
			return err
		}
		tagID = t.ID
	}
	if err := a.service.UntagManual(ctx, manualID, tagID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Removed %s from %s\n", tag, manualID)
	return nil
}

// Show prints the tags of a manual.
func (a *TagAdapter) Show(ctx context.Context, manualID string) ([]*primary.Tag, error) {
	tags, err := a.service.GetManualTags(ctx, manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to get manual tags: %w", err)
	}
	if len(tags) == 0 {
		fmt.Fprintf(a.out, "%s has no tags.\n", manualID)
		return tags, nil
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	fmt.Fprintf(a.out, "%s: %s\n", manualID, strings.Join(names, ", "))
	return tags, nil
}
