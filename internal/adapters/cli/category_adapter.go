package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/guidebook/internal/ports/primary"
)

// CategoryAdapter is a thin adapter that translates CLI operations to CategoryService calls.
// It depends only on the CategoryService interface, enabling easy testing with mocks.
type CategoryAdapter struct {
	service primary.CategoryService
	out     io.Writer
}

// NewCategoryAdapter creates a new CategoryAdapter with the given service.
func NewCategoryAdapter(service primary.CategoryService, out io.Writer) *CategoryAdapter {
	return &CategoryAdapter{
		service: service,
		out:     out,
	}
}

// List prints every category as a table.
func (a *CategoryAdapter) List(ctx context.Context) ([]*primary.Category, error) {
	categories, err := a.service.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if len(categories) == 0 {
		fmt.Fprintln(a.out, "No categories found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Create your first category:")
		fmt.Fprintln(a.out, "  guidebook category create 受付")
		return categories, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tLEVEL\tPATH")
	fmt.Fprintln(w, "--\t-----\t----")
	for _, c := range categories {
		fmt.Fprintf(w, "%s\t%d\t%s\n", c.ID, c.Level, c.Path)
	}
	w.Flush()
	return categories, nil
}

// Tree prints the category forest, one indented line per category.
func (a *CategoryAdapter) Tree(ctx context.Context) ([]*primary.CategoryNode, error) {
	tree, err := a.service.GetCategoryTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build category tree: %w", err)
	}
	if len(tree) == 0 {
		fmt.Fprintln(a.out, "No categories found.")
		return tree, nil
	}

	idColor := color.New(color.FgCyan)
	var walk func(nodes []*primary.CategoryNode, depth int)
	walk = func(nodes []*primary.CategoryNode, depth int) {
		for _, n := range nodes {
			icon := ""
			if n.Icon != "" {
				icon = n.Icon + " "
			}
			fmt.Fprintf(a.out, "%s%s%s %s\n", strings.Repeat("  ", depth), icon, n.Name, idColor.Sprintf("[%s]", n.ID))
			walk(n.Children, depth+1)
		}
	}
	walk(tree, 0)
	return tree, nil
}

// Show displays a category and the manuals linked to it.
func (a *CategoryAdapter) Show(ctx context.Context, categoryID string) (*primary.Category, error) {
	c, err := a.service.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	manuals, err := a.service.GetCategoryManuals(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list category manuals: %w", err)
	}

	fmt.Fprintf(a.out, "\nCategory: %s\n", c.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", c.Name)
	fmt.Fprintf(a.out, "Path:    %s\n", c.Path)
	fmt.Fprintf(a.out, "Level:   %d\n", c.Level)
	if c.ParentID != "" {
		fmt.Fprintf(a.out, "Parent:  %s\n", c.ParentID)
	}
	fmt.Fprintf(a.out, "Created: %s\n", c.CreatedAt)

	if len(manuals) > 0 {
		fmt.Fprintln(a.out, "\nManuals:")
		for _, m := range manuals {
			entry := ""
			if m.EntryPoint != "" {
				entry = fmt.Sprintf(" (entry %s)", m.EntryPoint)
			}
			fmt.Fprintf(a.out, "  %s  %s%s\n", m.Manual.ID, m.Manual.Title, entry)
		}
	}
	fmt.Fprintln(a.out)
	return c, nil
}

// Create creates a category under an optional parent.
func (a *CategoryAdapter) Create(ctx context.Context, req primary.CreateCategoryRequest) (*primary.CreateCategoryResponse, error) {
	resp, err := a.service.CreateCategory(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Created category %s: %s\n", resp.CategoryID, resp.Category.Path)
	return resp, nil
}

// Update applies a rename, move or reorder.
func (a *CategoryAdapter) Update(ctx context.Context, req primary.UpdateCategoryRequest) (*primary.Category, error) {
	before, err := a.service.GetCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	after, err := a.service.UpdateCategory(ctx, req)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Category %s updated\n", after.ID)
	if before.Path != after.Path {
		fmt.Fprintf(a.out, "  %s → %s\n", before.Path, after.Path)
	}
	return after, nil
}

// Delete deletes a category; recursive also deletes its subcategories.
func (a *CategoryAdapter) Delete(ctx context.Context, categoryID string, recursive bool) error {
	c, err := a.service.GetCategory(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if err := a.service.DeleteCategory(ctx, categoryID, recursive); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted category %s: %s\n", c.ID, c.Path)
	return nil
}
