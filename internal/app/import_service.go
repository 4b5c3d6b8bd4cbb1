package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/example/guidebook/internal/core/category"
	"github.com/example/guidebook/internal/ports/primary"
)

// ImportServiceImpl implements the ImportService interface.
type ImportServiceImpl struct {
	categories primary.CategoryService
	manuals    primary.ManualService
	tags       primary.TagService
	patterns   []string
	logger     *zap.Logger
}

// NewImportService creates a new ImportService. patterns are the default
// file globs for directory imports.
func NewImportService(
	categories primary.CategoryService,
	manuals primary.ManualService,
	tags primary.TagService,
	patterns []string,
	logger *zap.Logger,
) *ImportServiceImpl {
	return &ImportServiceImpl{
		categories: categories,
		manuals:    manuals,
		tags:       tags,
		patterns:   patterns,
		logger:     logger,
	}
}

// importItem is one element of the JSON import format.
type importItem struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
}

// ImportJSON imports a JSON array of manuals.
func (s *ImportServiceImpl) ImportJSON(ctx context.Context, data []byte, opts primary.ImportOptions) (*primary.ImportResult, error) {
	var items []importItem
	if err := json.Unmarshal(data, &items); err != nil {
		return &primary.ImportResult{Success: false, Message: fmt.Sprintf("invalid import JSON: %v", err)}, nil
	}
	if len(items) == 0 {
		return &primary.ImportResult{Success: false, Message: "no manuals to import"}, nil
	}

	run, err := s.newRun(ctx)
	if err != nil {
		return nil, err
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			run.skip(fmt.Sprintf("item %d: title is required", i+1))
		} else {
			run.addManual(ctx, category.SplitPath(item.Category), title, item.Content, item.Tags)
		}

		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(items))
		}
	}

	return run.result(), nil
}

// ImportJSONFile imports a JSON file in the ImportJSON format.
func (s *ImportServiceImpl) ImportJSONFile(ctx context.Context, path string, opts primary.ImportOptions) (*primary.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &primary.ImportResult{Success: false, Message: fmt.Sprintf("failed to read %s: %v", path, err)}, nil
	}
	return s.ImportJSON(ctx, data, opts)
}

// ImportDirectory imports a folder tree. The folder itself becomes the root
// category, sub-folders become subcategories and every file whose name
// matches one of the patterns becomes a manual titled after the file stem.
func (s *ImportServiceImpl) ImportDirectory(ctx context.Context, dir string, opts primary.ImportOptions) (*primary.ImportResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return &primary.ImportResult{Success: false, Message: fmt.Sprintf("failed to open %s: %v", dir, err)}, nil
	}
	if !info.IsDir() {
		return &primary.ImportResult{Success: false, Message: fmt.Sprintf("%s is not a directory", dir)}, nil
	}

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = s.patterns
	}
	matchers, err := compilePatterns(patterns)
	if err != nil {
		return &primary.ImportResult{Success: false, Message: err.Error()}, nil
	}

	files, err := collectFiles(dir, matchers)
	if err != nil {
		return &primary.ImportResult{Success: false, Message: fmt.Sprintf("failed to scan %s: %v", dir, err)}, nil
	}
	if len(files) == 0 {
		return &primary.ImportResult{Success: false, Message: fmt.Sprintf("no files matching %s in %s", strings.Join(patterns, ", "), dir)}, nil
	}

	run, err := s.newRun(ctx)
	if err != nil {
		return nil, err
	}

	root := filepath.Base(filepath.Clean(dir))
	for i, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			run.skip(fmt.Sprintf("%s: %v", rel, err))
		} else {
			names := []string{root}
			if sub := filepath.Dir(rel); sub != "." {
				names = append(names, strings.Split(filepath.ToSlash(sub), "/")...)
			}
			base := filepath.Base(rel)
			title := strings.TrimSuffix(base, filepath.Ext(base))
			run.addManual(ctx, names, title, string(content), nil)
		}

		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(files))
		}
	}

	return run.result(), nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid import pattern %q: %w", p, err)
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

// collectFiles returns the relative paths of matching files,
// skipping hidden files and folders.
func collectFiles(dir string, matchers []glob.Glob) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		for _, m := range matchers {
			if m.Match(d.Name()) {
				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}
				files = append(files, rel)
				break
			}
		}
		return nil
	})
	return files, err
}

// importRun tracks one import: the category index and the counters.
type importRun struct {
	s          *ImportServiceImpl
	byPath     map[string]string
	manuals    int
	categories int
	skipped    []string
}

func (s *ImportServiceImpl) newRun(ctx context.Context) (*importRun, error) {
	existing, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	byPath := make(map[string]string, len(existing))
	for _, c := range existing {
		if _, ok := byPath[c.Path]; !ok {
			byPath[c.Path] = c.ID
		}
	}
	return &importRun{s: s, byPath: byPath}, nil
}

// ensureCategory returns the id of the category at names, creating missing
// levels. Levels deeper than MaxDepth are dropped.
func (r *importRun) ensureCategory(ctx context.Context, names []string) (string, error) {
	if len(names) > category.MaxDepth {
		names = names[:category.MaxDepth]
	}

	parentID, path := "", ""
	for _, name := range names {
		path = category.JoinPath(path, name)
		if id, ok := r.byPath[path]; ok {
			parentID = id
			continue
		}

		resp, err := r.s.categories.CreateCategory(ctx, primary.CreateCategoryRequest{
			Name:     name,
			ParentID: parentID,
			Path:     path,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create category %s: %w", path, err)
		}
		r.byPath[path] = resp.CategoryID
		r.categories++
		parentID = resp.CategoryID
	}
	return parentID, nil
}

func (r *importRun) addManual(ctx context.Context, categoryPath []string, title, content string, tags []string) {
	categoryID := ""
	if len(categoryPath) > 0 {
		id, err := r.ensureCategory(ctx, categoryPath)
		if err != nil {
			r.skip(fmt.Sprintf("%s: %v", title, err))
			return
		}
		categoryID = id
	}

	resp, err := r.s.manuals.CreateManual(ctx, primary.CreateManualRequest{
		Title:      title,
		Content:    content,
		CategoryID: categoryID,
	})
	if err != nil {
		r.skip(fmt.Sprintf("%s: %v", title, err))
		return
	}
	r.manuals++

	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		if _, err := r.s.tags.TagManual(ctx, resp.ManualID, tag); err != nil {
			r.s.logger.Warn("failed to tag imported manual",
				zap.String("manual_id", resp.ManualID),
				zap.String("tag", tag),
				zap.Error(err))
		}
	}
}

func (r *importRun) skip(reason string) {
	r.skipped = append(r.skipped, reason)
	r.s.logger.Warn("import item skipped", zap.String("reason", reason))
}

func (r *importRun) result() *primary.ImportResult {
	msg := fmt.Sprintf("Imported %d manuals and %d categories", r.manuals, r.categories)
	if len(r.skipped) > 0 {
		msg += fmt.Sprintf(" (%d skipped)", len(r.skipped))
	}
	r.s.logger.Info("import finished",
		zap.Int("manuals", r.manuals),
		zap.Int("categories", r.categories),
		zap.Int("skipped", len(r.skipped)))

	return &primary.ImportResult{
		Success:    len(r.skipped) == 0,
		Message:    msg,
		Manuals:    r.manuals,
		Categories: r.categories,
		Skipped:    r.skipped,
	}
}

// Ensure ImportServiceImpl implements the interface
var _ primary.ImportService = (*ImportServiceImpl)(nil)
