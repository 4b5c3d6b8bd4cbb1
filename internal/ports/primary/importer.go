package primary

import "context"

// ImportService defines the primary port for bulk imports.
type ImportService interface {
	// ImportJSON imports an array of {title, category, content, tags} items.
	ImportJSON(ctx context.Context, data []byte, opts ImportOptions) (*ImportResult, error)

	// ImportJSONFile imports a JSON file in the ImportJSON format.
	ImportJSONFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error)

	// ImportDirectory imports a folder tree: folders become categories and
	// matching files become manuals.
	ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error)
}

// ImportOptions tunes an import.
type ImportOptions struct {
	// Patterns overrides the configured file globs for directory imports.
	Patterns []string
	// OnProgress is called after each item with the number done and the total.
	OnProgress func(done, total int)
}

// ImportResult reports what an import created. Failures are reported in
// Success and Message rather than as errors.
type ImportResult struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Manuals    int      `json:"manuals"`
	Categories int      `json:"categories"`
	Skipped    []string `json:"skipped,omitempty"`
}
