package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/example/guidebook/internal/ports/primary"
)

// AdminAdapter covers import, backup, data root and audit commands.
type AdminAdapter struct {
	imports primary.ImportService
	backups primary.BackupService
	system  primary.SystemService
	audit   primary.AuditService
	out     io.Writer
	quiet   bool
}

// NewAdminAdapter creates a new AdminAdapter. quiet suppresses the import progress bar.
func NewAdminAdapter(
	imports primary.ImportService,
	backups primary.BackupService,
	system primary.SystemService,
	audit primary.AuditService,
	out io.Writer,
	quiet bool,
) *AdminAdapter {
	return &AdminAdapter{
		imports: imports,
		backups: backups,
		system:  system,
		audit:   audit,
		out:     out,
		quiet:   quiet,
	}
}

// ImportKind selects an import source.
type ImportKind int

const (
	ImportJSONFile ImportKind = iota
	ImportDirectory
)

// Import runs a JSON file or folder import and prints the outcome.
func (a *AdminAdapter) Import(ctx context.Context, kind ImportKind, path string, patterns []string) (*primary.ImportResult, error) {
	var bar *progressbar.ProgressBar
	opts := primary.ImportOptions{Patterns: patterns}
	if !a.quiet {
		opts.OnProgress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(a.out),
					progressbar.OptionSetDescription("Importing"),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionThrottle(65*time.Millisecond),
					progressbar.OptionOnCompletion(func() {
						fmt.Fprintln(a.out)
					}),
				)
			}
			bar.Set(done)
		}
	}

	var (
		res *primary.ImportResult
		err error
	)
	switch kind {
	case ImportDirectory:
		res, err = a.imports.ImportDirectory(ctx, path, opts)
	default:
		res, err = a.imports.ImportJSONFile(ctx, path, opts)
	}
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, err
	}

	a.printResult(res.Success, res.Message)
	for _, s := range res.Skipped {
		fmt.Fprintf(a.out, "  skipped: %s\n", s)
	}
	return res, nil
}

func (a *AdminAdapter) printResult(success bool, message string) {
	if success {
		fmt.Fprintf(a.out, "✓ %s\n", message)
		return
	}
	fmt.Fprintf(a.out, "%s %s\n", color.New(color.FgRed).Sprint("✗"), message)
}

// Backup takes a snapshot and prints where it went.
func (a *AdminAdapter) Backup(ctx context.Context) (*primary.BackupResult, error) {
	res, err := a.backups.Backup(ctx)
	if err != nil {
		return nil, err
	}
	a.printResult(res.Success, res.Message)
	if res.Success {
		fmt.Fprintf(a.out, "  database: %s\n", res.DatabasePath)
		fmt.Fprintf(a.out, "  media:    %s\n", res.MediaPath)
		if res.Removed > 0 {
			fmt.Fprintf(a.out, "  rotated:  %d old snapshot(s)\n", res.Removed)
		}
	}
	return res, nil
}

// Restore replaces the live data with a snapshot.
func (a *AdminAdapter) Restore(ctx context.Context, dbPath, mediaDir string) (*primary.BackupResult, error) {
	res, err := a.backups.Restore(ctx, dbPath, mediaDir)
	if err != nil {
		return nil, err
	}
	a.printResult(res.Success, res.Message)
	if res.DatabasePath != "" {
		fmt.Fprintf(a.out, "  safety backup: %s\n", res.DatabasePath)
	}
	return res, nil
}

// Backups prints the kept snapshots, newest first.
func (a *AdminAdapter) Backups(ctx context.Context) ([]*primary.BackupEntry, error) {
	entries, err := a.backups.ListBackups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No backups found.")
		return entries, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tSIZE\tMODIFIED")
	for _, e := range entries {
		kind := "database"
		if e.IsMedia {
			kind = "media"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Name, kind, e.Size, e.ModTime)
	}
	w.Flush()
	return entries, nil
}

// DataRoot prints the storage layout.
func (a *AdminAdapter) DataRoot(ctx context.Context) (*primary.DataRoot, error) {
	root, err := a.system.GetDataRoot(ctx)
	if err != nil {
		return nil, err
	}
	a.printDataRoot(root)
	return root, nil
}

// SetDataRoot saves a custom data root for the next start.
func (a *AdminAdapter) SetDataRoot(ctx context.Context, path string) (*primary.DataRoot, error) {
	root, err := a.system.SetCustomDataPath(ctx, path)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Data root set to %s\n", root.Root)
	if root.RestartRequired {
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("  Takes effect on the next start."))
	}
	return root, nil
}

func (a *AdminAdapter) printDataRoot(root *primary.DataRoot) {
	kind := "default"
	if root.IsCustom {
		kind = "custom"
	}
	fmt.Fprintf(a.out, "Root:     %s (%s)\n", root.Root, kind)
	fmt.Fprintf(a.out, "Database: %s\n", root.DatabasePath)
	fmt.Fprintf(a.out, "Media:    %s\n", root.MediaDir)
	fmt.Fprintf(a.out, "Backups:  %s\n", root.BackupDir)
}

// Audit prints audit entries, newest first.
func (a *AdminAdapter) Audit(ctx context.Context, filters primary.AuditFilters) ([]*primary.AuditEntry, error) {
	entries, err := a.audit.ListEntries(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No audit entries.")
		return entries, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTOR\tACTION\tENTITY\tCHANGE")
	for _, e := range entries {
		change := ""
		if e.FieldName != "" {
			change = fmt.Sprintf("%s: %s → %s", e.FieldName, e.OldValue, e.NewValue)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n", e.CreatedAt, e.Actor, e.Action, e.EntityType, e.EntityID, change)
	}
	w.Flush()
	return entries, nil
}
