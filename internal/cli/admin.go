package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/guidebook/internal/adapters/cli"
	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/wire"
)

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import manuals from a JSON file or a folder",
	Long: `Import manuals.

A .json file is read as a manual export. A directory is walked: every
subdirectory becomes a category and every matching file a manual.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		patterns, _ := cmd.Flags().GetStringSlice("pattern")

		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("cannot import %s: %w", args[0], err)
		}
		kind := cliadapter.ImportJSONFile
		if info.IsDir() {
			kind = cliadapter.ImportDirectory
		}

		res, err := wire.AdminAdapter(quiet).Import(cmd.Context(), kind, args[0], patterns)
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("import incomplete: %s", res.Message)
		}
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the database and media",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := wire.AdminAdapter(false).Backup(cmd.Context())
		if err != nil {
			return err
		}
		return resultError(res)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore [database-snapshot]",
	Short: "Restore the database, and optionally media, from a snapshot",
	Long: `Restore from a snapshot. The current state is backed up first, so a
restore can itself be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		media, _ := cmd.Flags().GetString("media")
		res, err := wire.AdminAdapter(false).Restore(cmd.Context(), args[0], media)
		if err != nil {
			return err
		}
		return resultError(res)
	},
}

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List kept snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.AdminAdapter(false).Backups(cmd.Context())
		return err
	},
}

var dataRootCmd = &cobra.Command{
	Use:   "data-root [path]",
	Short: "Show or set where guidebook keeps its data",
	Long: `Without arguments, show the data root. With a path, save it as the
custom data root used from the next start.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		admin := wire.AdminAdapter(false)
		if len(args) == 1 {
			_, err := admin.SetDataRoot(ctx, args[0])
			return err
		}
		_, err := admin.DataRoot(ctx)
		return err
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, _ := cmd.Flags().GetString("type")
		entityID, _ := cmd.Flags().GetString("id")
		limit, _ := cmd.Flags().GetInt("limit")
		_, err := wire.AdminAdapter(false).Audit(cmd.Context(), primary.AuditFilters{
			EntityType: entityType,
			EntityID:   entityID,
			Limit:      limit,
		})
		return err
	},
}

// resultError turns an unsuccessful result into a non-zero exit.
func resultError(res *primary.BackupResult) error {
	if res.Success {
		return nil
	}
	return fmt.Errorf("%s", res.Message)
}

func init() {
	importCmd.Flags().BoolP("quiet", "q", false, "Hide the progress bar")
	importCmd.Flags().StringSlice("pattern", nil, "File glob for folder import (default from config)")

	restoreCmd.Flags().String("media", "", "Media snapshot directory to restore as well")

	auditCmd.Flags().String("type", "", "Entity type (manual, category, lock)")
	auditCmd.Flags().String("id", "", "Entity ID")
	auditCmd.Flags().IntP("limit", "n", 50, "Maximum entries")
}

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	return importCmd
}

// BackupCmd returns the backup command
func BackupCmd() *cobra.Command {
	return backupCmd
}

// RestoreCmd returns the restore command
func RestoreCmd() *cobra.Command {
	return restoreCmd
}

// BackupsCmd returns the backups command
func BackupsCmd() *cobra.Command {
	return backupsCmd
}

// DataRootCmd returns the data-root command
func DataRootCmd() *cobra.Command {
	return dataRootCmd
}

// AuditCmd returns the audit command
func AuditCmd() *cobra.Command {
	return auditCmd
}
