package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/guidebook/internal/db"
	"github.com/example/guidebook/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the guidebook data root",
		Long: `Create the data root, its media and backup directories, and the
database schema. Running it again is harmless. --sample adds a small
example library to an empty database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Init(); err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			app := wire.App()
			paths := app.Paths

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Database ready at %s\n", paths.DBPath)
			fmt.Fprintf(out, "  media:   %s\n", paths.MediaDir)
			fmt.Fprintf(out, "  backups: %s\n", paths.BackupDir)

			if sample, _ := cmd.Flags().GetBool("sample"); sample {
				existing, err := app.Services.Categories.ListCategories(cmd.Context())
				if err != nil {
					return err
				}
				if len(existing) > 0 {
					return fmt.Errorf("refusing to add sample data: %d categories already exist", len(existing))
				}
				if err := db.SeedFixtures(app.DB); err != nil {
					return fmt.Errorf("failed to add sample data: %w", err)
				}
				fmt.Fprintln(out, "✓ Sample library added")
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  guidebook category create \"受付\"")
			fmt.Fprintln(out, "  guidebook manual create \"受付手順\" --category CAT-001")
			fmt.Fprintln(out, "  guidebook serve")
			return nil
		},
	}
	cmd.Flags().Bool("sample", false, "Add sample categories and manuals")
	return cmd
}
