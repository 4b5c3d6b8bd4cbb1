package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/guidebook/internal/cli"
	"github.com/example/guidebook/internal/version"
	"github.com/example/guidebook/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "guidebook",
		Short:   "Guidebook - step-by-step manuals for front-desk work",
		Version: version.String(),
		Long: `Guidebook keeps operating manuals in a category tree. Each manual can
carry a guide graph that is played back one step at a time.`,
		SilenceUsage: true,
	}

	// Content
	rootCmd.AddCommand(cli.CategoryCmd())
	rootCmd.AddCommand(cli.ManualCmd())
	rootCmd.AddCommand(cli.GuideCmd())
	rootCmd.AddCommand(cli.LayoutCmd())
	rootCmd.AddCommand(cli.PlayCmd())
	rootCmd.AddCommand(cli.MediaCmd())
	rootCmd.AddCommand(cli.TagCmd())
	rootCmd.AddCommand(cli.LockCmd())

	// Data management
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.BackupCmd())
	rootCmd.AddCommand(cli.RestoreCmd())
	rootCmd.AddCommand(cli.BackupsCmd())
	rootCmd.AddCommand(cli.DataRootCmd())
	rootCmd.AddCommand(cli.AuditCmd())

	rootCmd.AddCommand(cli.ServeCmd())

	ctx, stop := cli.RootContext()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	wire.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
