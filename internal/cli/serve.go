package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/guidebook/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the guidebook JSON API until interrupted.

The listen address defaults to server.addr from the config file
(GUIDEBOOK_SERVER_ADDR overrides it). When backup.on_startup is set, a
snapshot is taken before the server starts listening.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Init(); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			app := wire.App()
			ctx := cmd.Context()

			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			if app.Config.Backup.OnStartup {
				res, err := app.Services.Backup.Backup(ctx)
				switch {
				case err != nil:
					app.Logger.Warn("startup backup failed", zap.Error(err))
				case !res.Success:
					app.Logger.Warn("startup backup failed", zap.String("reason", res.Message))
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "guidebook listening on http://%s (data root %s)\n", addr, app.Paths.Root)
			return app.Server().Serve(ctx, addr)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from config)")
	return cmd
}
