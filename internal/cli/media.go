package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/guidebook/internal/wire"
)

var mediaCmd = &cobra.Command{
	Use:     "media",
	Aliases: []string{"image"},
	Short:   "Manage images attached to manuals",
}

var mediaAddCmd = &cobra.Command{
	Use:   "add [manual-id] [file]",
	Short: "Attach an image file to a manual",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		alt, _ := cmd.Flags().GetString("alt")
		_, err := wire.MediaAdapter().Add(cmd.Context(), args[0], args[1], alt)
		return err
	},
}

var mediaListCmd = &cobra.Command{
	Use:   "list [manual-id]",
	Short: "List a manual's images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.MediaAdapter().List(cmd.Context(), args[0])
		return err
	},
}

var mediaExportCmd = &cobra.Command{
	Use:   "export [image-id] [dest]",
	Short: "Write an image to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.MediaAdapter().Export(cmd.Context(), args[0], args[1])
	},
}

var mediaRemoveCmd = &cobra.Command{
	Use:   "remove [image-id]",
	Short: "Delete an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.MediaAdapter().Remove(cmd.Context(), args[0])
	},
}

func init() {
	mediaAddCmd.Flags().String("alt", "", "Alternative text")

	mediaCmd.AddCommand(mediaAddCmd)
	mediaCmd.AddCommand(mediaListCmd)
	mediaCmd.AddCommand(mediaExportCmd)
	mediaCmd.AddCommand(mediaRemoveCmd)
}

// MediaCmd returns the media command
func MediaCmd() *cobra.Command {
	return mediaCmd
}
