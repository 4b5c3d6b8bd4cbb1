package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/guidebook/internal/wire"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
	Long:  "Create, list, and delete tags, and tag or untag manuals",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.TagAdapter().List(cmd.Context())
		return err
	},
}

var tagCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, _ := cmd.Flags().GetString("color")
		_, err := wire.TagAdapter().Create(cmd.Context(), args[0], color)
		return err
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete [tag-id]",
	Short: "Delete a tag (removes it from all manuals)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.TagAdapter().Delete(cmd.Context(), args[0])
	},
}

var tagAddCmd = &cobra.Command{
	Use:   "add [manual-id] [name]",
	Short: "Tag a manual, creating the tag if needed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.TagAdapter().Add(cmd.Context(), args[0], args[1])
		return err
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove [manual-id] [tag]",
	Short: "Remove a tag from a manual",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.TagAdapter().Remove(cmd.Context(), args[0], args[1])
	},
}

var tagShowCmd = &cobra.Command{
	Use:   "show [manual-id]",
	Short: "Show a manual's tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.TagAdapter().Show(cmd.Context(), args[0])
		return err
	},
}

func init() {
	tagCreateCmd.Flags().String("color", "", "Display color, e.g. #ff8800")

	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagCreateCmd)
	tagCmd.AddCommand(tagDeleteCmd)
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRemoveCmd)
	tagCmd.AddCommand(tagShowCmd)
}

// TagCmd returns the tag command
func TagCmd() *cobra.Command {
	return tagCmd
}
