package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/wire"
)

var manualCmd = &cobra.Command{
	Use:     "manual",
	Aliases: []string{"man"},
	Short:   "Manage manuals",
	Long:    "Create, edit, version, link, and search manuals",
}

var manualListCmd = &cobra.Command{
	Use:   "list",
	Short: "List manuals",
	RunE: func(cmd *cobra.Command, args []string) error {
		unassigned, _ := cmd.Flags().GetBool("unassigned")
		_, err := wire.ManualAdapter().List(cmd.Context(), unassigned)
		return err
	},
}

var manualSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search manual titles and content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.ManualAdapter().Search(cmd.Context(), args[0])
		return err
	},
}

var manualShowCmd = &cobra.Command{
	Use:   "show [manual-id]",
	Short: "Show a manual",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.ManualAdapter().Show(cmd.Context(), args[0])
		return err
	},
}

var manualCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a manual",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := contentFlag(cmd)
		if err != nil {
			return err
		}
		guideData, err := fileFlag(cmd, "guide-file")
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		category, _ := cmd.Flags().GetString("category")
		entry, _ := cmd.Flags().GetString("entry")

		_, err = wire.ManualAdapter().Create(cmd.Context(), primary.CreateManualRequest{
			Title:         args[0],
			Content:       content,
			FlowchartData: guideData,
			Status:        status,
			CategoryID:    category,
			EntryPoint:    entry,
		})
		return err
	},
}

var manualUpdateCmd = &cobra.Command{
	Use:   "update [manual-id]",
	Short: "Update a manual in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := primary.UpdateManualRequest{
			ManualID:         args[0],
			Title:            optionalString(cmd, "title"),
			Content:          optionalString(cmd, "content"),
			Status:           optionalString(cmd, "status"),
			ExpectedRevision: expectedRevision(cmd),
		}
		if cmd.Flags().Changed("file") {
			content, err := fileFlag(cmd, "file")
			if err != nil {
				return err
			}
			req.Content = &content
		}
		if cmd.Flags().Changed("guide-file") {
			data, err := fileFlag(cmd, "guide-file")
			if err != nil {
				return err
			}
			req.FlowchartData = &data
		}
		_, err := wire.ManualAdapter().Update(cmd.Context(), req)
		return err
	},
}

var manualVersionCmd = &cobra.Command{
	Use:   "version [manual-id]",
	Short: "Save a new version of a manual",
	Long: `Save a new version. Unset fields are copied from the given version,
and its category links carry over.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		content, err := contentFlag(cmd)
		if err != nil {
			return err
		}
		guideData, err := fileFlag(cmd, "guide-file")
		if err != nil {
			return err
		}
		_, err = wire.ManualAdapter().SaveVersion(cmd.Context(), primary.SaveVersionRequest{
			ManualID:      args[0],
			Title:         title,
			Content:       content,
			FlowchartData: guideData,
		})
		return err
	},
}

var manualVersionsCmd = &cobra.Command{
	Use:   "versions [manual-id]",
	Short: "List every version in a manual's chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.ManualAdapter().Versions(cmd.Context(), args[0])
		return err
	},
}

var manualHistoryCmd = &cobra.Command{
	Use:   "history [manual-id]",
	Short: "Show the edit history of a manual",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.ManualAdapter().History(cmd.Context(), args[0])
		return err
	},
}

var manualLinkCmd = &cobra.Command{
	Use:   "link [manual-id] [category-id]",
	Short: "Link a manual to a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, _ := cmd.Flags().GetString("entry")
		return wire.ManualAdapter().Link(cmd.Context(), primary.LinkCategoryRequest{
			ManualID:   args[0],
			CategoryID: args[1],
			EntryPoint: entry,
		})
	},
}

var manualUnlinkCmd = &cobra.Command{
	Use:   "unlink [manual-id] [category-id]",
	Short: "Remove a manual from a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ManualAdapter().Unlink(cmd.Context(), args[0], args[1])
	},
}

var manualMoveCmd = &cobra.Command{
	Use:   "move [manual-id] [from-category] [to-category]",
	Short: "Move a manual between categories",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ManualAdapter().Move(cmd.Context(), args[0], args[1], args[2])
	},
}

var manualFavoriteCmd = &cobra.Command{
	Use:   "favorite [manual-id]",
	Short: "Mark a manual as a favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		off, _ := cmd.Flags().GetBool("off")
		return wire.ManualAdapter().Favorite(cmd.Context(), args[0], !off)
	},
}

var manualDeleteCmd = &cobra.Command{
	Use:   "delete [manual-id]",
	Short: "Delete a manual with its images and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ManualAdapter().Delete(cmd.Context(), args[0])
	},
}

// contentFlag returns --file contents when given, otherwise --content.
func contentFlag(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("file") {
		return fileFlag(cmd, "file")
	}
	content, _ := cmd.Flags().GetString("content")
	return content, nil
}

// fileFlag reads the file named by a flag. An unset flag yields "".
func fileFlag(cmd *cobra.Command, name string) (string, error) {
	path, _ := cmd.Flags().GetString(name)
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s: %w", name, err)
	}
	return string(data), nil
}

func addContentFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("content", "c", "", "Manual body text")
	cmd.Flags().StringP("file", "f", "", "Read the body text from a file")
	cmd.Flags().String("guide-file", "", "Read the guide graph JSON from a file")
}

func init() {
	manualListCmd.Flags().Bool("unassigned", false, "Only manuals without a category")

	addContentFlags(manualCreateCmd)
	manualCreateCmd.Flags().StringP("status", "s", "", "Status (default draft)")
	manualCreateCmd.Flags().String("category", "", "Link to this category")
	manualCreateCmd.Flags().String("entry", "", "Entry step for the category link")

	addContentFlags(manualUpdateCmd)
	manualUpdateCmd.Flags().StringP("title", "t", "", "New title")
	manualUpdateCmd.Flags().StringP("status", "s", "", "New status")
	addRevisionFlag(manualUpdateCmd)

	addContentFlags(manualVersionCmd)
	manualVersionCmd.Flags().StringP("title", "t", "", "Title of the new version")

	manualLinkCmd.Flags().String("entry", "", "Entry step when played from this category")
	manualFavoriteCmd.Flags().Bool("off", false, "Remove from favorites")

	manualCmd.AddCommand(manualListCmd)
	manualCmd.AddCommand(manualSearchCmd)
	manualCmd.AddCommand(manualShowCmd)
	manualCmd.AddCommand(manualCreateCmd)
	manualCmd.AddCommand(manualUpdateCmd)
	manualCmd.AddCommand(manualVersionCmd)
	manualCmd.AddCommand(manualVersionsCmd)
	manualCmd.AddCommand(manualHistoryCmd)
	manualCmd.AddCommand(manualLinkCmd)
	manualCmd.AddCommand(manualUnlinkCmd)
	manualCmd.AddCommand(manualMoveCmd)
	manualCmd.AddCommand(manualFavoriteCmd)
	manualCmd.AddCommand(manualDeleteCmd)
}

// ManualCmd returns the manual command
func ManualCmd() *cobra.Command {
	return manualCmd
}
