package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/wire"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage the category tree",
	Long:    "Create, rename, move, and delete categories (up to five levels deep)",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.CategoryAdapter().List(cmd.Context())
		return err
	},
}

var categoryTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the category tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.CategoryAdapter().Tree(cmd.Context())
		return err
	},
}

var categoryShowCmd = &cobra.Command{
	Use:   "show [category-id]",
	Short: "Show a category and its manuals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.CategoryAdapter().Show(cmd.Context(), args[0])
		return err
	},
}

var categoryCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		icon, _ := cmd.Flags().GetString("icon")
		order, _ := cmd.Flags().GetInt("order")

		_, err := wire.CategoryAdapter().Create(cmd.Context(), primary.CreateCategoryRequest{
			Name:         args[0],
			ParentID:     parent,
			Icon:         icon,
			DisplayOrder: order,
		})
		return err
	},
}

var categoryUpdateCmd = &cobra.Command{
	Use:   "update [category-id]",
	Short: "Rename, re-icon, reorder, or move a category",
	Long: `Update a category. Renaming or moving rewrites the path of the
category and every descendant. Use --parent "" to move to the top level.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.CategoryAdapter().Update(cmd.Context(), primary.UpdateCategoryRequest{
			CategoryID:   args[0],
			Name:         optionalString(cmd, "name"),
			Icon:         optionalString(cmd, "icon"),
			ParentID:     optionalString(cmd, "parent"),
			DisplayOrder: optionalInt(cmd, "order"),
		})
		return err
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete [category-id]",
	Short: "Delete a category",
	Long: `Delete a category. A category with subcategories is only deleted
with --recursive. Manuals are unlinked, never deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		return wire.CategoryAdapter().Delete(cmd.Context(), args[0], recursive)
	},
}

func init() {
	categoryCreateCmd.Flags().StringP("parent", "p", "", "Parent category ID")
	categoryCreateCmd.Flags().String("icon", "", "Icon shown next to the name")
	categoryCreateCmd.Flags().Int("order", 0, "Display order among siblings")

	categoryUpdateCmd.Flags().StringP("name", "n", "", "New name")
	categoryUpdateCmd.Flags().String("icon", "", "New icon")
	categoryUpdateCmd.Flags().StringP("parent", "p", "", "New parent category ID")
	categoryUpdateCmd.Flags().Int("order", 0, "New display order")

	categoryDeleteCmd.Flags().BoolP("recursive", "r", false, "Delete subcategories too")

	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryTreeCmd)
	categoryCmd.AddCommand(categoryShowCmd)
	categoryCmd.AddCommand(categoryCreateCmd)
	categoryCmd.AddCommand(categoryUpdateCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
}

// CategoryCmd returns the category command
func CategoryCmd() *cobra.Command {
	return categoryCmd
}
