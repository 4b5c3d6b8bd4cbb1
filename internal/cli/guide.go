package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/guidebook/internal/core/guide"
	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/wire"
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Edit the step graph of a manual",
	Long: `Inspect and edit the guide graph attached to a manual.

Every edit saves the manual and bumps its revision. Pass --revision to
refuse the edit if someone else saved in the meantime.`,
}

var guideShowCmd = &cobra.Command{
	Use:   "show [manual-id]",
	Short: "Show steps and transitions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.GuideAdapter().Show(cmd.Context(), args[0])
		return err
	},
}

var guideStepsCmd = &cobra.Command{
	Use:   "steps [manual-id]",
	Short: "List steps in playback order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		_, err := wire.GuideAdapter().Steps(cmd.Context(), args[0], category)
		return err
	},
}

var guideAddCmd = &cobra.Command{
	Use:   "add [manual-id] [label]",
	Short: "Add a step",
	Long: `Add a step. With --after or --before the step is spliced into the
graph next to that step; otherwise it is added unconnected.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		after, _ := cmd.Flags().GetString("after")
		before, _ := cmd.Flags().GetString("before")
		comment, _ := cmd.Flags().GetString("comment")
		stepType, _ := cmd.Flags().GetString("type")

		req := primary.AddStepRequest{
			ManualID:         args[0],
			Label:            args[1],
			Comment:          comment,
			Type:             stepType,
			ExpectedRevision: expectedRevision(cmd),
		}
		switch {
		case before != "":
			req.AnchorID, req.Placement = before, guide.Before
		case after != "":
			req.AnchorID, req.Placement = after, guide.After
		}
		_, err := wire.GuideAdapter().AddStep(cmd.Context(), req)
		return err
	},
}

var guideUpdateCmd = &cobra.Command{
	Use:   "update [manual-id] [step-id]",
	Short: "Change a step",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := primary.UpdateStepRequest{
			ManualID:         args[0],
			NodeID:           args[1],
			Label:            optionalString(cmd, "label"),
			Comment:          optionalString(cmd, "comment"),
			Type:             optionalString(cmd, "type"),
			ExpectedRevision: expectedRevision(cmd),
		}
		if cmd.Flags().Changed("sub-flow") {
			v, _ := cmd.Flags().GetBool("sub-flow")
			req.HasSubFlow = &v
		}
		if cmd.Flags().Changed("images") {
			v, _ := cmd.Flags().GetStringSlice("images")
			req.ImageIDs = &v
		}
		_, err := wire.GuideAdapter().UpdateStep(cmd.Context(), req)
		return err
	},
}

var guideDeleteCmd = &cobra.Command{
	Use:   "delete [manual-id] [step-id]",
	Short: "Delete a step and its transitions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.GuideAdapter().DeleteStep(cmd.Context(), primary.GuideTarget{
			ManualID:         args[0],
			ID:               args[1],
			ExpectedRevision: expectedRevision(cmd),
		})
	},
}

var guideConnectCmd = &cobra.Command{
	Use:   "connect [manual-id] [from-step] [to-step]",
	Short: "Add a transition between steps",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		label, _ := cmd.Flags().GetString("label")
		_, err := wire.GuideAdapter().Connect(cmd.Context(), primary.ConnectRequest{
			ManualID:         args[0],
			Source:           args[1],
			Target:           args[2],
			Label:            label,
			ExpectedRevision: expectedRevision(cmd),
		})
		return err
	},
}

var guideDisconnectCmd = &cobra.Command{
	Use:   "disconnect [manual-id] [edge-id]",
	Short: "Remove a transition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.GuideAdapter().Disconnect(cmd.Context(), primary.GuideTarget{
			ManualID:         args[0],
			ID:               args[1],
			ExpectedRevision: expectedRevision(cmd),
		})
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout [manual-id]",
	Short: "Lay out a manual's guide automatically",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		direction, _ := cmd.Flags().GetString("direction")
		_, err := wire.GuideAdapter().Layout(cmd.Context(), primary.AutoLayoutRequest{
			ManualID:         args[0],
			Direction:        guide.Direction(strings.ToUpper(direction)),
			NodeSep:          optionalFloat(cmd, "node-sep"),
			RankSep:          optionalFloat(cmd, "rank-sep"),
			ExpectedRevision: expectedRevision(cmd),
		})
		return err
	},
}

var playCmd = &cobra.Command{
	Use:   "play [manual-id]",
	Short: "Walk through a manual step by step",
	Long: `Play a manual's guide interactively. Pick a numbered transition to
advance, b to go back, r to restart, q to quit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		_, err := wire.GuideAdapter().Play(cmd.Context(), args[0], category)
		return err
	},
}

func init() {
	guideStepsCmd.Flags().String("category", "", "Start from this category's entry step")

	guideAddCmd.Flags().String("after", "", "Insert after this step")
	guideAddCmd.Flags().String("before", "", "Insert before this step")
	guideAddCmd.Flags().String("comment", "", "Step comment")
	guideAddCmd.Flags().String("type", "", "Step type (input, output, or default)")
	addRevisionFlag(guideAddCmd)

	guideUpdateCmd.Flags().String("label", "", "New label")
	guideUpdateCmd.Flags().String("comment", "", "New comment")
	guideUpdateCmd.Flags().String("type", "", "New step type")
	guideUpdateCmd.Flags().Bool("sub-flow", false, "Whether the step opens a sub-flow")
	guideUpdateCmd.Flags().StringSlice("images", nil, "Image IDs shown with the step")
	addRevisionFlag(guideUpdateCmd)

	addRevisionFlag(guideDeleteCmd)

	guideConnectCmd.Flags().String("label", "", "Transition label shown as the choice")
	addRevisionFlag(guideConnectCmd)

	addRevisionFlag(guideDisconnectCmd)

	layoutCmd.Flags().StringP("direction", "d", "", "TB (default) or LR")
	layoutCmd.Flags().Float64("node-sep", 0, "Spacing between steps in a rank")
	layoutCmd.Flags().Float64("rank-sep", 0, "Spacing between ranks")
	addRevisionFlag(layoutCmd)

	playCmd.Flags().String("category", "", "Start from this category's entry step")

	guideCmd.AddCommand(guideShowCmd)
	guideCmd.AddCommand(guideStepsCmd)
	guideCmd.AddCommand(guideAddCmd)
	guideCmd.AddCommand(guideUpdateCmd)
	guideCmd.AddCommand(guideDeleteCmd)
	guideCmd.AddCommand(guideConnectCmd)
	guideCmd.AddCommand(guideDisconnectCmd)
}

// GuideCmd returns the guide command
func GuideCmd() *cobra.Command {
	return guideCmd
}

// LayoutCmd returns the layout command
func LayoutCmd() *cobra.Command {
	return layoutCmd
}

// PlayCmd returns the play command
func PlayCmd() *cobra.Command {
	return playCmd
}
