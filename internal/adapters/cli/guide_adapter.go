package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/guidebook/internal/core/guide"
	"github.com/example/guidebook/internal/ports/primary"
)

// GuideAdapter translates CLI operations to GuideService calls and runs
// interactive playback.
type GuideAdapter struct {
	service primary.GuideService
	in      io.Reader
	out     io.Writer
}

// NewGuideAdapter creates a new GuideAdapter. in feeds playback choices.
func NewGuideAdapter(service primary.GuideService, in io.Reader, out io.Writer) *GuideAdapter {
	return &GuideAdapter{
		service: service,
		in:      in,
		out:     out,
	}
}

// Show prints every step and transition of a manual's guide.
func (a *GuideAdapter) Show(ctx context.Context, manualID string) (*guide.Document, error) {
	doc, err := a.service.GetGuide(ctx, manualID)
	if err != nil {
		return nil, err
	}
	if doc.IsEmpty() {
		fmt.Fprintf(a.out, "%s has no steps.\n", manualID)
		return doc, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NODE\tTYPE\tLABEL\tPOSITION")
	for _, n := range doc.Nodes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f,%.0f\n", n.ID, n.Type, n.Data.Label, n.Position.X, n.Position.Y)
	}
	w.Flush()

	if len(doc.Edges) > 0 {
		fmt.Fprintln(a.out)
		w = tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "EDGE\tFROM\tTO\tLABEL")
		for _, e := range doc.Edges {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Source, e.Target, e.Label)
		}
		w.Flush()
	}
	return doc, nil
}

// Steps prints the steps reachable from the entry point in walk order.
func (a *GuideAdapter) Steps(ctx context.Context, manualID, categoryID string) ([]guide.Node, error) {
	steps, err := a.service.Steps(ctx, manualID, categoryID)
	if err != nil {
		return nil, err
	}
	for i, n := range steps {
		fmt.Fprintf(a.out, "%2d. %s\n", i+1, n.Data.Label)
	}
	return steps, nil
}

// AddStep inserts a step and prints its ID.
func (a *GuideAdapter) AddStep(ctx context.Context, req primary.AddStepRequest) (*primary.GuideEditResponse, error) {
	resp, err := a.service.AddStep(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Added step %s to %s (revision %d)\n", resp.ID, req.ManualID, resp.Manual.Revision)
	return resp, nil
}

// UpdateStep changes the data of a step.
func (a *GuideAdapter) UpdateStep(ctx context.Context, req primary.UpdateStepRequest) (*primary.GuideEditResponse, error) {
	resp, err := a.service.UpdateStep(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Updated step %s\n", resp.ID)
	return resp, nil
}

// DeleteStep removes a step and its transitions.
func (a *GuideAdapter) DeleteStep(ctx context.Context, req primary.GuideTarget) error {
	if _, err := a.service.DeleteStep(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted step %s\n", req.ID)
	return nil
}

// Connect adds a transition between two steps.
func (a *GuideAdapter) Connect(ctx context.Context, req primary.ConnectRequest) (*primary.GuideEditResponse, error) {
	resp, err := a.service.Connect(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Connected %s → %s (%s)\n", req.Source, req.Target, resp.ID)
	return resp, nil
}

// Disconnect removes a transition.
func (a *GuideAdapter) Disconnect(ctx context.Context, req primary.GuideTarget) error {
	if _, err := a.service.Disconnect(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Removed transition %s\n", req.ID)
	return nil
}

// Layout repositions every step with the layered layout.
func (a *GuideAdapter) Layout(ctx context.Context, req primary.AutoLayoutRequest) (*primary.GuideEditResponse, error) {
	resp, err := a.service.AutoLayout(ctx, req)
	if err != nil {
		return nil, err
	}
	dir := req.Direction
	if dir == "" {
		dir = guide.TopBottom
	}
	fmt.Fprintf(a.out, "✓ Laid out %s (%s)\n", req.ManualID, dir)
	return resp, nil
}

// Play walks the guide interactively. Each prompt accepts a choice number,
// "b" for back, "r" to restart and "q" to quit. It returns the visited node IDs.
func (a *GuideAdapter) Play(ctx context.Context, manualID, categoryID string) ([]string, error) {
	player, err := a.service.Play(ctx, manualID, categoryID)
	if err != nil {
		return nil, err
	}

	title := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)
	done := color.New(color.FgGreen)
	scanner := bufio.NewScanner(a.in)

	for {
		if err := ctx.Err(); err != nil {
			return visited(player), err
		}

		node, _ := player.Current()
		fmt.Fprintf(a.out, "\n%s %s\n", dim.Sprintf("[%d]", player.Step()), title.Sprint(node.Data.Label))
		if node.Data.Comment != "" {
			fmt.Fprintf(a.out, "    %s\n", node.Data.Comment)
		}
		if len(node.Data.ImageIDs) > 0 {
			fmt.Fprintf(a.out, "    %s\n", dim.Sprintf("images: %s", strings.Join(node.Data.ImageIDs, ", ")))
		}

		if player.Done() {
			fmt.Fprintln(a.out, done.Sprint("✓ Guide complete"))
			return visited(player), nil
		}

		choices := player.Choices()
		for i, c := range choices {
			fmt.Fprintf(a.out, "  %d) %s\n", i+1, c.Label)
		}

		for {
			fmt.Fprint(a.out, "> ")
			if !scanner.Scan() {
				fmt.Fprintln(a.out)
				return visited(player), scanner.Err()
			}
			answer := strings.TrimSpace(scanner.Text())
			if strings.EqualFold(answer, "q") {
				return visited(player), nil
			}
			if a.answer(player, answer, len(choices)) {
				break
			}
		}
	}
}

// answer applies one prompt answer. It returns false when the prompt should repeat.
func (a *GuideAdapter) answer(player *guide.Player, answer string, count int) bool {
	switch strings.ToLower(answer) {
	case "b":
		if !player.Back() {
			fmt.Fprintln(a.out, "Already at the first step.")
			return false
		}
		return true
	case "r":
		player.Restart()
		return true
	case "":
		if count == 1 {
			return player.ChooseIndex(0) == nil
		}
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > count {
		fmt.Fprintf(a.out, "Enter 1-%d, b, r or q.\n", count)
		return false
	}
	return player.ChooseIndex(n-1) == nil
}

// visited lists the nodes shown so far, ending with the current one.
func visited(player *guide.Player) []string {
	return append(player.History(), player.CurrentID())
}
