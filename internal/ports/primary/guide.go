package primary

import (
	"context"

	"github.com/example/guidebook/internal/core/guide"
)

// GuideService defines the primary port for editing and playing a manual's flowchart.
// Every edit loads the manual, applies one editor operation and saves it
// through UpdateManual, so each edit leaves a history snapshot.
type GuideService interface {
	// GetGuide returns the decoded document of a manual.
	GetGuide(ctx context.Context, manualID string) (*guide.Document, error)

	// AddStep inserts a step before or after an anchor step.
	AddStep(ctx context.Context, req AddStepRequest) (*GuideEditResponse, error)

	// UpdateStep changes the data of a step.
	UpdateStep(ctx context.Context, req UpdateStepRequest) (*GuideEditResponse, error)

	// DeleteStep removes a step and its edges.
	DeleteStep(ctx context.Context, req GuideTarget) (*GuideEditResponse, error)

	// Connect adds an edge between two steps.
	Connect(ctx context.Context, req ConnectRequest) (*GuideEditResponse, error)

	// Disconnect removes an edge.
	Disconnect(ctx context.Context, req GuideTarget) (*GuideEditResponse, error)

	// AutoLayout repositions every step with the layered layout.
	AutoLayout(ctx context.Context, req AutoLayoutRequest) (*GuideEditResponse, error)

	// Steps lists the steps reachable from the manual's entry point.
	Steps(ctx context.Context, manualID, categoryID string) ([]guide.Node, error)

	// Play starts a playback session at the entry point of the manual in a category.
	// categoryID may be empty, in which case the first input node is used.
	Play(ctx context.Context, manualID, categoryID string) (*guide.Player, error)
}

// GuideTarget names a node or edge of a manual's guide.
type GuideTarget struct {
	ManualID         string `json:"-"`
	ID               string `json:"id"`
	ExpectedRevision *int64 `json:"expected_revision,omitempty"`
}

// AddStepRequest contains parameters for inserting a step.
type AddStepRequest struct {
	ManualID         string          `json:"-"`
	AnchorID         string          `json:"anchor_id,omitempty"`
	Placement        guide.Placement `json:"placement,omitempty"`
	Label            string          `json:"label,omitempty"`
	Comment          string          `json:"comment,omitempty"`
	Type             string          `json:"type,omitempty"`
	ExpectedRevision *int64          `json:"expected_revision,omitempty"`
}

// UpdateStepRequest contains the fields of a step to change. Nil fields are left alone.
type UpdateStepRequest struct {
	ManualID         string    `json:"-"`
	NodeID           string    `json:"-"`
	Label            *string   `json:"label,omitempty"`
	Comment          *string   `json:"comment,omitempty"`
	HasSubFlow       *bool     `json:"has_sub_flow,omitempty"`
	ImageIDs         *[]string `json:"image_ids,omitempty"`
	Type             *string   `json:"type,omitempty"`
	ExpectedRevision *int64    `json:"expected_revision,omitempty"`
}

// ConnectRequest contains parameters for adding an edge.
type ConnectRequest struct {
	ManualID         string `json:"-"`
	Source           string `json:"source"`
	Target           string `json:"target"`
	Label            string `json:"label,omitempty"`
	ExpectedRevision *int64 `json:"expected_revision,omitempty"`
}

// AutoLayoutRequest contains layout parameters. Zero spacing uses the defaults.
type AutoLayoutRequest struct {
	ManualID         string          `json:"-"`
	Direction        guide.Direction `json:"direction,omitempty"`
	NodeSep          *float64        `json:"node_sep,omitempty"`
	RankSep          *float64        `json:"rank_sep,omitempty"`
	ExpectedRevision *int64          `json:"expected_revision,omitempty"`
}

// GuideEditResponse contains the saved manual and the id of the node or edge
// the edit created or changed.
type GuideEditResponse struct {
	Manual *Manual `json:"manual"`
	ID     string  `json:"id,omitempty"`
}
