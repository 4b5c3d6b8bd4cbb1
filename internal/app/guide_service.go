package app

import (
	"context"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/core/guide"
	"github.com/example/guidebook/internal/ports/primary"
)

// GuideServiceImpl implements the GuideService interface on top of ManualService.
type GuideServiceImpl struct {
	manuals primary.ManualService
	newID   func() string
}

// NewGuideService creates a new GuideService.
func NewGuideService(manuals primary.ManualService) *GuideServiceImpl {
	return &GuideServiceImpl{manuals: manuals}
}

// GetGuide returns the decoded guide of a manual.
func (s *GuideServiceImpl) GetGuide(ctx context.Context, manualID string) (*guide.Document, error) {
	m, err := s.manuals.GetManual(ctx, manualID)
	if err != nil {
		return nil, err
	}
	return m.Document, nil
}

// AddStep inserts a step next to an anchor, appending it when no anchor is given.
func (s *GuideServiceImpl) AddStep(ctx context.Context, req primary.AddStepRequest) (*primary.GuideEditResponse, error) {
	place := req.Placement
	if place == "" {
		place = guide.After
	}
	return s.edit(ctx, req.ManualID, req.ExpectedRevision, func(e *guide.Editor) (string, error) {
		node, err := e.AddNode(req.AnchorID, place, guide.NodeData{Label: req.Label, Comment: req.Comment})
		if err != nil {
			return "", err
		}
		if req.Type != "" {
			if _, err := e.UpdateNodeData(node.ID, guide.NodePatch{Type: &req.Type}); err != nil {
				return "", err
			}
		}
		return node.ID, nil
	})
}

// UpdateStep changes the supplied fields of a step.
func (s *GuideServiceImpl) UpdateStep(ctx context.Context, req primary.UpdateStepRequest) (*primary.GuideEditResponse, error) {
	patch := guide.NodePatch{
		Label:      req.Label,
		Comment:    req.Comment,
		HasSubFlow: req.HasSubFlow,
		ImageIDs:   req.ImageIDs,
		Type:       req.Type,
	}
	return s.edit(ctx, req.ManualID, req.ExpectedRevision, func(e *guide.Editor) (string, error) {
		node, err := e.UpdateNodeData(req.NodeID, patch)
		return node.ID, err
	})
}

// DeleteStep removes a step and the edges touching it.
func (s *GuideServiceImpl) DeleteStep(ctx context.Context, req primary.GuideTarget) (*primary.GuideEditResponse, error) {
	return s.edit(ctx, req.ManualID, req.ExpectedRevision, func(e *guide.Editor) (string, error) {
		return req.ID, e.DeleteNode(req.ID)
	})
}

// Connect adds an edge between two steps.
func (s *GuideServiceImpl) Connect(ctx context.Context, req primary.ConnectRequest) (*primary.GuideEditResponse, error) {
	return s.edit(ctx, req.ManualID, req.ExpectedRevision, func(e *guide.Editor) (string, error) {
		edge, err := e.Connect(req.Source, req.Target, req.Label)
		return edge.ID, err
	})
}

// Disconnect removes an edge.
func (s *GuideServiceImpl) Disconnect(ctx context.Context, req primary.GuideTarget) (*primary.GuideEditResponse, error) {
	return s.edit(ctx, req.ManualID, req.ExpectedRevision, func(e *guide.Editor) (string, error) {
		return req.ID, e.Disconnect(req.ID)
	})
}

// AutoLayout repositions every step.
func (s *GuideServiceImpl) AutoLayout(ctx context.Context, req primary.AutoLayoutRequest) (*primary.GuideEditResponse, error) {
	opts := guide.DefaultLayoutOptions()
	if req.Direction != "" {
		opts.Direction = req.Direction
	}
	if req.NodeSep != nil {
		opts.NodeSep = *req.NodeSep
	}
	if req.RankSep != nil {
		opts.RankSep = *req.RankSep
	}
	return s.edit(ctx, req.ManualID, req.ExpectedRevision, func(e *guide.Editor) (string, error) {
		return "", e.AutoLayout(opts)
	})
}

// Steps lists the steps reachable from the manual's entry point in a category.
func (s *GuideServiceImpl) Steps(ctx context.Context, manualID, categoryID string) ([]guide.Node, error) {
	doc, entry, err := s.resolve(ctx, manualID, categoryID)
	if err != nil {
		return nil, err
	}
	return guide.Steps(doc, entry), nil
}

// Play starts playback of a manual.
func (s *GuideServiceImpl) Play(ctx context.Context, manualID, categoryID string) (*guide.Player, error) {
	doc, entry, err := s.resolve(ctx, manualID, categoryID)
	if err != nil {
		return nil, err
	}
	if doc.IsEmpty() {
		return nil, apperr.Invalid("manual %s has no steps", manualID)
	}
	return guide.NewPlayer(doc, entry), nil
}

// resolve loads the guide and the entry point recorded on the category link.
func (s *GuideServiceImpl) resolve(ctx context.Context, manualID, categoryID string) (*guide.Document, string, error) {
	m, err := s.manuals.GetManual(ctx, manualID)
	if err != nil {
		return nil, "", err
	}
	if categoryID == "" {
		return m.Document, "", nil
	}

	links, err := s.manuals.GetManualCategories(ctx, manualID)
	if err != nil {
		return nil, "", err
	}
	for _, l := range links {
		if l.Category.ID == categoryID {
			return m.Document, l.EntryPoint, nil
		}
	}
	return nil, "", apperr.NotFound("manual %s is not linked to category %s", manualID, categoryID)
}

// edit applies one editor operation and saves the result. Without an explicit
// expected revision the revision read here is used, so edits made in between
// are reported as a conflict instead of being overwritten.
func (s *GuideServiceImpl) edit(ctx context.Context, manualID string, expected *int64, apply func(*guide.Editor) (string, error)) (*primary.GuideEditResponse, error) {
	m, err := s.manuals.GetManual(ctx, manualID)
	if err != nil {
		return nil, err
	}
	if m.DocumentError != "" {
		return nil, apperr.Invalid("guide of manual %s cannot be decoded: %s", manualID, m.DocumentError)
	}

	editor := guide.NewEditor(m.Document)
	if s.newID != nil {
		editor.WithIDs(s.newID)
	}

	id, err := apply(editor)
	if err != nil {
		return nil, err
	}

	if expected == nil {
		rev := m.Revision
		expected = &rev
	}
	updated, err := s.manuals.UpdateManual(ctx, primary.UpdateManualRequest{
		ManualID:         manualID,
		Document:         editor.Document(),
		ExpectedRevision: expected,
	})
	if err != nil {
		return nil, err
	}

	return &primary.GuideEditResponse{Manual: updated, ID: id}, nil
}

// Ensure GuideServiceImpl implements the interface
var _ primary.GuideService = (*GuideServiceImpl)(nil)
