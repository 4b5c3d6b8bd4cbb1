package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/ports/secondary"
)

// TagServiceImpl implements the TagService interface.
type TagServiceImpl struct {
	tagRepo    secondary.TagRepository
	manualRepo secondary.ManualRepository
}

// NewTagService creates a new TagService with injected dependencies.
func NewTagService(tagRepo secondary.TagRepository, manualRepo secondary.ManualRepository) *TagServiceImpl {
	return &TagServiceImpl{
		tagRepo:    tagRepo,
		manualRepo: manualRepo,
	}
}

// CreateTag creates a new tag.
func (s *TagServiceImpl) CreateTag(ctx context.Context, req primary.CreateTagRequest) (*primary.CreateTagResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalid("tag name is required")
	}

	record := &secondary.TagRecord{
		Name:  name,
		Color: req.Color,
	}

	if err := s.tagRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	// Fetch created tag
	created, err := s.tagRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created tag: %w", err)
	}

	return &primary.CreateTagResponse{
		TagID: created.ID,
		Tag:   s.recordToTag(created),
	}, nil
}

// GetTag retrieves a tag by ID.
func (s *TagServiceImpl) GetTag(ctx context.Context, tagID string) (*primary.Tag, error) {
	record, err := s.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	return s.recordToTag(record), nil
}

// GetTagByName retrieves a tag by name.
func (s *TagServiceImpl) GetTagByName(ctx context.Context, name string) (*primary.Tag, error) {
	record, err := s.tagRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.recordToTag(record), nil
}

// ListTags retrieves all tags.
func (s *TagServiceImpl) ListTags(ctx context.Context) ([]*primary.Tag, error) {
	records, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return s.recordsToTags(records), nil
}

// DeleteTag deletes a tag.
func (s *TagServiceImpl) DeleteTag(ctx context.Context, tagID string) error {
	return s.tagRepo.Delete(ctx, tagID)
}

// TagManual attaches the named tag to a manual, creating the tag on first use.
// Tagging twice is a no-op.
func (s *TagServiceImpl) TagManual(ctx context.Context, manualID, tagName string) (*primary.Tag, error) {
	if _, err := s.manualRepo.GetByID(ctx, manualID); err != nil {
		return nil, err
	}

	tag, err := s.tagRepo.GetByName(ctx, strings.TrimSpace(tagName))
	if apperr.IsNotFound(err) {
		resp, cerr := s.CreateTag(ctx, primary.CreateTagRequest{Name: tagName})
		if cerr != nil {
			return nil, cerr
		}
		tag, err = s.tagRepo.GetByID(ctx, resp.TagID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.tagRepo.Assign(ctx, manualID, tag.ID); err != nil {
		return nil, fmt.Errorf("failed to tag manual: %w", err)
	}
	return s.recordToTag(tag), nil
}

// UntagManual detaches a tag from a manual.
func (s *TagServiceImpl) UntagManual(ctx context.Context, manualID, tagID string) error {
	return s.tagRepo.Unassign(ctx, manualID, tagID)
}

// GetManualTags retrieves the tags of a manual.
func (s *TagServiceImpl) GetManualTags(ctx context.Context, manualID string) ([]*primary.Tag, error) {
	records, err := s.tagRepo.ListByManual(ctx, manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to list manual tags: %w", err)
	}
	return s.recordsToTags(records), nil
}

// Helper methods

func (s *TagServiceImpl) recordToTag(r *secondary.TagRecord) *primary.Tag {
	return &primary.Tag{
		ID:        r.ID,
		Name:      r.Name,
		Color:     r.Color,
		CreatedAt: r.CreatedAt,
	}
}

func (s *TagServiceImpl) recordsToTags(records []*secondary.TagRecord) []*primary.Tag {
	tags := make([]*primary.Tag, len(records))
	for i, r := range records {
		tags[i] = s.recordToTag(r)
	}
	return tags
}

// Ensure TagServiceImpl implements the interface.
var _ primary.TagService = (*TagServiceImpl)(nil)
