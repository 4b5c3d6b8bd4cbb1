package primary

import "context"

// TagService defines the primary port for tag operations.
type TagService interface {
	// CreateTag creates a new tag.
	CreateTag(ctx context.Context, req CreateTagRequest) (*CreateTagResponse, error)

	// GetTag retrieves a tag by ID.
	GetTag(ctx context.Context, tagID string) (*Tag, error)

	// GetTagByName retrieves a tag by name.
	GetTagByName(ctx context.Context, name string) (*Tag, error)

	// ListTags retrieves all tags.
	ListTags(ctx context.Context) ([]*Tag, error)

	// DeleteTag deletes a tag and its assignments.
	DeleteTag(ctx context.Context, tagID string) error

	// TagManual attaches a tag to a manual by name, creating the tag if needed.
	TagManual(ctx context.Context, manualID, tagName string) (*Tag, error)

	// UntagManual detaches a tag from a manual.
	UntagManual(ctx context.Context, manualID, tagID string) error

	// GetManualTags retrieves the tags of a manual.
	GetManualTags(ctx context.Context, manualID string) ([]*Tag, error)
}

// CreateTagRequest contains parameters for creating a tag.
type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// CreateTagResponse contains the result of creating a tag.
type CreateTagResponse struct {
	TagID string `json:"id"`
	Tag   *Tag   `json:"tag"`
}

// Tag represents a tag entity at the port boundary.
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	CreatedAt string `json:"created_at"`
}
