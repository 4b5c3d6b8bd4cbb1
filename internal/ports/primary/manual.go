package primary

import (
	"context"

	"github.com/example/guidebook/internal/core/guide"
)

// ManualService defines the primary port for manual operations.
type ManualService interface {
	// ListManuals retrieves every manual, favorites first, then most recently updated.
	ListManuals(ctx context.Context) ([]*ManualSummary, error)

	// GetManual retrieves a manual with its decoded guide document.
	GetManual(ctx context.Context, manualID string) (*Manual, error)

	// GetManualsByCategory retrieves the manuals linked to a category.
	GetManualsByCategory(ctx context.Context, categoryID string) ([]*CategoryManual, error)

	// GetUnassignedManuals retrieves manuals without a category.
	GetUnassignedManuals(ctx context.Context) ([]*ManualSummary, error)

	// CreateManual creates a manual, optionally linked to a category.
	CreateManual(ctx context.Context, req CreateManualRequest) (*CreateManualResponse, error)

	// UpdateManual applies the supplied fields after snapshotting the current row into history.
	UpdateManual(ctx context.Context, req UpdateManualRequest) (*Manual, error)

	// SaveAsNewVersion stores the given content as the next version of the manual's chain.
	SaveAsNewVersion(ctx context.Context, req SaveVersionRequest) (*SaveVersionResponse, error)

	// GetVersions retrieves every version of the manual's chain, newest first.
	GetVersions(ctx context.Context, manualID string) ([]*ManualSummary, error)

	// GetHistory retrieves the pre-update snapshots of a manual in insertion order.
	GetHistory(ctx context.Context, manualID string) ([]*HistoryEntry, error)

	// SearchManuals finds manuals whose title or content contains query.
	SearchManuals(ctx context.Context, query string) ([]*ManualSummary, error)

	// LinkCategory links a manual to a category, updating the entry point of an existing link.
	LinkCategory(ctx context.Context, req LinkCategoryRequest) error

	// UnlinkCategory removes a manual from a category.
	UnlinkCategory(ctx context.Context, manualID, categoryID string) error

	// MoveCategory moves a manual between categories, keeping its entry point.
	MoveCategory(ctx context.Context, manualID, fromCategoryID, toCategoryID string) error

	// GetManualCategories retrieves the categories a manual is linked to.
	GetManualCategories(ctx context.Context, manualID string) ([]*ManualCategory, error)

	// ToggleFavorite sets the favorite flag.
	ToggleFavorite(ctx context.Context, manualID string, favorite bool) error

	// DeleteManual deletes a manual with its links, history, tags, images and lock.
	DeleteManual(ctx context.Context, manualID string) error

	// AcquireLock locks a manual for editing.
	AcquireLock(ctx context.Context, manualID, holder string) (*LockResult, error)

	// ReleaseLock releases a manual lock held with token.
	ReleaseLock(ctx context.Context, manualID, token string) error

	// ForceReleaseLock breaks a manual lock regardless of holder.
	ForceReleaseLock(ctx context.Context, manualID string) (*LockStatus, error)

	// CheckLock reports who holds a manual's lock.
	CheckLock(ctx context.Context, manualID string) (*LockStatus, error)
}

// CreateManualRequest contains parameters for creating a manual.
type CreateManualRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content,omitempty"`
	FlowchartData string `json:"flowchart_data,omitempty"`
	Status        string `json:"status,omitempty"`
	CategoryID    string `json:"category_id,omitempty"`
	EntryPoint    string `json:"entry_point,omitempty"`
}

// CreateManualResponse contains the result of creating a manual.
type CreateManualResponse struct {
	ManualID string  `json:"id"`
	Manual   *Manual `json:"manual"`
}

// UpdateManualRequest contains the fields to change. Nil fields are left alone.
// Document, when set, is encoded into FlowchartData.
type UpdateManualRequest struct {
	ManualID         string          `json:"-"`
	Title            *string         `json:"title,omitempty"`
	Content          *string         `json:"content,omitempty"`
	FlowchartData    *string         `json:"flowchart_data,omitempty"`
	Document         *guide.Document `json:"document,omitempty"`
	Status           *string         `json:"status,omitempty"`
	ExpectedRevision *int64          `json:"expected_revision,omitempty"`
}

// SaveVersionRequest contains the content of a new version.
// Empty fields are copied from the source manual.
type SaveVersionRequest struct {
	ManualID      string `json:"-"`
	Title         string `json:"title,omitempty"`
	Content       string `json:"content,omitempty"`
	FlowchartData string `json:"flowchart_data,omitempty"`
}

// SaveVersionResponse contains the result of saving a new version.
type SaveVersionResponse struct {
	ManualID string `json:"id"`
	Version  int    `json:"version"`
}

// LinkCategoryRequest contains parameters for linking a manual to a category.
type LinkCategoryRequest struct {
	ManualID   string `json:"manual_id"`
	CategoryID string `json:"category_id"`
	EntryPoint string `json:"entry_point,omitempty"`
}

// Manual represents a manual at the port boundary.
// DocumentError is set when FlowchartData could not be decoded; Document is then empty.
type Manual struct {
	ID            string          `json:"id"`
	ParentID      string          `json:"parent_id"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	FlowchartData string          `json:"flowchart_data"`
	Document      *guide.Document `json:"document"`
	DocumentError string          `json:"document_error,omitempty"`
	Version       int             `json:"version"`
	Status        string          `json:"status"`
	IsFavorite    bool            `json:"is_favorite"`
	Revision      int64           `json:"revision"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

// ManualSummary is the list view of a manual.
type ManualSummary struct {
	ID         string `json:"id"`
	ParentID   string `json:"parent_id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Version    int    `json:"version"`
	IsFavorite bool   `json:"is_favorite"`
	UpdatedAt  string `json:"updated_at"`
}

// ManualCategory is a category a manual is linked to.
type ManualCategory struct {
	Category   *Category `json:"category"`
	EntryPoint string    `json:"entry_point,omitempty"`
}

// HistoryEntry is one pre-update snapshot of a manual.
type HistoryEntry struct {
	ID            int64  `json:"id"`
	ManualID      string `json:"manual_id"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	FlowchartData string `json:"flowchart_data"`
	Version       int    `json:"version"`
	ChangedBy     string `json:"changed_by,omitempty"`
	CreatedAt     string `json:"created_at"`
}
