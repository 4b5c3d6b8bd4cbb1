// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// CategoryRepository defines the secondary port for category persistence.
type CategoryRepository interface {
	// Create persists a new category, allocating its ID when empty.
	Create(ctx context.Context, category *CategoryRecord) error

	// GetByID retrieves a category by its ID.
	GetByID(ctx context.Context, id string) (*CategoryRecord, error)

	// GetByPath retrieves a category by its materialized path.
	GetByPath(ctx context.Context, path string) (*CategoryRecord, error)

	// List retrieves all categories ordered by level, then display order.
	List(ctx context.Context) ([]*CategoryRecord, error)

	// Update applies the supplied fields. When the update moves or renames the
	// category, path and level of the whole subtree are rewritten in the same transaction.
	Update(ctx context.Context, id string, update CategoryUpdate) error

	// Delete removes a single category. Links cascade.
	Delete(ctx context.Context, id string) error

	// DeleteSubtree removes a category and all of its descendants, deepest first.
	DeleteSubtree(ctx context.Context, id string) (int, error)

	// CountChildren returns the number of direct subcategories.
	CountChildren(ctx context.Context, id string) (int, error)
}

// CategoryRecord represents a category as stored in persistence.
type CategoryRecord struct {
	ID           string
	Name         string
	Icon         string
	ParentID     string // empty for a root category
	Level        int
	Path         string
	DisplayOrder int
	CreatedAt    string
	UpdatedAt    string
}

// CategoryUpdate holds the fields to change. Nil fields are left alone.
// Path and Level are set by the service whenever Name or ParentID change.
type CategoryUpdate struct {
	Name         *string
	Icon         *string
	ParentID     *string // pointer to "" moves the category to the root
	DisplayOrder *int
	Path         *string
	Level        *int
}

// IsEmpty reports whether the update changes nothing.
func (u CategoryUpdate) IsEmpty() bool {
	return u.Name == nil && u.Icon == nil && u.ParentID == nil &&
		u.DisplayOrder == nil && u.Path == nil && u.Level == nil
}

// ManualRepository defines the secondary port for manual persistence.
type ManualRepository interface {
	// Create persists a new manual, optionally linking it to a category in the same transaction.
	// An empty ID is allocated inside that transaction.
	Create(ctx context.Context, manual *ManualRecord, link *LinkRecord) error

	// GetByID retrieves a manual by its ID.
	GetByID(ctx context.Context, id string) (*ManualRecord, error)

	// List retrieves every manual, favorites first, then most recently updated.
	List(ctx context.Context) ([]*ManualRecord, error)

	// ListUnassigned retrieves manuals without any category link.
	ListUnassigned(ctx context.Context) ([]*ManualRecord, error)

	// Search retrieves manuals whose title or content contains query.
	Search(ctx context.Context, query string) ([]*ManualRecord, error)

	// Update snapshots the current row into history and applies the supplied
	// fields in one transaction. An empty update writes nothing.
	Update(ctx context.Context, id string, update ManualUpdate) error

	// SetFavorite sets the favorite flag without touching history.
	SetFavorite(ctx context.Context, id string, favorite bool) error

	// CreateVersion inserts the next version of id's chain, copying its category links.
	CreateVersion(ctx context.Context, sourceID string, fields ManualVersionFields) (*ManualRecord, error)

	// ListVersions retrieves every row of id's version chain, newest version first.
	ListVersions(ctx context.Context, id string) ([]*ManualRecord, error)

	// Delete removes a manual with its links, history, tags, images and lock.
	// The returned paths are the image files that belonged to it.
	Delete(ctx context.Context, id string) ([]string, error)
}

// ManualRecord represents a manual as stored in persistence.
type ManualRecord struct {
	ID            string
	ParentID      string
	Title         string
	Content       string
	FlowchartData string
	Version       int
	Status        string
	IsFavorite    bool
	Revision      int64
	CreatedBy     string
	CreatedAt     string
	UpdatedAt     string
}

// ManualUpdate holds the fields to change. Nil fields are left alone.
type ManualUpdate struct {
	Title         *string
	Content       *string
	FlowchartData *string
	Status        *string

	// ExpectedRevision makes the update conditional on the stored revision.
	ExpectedRevision *int64
	// ChangedBy is recorded on the history snapshot.
	ChangedBy string
}

// IsEmpty reports whether the update changes nothing.
func (u ManualUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.FlowchartData == nil && u.Status == nil
}

// ManualVersionFields is the content of a new version row.
// An empty ID is allocated by the repository.
type ManualVersionFields struct {
	ID            string
	Title         string
	Content       string
	FlowchartData string
	CreatedBy     string
}

// HistoryRepository defines the secondary port for manual history reads.
// Snapshots are written by ManualRepository.Update.
type HistoryRepository interface {
	// List retrieves the snapshots of a manual in insertion order.
	List(ctx context.Context, manualID string) ([]*HistoryRecord, error)
}

// HistoryRecord is one pre-update snapshot of a manual.
type HistoryRecord struct {
	ID            int64
	ManualID      string
	Title         string
	Content       string
	FlowchartData string
	Version       int
	ChangedBy     string
	CreatedAt     string
}

// LinkRepository defines the secondary port for category/manual links.
type LinkRepository interface {
	// Upsert links a manual to a category, updating the entry point of an existing link.
	Upsert(ctx context.Context, link *LinkRecord) error

	// Delete removes a link.
	Delete(ctx context.Context, categoryID, manualID string) error

	// Move relinks a manual from one category to another, keeping its entry point.
	Move(ctx context.Context, manualID, fromCategoryID, toCategoryID string) error

	// ListByCategory retrieves the manuals of a category ordered by link display order.
	ListByCategory(ctx context.Context, categoryID string) ([]*LinkedManualRecord, error)

	// ListByManual retrieves the categories a manual is linked to.
	ListByManual(ctx context.Context, manualID string) ([]*LinkedCategoryRecord, error)
}

// LinkRecord represents a category/manual link.
type LinkRecord struct {
	CategoryID   string
	ManualID     string
	EntryPoint   string
	DisplayOrder int
}

// LinkedManualRecord is a manual seen through one of its category links.
type LinkedManualRecord struct {
	Manual       *ManualRecord
	EntryPoint   string
	DisplayOrder int
}

// LinkedCategoryRecord is a category seen through one of a manual's links.
type LinkedCategoryRecord struct {
	Category   *CategoryRecord
	EntryPoint string
}

// LockRepository defines the secondary port for advisory edit locks.
type LockRepository interface {
	// TryAcquire inserts the lock unless the resource is already held.
	// It returns the current lock and whether this call created it.
	TryAcquire(ctx context.Context, lock *LockRecord) (*LockRecord, bool, error)

	// Get retrieves the lock on a resource (nil if unlocked).
	Get(ctx context.Context, resource string) (*LockRecord, error)

	// DeleteWithToken removes the lock if token matches. It reports whether a row was removed.
	DeleteWithToken(ctx context.Context, resource, token string) (bool, error)

	// Delete removes the lock unconditionally and returns what was removed (nil if unlocked).
	Delete(ctx context.Context, resource string) (*LockRecord, error)

	// List retrieves every held lock.
	List(ctx context.Context) ([]*LockRecord, error)
}

// LockRecord represents a held lock.
type LockRecord struct {
	Resource   string
	Holder     string
	Token      string
	AcquiredAt string
}

// ImageRepository defines the secondary port for manual image metadata.
type ImageRepository interface {
	// Create persists image metadata, appending it to the manual's display order.
	// An empty ID is allocated.
	Create(ctx context.Context, image *ImageRecord) error

	// GetByID retrieves an image by its ID.
	GetByID(ctx context.Context, id string) (*ImageRecord, error)

	// ListByManual retrieves a manual's images by display order.
	ListByManual(ctx context.Context, manualID string) ([]*ImageRecord, error)

	// Delete removes image metadata.
	Delete(ctx context.Context, id string) error
}

// ImageRecord represents the metadata of a stored image file.
type ImageRecord struct {
	ID           string
	ManualID     string
	FileName     string
	OriginalName string
	FilePath     string
	FileSize     int64
	MimeType     string
	AltText      string
	DisplayOrder int
	CreatedAt    string
}

// TagRepository defines the secondary port for tag persistence.
type TagRepository interface {
	// Create persists a new tag, allocating its ID when empty.
	Create(ctx context.Context, tag *TagRecord) error

	// GetByID retrieves a tag by its ID.
	GetByID(ctx context.Context, id string) (*TagRecord, error)

	// GetByName retrieves a tag by its name.
	GetByName(ctx context.Context, name string) (*TagRecord, error)

	// List retrieves all tags ordered by name.
	List(ctx context.Context) ([]*TagRecord, error)

	// Delete removes a tag and its assignments.
	Delete(ctx context.Context, id string) error

	// Assign attaches a tag to a manual. Assigning twice is a no-op.
	Assign(ctx context.Context, manualID, tagID string) error

	// Unassign detaches a tag from a manual.
	Unassign(ctx context.Context, manualID, tagID string) error

	// ListByManual retrieves the tags of a manual.
	ListByManual(ctx context.Context, manualID string) ([]*TagRecord, error)
}

// TagRecord represents a tag as stored in persistence.
type TagRecord struct {
	ID        string
	Name      string
	Color     string
	CreatedAt string
}
