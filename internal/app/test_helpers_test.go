package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/core/manual"
	"github.com/example/guidebook/internal/ports/secondary"
)

const testTimestamp = "2026-01-01T00:00:00Z"

// ============================================================================
// Category repository
// ============================================================================

var _ secondary.CategoryRepository = (*mockCategoryRepository)(nil)

type mockCategoryRepository struct {
	categories map[string]*secondary.CategoryRecord
	order      []string
	updates    []secondary.CategoryUpdate
	createErr  error
	listErr    error
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[string]*secondary.CategoryRecord)}
}

func (m *mockCategoryRepository) add(r *secondary.CategoryRecord) {
	m.categories[r.ID] = r
	m.order = append(m.order, r.ID)
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *secondary.CategoryRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if c.ID == "" {
		c.ID = fmt.Sprintf("CAT-%03d", len(m.order)+1)
	}
	copied := *c
	copied.CreatedAt, copied.UpdatedAt = testTimestamp, testTimestamp
	m.add(&copied)
	return nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*secondary.CategoryRecord, error) {
	if c, ok := m.categories[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, apperr.NotFound("category %s not found", id)
}

func (m *mockCategoryRepository) GetByPath(ctx context.Context, path string) (*secondary.CategoryRecord, error) {
	for _, id := range m.order {
		if c := m.categories[id]; c != nil && c.Path == path {
			return c, nil
		}
	}
	return nil, apperr.NotFound("category '%s' not found", path)
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*secondary.CategoryRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.CategoryRecord
	for _, id := range m.order {
		if c, ok := m.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, id string, u secondary.CategoryUpdate) error {
	c, ok := m.categories[id]
	if !ok {
		return apperr.NotFound("category %s not found", id)
	}
	m.updates = append(m.updates, u)
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Icon != nil {
		c.Icon = *u.Icon
	}
	if u.ParentID != nil {
		c.ParentID = *u.ParentID
	}
	if u.DisplayOrder != nil {
		c.DisplayOrder = *u.DisplayOrder
	}
	if u.Path != nil {
		c.Path = *u.Path
	}
	if u.Level != nil {
		c.Level = *u.Level
	}
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.categories[id]; !ok {
		return apperr.NotFound("category %s not found", id)
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) DeleteSubtree(ctx context.Context, id string) (int, error) {
	if _, ok := m.categories[id]; !ok {
		return 0, apperr.NotFound("category %s not found", id)
	}
	removed := 0
	var drop func(string)
	drop = func(cur string) {
		for childID, c := range m.categories {
			if c.ParentID == cur {
				drop(childID)
			}
		}
		delete(m.categories, cur)
		removed++
	}
	drop(id)
	return removed, nil
}

func (m *mockCategoryRepository) CountChildren(ctx context.Context, id string) (int, error) {
	n := 0
	for _, c := range m.categories {
		if c.ParentID == id {
			n++
		}
	}
	return n, nil
}

// ============================================================================
// Manual repository
// ============================================================================

var _ secondary.ManualRepository = (*mockManualRepository)(nil)

type mockManualRepository struct {
	manuals     map[string]*secondary.ManualRecord
	order       []string
	links       []*secondary.LinkRecord
	updates     []secondary.ManualUpdate
	imagePaths  map[string][]string
	favorites   map[string]bool
	searchQuery string
	createErr   error
	updateErr   error
}

func newMockManualRepository() *mockManualRepository {
	return &mockManualRepository{
		manuals:    make(map[string]*secondary.ManualRecord),
		imagePaths: make(map[string][]string),
		favorites:  make(map[string]bool),
	}
}

func (m *mockManualRepository) add(r *secondary.ManualRecord) {
	if r.ParentID == "" {
		r.ParentID = r.ID
	}
	if r.Version == 0 {
		r.Version = 1
	}
	m.manuals[r.ID] = r
	m.order = append(m.order, r.ID)
}

func (m *mockManualRepository) Create(ctx context.Context, r *secondary.ManualRecord, link *secondary.LinkRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if r.ID == "" {
		r.ID = m.nextID()
	}
	copied := *r
	copied.ParentID = r.ID
	copied.Version = 1
	copied.CreatedAt, copied.UpdatedAt = testTimestamp, testTimestamp
	m.add(&copied)
	if link != nil {
		link.ManualID = r.ID
		m.links = append(m.links, link)
	}
	return nil
}

func (m *mockManualRepository) GetByID(ctx context.Context, id string) (*secondary.ManualRecord, error) {
	if r, ok := m.manuals[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, apperr.NotFound("manual %s not found", id)
}

func (m *mockManualRepository) List(ctx context.Context) ([]*secondary.ManualRecord, error) {
	var out []*secondary.ManualRecord
	for _, id := range m.order {
		if r, ok := m.manuals[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockManualRepository) ListUnassigned(ctx context.Context) ([]*secondary.ManualRecord, error) {
	linked := map[string]bool{}
	for _, l := range m.links {
		linked[l.ManualID] = true
	}
	var out []*secondary.ManualRecord
	for _, id := range m.order {
		if r, ok := m.manuals[id]; ok && !linked[id] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockManualRepository) Search(ctx context.Context, query string) ([]*secondary.ManualRecord, error) {
	m.searchQuery = query
	return m.List(ctx)
}

func (m *mockManualRepository) Update(ctx context.Context, id string, u secondary.ManualUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if u.IsEmpty() {
		return nil
	}
	r, ok := m.manuals[id]
	if !ok {
		return apperr.NotFound("manual %s not found", id)
	}
	if u.ExpectedRevision != nil && *u.ExpectedRevision != r.Revision {
		return apperr.Conflict("manual %s was modified", id)
	}
	m.updates = append(m.updates, u)
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Content != nil {
		r.Content = *u.Content
	}
	if u.FlowchartData != nil {
		r.FlowchartData = *u.FlowchartData
	}
	if u.Status != nil {
		r.Status = *u.Status
	}
	r.Revision++
	return nil
}

func (m *mockManualRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	r, ok := m.manuals[id]
	if !ok {
		return apperr.NotFound("manual %s not found", id)
	}
	r.IsFavorite = favorite
	return nil
}

func (m *mockManualRepository) CreateVersion(ctx context.Context, sourceID string, f secondary.ManualVersionFields) (*secondary.ManualRecord, error) {
	source, ok := m.manuals[sourceID]
	if !ok {
		return nil, apperr.NotFound("manual %s not found", sourceID)
	}
	root := manual.ChainRoot(source.ID, source.ParentID)
	maxVersion := 0
	for _, r := range m.manuals {
		if (r.ID == root || r.ParentID == root) && r.Version > maxVersion {
			maxVersion = r.Version
		}
	}
	id := f.ID
	if id == "" {
		id = m.nextID()
	}
	record := &secondary.ManualRecord{
		ID:            id,
		ParentID:      root,
		Title:         f.Title,
		Content:       f.Content,
		FlowchartData: f.FlowchartData,
		Version:       maxVersion + 1,
		Status:        manual.StatusDraft,
		CreatedBy:     f.CreatedBy,
	}
	m.add(record)
	copied := *record
	return &copied, nil
}

func (m *mockManualRepository) ListVersions(ctx context.Context, id string) ([]*secondary.ManualRecord, error) {
	r, ok := m.manuals[id]
	if !ok {
		return nil, apperr.NotFound("manual %s not found", id)
	}
	root := manual.ChainRoot(r.ID, r.ParentID)
	var out []*secondary.ManualRecord
	for _, rec := range m.manuals {
		if rec.ID == root || rec.ParentID == root {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (m *mockManualRepository) Delete(ctx context.Context, id string) ([]string, error) {
	if _, ok := m.manuals[id]; !ok {
		return nil, apperr.NotFound("manual %s not found", id)
	}
	delete(m.manuals, id)
	return m.imagePaths[id], nil
}

func (m *mockManualRepository) nextID() string {
	return fmt.Sprintf("MAN-%03d", len(m.order)+1)
}

// ============================================================================
// History repository
// ============================================================================

var _ secondary.HistoryRepository = (*mockHistoryRepository)(nil)

type mockHistoryRepository struct {
	entries map[string][]*secondary.HistoryRecord
}

func newMockHistoryRepository() *mockHistoryRepository {
	return &mockHistoryRepository{entries: make(map[string][]*secondary.HistoryRecord)}
}

func (m *mockHistoryRepository) List(ctx context.Context, manualID string) ([]*secondary.HistoryRecord, error) {
	return m.entries[manualID], nil
}

// ============================================================================
// Link repository
// ============================================================================

var _ secondary.LinkRepository = (*mockLinkRepository)(nil)

type mockLinkRepository struct {
	upserts    []*secondary.LinkRecord
	deleted    []string
	moves      []string
	byCategory map[string][]*secondary.LinkedManualRecord
	byManual   map[string][]*secondary.LinkedCategoryRecord
	moveErr    error
}

func newMockLinkRepository() *mockLinkRepository {
	return &mockLinkRepository{
		byCategory: make(map[string][]*secondary.LinkedManualRecord),
		byManual:   make(map[string][]*secondary.LinkedCategoryRecord),
	}
}

func (m *mockLinkRepository) Upsert(ctx context.Context, link *secondary.LinkRecord) error {
	m.upserts = append(m.upserts, link)
	return nil
}

func (m *mockLinkRepository) Delete(ctx context.Context, categoryID, manualID string) error {
	m.deleted = append(m.deleted, categoryID+"/"+manualID)
	return nil
}

func (m *mockLinkRepository) Move(ctx context.Context, manualID, from, to string) error {
	if m.moveErr != nil {
		return m.moveErr
	}
	m.moves = append(m.moves, manualID+":"+from+"->"+to)
	return nil
}

func (m *mockLinkRepository) ListByCategory(ctx context.Context, categoryID string) ([]*secondary.LinkedManualRecord, error) {
	return m.byCategory[categoryID], nil
}

func (m *mockLinkRepository) ListByManual(ctx context.Context, manualID string) ([]*secondary.LinkedCategoryRecord, error) {
	return m.byManual[manualID], nil
}

// ============================================================================
// Lock repository
// ============================================================================

var _ secondary.LockRepository = (*mockLockRepository)(nil)

type mockLockRepository struct {
	locks map[string]*secondary.LockRecord
}

func newMockLockRepository() *mockLockRepository {
	return &mockLockRepository{locks: make(map[string]*secondary.LockRecord)}
}

func (m *mockLockRepository) TryAcquire(ctx context.Context, l *secondary.LockRecord) (*secondary.LockRecord, bool, error) {
	if current, ok := m.locks[l.Resource]; ok {
		copied := *current
		return &copied, false, nil
	}
	stored := *l
	stored.AcquiredAt = testTimestamp
	m.locks[l.Resource] = &stored
	copied := stored
	return &copied, true, nil
}

func (m *mockLockRepository) Get(ctx context.Context, resource string) (*secondary.LockRecord, error) {
	if current, ok := m.locks[resource]; ok {
		copied := *current
		return &copied, nil
	}
	return nil, nil
}

func (m *mockLockRepository) DeleteWithToken(ctx context.Context, resource, token string) (bool, error) {
	if current, ok := m.locks[resource]; ok && current.Token == token {
		delete(m.locks, resource)
		return true, nil
	}
	return false, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, resource string) (*secondary.LockRecord, error) {
	current, ok := m.locks[resource]
	if !ok {
		return nil, nil
	}
	delete(m.locks, resource)
	return current, nil
}

func (m *mockLockRepository) List(ctx context.Context) ([]*secondary.LockRecord, error) {
	var out []*secondary.LockRecord
	for _, l := range m.locks {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out, nil
}

// ============================================================================
// Image repository
// ============================================================================

var _ secondary.ImageRepository = (*mockImageRepository)(nil)

type mockImageRepository struct {
	images    map[string]*secondary.ImageRecord
	createErr error
}

func newMockImageRepository() *mockImageRepository {
	return &mockImageRepository{images: make(map[string]*secondary.ImageRecord)}
}

func (m *mockImageRepository) Create(ctx context.Context, img *secondary.ImageRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if img.ID == "" {
		img.ID = fmt.Sprintf("IMG-%03d", len(m.images)+1)
	}
	copied := *img
	copied.DisplayOrder = len(m.images)
	copied.CreatedAt = testTimestamp
	m.images[img.ID] = &copied
	return nil
}

func (m *mockImageRepository) GetByID(ctx context.Context, id string) (*secondary.ImageRecord, error) {
	if img, ok := m.images[id]; ok {
		copied := *img
		return &copied, nil
	}
	return nil, apperr.NotFound("image %s not found", id)
}

func (m *mockImageRepository) ListByManual(ctx context.Context, manualID string) ([]*secondary.ImageRecord, error) {
	var out []*secondary.ImageRecord
	for _, img := range m.images {
		if img.ManualID == manualID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (m *mockImageRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.images[id]; !ok {
		return apperr.NotFound("image %s not found", id)
	}
	delete(m.images, id)
	return nil
}

// ============================================================================
// Audit and log writer
// ============================================================================

var _ secondary.LogWriter = (*mockLogWriter)(nil)

type mockLogWriter struct {
	entries []string
}

func (m *mockLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, "create "+entityType+" "+entityID)
	return nil
}

func (m *mockLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	m.entries = append(m.entries, "update "+entityType+" "+entityID+" "+fieldName)
	return nil
}

func (m *mockLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, "delete "+entityType+" "+entityID)
	return nil
}

func (m *mockLogWriter) LogForceRelease(ctx context.Context, resource, holder string) error {
	m.entries = append(m.entries, "force_release "+resource+" "+holder)
	return nil
}

var _ secondary.AuditRepository = (*mockAuditRepository)(nil)

type mockAuditRepository struct {
	records     []*secondary.AuditRecord
	lastFilters secondary.AuditFilters
}

func (m *mockAuditRepository) Create(ctx context.Context, entry *secondary.AuditRecord) error {
	m.records = append(m.records, entry)
	return nil
}

func (m *mockAuditRepository) List(ctx context.Context, filters secondary.AuditFilters) ([]*secondary.AuditRecord, error) {
	m.lastFilters = filters
	return m.records, nil
}

// ============================================================================
// Media store
// ============================================================================

var _ secondary.MediaStore = (*mockMediaStore)(nil)

type mockMediaStore struct {
	files   map[string][]byte
	removed []string
	saveErr error
}

func newMockMediaStore() *mockMediaStore {
	return &mockMediaStore{files: make(map[string][]byte)}
}

func (m *mockMediaStore) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	path := "/media/" + fileName
	m.files[path] = data
	return path, nil
}

func (m *mockMediaStore) Remove(ctx context.Context, path string) error {
	delete(m.files, path)
	m.removed = append(m.removed, path)
	return nil
}

func (m *mockMediaStore) Open(ctx context.Context, path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, apperr.NotFound("file %s not found", path)
	}
	return data, nil
}

func (m *mockMediaStore) Dir() string { return "/media" }
