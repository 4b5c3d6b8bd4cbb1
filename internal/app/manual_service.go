package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/core/guide"
	"github.com/example/guidebook/internal/core/lock"
	"github.com/example/guidebook/internal/core/manual"
	"github.com/example/guidebook/internal/ctxutil"
	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/ports/secondary"
)

// ManualServiceImpl implements the ManualService interface.
type ManualServiceImpl struct {
	manualRepo   secondary.ManualRepository
	historyRepo  secondary.HistoryRepository
	linkRepo     secondary.LinkRepository
	categoryRepo secondary.CategoryRepository
	media        secondary.MediaStore
	locks        primary.LockService
	logWriter    secondary.LogWriter
	logger       *zap.Logger
}

// ManualDeps groups the collaborators of ManualServiceImpl.
type ManualDeps struct {
	ManualRepo   secondary.ManualRepository
	HistoryRepo  secondary.HistoryRepository
	LinkRepo     secondary.LinkRepository
	CategoryRepo secondary.CategoryRepository
	Media        secondary.MediaStore
	Locks        primary.LockService
	LogWriter    secondary.LogWriter
	Logger       *zap.Logger
}

// NewManualService creates a new ManualService with injected dependencies.
func NewManualService(deps ManualDeps) *ManualServiceImpl {
	return &ManualServiceImpl{
		manualRepo:   deps.ManualRepo,
		historyRepo:  deps.HistoryRepo,
		linkRepo:     deps.LinkRepo,
		categoryRepo: deps.CategoryRepo,
		media:        deps.Media,
		locks:        deps.Locks,
		logWriter:    deps.LogWriter,
		logger:       deps.Logger,
	}
}

// ListManuals retrieves all manuals, favorites first.
func (s *ManualServiceImpl) ListManuals(ctx context.Context) ([]*primary.ManualSummary, error) {
	records, err := s.manualRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list manuals: %w", err)
	}
	return recordsToSummaries(records), nil
}

// GetManual retrieves a manual with its decoded guide.
func (s *ManualServiceImpl) GetManual(ctx context.Context, manualID string) (*primary.Manual, error) {
	record, err := s.manualRepo.GetByID(ctx, manualID)
	if err != nil {
		return nil, err
	}
	return s.recordToManual(record), nil
}

// GetManualsByCategory retrieves the manuals linked to a category.
func (s *ManualServiceImpl) GetManualsByCategory(ctx context.Context, categoryID string) ([]*primary.CategoryManual, error) {
	records, err := s.linkRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list category manuals: %w", err)
	}
	return linkedToCategoryManuals(records), nil
}

// GetUnassignedManuals retrieves manuals without any category link.
func (s *ManualServiceImpl) GetUnassignedManuals(ctx context.Context) ([]*primary.ManualSummary, error) {
	records, err := s.manualRepo.ListUnassigned(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned manuals: %w", err)
	}
	return recordsToSummaries(records), nil
}

// CreateManual creates a manual, optionally linked to a category.
func (s *ManualServiceImpl) CreateManual(ctx context.Context, req primary.CreateManualRequest) (*primary.CreateManualResponse, error) {
	categoryExists := false
	if req.CategoryID != "" {
		exists, err := s.categoryExists(ctx, req.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryExists = exists
	}

	guardCtx := manual.CreateManualContext{
		Title:          req.Title,
		Status:         req.Status,
		CategoryID:     req.CategoryID,
		CategoryExists: categoryExists,
	}
	if result := manual.CanCreateManual(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	if req.FlowchartData != "" {
		doc, err := decodeForSave(req.FlowchartData)
		if err != nil {
			return nil, err
		}
		if req.EntryPoint != "" && !doc.HasNode(req.EntryPoint) {
			return nil, apperr.Invalid("entry point %s is not a step of the new manual", req.EntryPoint)
		}
	}

	status := req.Status
	if status == "" {
		status = manual.StatusDraft
	}
	record := &secondary.ManualRecord{
		Title:         strings.TrimSpace(req.Title),
		Content:       req.Content,
		FlowchartData: req.FlowchartData,
		Status:        status,
		CreatedBy:     ctxutil.ActorFromContext(ctx),
	}

	var link *secondary.LinkRecord
	if req.CategoryID != "" {
		link = &secondary.LinkRecord{
			CategoryID: req.CategoryID,
			EntryPoint: req.EntryPoint,
		}
	}

	if err := s.manualRepo.Create(ctx, record, link); err != nil {
		return nil, fmt.Errorf("failed to create manual: %w", err)
	}

	created, err := s.manualRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created manual: %w", err)
	}
	s.audit(s.logWriter.LogCreate(ctx, "manual", created.ID))

	return &primary.CreateManualResponse{
		ManualID: created.ID,
		Manual:   s.recordToManual(created),
	}, nil
}

// UpdateManual writes the supplied fields, keeping the previous state in history.
// A Document takes precedence over FlowchartData.
func (s *ManualServiceImpl) UpdateManual(ctx context.Context, req primary.UpdateManualRequest) (*primary.Manual, error) {
	guardCtx := manual.UpdateManualContext{
		ManualID: req.ManualID,
		Title:    req.Title,
		Status:   req.Status,
	}
	if result := manual.CanUpdateManual(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	update := secondary.ManualUpdate{
		Title:            req.Title,
		Content:          req.Content,
		Status:           req.Status,
		ExpectedRevision: req.ExpectedRevision,
		ChangedBy:        ctxutil.ActorFromContext(ctx),
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		update.Title = &title
	}

	switch {
	case req.Document != nil:
		if err := req.Document.Validate(); err != nil {
			return nil, err
		}
		text, err := req.Document.Encode()
		if err != nil {
			return nil, err
		}
		update.FlowchartData = &text
	case req.FlowchartData != nil:
		if _, err := decodeForSave(*req.FlowchartData); err != nil {
			return nil, err
		}
		update.FlowchartData = req.FlowchartData
	}

	if err := s.manualRepo.Update(ctx, req.ManualID, update); err != nil {
		return nil, err
	}

	updated, err := s.manualRepo.GetByID(ctx, req.ManualID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated manual: %w", err)
	}
	if !update.IsEmpty() {
		s.audit(s.logWriter.LogUpdate(ctx, "manual", req.ManualID, "revision",
			fmt.Sprint(updated.Revision-1), fmt.Sprint(updated.Revision)))
	}
	return s.recordToManual(updated), nil
}

// SaveAsNewVersion appends a new draft to the version chain of the manual.
// Empty fields are taken from the source manual.
func (s *ManualServiceImpl) SaveAsNewVersion(ctx context.Context, req primary.SaveVersionRequest) (*primary.SaveVersionResponse, error) {
	source, err := s.manualRepo.GetByID(ctx, req.ManualID)
	if err != nil {
		return nil, err
	}

	fields := secondary.ManualVersionFields{
		Title:         firstNonEmpty(strings.TrimSpace(req.Title), source.Title),
		Content:       firstNonEmpty(req.Content, source.Content),
		FlowchartData: firstNonEmpty(req.FlowchartData, source.FlowchartData),
		CreatedBy:     ctxutil.ActorFromContext(ctx),
	}
	if req.FlowchartData != "" {
		if _, err := decodeForSave(req.FlowchartData); err != nil {
			return nil, err
		}
	}

	created, err := s.manualRepo.CreateVersion(ctx, req.ManualID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to save new version: %w", err)
	}
	s.audit(s.logWriter.LogCreate(ctx, "manual", created.ID))

	return &primary.SaveVersionResponse{
		ManualID: created.ID,
		Version:  created.Version,
	}, nil
}

// GetVersions retrieves the version chain of a manual, newest first.
func (s *ManualServiceImpl) GetVersions(ctx context.Context, manualID string) ([]*primary.ManualSummary, error) {
	records, err := s.manualRepo.ListVersions(ctx, manualID)
	if err != nil {
		return nil, err
	}
	return recordsToSummaries(records), nil
}

// GetHistory retrieves the saved snapshots of a manual in the order they were taken.
func (s *ManualServiceImpl) GetHistory(ctx context.Context, manualID string) ([]*primary.HistoryEntry, error) {
	records, err := s.historyRepo.List(ctx, manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]*primary.HistoryEntry, len(records))
	for i, r := range records {
		entries[i] = &primary.HistoryEntry{
			ID:            r.ID,
			ManualID:      r.ManualID,
			Title:         r.Title,
			Content:       r.Content,
			FlowchartData: r.FlowchartData,
			Version:       r.Version,
			ChangedBy:     r.ChangedBy,
			CreatedAt:     r.CreatedAt,
		}
	}
	return entries, nil
}

// SearchManuals finds manuals whose title or content contains query.
func (s *ManualServiceImpl) SearchManuals(ctx context.Context, query string) ([]*primary.ManualSummary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.Invalid("search query is required")
	}
	records, err := s.manualRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search manuals: %w", err)
	}
	return recordsToSummaries(records), nil
}

// LinkCategory links a manual to a category, replacing the entry point of an existing link.
func (s *ManualServiceImpl) LinkCategory(ctx context.Context, req primary.LinkCategoryRequest) error {
	guardCtx := manual.LinkCategoryContext{
		ManualID:   req.ManualID,
		CategoryID: req.CategoryID,
		EntryPoint: req.EntryPoint,
	}

	record, err := s.manualRepo.GetByID(ctx, req.ManualID)
	switch {
	case err == nil:
		guardCtx.ManualExists = true
		if req.EntryPoint != "" {
			if doc, derr := guide.Decode(record.FlowchartData); derr == nil {
				guardCtx.EntryPointExists = doc.HasNode(req.EntryPoint)
			}
		}
	case !apperr.IsNotFound(err):
		return fmt.Errorf("failed to validate manual: %w", err)
	}

	exists, err := s.categoryExists(ctx, req.CategoryID)
	if err != nil {
		return err
	}
	guardCtx.CategoryExists = exists

	if result := manual.CanLinkCategory(guardCtx); !result.Allowed {
		return result.Error()
	}

	return s.linkRepo.Upsert(ctx, &secondary.LinkRecord{
		CategoryID: req.CategoryID,
		ManualID:   req.ManualID,
		EntryPoint: req.EntryPoint,
	})
}

// UnlinkCategory removes the link between a manual and a category.
func (s *ManualServiceImpl) UnlinkCategory(ctx context.Context, manualID, categoryID string) error {
	return s.linkRepo.Delete(ctx, categoryID, manualID)
}

// MoveCategory moves a manual's link from one category to another, keeping its entry point.
func (s *ManualServiceImpl) MoveCategory(ctx context.Context, manualID, fromCategoryID, toCategoryID string) error {
	exists, err := s.categoryExists(ctx, toCategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("category %s not found", toCategoryID)
	}
	return s.linkRepo.Move(ctx, manualID, fromCategoryID, toCategoryID)
}

// GetManualCategories retrieves the categories a manual is linked to.
func (s *ManualServiceImpl) GetManualCategories(ctx context.Context, manualID string) ([]*primary.ManualCategory, error) {
	records, err := s.linkRepo.ListByManual(ctx, manualID)
	if err != nil {
		return nil, fmt.Errorf("failed to list manual categories: %w", err)
	}

	out := make([]*primary.ManualCategory, len(records))
	for i, r := range records {
		out[i] = &primary.ManualCategory{
			Category:   recordToCategory(r.Category),
			EntryPoint: r.EntryPoint,
		}
	}
	return out, nil
}

// ToggleFavorite sets the favorite flag.
func (s *ManualServiceImpl) ToggleFavorite(ctx context.Context, manualID string, favorite bool) error {
	return s.manualRepo.SetFavorite(ctx, manualID, favorite)
}

// DeleteManual removes a manual with its links, history, tags, images and lock,
// then deletes the image files.
func (s *ManualServiceImpl) DeleteManual(ctx context.Context, manualID string) error {
	paths, err := s.manualRepo.Delete(ctx, manualID)
	if err != nil {
		return err
	}

	for _, p := range paths {
		if err := s.media.Remove(ctx, p); err != nil {
			s.logger.Warn("failed to remove image file",
				zap.String("manual_id", manualID),
				zap.String("path", p),
				zap.Error(err))
		}
	}

	s.audit(s.logWriter.LogDelete(ctx, "manual", manualID))
	return nil
}

// AcquireLock takes the edit lock of a manual.
func (s *ManualServiceImpl) AcquireLock(ctx context.Context, manualID, holder string) (*primary.LockResult, error) {
	return s.locks.Acquire(ctx, lock.ManualResource(manualID), holder)
}

// ReleaseLock releases the edit lock of a manual.
func (s *ManualServiceImpl) ReleaseLock(ctx context.Context, manualID, token string) error {
	return s.locks.Release(ctx, lock.ManualResource(manualID), token)
}

// ForceReleaseLock breaks the edit lock of a manual.
func (s *ManualServiceImpl) ForceReleaseLock(ctx context.Context, manualID string) (*primary.LockStatus, error) {
	return s.locks.ForceRelease(ctx, lock.ManualResource(manualID))
}

// CheckLock reports who holds the edit lock of a manual.
func (s *ManualServiceImpl) CheckLock(ctx context.Context, manualID string) (*primary.LockStatus, error) {
	return s.locks.Check(ctx, lock.ManualResource(manualID))
}

func (s *ManualServiceImpl) categoryExists(ctx context.Context, categoryID string) (bool, error) {
	_, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err == nil {
		return true, nil
	}
	if apperr.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to validate category: %w", err)
}

func (s *ManualServiceImpl) audit(err error) {
	if err != nil {
		s.logger.Error("failed to write audit entry", zap.Error(err))
	}
}

// recordToManual converts a record, decoding its guide. A guide that cannot
// be decoded is replaced by an empty one and reported in DocumentError.
func (s *ManualServiceImpl) recordToManual(r *secondary.ManualRecord) *primary.Manual {
	m := &primary.Manual{
		ID:            r.ID,
		ParentID:      r.ParentID,
		Title:         r.Title,
		Content:       r.Content,
		FlowchartData: r.FlowchartData,
		Version:       r.Version,
		Status:        r.Status,
		IsFavorite:    r.IsFavorite,
		Revision:      r.Revision,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	doc, err := guide.Decode(r.FlowchartData)
	if err != nil {
		s.logger.Error("failed to decode manual guide", zap.String("manual_id", r.ID), zap.Error(err))
		doc = guide.Empty()
		m.DocumentError = err.Error()
	}
	m.Document = doc
	return m
}

// decodeForSave rejects flowchart text that would not load again.
func decodeForSave(text string) (*guide.Document, error) {
	doc, err := guide.Decode(text)
	if err != nil {
		return nil, apperr.Invalid("%v", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func recordToManualSummary(r *secondary.ManualRecord) *primary.ManualSummary {
	return &primary.ManualSummary{
		ID:         r.ID,
		ParentID:   r.ParentID,
		Title:      r.Title,
		Status:     r.Status,
		Version:    r.Version,
		IsFavorite: r.IsFavorite,
		UpdatedAt:  r.UpdatedAt,
	}
}

func recordsToSummaries(records []*secondary.ManualRecord) []*primary.ManualSummary {
	out := make([]*primary.ManualSummary, len(records))
	for i, r := range records {
		out[i] = recordToManualSummary(r)
	}
	return out
}

// Ensure ManualServiceImpl implements the interface
var _ primary.ManualService = (*ManualServiceImpl)(nil)
