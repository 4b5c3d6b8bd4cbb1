package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/core/lock"
	"github.com/example/guidebook/internal/ctxutil"
	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/ports/secondary"
)

// LockServiceImpl implements the LockService interface.
type LockServiceImpl struct {
	lockRepo   secondary.LockRepository
	manualRepo secondary.ManualRepository
	logWriter  secondary.LogWriter
	logger     *zap.Logger
	newToken   func() string
}

// NewLockService creates a new LockService with injected dependencies.
func NewLockService(
	lockRepo secondary.LockRepository,
	manualRepo secondary.ManualRepository,
	logWriter secondary.LogWriter,
	logger *zap.Logger,
) *LockServiceImpl {
	return &LockServiceImpl{
		lockRepo:   lockRepo,
		manualRepo: manualRepo,
		logWriter:  logWriter,
		logger:     logger,
		newToken:   uuid.NewString,
	}
}

// Acquire takes the lock on resource for holder. A lock held by someone else
// is reported in the result, not as an error.
func (s *LockServiceImpl) Acquire(ctx context.Context, resource, holder string) (*primary.LockResult, error) {
	manualExists := false
	if manualID, ok := lock.ParseResource(resource); ok {
		exists, err := s.manualExists(ctx, manualID)
		if err != nil {
			return nil, err
		}
		manualExists = exists
	}

	guardCtx := lock.AcquireContext{
		Resource:     resource,
		Holder:       holder,
		ManualExists: manualExists,
	}
	if result := lock.CanAcquire(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	record := &secondary.LockRecord{
		Resource: resource,
		Holder:   holder,
		Token:    s.newToken(),
	}
	current, acquired, err := s.lockRepo.TryAcquire(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", resource, err)
	}

	if !acquired {
		s.logger.Debug("lock held by another holder",
			zap.String("resource", resource),
			zap.String("holder", current.Holder))
		return &primary.LockResult{
			Acquired:   false,
			Holder:     current.Holder,
			AcquiredAt: current.AcquiredAt,
		}, nil
	}

	return &primary.LockResult{
		Acquired:   true,
		Token:      current.Token,
		Holder:     current.Holder,
		AcquiredAt: current.AcquiredAt,
	}, nil
}

// Release drops the lock if token matches the one returned by Acquire.
func (s *LockServiceImpl) Release(ctx context.Context, resource, token string) error {
	current, err := s.lockRepo.Get(ctx, resource)
	if err != nil {
		return err
	}

	guardCtx := lock.ReleaseContext{
		Resource: resource,
		Locked:   current != nil,
		Token:    token,
	}
	if current != nil {
		guardCtx.HeldToken = current.Token
	}
	if result := lock.CanRelease(guardCtx); !result.Allowed {
		return result.Error()
	}
	if current == nil {
		return nil
	}

	released, err := s.lockRepo.DeleteWithToken(ctx, resource, token)
	if err != nil {
		return err
	}
	if !released {
		// Force released or re-acquired between the read and the delete.
		return apperr.Conflict("lock on %s is held with a different token", resource)
	}
	return nil
}

// ForceRelease drops the lock whoever holds it and records who was displaced.
func (s *LockServiceImpl) ForceRelease(ctx context.Context, resource string) (*primary.LockStatus, error) {
	if !lock.ValidResource(resource) {
		return nil, apperr.Invalid("unknown lock resource %q", resource)
	}

	displaced, err := s.lockRepo.Delete(ctx, resource)
	if err != nil {
		return nil, err
	}
	if displaced == nil {
		return &primary.LockStatus{Resource: resource}, nil
	}

	s.logger.Warn("lock force released",
		zap.String("resource", resource),
		zap.String("actor", ctxutil.ActorFromContext(ctx)),
		zap.String("displaced_holder", displaced.Holder),
		zap.String("held_since", displaced.AcquiredAt))

	if err := s.logWriter.LogForceRelease(ctx, resource, displaced.Holder); err != nil {
		s.logger.Error("failed to audit force release", zap.String("resource", resource), zap.Error(err))
	}

	return recordToLockStatus(displaced), nil
}

// Check reports who holds the lock on resource.
func (s *LockServiceImpl) Check(ctx context.Context, resource string) (*primary.LockStatus, error) {
	current, err := s.lockRepo.Get(ctx, resource)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &primary.LockStatus{Resource: resource}, nil
	}
	return recordToLockStatus(current), nil
}

// ListLocks retrieves every held lock.
func (s *LockServiceImpl) ListLocks(ctx context.Context) ([]*primary.LockStatus, error) {
	records, err := s.lockRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locks: %w", err)
	}

	locks := make([]*primary.LockStatus, len(records))
	for i, r := range records {
		locks[i] = recordToLockStatus(r)
	}
	return locks, nil
}

func (s *LockServiceImpl) manualExists(ctx context.Context, manualID string) (bool, error) {
	_, err := s.manualRepo.GetByID(ctx, manualID)
	if err == nil {
		return true, nil
	}
	if apperr.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to validate manual: %w", err)
}

func recordToLockStatus(r *secondary.LockRecord) *primary.LockStatus {
	return &primary.LockStatus{
		Resource:   r.Resource,
		Locked:     true,
		Holder:     r.Holder,
		AcquiredAt: r.AcquiredAt,
	}
}

// Ensure LockServiceImpl implements the interface
var _ primary.LockService = (*LockServiceImpl)(nil)
