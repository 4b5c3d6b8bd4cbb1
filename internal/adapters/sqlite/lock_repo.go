package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/guidebook/internal/ports/secondary"
)

// LockRepository implements secondary.LockRepository with SQLite.
type LockRepository struct {
	db *sql.DB
}

// NewLockRepository creates a new SQLite edit lock repository.
func NewLockRepository(db *sql.DB) *LockRepository {
	return &LockRepository{db: db}
}

func getLock(ctx context.Context, q rowQueryer, resource string) (*secondary.LockRecord, error) {
	var acquiredAt time.Time
	record := &secondary.LockRecord{}
	err := q.QueryRowContext(ctx,
		"SELECT resource, holder, token, acquired_at FROM edit_locks WHERE resource = ?", resource,
	).Scan(&record.Resource, &record.Holder, &record.Token, &acquiredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lock: %w", err)
	}
	record.AcquiredAt = formatTime(acquiredAt)
	return record, nil
}

// TryAcquire inserts the lock unless the resource is already held.
// The insert and the read of a conflicting holder share one transaction.
func (r *LockRepository) TryAcquire(ctx context.Context, lock *secondary.LockRecord) (*secondary.LockRecord, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	result, err := tx.ExecContext(ctx,
		"INSERT INTO edit_locks (resource, holder, token, acquired_at) VALUES (?, ?, ?, ?) ON CONFLICT(resource) DO NOTHING",
		lock.Resource, lock.Holder, lock.Token, ts,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 1 {
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		acquired := *lock
		acquired.AcquiredAt = recordTime(ts)
		return &acquired, true, nil
	}

	current, err := getLock(ctx, tx, lock.Resource)
	if err != nil {
		return nil, false, err
	}
	return current, false, tx.Commit()
}

// Get retrieves the lock on a resource (nil if unlocked).
func (r *LockRepository) Get(ctx context.Context, resource string) (*secondary.LockRecord, error) {
	return getLock(ctx, r.db, resource)
}

// DeleteWithToken removes the lock if token matches.
func (r *LockRepository) DeleteWithToken(ctx context.Context, resource, token string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM edit_locks WHERE resource = ? AND token = ?", resource, token)
	if err != nil {
		return false, fmt.Errorf("failed to release lock: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// Delete removes the lock unconditionally and returns what was removed.
func (r *LockRepository) Delete(ctx context.Context, resource string) (*secondary.LockRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getLock(ctx, tx, resource)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM edit_locks WHERE resource = ?", resource); err != nil {
		return nil, fmt.Errorf("failed to force release lock: %w", err)
	}
	return current, tx.Commit()
}

// List retrieves every held lock, oldest first.
func (r *LockRepository) List(ctx context.Context) ([]*secondary.LockRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT resource, holder, token, acquired_at FROM edit_locks ORDER BY acquired_at ASC, resource ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list locks: %w", err)
	}
	defer rows.Close()

	var locks []*secondary.LockRecord
	for rows.Next() {
		var acquiredAt time.Time
		record := &secondary.LockRecord{}
		if err := rows.Scan(&record.Resource, &record.Holder, &record.Token, &acquiredAt); err != nil {
			return nil, fmt.Errorf("failed to scan lock: %w", err)
		}
		record.AcquiredAt = formatTime(acquiredAt)
		locks = append(locks, record)
	}
	return locks, rows.Err()
}

// Ensure LockRepository implements the interface.
var _ secondary.LockRepository = (*LockRepository)(nil)
