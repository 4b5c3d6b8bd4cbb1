package primary

import "context"

// LockService defines the primary port for advisory edit locks.
// Locks never gate writes; editors consult them before editing.
type LockService interface {
	// Acquire locks resource for holder. A held lock is reported in the result, not as an error.
	Acquire(ctx context.Context, resource, holder string) (*LockResult, error)

	// Release releases the lock if token matches. Releasing an unlocked resource is a no-op.
	Release(ctx context.Context, resource, token string) error

	// ForceRelease breaks the lock regardless of holder and records an audit entry.
	ForceRelease(ctx context.Context, resource string) (*LockStatus, error)

	// Check reports the current holder of resource.
	Check(ctx context.Context, resource string) (*LockStatus, error)

	// ListLocks retrieves every held lock.
	ListLocks(ctx context.Context) ([]*LockStatus, error)
}

// LockResult is the outcome of an acquire attempt.
// On success Token identifies the holder for release; on conflict Holder and
// AcquiredAt describe the current lock.
type LockResult struct {
	Acquired   bool   `json:"acquired"`
	Token      string `json:"token,omitempty"`
	Holder     string `json:"holder"`
	AcquiredAt string `json:"acquired_at"`
}

// LockStatus describes a resource's lock. The token is never exposed.
type LockStatus struct {
	Resource   string `json:"resource"`
	Locked     bool   `json:"locked"`
	Holder     string `json:"holder,omitempty"`
	AcquiredAt string `json:"acquired_at,omitempty"`
}
