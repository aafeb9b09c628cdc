// Package locker provides distributed locking for coordinating work
// across service instances, such as the periodic cache cleanup sweep.
package locker

import (
	"context"
	"time"
)

// DistributedLocker provides cross-instance mutual exclusion.
// Implementations must be safe for concurrent use.
//
// The ttl doubles as a cooldown mechanism: a lock that is deliberately
// not released keeps the guarded work from re-running until it expires.
type DistributedLocker interface {
	// Acquire attempts to take the lock identified by key. It returns
	// true when acquired and false when another instance holds it. The
	// lock expires on its own after ttl if never released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives up the lock identified by key. Releasing a lock
	// this instance does not own is a no-op.
	Release(ctx context.Context, key string) error
}
