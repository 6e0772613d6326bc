package staging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another build holds the staging root.
var ErrLocked = errors.New("staging root is locked by another build")

const lockRetryDelay = 250 * time.Millisecond

// Lock is an advisory lock on a staging root.
type Lock struct {
	file *flock.Flock
}

// Acquire locks root, waiting up to timeout. A zero timeout tries once.
func Acquire(ctx context.Context, root string, timeout time.Duration) (*Lock, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}
	file := flock.New(filepath.Join(root, LockFileName))

	var (
		locked bool
		err    error
	)
	if timeout <= 0 {
		locked, err = file.TryLock()
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		locked, err = file.TryLockContext(waitCtx, lockRetryDelay)
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("lock staging root: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, file.Path())
	}
	return &Lock{file: file}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.file.Path() }

// Release unlocks the staging root. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Unlock()
}
