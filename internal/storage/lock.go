package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// FileLock is an advisory lock on <backing file>.lock shared by every
// process pointed at the same tasks file.
type FileLock struct {
	fl    *flock.Flock
	retry time.Duration
}

func NewFileLock(backingFile string) *FileLock {
	return &FileLock{
		fl:    flock.New(filepath.Clean(backingFile) + ".lock"),
		retry: 25 * time.Millisecond,
	}
}

func (l *FileLock) Lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(l.fl.Path()), 0o755); err != nil {
		return nil, fmt.Errorf("lock %s: %w", l.fl.Path(), err)
	}
	ok, err := l.fl.TryLockContext(ctx, l.retry)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", l.fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: not acquired", l.fl.Path())
	}
	return func() { _ = l.fl.Unlock() }, nil
}
