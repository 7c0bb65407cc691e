package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gofrs/flock"
	"github.com/kasuboski/catalogz/pkg/cache"
	"github.com/kasuboski/catalogz/pkg/logger"
	"go.uber.org/zap"
)

const defaultRetryDelay = 50 * time.Millisecond

// SeriesLocker serializes work on a single series. Within a process a channel per
// series is used; when a directory is configured a lock file per series also
// excludes other processes sharing the same database.
type SeriesLocker struct {
	held       *cache.Cache[int64, chan struct{}]
	dir        string
	retryDelay time.Duration
}

type Option func(*SeriesLocker)

// WithDir enables cross process locking with lock files stored in dir
func WithDir(dir string) Option {
	return func(l *SeriesLocker) {
		l.dir = dir
	}
}

// WithRetryDelay sets how often a contended lock file is retried
func WithRetryDelay(d time.Duration) Option {
	return func(l *SeriesLocker) {
		l.retryDelay = d
	}
}

func New(opts ...Option) *SeriesLocker {
	l := &SeriesLocker{
		held:       cache.New[int64, chan struct{}](),
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock blocks until the series lock is held or ctx is done. The returned func releases it.
func (l *SeriesLocker) Lock(ctx context.Context, seriesID int64) (func(), error) {
	ch := l.held.GetOrSet(seriesID, func() chan struct{} {
		return make(chan struct{}, 1)
	})

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for series %d lock: %w", seriesID, ctx.Err())
	}

	release := func() { <-ch }

	if l.dir == "" {
		return release, nil
	}

	fileLock, err := l.lockFile(ctx, seriesID)
	if err != nil {
		release()
		return nil, err
	}

	return func() {
		if err := fileLock.Unlock(); err != nil {
			logger.FromCtx(ctx).Warn("failed to release series lock file", zap.Int64("series", seriesID), zap.Error(err))
		}
		release()
	}, nil
}

// LockAll acquires the locks of every series in ascending id order so that two
// callers locking overlapping sets can't deadlock. Duplicate ids are locked once.
func (l *SeriesLocker) LockAll(ctx context.Context, seriesIDs ...int64) (func(), error) {
	ids := slices.Clone(seriesIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	releases := make([]func(), 0, len(ids))
	unlockAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, id := range ids {
		release, err := l.Lock(ctx, id)
		if err != nil {
			unlockAll()
			return nil, err
		}
		releases = append(releases, release)
	}

	return unlockAll, nil
}

func (l *SeriesLocker) lockFile(ctx context.Context, seriesID int64) (*flock.Flock, error) {
	err := os.MkdirAll(l.dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fileLock := flock.New(filepath.Join(l.dir, fmt.Sprintf("series-%d.lock", seriesID)))
	locked, err := fileLock.TryLockContext(ctx, l.retryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock series %d: %w", seriesID, err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock series %d: %w", seriesID, ctx.Err())
	}

	return fileLock, nil
}
