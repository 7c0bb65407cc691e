package manager

import (
	"time"

	"github.com/kasuboski/catalogz/config"
	"github.com/kasuboski/catalogz/pkg/guide"
	"github.com/kasuboski/catalogz/pkg/library"
	"github.com/kasuboski/catalogz/pkg/lock"
	"github.com/kasuboski/catalogz/pkg/metrics"
	"github.com/kasuboski/catalogz/pkg/storage"
)

const defaultTitleMatchThreshold = 0.8

// CatalogManager reconciles the local catalog with the upstream episode guide
type CatalogManager struct {
	storage storage.Storage
	guide   guide.Provider
	library *library.Library
	locks   *lock.SeriesLocker
	metrics *metrics.Metrics
	config  config.Manager
	now     func() time.Time
}

type Option func(*CatalogManager)

// WithLibrary enables recording imports from l
func WithLibrary(l *library.Library) Option {
	return func(m *CatalogManager) {
		m.library = l
	}
}

// WithLocker shares a series locker between managers
func WithLocker(l *lock.SeriesLocker) Option {
	return func(m *CatalogManager) {
		m.locks = l
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *CatalogManager) {
		m.metrics = mt
	}
}

// WithClock overrides the time source used for date_added and last_sync
func WithClock(now func() time.Time) Option {
	return func(m *CatalogManager) {
		m.now = now
	}
}

func New(store storage.Storage, provider guide.Provider, cfg config.Manager, opts ...Option) CatalogManager {
	if cfg.TitleMatchThreshold <= 0 || cfg.TitleMatchThreshold > 1 {
		cfg.TitleMatchThreshold = defaultTitleMatchThreshold
	}

	m := CatalogManager{
		storage: store,
		guide:   provider,
		config:  cfg,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(&m)
	}

	if m.locks == nil {
		m.locks = lock.New(lock.WithDir(cfg.LockDir))
	}

	return m
}

func (m CatalogManager) timestamp() *time.Time {
	now := m.now().UTC()
	return &now
}
