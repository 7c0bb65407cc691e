package manager

import (
	"context"
	"sync"
	"time"

	"github.com/kasuboski/catalogz/config"
	"github.com/kasuboski/catalogz/pkg/cache"
	"github.com/kasuboski/catalogz/pkg/logger"
	"go.uber.org/zap"
)

type JobType string

const (
	SeriesReconcile  JobType = "SeriesReconcile"
	DuplicateResolve JobType = "DuplicateResolve"
	RecordingImport  JobType = "RecordingImport"
)

var jobTypes = []JobType{SeriesReconcile, DuplicateResolve, RecordingImport}

type JobExecutor func(ctx context.Context) error

// Scheduler runs catalog passes on their configured intervals. A job never
// overlaps with another run of itself.
type Scheduler struct {
	config      config.Manager
	executors   map[JobType]JobExecutor
	runningJobs *cache.Cache[JobType, context.CancelFunc]
	wg          sync.WaitGroup
}

// NewScheduler creates a new scheduler for jobs
func NewScheduler(config config.Manager, executors map[JobType]JobExecutor) *Scheduler {
	return &Scheduler{
		config:      config,
		executors:   executors,
		runningJobs: cache.New[JobType, context.CancelFunc](),
	}
}

// Executors maps each job type to the manager pass it runs
func (m CatalogManager) Executors() map[JobType]JobExecutor {
	executors := map[JobType]JobExecutor{
		SeriesReconcile: func(ctx context.Context) error {
			_, err := m.ReconcileAllSeries(ctx)
			return err
		},
		DuplicateResolve: func(ctx context.Context) error {
			_, err := m.ResolveDuplicates(ctx)
			return err
		},
	}

	if m.library != nil {
		executors[RecordingImport] = func(ctx context.Context) error {
			_, err := m.ImportRecordings(ctx)
			return err
		}
	}

	return executors
}

// Run blocks until ctx is done, then cancels running jobs and waits for them
func (s *Scheduler) Run(ctx context.Context) error {
	log := logger.FromCtx(ctx)

	var tickers sync.WaitGroup
	for _, jobType := range jobTypes {
		interval := s.intervalFor(jobType)
		if interval <= 0 {
			log.Debug("job disabled", zap.String("job_type", string(jobType)))
			continue
		}
		if _, ok := s.executors[jobType]; !ok {
			log.Debug("no executor for job", zap.String("job_type", string(jobType)))
			continue
		}

		tickers.Add(1)
		go func() {
			defer tickers.Done()
			s.runTicker(ctx, jobType, interval)
		}()
	}

	<-ctx.Done()
	tickers.Wait()
	return s.Shutdown(ctx)
}

func (s *Scheduler) runTicker(ctx context.Context, jobType JobType, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Trigger(ctx, jobType)
		}
	}
}

// Trigger starts jobType in the background unless it is already running. It
// reports whether the job was started.
func (s *Scheduler) Trigger(ctx context.Context, jobType JobType) bool {
	log := logger.FromCtx(ctx).With(zap.String("job_type", string(jobType)))

	executor, ok := s.executors[jobType]
	if !ok {
		log.Warn("no executor registered for job")
		return false
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if !s.runningJobs.SetIfAbsent(jobType, cancel) {
		cancel()
		log.Debug("job already running, not scheduling")
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.runningJobs.Delete(jobType)
		defer cancel()

		start := time.Now()
		err := executor(jobCtx)
		if err != nil {
			log.Error("job failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			return
		}
		log.Debug("job finished", zap.Duration("elapsed", time.Since(start)))
	}()

	return true
}

// Running lists the jobs currently executing
func (s *Scheduler) Running() []JobType {
	return s.runningJobs.Keys()
}

// Shutdown cancels every running job and waits for it to return
func (s *Scheduler) Shutdown(ctx context.Context) error {
	log := logger.FromCtx(ctx)
	log.Debug("scheduler context cancelled")

	running := s.runningJobs.Keys()
	for _, jobType := range running {
		if cancel, ok := s.runningJobs.Get(jobType); ok {
			cancel()
		}
	}

	s.wg.Wait()
	log.Debug("all jobs cancelled", zap.Int("count", len(running)))
	return nil
}

func (s *Scheduler) intervalFor(jobType JobType) time.Duration {
	switch jobType {
	case SeriesReconcile:
		return s.config.Jobs.SeriesReconcile
	case DuplicateResolve:
		return s.config.Jobs.DuplicateResolve
	case RecordingImport:
		return s.config.Jobs.RecordingImport
	default:
		return 0
	}
}
