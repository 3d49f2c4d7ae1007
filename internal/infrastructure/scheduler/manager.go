// Package scheduler provides scheduled job management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"stridesync/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// ReconcileLock serializes the reconciliation sweep across replicas.
// A nil lock means single-instance deployment; the sweep always runs.
type ReconcileLock interface {
	// TryAcquire returns false when another replica holds the lock.
	TryAcquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

// SchedulerManager manages the engine's scheduled jobs on a single
// gocron scheduler instance.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterReconciliationJob registers the periodic activity sweep. The
// job runs immediately on startup so a restarted instance catches up on
// missed webhooks, then every interval. Singleton mode keeps a slow
// sweep from overlapping the next one.
func (m *SchedulerManager) RegisterReconciliationJob(job BatchJob, lock ReconcileLock, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.runReconciliation(ctx, job, lock, interval)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("reconcile"),
		gocron.WithName("activity-reconciliation"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered reconciliation job", "interval", interval.String())
	return nil
}

func (m *SchedulerManager) runReconciliation(ctx context.Context, job BatchJob, lock ReconcileLock, interval time.Duration) {
	if lock != nil {
		acquired, err := lock.TryAcquire(ctx, interval)
		if err != nil {
			m.logger.Errorw("failed to acquire reconciliation lock", "error", err)
			return
		}
		if !acquired {
			m.logger.Debugw("reconciliation lock held by another instance, skipping pass")
			return
		}
		defer func() {
			if err := lock.Release(ctx); err != nil {
				m.logger.Warnw("failed to release reconciliation lock", "error", err)
			}
		}()
	}

	startTime := time.Now()
	imported, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("reconciliation sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("reconciliation sweep completed",
		"imported", imported,
		"duration", time.Since(startTime),
	)
}

// Start starts processing registered jobs. Safe to call more than once.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}
