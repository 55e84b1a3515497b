package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain/job"
	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/notifications"
	"github.com/geocoder89/catalogadmin/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

// RecipientSource resolves the users an alert addressed to roles goes to.
type RecipientSource interface {
	ListByRoles(ctx context.Context, roles []string) ([]user.User, error)
}

type Config struct {
	PollInterval time.Duration
	WorkerID     string
	// LockTTL is how long a processing job may stay locked before another
	// worker reclaims it.
	LockTTL time.Duration
}

type Worker struct {
	cfg        Config
	repo       JobsRepository
	recipients RecipientSource
	notifier   notifications.Notifier
	log        *slog.Logger
	prom       *observability.Prom
	metrics    *observability.JobMetrics

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, recipients RecipientSource, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if cfg.WorkerID == "" {
		host, _ := os.Hostname()
		cfg.WorkerID = fmt.Sprintf("%s-%d", host, os.Getpid())
	}
	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:        cfg,
		repo:       repo,
		recipients: recipients,
		notifier:   notifier,
		log:        log.With("worker_id", cfg.WorkerID),
		prom:       prom,
		metrics:    observability.NewJobMetrics(),
	}
}

func (w *Worker) Metrics() observability.JobMetricsSnapShot {
	return w.metrics.Snapshot()
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

func (w *Worker) Ready() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()

	return w.ready
}

// Run polls until ctx is cancelled. Each tick drains every due job before
// sleeping again.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.setReady(true)
	defer w.setReady(false)

	w.log.Info("worker started", "poll_interval", w.cfg.PollInterval.String())

	lastRequeue := time.Time{}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil

		case <-ticker.C:
			if time.Since(lastRequeue) >= w.cfg.LockTTL {
				lastRequeue = time.Now()
				if n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL); err != nil {
					w.log.Error("requeue stale jobs failed", "err", err)
				} else if n > 0 {
					w.log.Warn("requeued stale jobs", "count", n)
				}
			}

			for {
				processed, err := w.ProcessOne(ctx)
				if err != nil && !errors.Is(err, context.Canceled) {
					w.log.Error("process job failed", "err", err)
				}
				if !processed || ctx.Err() != nil {
					break
				}
			}
		}
	}
}
