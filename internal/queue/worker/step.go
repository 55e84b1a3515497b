package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain/job"
	"github.com/geocoder89/catalogadmin/internal/jobs"
	"github.com/geocoder89/catalogadmin/internal/notifications"
)

const (
	resultDone   = "done"
	resultRetry  = "retry"
	resultFailed = "failed"
)

// ProcessOne claims and runs at most one job. It reports whether a job was
// claimed.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	w.metrics.IncClaimed()
	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	log := w.log.With("job_id", j.ID, "job_type", j.Type, "attempt", j.Attempts+1)

	err = w.execute(ctx, j)
	elapsed := time.Since(start)
	w.metrics.ObserveDuration(elapsed)

	if err != nil {
		result := w.handleFailure(ctx, j, err)
		w.observe(j.Type, result, elapsed)
		log.Warn("job failed", "result", result, "err", err)
		return true, nil
	}

	if err := w.repo.MarkDone(ctx, j.ID); err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		w.metrics.IncFailed()
		w.observe(j.Type, resultFailed, elapsed)
		return true, err
	}

	w.metrics.IncDone()
	w.observe(j.Type, resultDone, elapsed)
	log.Info("job done", "duration_ms", elapsed.Milliseconds())
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j)
	if err != nil {
		return err
	}
	if err := jobs.ValidatePayload(jobs.JobType(j.Type), payload); err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.LowStockAlertPayload:
		return w.sendLowStockAlert(ctx, p)
	default:
		return jobs.ErrInvalidJobType
	}
}

func (w *Worker) sendLowStockAlert(ctx context.Context, p jobs.LowStockAlertPayload) error {
	recipients, err := w.recipients.ListByRoles(ctx, p.Roles)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		w.log.Warn("low stock alert has no recipients", "product_id", p.ProductID, "roles", p.Roles)
		return nil
	}

	now := time.Now().UTC()
	for _, u := range recipients {
		err := w.notifier.SendLowStockAlert(ctx, notifications.LowStockAlertInput{
			RecipientID:    u.ID,
			RecipientEmail: u.Email,
			RecipientName:  u.Name,
			ProductID:      p.ProductID,
			ProductName:    p.ProductName,
			Stock:          p.Stock,
			SentAt:         now,
		})
		if err != nil {
			return fmt.Errorf("notify user %d: %w", u.ID, err)
		}
	}
	return nil
}

// handleFailure reschedules with backoff or gives up. Payload errors are
// permanent and never retried.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error) string {
	msg := cause.Error()

	if jobs.IsPermanent(cause) || j.Attempts+1 >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, msg); err != nil {
			w.log.Error("mark job failed errored", "job_id", j.ID, "err", err)
		}
		w.metrics.IncFailed()
		w.metrics.IncDeadLettered()
		return resultFailed
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))
	if err := w.repo.Reschedule(ctx, j.ID, runAt, msg); err != nil {
		w.log.Error("reschedule failed", "job_id", j.ID, "err", err)
	}
	w.metrics.IncRetried()
	return resultRetry
}

func (w *Worker) observe(jobType, result string, d time.Duration) {
	if w.prom == nil {
		return
	}
	w.prom.JobDuration.WithLabelValues(jobType, result).Observe(d.Seconds())
	w.prom.JobResults.WithLabelValues(jobType, result).Inc()
}
