package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain/job"
)

// JobsRepo is a single-process queue with the same claim semantics as the
// postgres table: pending, due, under max attempts, oldest run_at first.
type JobsRepo struct {
	mu    sync.Mutex
	items map[string]job.Job
	now   func() time.Time
}

func NewJobsRepo() *JobsRepo {
	return &JobsRepo{
		items: make(map[string]job.Job),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *JobsRepo) Create(_ context.Context, req job.CreateRequest) (job.Job, error) {
	j := job.New(req)

	r.mu.Lock()
	r.items[j.ID] = j
	r.mu.Unlock()

	return j, nil
}

func (r *JobsRepo) ClaimNext(_ context.Context, workerID string) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var next *job.Job
	for _, j := range r.items {
		if j.Status != job.StatusPending || j.RunAt.After(now) || j.Attempts >= j.MaxAttempts {
			continue
		}
		if next == nil || j.RunAt.Before(next.RunAt) || (j.RunAt.Equal(next.RunAt) && j.CreatedAt.Before(next.CreatedAt)) {
			c := j
			next = &c
		}
	}
	if next == nil {
		return job.Job{}, job.ErrJobNotFound
	}

	wid := workerID
	next.Status = job.StatusProcessing
	next.LockedAt = &now
	next.LockedBy = &wid
	next.UpdatedAt = now
	r.items[next.ID] = *next

	return *next, nil
}

func (r *JobsRepo) MarkDone(_ context.Context, id string) error {
	return r.update(id, func(j *job.Job) {
		j.Status = job.StatusDone
		j.LockedAt, j.LockedBy, j.LastError = nil, nil, nil
	})
}

func (r *JobsRepo) MarkFailed(_ context.Context, id string, errMsg string) error {
	return r.update(id, func(j *job.Job) {
		j.Status = job.StatusFailed
		j.LockedAt, j.LockedBy = nil, nil
		j.LastError = &errMsg
	})
}

func (r *JobsRepo) Reschedule(_ context.Context, id string, runAt time.Time, errMsg string) error {
	return r.update(id, func(j *job.Job) {
		j.Status = job.StatusPending
		j.Attempts++
		j.RunAt = runAt
		j.LockedAt, j.LockedBy = nil, nil
		j.LastError = &errMsg
	})
}

func (r *JobsRepo) RequeueStaleProcessing(_ context.Context, lockTTL time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-lockTTL)
	var n int64
	for id, j := range r.items {
		if j.Status == job.StatusProcessing && j.LockedAt != nil && j.LockedAt.Before(cutoff) {
			j.Status = job.StatusPending
			j.LockedAt, j.LockedBy = nil, nil
			j.UpdatedAt = r.now()
			r.items[id] = j
			n++
		}
	}
	return n, nil
}

func (r *JobsRepo) List(_ context.Context, status *string, limit int) ([]job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]job.Job, 0, len(r.items))
	for _, j := range r.items {
		if status != nil && string(j.Status) != *status {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].UpdatedAt.Equal(out[b].UpdatedAt) {
			return out[a].ID > out[b].ID
		}
		return out[a].UpdatedAt.After(out[b].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *JobsRepo) GetByID(_ context.Context, id string) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.items[id]
	if !ok {
		return job.Job{}, job.ErrJobNotFound
	}
	return j, nil
}

func (r *JobsRepo) Retry(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.items[id]
	if !ok {
		return job.ErrJobNotFound
	}
	if j.Status != job.StatusFailed {
		return job.ErrJobNotFailed
	}
	now := r.now()
	j.Status = job.StatusPending
	j.RunAt = now
	j.LockedAt, j.LockedBy, j.LastError = nil, nil, nil
	j.UpdatedAt = now
	r.items[id] = j
	return nil
}

func (r *JobsRepo) update(id string, fn func(*job.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.items[id]
	if !ok {
		return job.ErrJobNotFound
	}
	fn(&j)
	j.UpdatedAt = r.now()
	r.items[id] = j
	return nil
}
