package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain/job"
	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/jobs"
	"github.com/geocoder89/catalogadmin/internal/notifications"
	"github.com/geocoder89/catalogadmin/internal/repo/memory"
	"github.com/gin-gonic/gin"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notifications.LowStockAlertInput
	err  error
}

func (n *recordingNotifier) SendLowStockAlert(_ context.Context, in notifications.LowStockAlertInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, in)
	return nil
}

func newTestWorker(t *testing.T, notifier notifications.Notifier) (*Worker, *memory.JobsRepo, *memory.UsersRepo) {
	t.Helper()

	jobsRepo := memory.NewJobsRepo()
	users := memory.NewUsersRepo()
	ctx := context.Background()

	admin, _ := users.Create(ctx, user.User{Name: "Admin", Email: "admin@example.com"})
	_ = users.AssignRole(ctx, admin.ID, user.RoleSuperAdmin)
	pm, _ := users.Create(ctx, user.User{Name: "Manager", Email: "pm@example.com"})
	_ = users.AssignRole(ctx, pm.ID, user.RoleProductManager)
	_, _ = users.Create(ctx, user.User{Name: "Nobody", Email: "nobody@example.com"})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := New(Config{WorkerID: "test-worker"}, jobsRepo, users, notifier, logger, nil)
	return w, jobsRepo, users
}

func enqueueAlert(t *testing.T, repo *memory.JobsRepo, maxAttempts int) job.Job {
	t.Helper()

	raw, err := jobs.EncodePayload(jobs.JobLowStockAlert, jobs.LowStockAlertPayload{
		ProductID:   7,
		ProductName: "Desk Lamp",
		Stock:       5,
		Roles:       []string{user.RoleSuperAdmin, user.RoleProductManager},
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	j, err := repo.Create(context.Background(), job.CreateRequest{
		Type:        string(jobs.JobLowStockAlert),
		Payload:     raw,
		RunAt:       time.Now().UTC().Add(-time.Second),
		MaxAttempts: maxAttempts,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return j
}

func TestProcessOne_DeliversToEveryCatalogManager(t *testing.T) {
	notifier := &recordingNotifier{}
	w, repo, _ := newTestWorker(t, notifier)
	j := enqueueAlert(t, repo, 3)

	processed, err := w.ProcessOne(context.Background())
	if err != nil || !processed {
		t.Fatalf("expected processed job, got processed=%v err=%v", processed, err)
	}

	if len(notifier.sent) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(notifier.sent))
	}

	got, _ := repo.GetByID(context.Background(), j.ID)
	if got.Status != job.StatusDone {
		t.Fatalf("expected done, got %s", got.Status)
	}

	if m := w.Metrics(); m.Claimed != 1 || m.Done != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestProcessOne_NothingDue(t *testing.T) {
	w, _, _ := newTestWorker(t, &recordingNotifier{})

	processed, err := w.ProcessOne(context.Background())
	if err != nil || processed {
		t.Fatalf("expected idle worker, got processed=%v err=%v", processed, err)
	}
}

func TestProcessOne_NotifierErrorReschedules(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	w, repo, _ := newTestWorker(t, notifier)
	j := enqueueAlert(t, repo, 3)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), j.ID)
	if got.Status != job.StatusPending || got.Attempts != 1 {
		t.Fatalf("expected pending with 1 attempt, got %s/%d", got.Status, got.Attempts)
	}
	if got.LastError == nil || *got.LastError == "" {
		t.Fatalf("expected last_error to be recorded")
	}
	if !got.RunAt.After(time.Now().UTC()) {
		t.Fatalf("expected run_at in the future, got %s", got.RunAt)
	}
}

func TestProcessOne_LastAttemptMarksFailed(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	w, repo, _ := newTestWorker(t, notifier)
	j := enqueueAlert(t, repo, 1)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), j.ID)
	if got.Status != job.StatusFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}
}

func TestProcessOne_BadPayloadIsPermanent(t *testing.T) {
	w, repo, _ := newTestWorker(t, &recordingNotifier{})

	j, _ := repo.Create(context.Background(), job.CreateRequest{
		Type:        string(jobs.JobLowStockAlert),
		Payload:     []byte(`{"productId":0}`),
		RunAt:       time.Now().UTC().Add(-time.Second),
		MaxAttempts: 10,
	})

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), j.ID)
	if got.Status != job.StatusFailed {
		t.Fatalf("expected failed without retry, got %s", got.Status)
	}
}

func TestExponentialBackoff_Caps(t *testing.T) {
	if d := ExponentialBackoff(0); d < 2*time.Second || d >= 2*time.Second+250*time.Millisecond {
		t.Fatalf("attempt 0: unexpected delay %s", d)
	}
	if d := ExponentialBackoff(30); d < 5*time.Minute || d >= 5*time.Minute+250*time.Millisecond {
		t.Fatalf("attempt 30: unexpected delay %s", d)
	}
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("down") }

func TestHealthHandler_Readiness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w, _, _ := newTestWorker(t, &recordingNotifier{})

	h := w.HealthHandler(nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before Run, got %d", rec.Code)
	}

	w.setReady(true)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when ready, got %d", rec.Code)
	}

	h = w.HealthHandler(map[string]Pinger{"db": downPinger{}})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with failing dependency, got %d", rec.Code)
	}
}
