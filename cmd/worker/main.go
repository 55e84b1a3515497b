package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/geocoder89/catalogadmin/internal/config"
	"github.com/geocoder89/catalogadmin/internal/db"
	"github.com/geocoder89/catalogadmin/internal/notifications"
	"github.com/geocoder89/catalogadmin/internal/observability"
	"github.com/geocoder89/catalogadmin/internal/queue/redisclient"
	"github.com/geocoder89/catalogadmin/internal/queue/worker"
	"github.com/geocoder89/catalogadmin/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "catalog-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env, serviceName)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, serviceName, cfg.Env, cfg.OTelEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	deps := map[string]worker.Pinger{"postgres": pool}

	inner, closeNotifier, err := buildNotifier(cfg, log, deps)
	if err != nil {
		log.Error("notifier setup failed", "err", err)
		os.Exit(1)
	}
	defer closeNotifier()

	notifier := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		Timeout:          3 * time.Second,
		FailureThreshold: 3,
		Cooldown:         15 * time.Second,
		HalfOpenMaxCalls: 1,
	})

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		PollInterval: time.Duration(cfg.WorkerPollMS) * time.Millisecond,
		WorkerID:     workerID,
		LockTTL:      30 * time.Second,
	}, postgres.NewJobsRepo(pool, prom), postgres.NewUsersRepo(pool, prom), notifier, log, prom)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", w.HealthHandler(deps))

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHealthPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("worker health server starting", "port", cfg.WorkerHealthPort)
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("worker health server failed", "err", err)
		}
	}()

	log.Info("worker has started", "worker_id", workerID, "notifier", cfg.NotifierDriver)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("health server shutdown failed", "err", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	log.Info("worker shutdown complete")
}

// buildNotifier picks the delivery driver. Dependencies it opens are added to
// deps so /readyz checks them.
func buildNotifier(cfg config.Config, log *slog.Logger, deps map[string]worker.Pinger) (notifications.Notifier, func(), error) {
	switch cfg.NotifierDriver {
	case "", "log":
		return notifications.NewLogNotifier(log), func() {}, nil

	case "redis":
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		deps["redis"] = rc
		return notifications.NewRedisNotifier(rc.Raw(), cfg.NotifierChannel), func() { _ = rc.Close() }, nil

	case "kafka":
		kw := notifications.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		return notifications.NewKafkaNotifier(kw), func() { _ = kw.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown NOTIFIER_DRIVER %q", cfg.NotifierDriver)
	}
}
