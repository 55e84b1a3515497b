package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/catalogadmin/internal/auth"
	"github.com/geocoder89/catalogadmin/internal/authz"
	"github.com/geocoder89/catalogadmin/internal/config"
	"github.com/geocoder89/catalogadmin/internal/db"
	httpx "github.com/geocoder89/catalogadmin/internal/http"
	"github.com/geocoder89/catalogadmin/internal/http/handlers"
	"github.com/geocoder89/catalogadmin/internal/observability"
	"github.com/geocoder89/catalogadmin/internal/repo/postgres"
	"github.com/geocoder89/catalogadmin/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "catalog-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env, serviceName)
	slog.SetDefault(log)

	ctx := context.Background()

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
	if err := db.EnsureRoles(ctx, pool); err != nil {
		log.Error("seeding roles failed", "err", err)
		os.Exit(1)
	}
	if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
		log.Error("seeding admin user failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	users := postgres.NewUsersRepo(pool, prom)
	tokens := postgres.NewAccessTokensRepo(pool, prom)
	products := postgres.NewProductsRepo(pool, prom)
	categories := postgres.NewCategoriesRepo(pool, prom)
	jobs := postgres.NewJobsRepo(pool, prom)

	jwt := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL())

	router := httpx.NewRouter(httpx.Deps{
		Env:                cfg.Env,
		ServiceName:        serviceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,

		Auth:       service.NewAuthService(users, tokens, jwt, log),
		Gate:       authz.NewGate(users),
		Products:   service.NewProductService(products, categories, log),
		Categories: service.NewCategoryService(categories, log),
		Dashboard:  service.NewDashboardService(products, users, categories, jobs, log),
		Users:      service.NewUserAdminService(users, log),
		Jobs:       jobs,

		Ready:    map[string]handlers.Pinger{"postgres": pool},
		Prom:     prom,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
