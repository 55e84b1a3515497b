package integration__test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/geocoder89/catalogadmin/internal/auth"
	"github.com/geocoder89/catalogadmin/internal/authz"
	"github.com/geocoder89/catalogadmin/internal/config"
	"github.com/geocoder89/catalogadmin/internal/db"
	apphttp "github.com/geocoder89/catalogadmin/internal/http"
	"github.com/geocoder89/catalogadmin/internal/http/handlers"
	"github.com/geocoder89/catalogadmin/internal/observability"
	"github.com/geocoder89/catalogadmin/internal/repo/postgres"
	"github.com/geocoder89/catalogadmin/internal/security"
	"github.com/geocoder89/catalogadmin/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	router *gin.Engine
	pool   *pgxpool.Pool
	prom   *observability.Prom
	cfg    config.Config
}

func testConfig(dsn string) config.Config {
	return config.Config{
		Env:           "test",
		DBURL:         dsn,
		JWTSecret:     "test-secret-key",
		AdminName:     "Test Admin",
		AdminEmail:    "Admin@Example.com",
		AdminPassword: "admin-password",
	}
}

// setupApp needs a disposable database in TEST_DB_DSN; the tables are
// truncated before and after every test.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	security.Cost = bcrypt.MinCost

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("pg pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	resetDB(t, pool)
	t.Cleanup(func() { resetDB(t, pool) })

	cfg := testConfig(dsn)
	if err := db.EnsureRoles(ctx, pool); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	users := postgres.NewUsersRepo(pool, prom)
	tokens := postgres.NewAccessTokensRepo(pool, prom)
	products := postgres.NewProductsRepo(pool, prom)
	categories := postgres.NewCategoriesRepo(pool, prom)
	jobs := postgres.NewJobsRepo(pool, prom)

	router := apphttp.NewRouter(apphttp.Deps{
		Env:           cfg.Env,
		AuthRateLimit: 1000,
		Auth:          service.NewAuthService(users, tokens, auth.NewManager(cfg.JWTSecret, cfg.TokenTTL()), log),
		Gate:          authz.NewGate(users),
		Products:      service.NewProductService(products, categories, log),
		Categories:    service.NewCategoryService(categories, log),
		Dashboard:     service.NewDashboardService(products, users, categories, jobs, log),
		Users:         service.NewUserAdminService(users, log),
		Jobs:          jobs,
		Ready:         map[string]handlers.Pinger{"postgres": pool},
		Prom:          prom,
		Gatherer:      reg,
	})

	return &testApp{router: router, pool: pool, prom: prom, cfg: cfg}
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE personal_access_tokens, user_roles, users, products, categories, jobs
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func (a *testApp) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	w := a.do(t, http.MethodPost, "/api/v1/admin/login", "", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("login got %d body=%s", w.Code, w.Body.String())
	}

	var session struct {
		Token string `json:"token"`
	}
	mustReadJSON(t, w, &session)
	if session.Token == "" {
		t.Fatalf("login returned no token, body=%s", w.Body.String())
	}
	return session.Token
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}
