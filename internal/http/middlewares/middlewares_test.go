package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/catalogadmin/internal/actorctx"
	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/service"
	"github.com/gin-gonic/gin"
)

type fakeAuthn struct {
	users map[string]user.User
	err   error
}

func (f fakeAuthn) Authenticate(_ context.Context, raw string) (user.User, error) {
	if f.err != nil {
		return user.User{}, f.err
	}
	u, ok := f.users[raw]
	if !ok {
		return user.User{}, service.ErrUnauthenticated
	}
	return u, nil
}

type fakeGate struct {
	allowed map[int64]bool
	err     error
}

func (g fakeGate) Allows(_ context.Context, userID int64, _ []string) (bool, error) {
	return g.allowed[userID], g.err
}

func newAuthRouter(authn Authenticator, gate Authorizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(authn, gate)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		id, _ := actorctx.UserIDFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	r.GET("/managed", m.RequireAuth(), m.RequireAnyRole(user.CatalogManagers...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequireAuthAndRole(t *testing.T) {
	authn := fakeAuthn{users: map[string]user.User{
		"manager-token": {ID: 1, Roles: []string{user.RoleProductManager}},
		"plain-token":   {ID: 2},
	}}
	gate := fakeGate{allowed: map[int64]bool{1: true}}
	r := newAuthRouter(authn, gate)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/me", "", http.StatusUnauthorized},
		{"not bearer", "/me", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "/me", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "/me", "Bearer plain-token", http.StatusOK},
		{"role missing", "/managed", "Bearer plain-token", http.StatusForbidden},
		{"role present", "/managed", "Bearer manager-token", http.StatusNoContent},
		{"role route without token", "/managed", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d body=%s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRequireAuth_StoreErrorIs500(t *testing.T) {
	r := newAuthRouter(fakeAuthn{err: errors.New("db down")}, fakeGate{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(2, time.Minute)

	r := gin.New()
	r.POST("/login", rl.RateLimiterMiddleware(KeyByIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestRequireJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("bodiless POST: expected 200, got %d", rec.Code)
	}
}
