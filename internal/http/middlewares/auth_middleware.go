package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/catalogadmin/internal/actorctx"
	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/service"
	"github.com/gin-gonic/gin"
)

// Keep these small so tests can fake them easily.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (user.User, error)
}

type Authorizer interface {
	Allows(ctx context.Context, userID int64, required []string) (bool, error)
}

type AuthMiddleware struct {
	authn Authenticator
	gate  Authorizer
}

func NewAuthMiddleware(authn Authenticator, gate Authorizer) *AuthMiddleware {
	return &AuthMiddleware{authn: authn, gate: gate}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Unauthenticated.")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Unauthenticated.")
			return
		}

		u, err := m.authn.Authenticate(c.Request.Context(), raw)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				abortWithError(c, http.StatusUnauthorized, "unauthorized", "Unauthenticated.")
				return
			}
			slog.Default().ErrorContext(c.Request.Context(), "authenticate failed", "err", err)
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
			return
		}

		c.Set(CtxUserID, u.ID)
		c.Set(CtxRoles, u.Roles)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))

		c.Next()
	}
}

// RequireAnyRole lets the request through when the caller holds at least one
// of labels, which may name roles or permissions. Must run after RequireAuth.
func (m *AuthMiddleware) RequireAnyRole(labels ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Unauthenticated.")
			return
		}

		allowed, err := m.gate.Allows(c.Request.Context(), userID, labels)
		if err != nil {
			slog.Default().ErrorContext(c.Request.Context(), "authorization lookup failed", "user_id", userID, "err", err)
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
			return
		}
		if !allowed {
			abortWithError(c, http.StatusForbidden, "forbidden", "This action is unauthorized.")
			return
		}

		c.Next()
	}
}

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func RolesFromContext(c *gin.Context) []string {
	v, _ := c.Get(CtxRoles)
	roles, _ := v.([]string)
	return roles
}
