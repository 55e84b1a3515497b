package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/catalogadmin/internal/config"
	"github.com/geocoder89/catalogadmin/internal/http/middlewares"
	"github.com/geocoder89/catalogadmin/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (service.Session, error)
	Login(ctx context.Context, in service.LoginInput) (service.Session, error)
	Logout(ctx context.Context, userID int64) error
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// POST /register
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req service.RegisterInput
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	session, err := h.svc.Register(cctx, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// POST /login. A wrong password answers 200 with a message instead of a session.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req service.LoginInput
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	session, err := h.svc.Login(cctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			ctx.JSON(http.StatusOK, gin.H{"message": service.ErrInvalidCredentials.Error()})
			return
		}
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// POST /logout revokes every token of the caller.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.svc.Logout(cctx, userID); err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
