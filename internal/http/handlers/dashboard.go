package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/catalogadmin/internal/config"
	"github.com/geocoder89/catalogadmin/internal/domain/job"
	"github.com/geocoder89/catalogadmin/internal/http/middlewares"
	"github.com/geocoder89/catalogadmin/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardService interface {
	Summary(ctx context.Context) (service.Summary, error)
	TriggerLowStock(ctx context.Context, requestID string) (job.Job, error)
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GET /dashboard. Counts are read live on every call.
func (h *DashboardHandler) Summary(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	s, err := h.svc.Summary(cctx)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, s)
}

// GET /test-low-stock
func (h *DashboardHandler) TestLowStock(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	j, err := h.svc.TriggerLowStock(cctx, requestIDFrom(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.Set(middlewares.CtxJobID, j.ID)
	RespondMessage(ctx, "Notification sent")
}
