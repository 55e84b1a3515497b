package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/catalogadmin/internal/config"
	"github.com/geocoder89/catalogadmin/internal/domain/job"
	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/http/middlewares"
	"github.com/geocoder89/catalogadmin/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserAdminService interface {
	AssignRole(ctx context.Context, userID int64, in service.AssignRoleInput) (user.User, error)
}

type AdminJobsRepo interface {
	List(ctx context.Context, status *string, limit int) ([]job.Job, error)
	GetByID(ctx context.Context, id string) (job.Job, error)
	Retry(ctx context.Context, id string) error
}

type AdminHandler struct {
	users UserAdminService
	jobs  AdminJobsRepo
}

func NewAdminHandler(users UserAdminService, jobs AdminJobsRepo) *AdminHandler {
	return &AdminHandler{users: users, jobs: jobs}
}

// POST /admin/users/:id/roles
func (h *AdminHandler) AssignRole(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondNotFound(ctx, "User not found")
		return
	}

	var req service.AssignRoleInput
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.AssignRole(cctx, id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, u)
}

// GET /admin/jobs?status=failed&limit=50
func (h *AdminHandler) ListJobs(ctx *gin.Context) {
	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			RespondBadRequest(ctx, "limit must be between 1 and 100", nil)
			return
		}
		limit = n
	}

	var statusPtr *string
	if s := ctx.Query("status"); s != "" {
		switch job.Status(s) {
		case job.StatusPending, job.StatusProcessing, job.StatusDone, job.StatusFailed:
			statusPtr = &s
		default:
			RespondBadRequest(ctx, "status is invalid", nil)
			return
		}
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.jobs.List(cctx, statusPtr, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondDataWithETag(ctx, items)
}

// POST /admin/jobs/:id/retry
func (h *AdminHandler) RetryJob(ctx *gin.Context) {
	id := ctx.Param("id")
	ctx.Set(middlewares.CtxJobID, id)

	if _, err := uuid.Parse(id); err != nil {
		RespondNotFound(ctx, "Job not found")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.jobs.Retry(cctx, id); err != nil {
		respondServiceError(ctx, err)
		return
	}

	j, err := h.jobs.GetByID(cctx, id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, j)
}
