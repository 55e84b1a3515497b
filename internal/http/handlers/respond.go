package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/catalogadmin/internal/domain"
	"github.com/geocoder89/catalogadmin/internal/domain/category"
	"github.com/geocoder89/catalogadmin/internal/domain/job"
	"github.com/geocoder89/catalogadmin/internal/domain/product"
	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/http/middlewares"
	"github.com/geocoder89/catalogadmin/internal/service"
	"github.com/geocoder89/catalogadmin/internal/validation"
	"github.com/gin-gonic/gin"
)

const statusSuccess = "success"

type APIError struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	RequestID string              `json:"requestId,omitempty"`
	Details   interface{}         `json:"details,omitempty"`
	Fields    map[string][]string `json:"fields,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

// RespondData writes the {status, data} success envelope.
func RespondData(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, gin.H{"status": statusSuccess, "data": data})
}

// RespondMessage writes the {status, message} success envelope.
func RespondMessage(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, gin.H{"status": statusSuccess, "message": message})
}

func RespondValidation(ctx *gin.Context, fields validation.Errors) {
	ctx.JSON(http.StatusUnprocessableEntity, gin.H{
		"error": APIError{
			Code:      "validation_failed",
			Message:   "The given data was invalid.",
			RequestID: requestIDFrom(ctx),
			Fields:    fields,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context) {
	RespondError(ctx, http.StatusUnauthorized, "unauthorized", "Unauthenticated.", nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string, fields map[string][]string) {
	ctx.JSON(http.StatusConflict, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Fields:    fields,
		},
	})
}

// respondServiceError maps service and repository errors onto the envelope.
// Anything unrecognised is logged and reported as a 500 without detail.
func respondServiceError(ctx *gin.Context, err error) {
	var verr *validation.Error
	var conflict *domain.ConflictError

	switch {
	case errors.As(err, &verr):
		RespondValidation(ctx, verr.Fields)
	case errors.As(err, &conflict):
		RespondConflict(ctx, "conflict", conflict.Error(), map[string][]string{
			conflict.Field: {"has already been taken"},
		})
	case errors.Is(err, product.ErrNotFound):
		RespondNotFound(ctx, "Product not found")
	case errors.Is(err, category.ErrNotFound):
		RespondNotFound(ctx, "Category not found")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	case errors.Is(err, job.ErrJobNotFound):
		RespondNotFound(ctx, "Job not found")
	case errors.Is(err, job.ErrJobNotFailed):
		RespondConflict(ctx, "job_not_failed", "Only failed jobs can be retried", nil)
	case errors.Is(err, service.ErrUnauthenticated):
		RespondUnauthorized(ctx)
	default:
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"route", ctx.FullPath(),
			"request_id", requestIDFrom(ctx),
			"err", err,
		)
		RespondInternal(ctx, "Something went wrong")
	}
}
