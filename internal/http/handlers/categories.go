package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/catalogadmin/internal/config"
	"github.com/geocoder89/catalogadmin/internal/domain/category"
	"github.com/gin-gonic/gin"
)

type CategoryService interface {
	List(ctx context.Context) ([]category.Category, error)
	Create(ctx context.Context, in category.CreateCategoryRequest) (category.Category, error)
}

type CategoriesHandler struct {
	svc CategoryService
}

func NewCategoriesHandler(svc CategoryService) *CategoriesHandler {
	return &CategoriesHandler{svc: svc}
}

// GET /categories
func (h *CategoriesHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.svc.List(cctx)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondDataWithETag(ctx, items)
}

// POST /categories
func (h *CategoriesHandler) Create(ctx *gin.Context) {
	var req category.CreateCategoryRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	c, err := h.svc.Create(cctx, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusCreated, c)
}
