package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/catalogadmin/internal/config"
	"github.com/geocoder89/catalogadmin/internal/domain/product"
	"github.com/gin-gonic/gin"
)

type ProductService interface {
	List(ctx context.Context) ([]product.Product, error)
	Show(ctx context.Context, id int64) (product.Product, error)
	Create(ctx context.Context, in product.Payload) (product.Product, error)
	Update(ctx context.Context, id int64, in product.Payload) (product.Product, error)
	Delete(ctx context.Context, id int64) error
}

type ProductsHandler struct {
	svc ProductService
}

func NewProductsHandler(svc ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// GET /products
func (h *ProductsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.svc.List(cctx)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondDataWithETag(ctx, items)
}

// POST /products
func (h *ProductsHandler) Create(ctx *gin.Context) {
	var req product.Payload
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.svc.Create(cctx, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusCreated, p)
}

// GET /products/:id
func (h *ProductsHandler) Show(ctx *gin.Context) {
	id, ok := productID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	p, err := h.svc.Show(cctx, id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondDataWithETag(ctx, p)
}

// PUT|PATCH /products/:id
func (h *ProductsHandler) Update(ctx *gin.Context) {
	id, ok := productID(ctx)
	if !ok {
		return
	}

	var req product.Payload
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.svc.Update(cctx, id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, p)
}

// DELETE /products/:id
func (h *ProductsHandler) Delete(ctx *gin.Context) {
	id, ok := productID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.svc.Delete(cctx, id); err != nil {
		respondServiceError(ctx, err)
		return
	}

	RespondMessage(ctx, "Product deleted successfully")
}

// productID answers 404 for ids that cannot name a product, the same as an
// unknown id.
func productID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondNotFound(ctx, "Product not found")
		return 0, false
	}
	return id, true
}
