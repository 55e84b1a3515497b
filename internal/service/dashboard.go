package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain/job"
	"github.com/geocoder89/catalogadmin/internal/domain/product"
	"github.com/geocoder89/catalogadmin/internal/domain/user"
	"github.com/geocoder89/catalogadmin/internal/jobs"
)

// LowStockDemoStock is the stock level the manual low-stock trigger writes.
const LowStockDemoStock = 5

type Summary struct {
	TotalProducts    int `json:"total_products"`
	TotalUsers       int `json:"total_users"`
	TotalCategories  int `json:"total_categories"`
	LowStockProducts int `json:"low_stock_products"`
}

type DashboardService struct {
	products   ProductStore
	users      UserStore
	categories CategoryStore
	jobs       JobEnqueuer
	log        *slog.Logger
}

func NewDashboardService(products ProductStore, users UserStore, categories CategoryStore, jobs JobEnqueuer, log *slog.Logger) *DashboardService {
	if log == nil {
		log = slog.Default()
	}
	return &DashboardService{products: products, users: users, categories: categories, jobs: jobs, log: log}
}

// Summary runs four live counts. Soft-deleted products are not counted.
func (s *DashboardService) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	var err error

	if out.TotalProducts, err = s.products.Count(ctx, product.CountFilter{}); err != nil {
		return Summary{}, fmt.Errorf("count products: %w", err)
	}
	if out.TotalUsers, err = s.users.Count(ctx); err != nil {
		return Summary{}, fmt.Errorf("count users: %w", err)
	}
	if out.TotalCategories, err = s.categories.Count(ctx); err != nil {
		return Summary{}, fmt.Errorf("count categories: %w", err)
	}

	threshold := product.LowStockThreshold
	if out.LowStockProducts, err = s.products.Count(ctx, product.CountFilter{StockBelow: &threshold}); err != nil {
		return Summary{}, fmt.Errorf("count low stock products: %w", err)
	}

	return out, nil
}

// TriggerLowStock drops the first live product to a low stock level and queues
// an alert for every catalog manager. Returns product.ErrNotFound when the
// catalog is empty.
func (s *DashboardService) TriggerLowStock(ctx context.Context, requestID string) (job.Job, error) {
	first, err := s.products.First(ctx)
	if err != nil {
		return job.Job{}, err
	}

	stock := LowStockDemoStock
	p, err := s.products.Update(ctx, first.ID, product.Changes{Stock: &stock})
	if err != nil {
		return job.Job{}, fmt.Errorf("lower stock: %w", err)
	}

	payload := jobs.LowStockAlertPayload{
		ProductID:   p.ID,
		ProductName: p.Name,
		Stock:       p.Stock,
		Roles:       []string{user.RoleSuperAdmin, user.RoleProductManager},
		RequestedBy: actorID(ctx),
		RequestedAt: time.Now().UTC(),
		RequestID:   requestID,
	}
	if err := jobs.ValidatePayload(jobs.JobLowStockAlert, payload); err != nil {
		return job.Job{}, err
	}

	raw, err := jobs.EncodePayload(jobs.JobLowStockAlert, payload)
	if err != nil {
		return job.Job{}, fmt.Errorf("encode alert: %w", err)
	}

	j, err := s.jobs.Create(ctx, job.CreateRequest{
		Type:        string(jobs.JobLowStockAlert),
		Payload:     json.RawMessage(raw),
		MaxAttempts: 5,
	})
	if err != nil {
		return job.Job{}, fmt.Errorf("enqueue alert: %w", err)
	}

	s.log.InfoContext(ctx, "low stock alert queued", "product_id", p.ID, "job_id", j.ID, "actor_id", actorID(ctx))
	return j, nil
}
