package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain"
	"github.com/geocoder89/catalogadmin/internal/domain/product"
)

// ProductsRepo keeps soft-deleted rows so tests can assert they survive.
type ProductsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]product.Product
}

func NewProductsRepo() *ProductsRepo {
	return &ProductsRepo{
		items: make(map[int64]product.Product),
	}
}

func (r *ProductsRepo) List(_ context.Context) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(r.items))
	for _, p := range r.items {
		if p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProductsRepo) GetByID(_ context.Context, id int64) (product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok || p.DeletedAt != nil {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

func (r *ProductsRepo) First(ctx context.Context) (product.Product, error) {
	items, _ := r.List(ctx)
	if len(items) == 0 {
		return product.Product{}, product.ErrNotFound
	}
	return items[0], nil
}

func (r *ProductsRepo) ExistsByName(_ context.Context, name string, exceptID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.liveMatch(func(p product.Product) bool { return p.Name == name }, exceptID), nil
}

func (r *ProductsRepo) ExistsBySlug(_ context.Context, slug string, exceptID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.liveMatch(func(p product.Product) bool { return p.Slug == slug }, exceptID), nil
}

func (r *ProductsRepo) Create(_ context.Context, p product.Product) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.uniqueLocked(p, 0); err != nil {
		return product.Product{}, err
	}

	now := time.Now().UTC()
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = now
	p.UpdatedAt = now
	p.DeletedAt = nil
	r.items[p.ID] = p

	return p, nil
}

func (r *ProductsRepo) Update(_ context.Context, id int64, ch product.Changes) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok || p.DeletedAt != nil {
		return product.Product{}, product.ErrNotFound
	}

	next := ch.Apply(p)
	if err := r.uniqueLocked(next, id); err != nil {
		return product.Product{}, err
	}
	next.UpdatedAt = time.Now().UTC()
	r.items[id] = next

	return next, nil
}

func (r *ProductsRepo) SoftDelete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok || p.DeletedAt != nil {
		return product.ErrNotFound
	}
	now := time.Now().UTC()
	p.DeletedAt = &now
	p.UpdatedAt = now
	r.items[id] = p
	return nil
}

func (r *ProductsRepo) Count(_ context.Context, f product.CountFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.items {
		if p.DeletedAt != nil {
			continue
		}
		if f.StockBelow != nil && p.Stock >= *f.StockBelow {
			continue
		}
		n++
	}
	return n, nil
}

// GetWithTrashed returns a row even after soft deletion.
func (r *ProductsRepo) GetWithTrashed(id int64) (product.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	return p, ok
}

// uniqueLocked mirrors the partial unique indexes on live rows.
func (r *ProductsRepo) uniqueLocked(p product.Product, exceptID int64) error {
	if r.liveMatch(func(o product.Product) bool { return o.Name == p.Name }, exceptID) {
		return &domain.ConflictError{Entity: "product", Field: "name"}
	}
	if r.liveMatch(func(o product.Product) bool { return o.Slug == p.Slug }, exceptID) {
		return &domain.ConflictError{Entity: "product", Field: "slug"}
	}
	return nil
}

func (r *ProductsRepo) liveMatch(match func(product.Product) bool, exceptID int64) bool {
	for id, p := range r.items {
		if id == exceptID || p.DeletedAt != nil {
			continue
		}
		if match(p) {
			return true
		}
	}
	return false
}
