package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain"
	"github.com/geocoder89/catalogadmin/internal/domain/category"
)

type CategoriesRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]category.Category
}

func NewCategoriesRepo() *CategoriesRepo {
	return &CategoriesRepo{
		items: make(map[int64]category.Category),
	}
}

func (r *CategoriesRepo) List(_ context.Context) ([]category.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]category.Category, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoriesRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[id]
	return ok, nil
}

func (r *CategoriesRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.items {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *CategoriesRepo) Create(_ context.Context, name string) (category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.items {
		if c.Name == name {
			return category.Category{}, &domain.ConflictError{Entity: "category", Field: "name"}
		}
	}

	now := time.Now().UTC()
	r.nextID++
	c := category.Category{ID: r.nextID, Name: name, CreatedAt: now, UpdatedAt: now}
	r.items[c.ID] = c
	return c, nil
}

func (r *CategoriesRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}
