package postgres

import (
	"context"

	"github.com/geocoder89/catalogadmin/internal/domain/category"
	"github.com/geocoder89/catalogadmin/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoriesRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{observer: observer{prom: prom}, pool: pool}
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	var out []category.Category

	err := r.observe("categories.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM categories ORDER BY name`)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (category.Category, error) {
			var c category.Category
			err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
			return c, err
		})
		return err
	})
	return out, err
}

func (r *CategoriesRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.observe("categories.exists", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	})
	return exists, err
}

func (r *CategoriesRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.observe("categories.exists_by_name", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1)`, name).Scan(&exists)
	})
	return exists, err
}

func (r *CategoriesRepo) Create(ctx context.Context, name string) (category.Category, error) {
	c := category.Category{Name: name}

	err := r.observe("categories.create", func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO categories (name, created_at, updated_at)
			VALUES ($1, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`, name).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	})
	if err != nil {
		return category.Category{}, asConflict(err)
	}
	return c, nil
}

func (r *CategoriesRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.observe("categories.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	})
	return n, err
}
