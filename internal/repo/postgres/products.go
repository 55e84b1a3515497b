package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/catalogadmin/internal/domain/product"
	"github.com/geocoder89/catalogadmin/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductsRepo soft-deletes: every read filters on deleted_at IS NULL.
type ProductsRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewProductsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{observer: observer{prom: prom}, pool: pool}
}

const productColumns = `id, name, slug, price::text, stock, status, category_id, created_at, updated_at, deleted_at`

func scanProduct(row pgx.Row) (product.Product, error) {
	var (
		p      product.Product
		price  string
		status string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &price, &p.Stock, &status, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		return product.Product{}, err
	}

	parsed, err := product.ParsePrice(price)
	if err != nil {
		return product.Product{}, fmt.Errorf("scan price %q: %w", price, err)
	}
	p.Price = parsed
	p.Status = product.Status(status)
	return p, nil
}

func (r *ProductsRepo) List(ctx context.Context) ([]product.Product, error) {
	out := []product.Product{}

	err := r.observe("products.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE deleted_at IS NULL ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id int64) (product.Product, error) {
	return r.getOne(ctx, "products.get_by_id",
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *ProductsRepo) First(ctx context.Context) (product.Product, error) {
	return r.getOne(ctx, "products.first",
		`SELECT `+productColumns+` FROM products WHERE deleted_at IS NULL ORDER BY id LIMIT 1`)
}

func (r *ProductsRepo) getOne(ctx context.Context, op, q string, args ...any) (product.Product, error) {
	var p product.Product

	err := r.observe(op, func() error {
		var err error
		p, err = scanProduct(r.pool.QueryRow(ctx, q, args...))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}
	return p, nil
}

func (r *ProductsRepo) ExistsByName(ctx context.Context, name string, exceptID int64) (bool, error) {
	return r.exists(ctx, "products.exists_by_name", "name", name, exceptID)
}

func (r *ProductsRepo) ExistsBySlug(ctx context.Context, slug string, exceptID int64) (bool, error) {
	return r.exists(ctx, "products.exists_by_slug", "slug", slug, exceptID)
}

// column is one of the fixed identifiers above, never user input.
func (r *ProductsRepo) exists(ctx context.Context, op, column, value string, exceptID int64) (bool, error) {
	var exists bool
	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM products
				WHERE `+column+` = $1 AND id <> $2 AND deleted_at IS NULL
			)`, value, exceptID).Scan(&exists)
	})
	return exists, err
}

func (r *ProductsRepo) Create(ctx context.Context, p product.Product) (product.Product, error) {
	var created product.Product

	err := r.observe("products.create", func() error {
		var err error
		created, err = scanProduct(r.pool.QueryRow(ctx, `
			INSERT INTO products (name, slug, price, stock, status, category_id, created_at, updated_at)
			VALUES ($1, $2, $3::numeric, $4, $5, $6, NOW(), NOW())
			RETURNING `+productColumns,
			p.Name, p.Slug, p.Price.String(), p.Stock, string(p.Status), p.CategoryID))
		return err
	})
	if err != nil {
		return product.Product{}, asConflict(err)
	}
	return created, nil
}

// Update writes only the fields set in ch.
func (r *ProductsRepo) Update(ctx context.Context, id int64, ch product.Changes) (product.Product, error) {
	var (
		sets []string
		args = []any{id}
	)
	add := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if ch.Name != nil {
		add("name = $%d", *ch.Name)
	}
	if ch.Slug != nil {
		add("slug = $%d", *ch.Slug)
	}
	if ch.Price != nil {
		add("price = $%d::numeric", ch.Price.String())
	}
	if ch.Stock != nil {
		add("stock = $%d", *ch.Stock)
	}
	if ch.Status != nil {
		add("status = $%d", string(*ch.Status))
	}
	if ch.CategorySet {
		add("category_id = $%d", ch.CategoryID)
	}
	sets = append(sets, "updated_at = NOW()")

	var updated product.Product
	err := r.observe("products.update", func() error {
		var err error
		updated, err = scanProduct(r.pool.QueryRow(ctx, `
			UPDATE products SET `+strings.Join(sets, ", ")+`
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING `+productColumns, args...))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, asConflict(err)
	}
	return updated, nil
}

func (r *ProductsRepo) SoftDelete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("products.soft_delete", func() error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE products SET deleted_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL
		`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (r *ProductsRepo) Count(ctx context.Context, f product.CountFilter) (int, error) {
	q := `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`
	var args []any
	op := "products.count"
	if f.StockBelow != nil {
		q += ` AND stock < $1`
		args = append(args, *f.StockBelow)
		op = "products.count_low_stock"
	}

	var n int
	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx, q, args...).Scan(&n)
	})
	return n, err
}
