package postgres

import (
	"errors"

	"github.com/geocoder89/catalogadmin/internal/domain"
	"github.com/geocoder89/catalogadmin/internal/observability"
	"github.com/jackc/pgx/v5/pgconn"
)

// Unique constraint names, kept in step with db/migrate.go.
const (
	constraintUsersName        = "users_name_key"
	constraintUsersEmail       = "users_email_key"
	constraintCategoriesName   = "categories_name_key"
	constraintProductsNameLive = "products_name_live_uniq"
	constraintProductsSlugLive = "products_slug_live_uniq"
)

var constraintFields = map[string][2]string{
	constraintUsersName:        {"user", "name"},
	constraintUsersEmail:       {"user", "email"},
	constraintCategoriesName:   {"category", "name"},
	constraintProductsNameLive: {"product", "name"},
	constraintProductsSlugLive: {"product", "slug"},
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// asConflict turns a unique violation on a known constraint into a
// domain.ConflictError. Other errors pass through unchanged.
func asConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	if f, ok := constraintFields[pgErr.ConstraintName]; ok {
		return &domain.ConflictError{Entity: f[0], Field: f[1]}
	}
	return err
}

type observer struct {
	prom *observability.Prom
}

func (o observer) observe(op string, fn func() error) error {
	if o.prom != nil {
		return o.prom.ObserveDB(op, fn)
	}
	return fn()
}
