package service

import (
	"context"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain/category"
	"github.com/geocoder89/catalogadmin/internal/domain/job"
	"github.com/geocoder89/catalogadmin/internal/domain/product"
	"github.com/geocoder89/catalogadmin/internal/domain/token"
	"github.com/geocoder89/catalogadmin/internal/domain/user"
)

// Storage ports. Postgres and in-memory repositories both satisfy them.

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int, error)
	AssignRole(ctx context.Context, userID int64, role string) error
}

type TokenStore interface {
	Create(ctx context.Context, t token.AccessToken) error
	GetByID(ctx context.Context, id string) (token.AccessToken, error)
	Touch(ctx context.Context, id string, at time.Time) error
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
}

type ProductStore interface {
	List(ctx context.Context) ([]product.Product, error)
	GetByID(ctx context.Context, id int64) (product.Product, error)
	First(ctx context.Context) (product.Product, error)
	ExistsByName(ctx context.Context, name string, exceptID int64) (bool, error)
	ExistsBySlug(ctx context.Context, slug string, exceptID int64) (bool, error)
	Create(ctx context.Context, p product.Product) (product.Product, error)
	Update(ctx context.Context, id int64, ch product.Changes) (product.Product, error)
	SoftDelete(ctx context.Context, id int64) error
	Count(ctx context.Context, filter product.CountFilter) (int, error)
}

type CategoryStore interface {
	List(ctx context.Context) ([]category.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) (category.Category, error)
	Count(ctx context.Context) (int, error)
}

type JobEnqueuer interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}
