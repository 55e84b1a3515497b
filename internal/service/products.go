package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/catalogadmin/internal/actorctx"
	"github.com/geocoder89/catalogadmin/internal/domain/product"
	"github.com/geocoder89/catalogadmin/internal/validation"
)

type ProductService struct {
	products   ProductStore
	categories CategoryStore
	log        *slog.Logger
}

func NewProductService(products ProductStore, categories CategoryStore, log *slog.Logger) *ProductService {
	if log == nil {
		log = slog.Default()
	}
	return &ProductService{products: products, categories: categories, log: log}
}

func (s *ProductService) List(ctx context.Context) ([]product.Product, error) {
	items, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if items == nil {
		items = []product.Product{}
	}
	return items, nil
}

func (s *ProductService) Show(ctx context.Context, id int64) (product.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, in product.Payload) (product.Product, error) {
	ch, errs := in.Parse(true)

	// derive the slug only when the name itself is usable
	if ch.Slug == nil && ch.Name != nil {
		derived := product.Slugify(*ch.Name)
		if derived == "" {
			errs.Add("slug", "could not be derived from name")
		} else {
			ch.Slug = &derived
		}
	}

	if err := s.checkStorageRules(ctx, ch, 0, errs); err != nil {
		return product.Product{}, err
	}
	if err := errs.Err(); err != nil {
		return product.Product{}, err
	}

	p := product.Product{Status: product.StatusAvailable}
	p = ch.Apply(p)

	created, err := s.products.Create(ctx, p)
	if err != nil {
		return product.Product{}, err
	}

	s.log.InfoContext(ctx, "product created", "product_id", created.ID, "slug", created.Slug, "actor_id", actorID(ctx))
	return created, nil
}

// Update changes only the supplied fields. A renamed product keeps its slug
// unless a new one is sent.
func (s *ProductService) Update(ctx context.Context, id int64, in product.Payload) (product.Product, error) {
	if _, err := s.products.GetByID(ctx, id); err != nil {
		return product.Product{}, err
	}

	ch, errs := in.Parse(false)

	if err := s.checkStorageRules(ctx, ch, id, errs); err != nil {
		return product.Product{}, err
	}
	if err := errs.Err(); err != nil {
		return product.Product{}, err
	}

	updated, err := s.products.Update(ctx, id, ch)
	if err != nil {
		return product.Product{}, err
	}

	s.log.InfoContext(ctx, "product updated", "product_id", id, "actor_id", actorID(ctx))
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.products.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "product deleted", "product_id", id, "actor_id", actorID(ctx))
	return nil
}

// checkStorageRules adds uniqueness and category failures to errs. Fields that
// already failed a format rule are skipped. exceptID excludes the product
// being updated.
func (s *ProductService) checkStorageRules(ctx context.Context, ch product.Changes, exceptID int64, errs validation.Errors) error {
	if ch.Name != nil && !errs.Has("name") {
		taken, err := s.products.ExistsByName(ctx, *ch.Name, exceptID)
		if err != nil {
			return fmt.Errorf("check product name: %w", err)
		}
		if taken {
			errs.Add("name", "has already been taken")
		}
	}

	if ch.Slug != nil && !errs.Has("slug") {
		taken, err := s.products.ExistsBySlug(ctx, *ch.Slug, exceptID)
		if err != nil {
			return fmt.Errorf("check product slug: %w", err)
		}
		if taken {
			errs.Add("slug", "has already been taken")
		}
	}

	if ch.CategorySet && ch.CategoryID != nil {
		ok, err := s.categories.Exists(ctx, *ch.CategoryID)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !ok {
			errs.Add("category_id", "selected category is invalid")
		}
	}

	return nil
}

func actorID(ctx context.Context) int64 {
	id, _ := actorctx.UserIDFrom(ctx)
	return id
}
