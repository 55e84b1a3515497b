package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geocoder89/catalogadmin/internal/domain/category"
	"github.com/geocoder89/catalogadmin/internal/validation"
)

type CategoryService struct {
	categories CategoryStore
	log        *slog.Logger
}

func NewCategoryService(categories CategoryStore, log *slog.Logger) *CategoryService {
	if log == nil {
		log = slog.Default()
	}
	return &CategoryService{categories: categories, log: log}
}

func (s *CategoryService) List(ctx context.Context) ([]category.Category, error) {
	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if items == nil {
		items = []category.Category{}
	}
	return items, nil
}

func (s *CategoryService) Create(ctx context.Context, in category.CreateCategoryRequest) (category.Category, error) {
	name := strings.TrimSpace(in.Name)

	errs := validation.Errors{}
	if errs.Check("name", name, "required,max=255") {
		taken, err := s.categories.ExistsByName(ctx, name)
		if err != nil {
			return category.Category{}, fmt.Errorf("check category name: %w", err)
		}
		if taken {
			errs.Add("name", "has already been taken")
		}
	}
	if err := errs.Err(); err != nil {
		return category.Category{}, err
	}

	c, err := s.categories.Create(ctx, name)
	if err != nil {
		return category.Category{}, err
	}

	s.log.InfoContext(ctx, "category created", "category_id", c.ID, "actor_id", actorID(ctx))
	return c, nil
}
