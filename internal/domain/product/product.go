package product

import (
	"errors"
	"time"
)

type Status string

const (
	StatusAvailable  Status = "available"
	StatusOutOfStock Status = "out_of_stock"
	StatusComingSoon Status = "coming_soon"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusOutOfStock, StatusComingSoon:
		return true
	default:
		return false
	}
}

const (
	NameMaxLength = 64
	// MaxStock is the upper bound of the INTEGER stock column.
	MaxStock = 2147483647
	// products with stock strictly below this are reported as low stock
	LowStockThreshold = 10
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Price      Price      `json:"price"`
	Stock      int        `json:"stock"`
	Status     Status     `json:"status"`
	CategoryID *int64     `json:"category_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Changes is a validated partial write. Nil fields are left untouched.
type Changes struct {
	Name   *string
	Slug   *string
	Price  *Price
	Stock  *int
	Status *Status
	// CategorySet distinguishes "clear the category" from "not supplied".
	CategorySet bool
	CategoryID  *int64
}

func (c Changes) Apply(p Product) Product {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Slug != nil {
		p.Slug = *c.Slug
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.Stock != nil {
		p.Stock = *c.Stock
	}
	if c.Status != nil {
		p.Status = *c.Status
	}
	if c.CategorySet {
		p.CategoryID = c.CategoryID
	}
	return p
}

// CountFilter narrows Count. Zero value counts every live product.
type CountFilter struct {
	StockBelow *int
}
