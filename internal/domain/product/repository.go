package product

import (
	"context"

	domcategory "example.com/grocery-form/internal/domain/category"
)

type Repository interface {
	ListByCategory(ctx context.Context, c domcategory.Category) ([]*Product, error)
	Create(ctx context.Context, d *Draft) (*Product, error)
	Update(ctx context.Context, id string, d *Draft) (*Product, error)
}
