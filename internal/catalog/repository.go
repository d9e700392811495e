package catalog

import (
	"context"
	"errors"
)

var ErrProductNotFound = errors.New("product not found")

// Filter narrows List results. Zero-value fields are ignored; matching is
// plain equality, ranking is out of scope.
type Filter struct {
	Category   string
	Collection string
	Gender     string
	Limit      int64
}

type Repository interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, filter Filter) ([]*Product, error)
	Insert(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
}
