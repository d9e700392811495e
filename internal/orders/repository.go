package orders

import (
	"context"
	"errors"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateCheckout = errors.New("order for this checkout already exists")
	ErrInvalidStatus     = errors.New("unknown order status")
)

type Repository interface {
	Insert(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id string) error
}
