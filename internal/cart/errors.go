package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrInvalidVariant  = errors.New("size or color not offered for this product")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrEmptyGuestCart  = errors.New("guest cart is missing or empty")
	ErrInvalidOwner    = errors.New("cart owner must be exactly one of user id or guest id")
)
