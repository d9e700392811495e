package orders

import (
	"time"

	"github.com/fashionmart/storefront/internal/checkout"
)

type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Item struct {
	ProductID string  `bson:"product_id" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	ImageURL  string  `bson:"image_url" json:"imageUrl"`
	UnitPrice float64 `bson:"unit_price" json:"unitPrice"`
	Size      string  `bson:"size,omitempty" json:"size,omitempty"`
	Color     string  `bson:"color,omitempty" json:"color,omitempty"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

// Order is the fulfillment record materialized from a finalized checkout
// session. CheckoutID is unique so a replayed event cannot create a second
// order.
type Order struct {
	ID              string                   `bson:"_id" json:"id"`
	CheckoutID      string                   `bson:"checkout_id" json:"checkoutId"`
	UserID          string                   `bson:"user_id" json:"userId"`
	Items           []Item                   `bson:"items" json:"items"`
	ShippingAddress checkout.ShippingAddress `bson:"shipping_address" json:"shippingAddress"`
	PaymentMethod   string                   `bson:"payment_method" json:"paymentMethod"`
	TotalPrice      float64                  `bson:"total_price" json:"totalPrice"`
	Status          Status                   `bson:"status" json:"status"`
	IsDelivered     bool                     `bson:"is_delivered" json:"isDelivered"`
	DeliveredAt     *time.Time               `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time                `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time                `bson:"updated_at" json:"updatedAt"`
}
