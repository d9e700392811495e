package checkout

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

func (s PaymentStatus) String() string { return string(s) }

// SessionItem is a value snapshot of a cart line at checkout creation time.
// The live cart keeps evolving independently; nothing here points back at it.
type SessionItem struct {
	ProductID string  `bson:"product_id" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	ImageURL  string  `bson:"image_url" json:"imageUrl"`
	UnitPrice float64 `bson:"unit_price" json:"unitPrice"`
	Size      string  `bson:"size,omitempty" json:"size,omitempty"`
	Color     string  `bson:"color,omitempty" json:"color,omitempty"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

type ShippingAddress struct {
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

// Session drives Created -> Paid -> Finalized. No transition skips a state
// and none is reversible; isFinalized implies isPaid.
type Session struct {
	ID              string                 `bson:"_id" json:"id"`
	UserID          string                 `bson:"user_id" json:"userId"`
	Items           []SessionItem          `bson:"items" json:"items"`
	ShippingAddress ShippingAddress        `bson:"shipping_address" json:"shippingAddress"`
	PaymentMethod   string                 `bson:"payment_method" json:"paymentMethod"`
	PaymentDetails  map[string]interface{} `bson:"payment_details,omitempty" json:"paymentDetails,omitempty"`
	TotalPrice      float64                `bson:"total_price" json:"totalPrice"`
	IsPaid          bool                   `bson:"is_paid" json:"isPaid"`
	PaymentStatus   PaymentStatus          `bson:"payment_status" json:"paymentStatus"`
	IsFinalized     bool                   `bson:"is_finalized" json:"isFinalized"`
	PaidAt          *time.Time             `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	FinalizedAt     *time.Time             `bson:"finalized_at,omitempty" json:"finalizedAt,omitempty"`
	CreatedAt       time.Time              `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time              `bson:"updated_at" json:"updatedAt"`
}

// Open reports whether the session can still receive payment updates.
func (s *Session) Open() bool { return !s.IsFinalized }

// FinalizedEvent is the outbox payload published once a session finalizes.
// The orders consumer materializes an order from it.
type FinalizedEvent struct {
	CheckoutID      string          `json:"checkout_id"`
	UserID          string          `json:"user_id"`
	Items           []SessionItem   `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	TotalPrice      float64         `json:"total_price"`
	FinalizedAt     time.Time       `json:"finalized_at"`
}
