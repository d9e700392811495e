package cart

import "time"

// Owner identifies the exclusive owner of a cart: a registered user or an
// anonymous guest. Exactly one of the two fields is set on a persisted cart.
type Owner struct {
	UserID  string
	GuestID string
}

func UserOwner(userID string) Owner   { return Owner{UserID: userID} }
func GuestOwner(guestID string) Owner { return Owner{GuestID: guestID} }

func (o Owner) Valid() bool {
	return (o.UserID != "") != (o.GuestID != "")
}

// Key is the cache/lock key for this owner.
func (o Owner) Key() string {
	if o.UserID != "" {
		return "user:" + o.UserID
	}
	return "guest:" + o.GuestID
}

// ItemKey is the identity of a line item within a cart. Size and color are
// empty when the product variant does not carry them; an empty value never
// matches an explicit one.
type ItemKey struct {
	ProductID string
	Size      string
	Color     string
}

type LineItem struct {
	ProductID string  `bson:"product_id" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	ImageURL  string  `bson:"image_url" json:"imageUrl"`
	UnitPrice float64 `bson:"unit_price" json:"unitPrice"`
	Size      string  `bson:"size,omitempty" json:"size,omitempty"`
	Color     string  `bson:"color,omitempty" json:"color,omitempty"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

func (li LineItem) Key() ItemKey {
	return ItemKey{ProductID: li.ProductID, Size: li.Size, Color: li.Color}
}

// Cart is the persisted aggregate. Version backs the compare-and-swap write
// path: every replace matches on the version it read and increments it.
type Cart struct {
	ID         string     `bson:"_id,omitempty" json:"id"`
	UserID     string     `bson:"user_id,omitempty" json:"userId,omitempty"`
	GuestID    string     `bson:"guest_id,omitempty" json:"guestId,omitempty"`
	Items      []LineItem `bson:"items" json:"items"`
	TotalPrice float64    `bson:"total_price" json:"totalPrice"`
	Version    int64      `bson:"version" json:"-"`
	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updatedAt"`
}

func (c *Cart) Owner() Owner {
	if c.UserID != "" {
		return UserOwner(c.UserID)
	}
	return GuestOwner(c.GuestID)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Reparent returns a copy of the cart owned by the given user, with the guest
// association cleared. The document identity is preserved so the transition is
// an in-place re-own, not a copy of the record.
func (c *Cart) Reparent(userID string) *Cart {
	reowned := *c
	reowned.Items = append([]LineItem(nil), c.Items...)
	reowned.UserID = userID
	reowned.GuestID = ""
	return &reowned
}

// NewCart returns an empty, unsaved cart for the owner. The repository assigns
// the document id and version on first insert.
func NewCart(owner Owner) *Cart {
	return &Cart{
		UserID:  owner.UserID,
		GuestID: owner.GuestID,
		Items:   []LineItem{},
	}
}
