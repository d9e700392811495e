package subscribers

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrAlreadySubscribed = errors.New("email already subscribed")
	ErrInvalidEmail      = errors.New("a valid email is required")
)

type Subscriber struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	SubscribedAt time.Time `bson:"subscribed_at" json:"subscribedAt"`
}

type Repository interface {
	Insert(ctx context.Context, sub *Subscriber) error
}

// normalizeEmail lowercases so the unique index treats case variants of an
// address as the same subscription.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
