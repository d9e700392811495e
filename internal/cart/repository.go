package cart

import (
	"context"
	"errors"
)

var (
	ErrCartNotFound = errors.New("cart not found")

	// ErrStateConflict reports a concurrent write detected by the version
	// check. The caller retries the whole operation; the store never
	// re-applies a stale mutation.
	ErrStateConflict = errors.New("cart was modified concurrently")
)

// Repository is the persistence contract for cart aggregates. Insert and
// Update are single-document writes; Update is a compare-and-swap on the
// version read. SaveMerge commits a merged user cart and the guest-record
// deletion as one transaction.
type Repository interface {
	FindByOwner(ctx context.Context, owner Owner) (*Cart, error)
	Insert(ctx context.Context, cart *Cart) error
	Update(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, owner Owner) error
	SaveMerge(ctx context.Context, userCart *Cart, guestID string) error
}
