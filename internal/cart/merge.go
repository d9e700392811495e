package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Merge reconciles a guest cart into a user cart. It runs once per login and
// resolves to one of three outcomes:
//
//  1. no guest cart, or an empty one: ErrEmptyGuestCart, nothing mutated;
//  2. guest cart only: the guest cart is re-owned by the user in place;
//  3. both carts: guest items are folded into the user cart (quantities
//     summed on identity-key overlap), then the guest record is deleted in
//     the same transaction as the user-cart write.
//
// Deleting the guest record inside the merge guarantees a reused guest id
// cannot re-merge the same items on a later login.
func (s *Service) Merge(ctx context.Context, guestID, userID string) (*Cart, error) {
	if guestID == "" || userID == "" {
		return nil, ErrInvalidOwner
	}

	guestCart, err := s.repo.FindByOwner(ctx, GuestOwner(guestID))
	if errors.Is(err, ErrCartNotFound) {
		return nil, ErrEmptyGuestCart
	}
	if err != nil {
		return nil, err
	}
	if guestCart.IsEmpty() {
		return nil, ErrEmptyGuestCart
	}

	userCart, err := s.repo.FindByOwner(ctx, UserOwner(userID))
	if errors.Is(err, ErrCartNotFound) {
		reowned := guestCart.Reparent(userID)
		if err := s.repo.Update(ctx, reowned); err != nil {
			return nil, err
		}

		s.invalidate(GuestOwner(guestID))
		s.invalidate(UserOwner(userID))
		s.log.Info("guest cart re-owned",
			zap.String("guest_id", guestID), zap.String("user_id", userID))
		return reowned, nil
	}
	if err != nil {
		return nil, err
	}

	if err := userCart.MergeFrom(guestCart); err != nil {
		return nil, err
	}
	if err := s.repo.SaveMerge(ctx, userCart, guestID); err != nil {
		return nil, err
	}

	s.invalidate(GuestOwner(guestID))
	s.invalidate(UserOwner(userID))
	s.log.Info("guest cart merged",
		zap.String("guest_id", guestID), zap.String("user_id", userID),
		zap.Int("items", len(userCart.Items)))
	return userCart, nil
}
