package orders

import (
	"context"
	"errors"
	"time"
)

// ErrNotOwner hides other users' orders without leaking their existence; the
// HTTP layer maps it to the same status as a missing order.
var ErrNotOwner = errors.New("order belongs to another user")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns the order when the requester owns it or is an admin.
func (s *Service) Get(ctx context.Context, id, requesterID string, isAdmin bool) (*Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, ErrNotOwner
	}
	return order, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*Order, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus is the admin transition. Delivered stamps delivered_at once;
// moving away from Delivered keeps the original timestamp for the audit
// trail.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	order.Status = status
	order.IsDelivered = status == StatusDelivered
	if order.IsDelivered && order.DeliveredAt == nil {
		now := time.Now()
		order.DeliveredAt = &now
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
