package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

type CreateInput struct {
	Items           []SessionItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	TotalPrice      float64
}

// Create opens a new checkout session in the Created state. The items are
// copied by value so later cart mutations cannot reach an in-flight checkout.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Session, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, it := range in.Items {
		if it.ProductID == "" || it.Name == "" || it.Quantity < 1 || it.UnitPrice < 0 {
			return nil, ErrInvalidItem
		}
	}
	if err := validateAddress(in.ShippingAddress); err != nil {
		return nil, err
	}

	addr := in.ShippingAddress
	addr.Country = normalizeCountry(addr.Country)

	session := &Session{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           append([]SessionItem(nil), in.Items...),
		ShippingAddress: addr,
		PaymentMethod:   in.PaymentMethod,
		TotalPrice:      in.TotalPrice,
		IsPaid:          false,
		PaymentStatus:   PaymentStatusPending,
		IsFinalized:     false,
	}

	if err := s.repo.Insert(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID),
		zap.Float64("total", session.TotalPrice))
	return session, nil
}

// LatestOpen returns the user's most recent unfinalized session. The payment
// flow reads it to know what amount to charge.
func (s *Service) LatestOpen(ctx context.Context, userID string) (*Session, error) {
	return s.repo.FindLatestOpen(ctx, userID)
}

// MarkPaid records a successful payment on the user's most recent open
// session. Repeating the call re-sets the same fields; it is not an error and
// not a state change.
func (s *Service) MarkPaid(ctx context.Context, userID string, details map[string]interface{}) (*Session, error) {
	session, err := s.repo.FindLatestOpen(ctx, userID)
	if err != nil {
		return nil, err
	}

	paidAt := s.now()
	session.IsPaid = true
	session.PaymentStatus = PaymentStatusPaid
	session.PaymentDetails = details
	session.PaidAt = &paidAt

	if err := s.repo.UpdatePayment(ctx, session); err != nil {
		if errors.Is(err, ErrStateConflict) {
			return nil, ErrNoOpenSession
		}
		return nil, err
	}

	s.log.Info("checkout session paid",
		zap.String("session_id", session.ID), zap.String("user_id", userID))
	return session, nil
}

// MarkFailed records a refused payment. A Failed status is terminal for the
// session: the user starts a new checkout, the old session is abandoned.
func (s *Service) MarkFailed(ctx context.Context, userID string, details map[string]interface{}) (*Session, error) {
	session, err := s.repo.FindLatestOpen(ctx, userID)
	if err != nil {
		return nil, err
	}

	session.PaymentStatus = PaymentStatusFailed
	session.PaymentDetails = details

	if err := s.repo.UpdatePayment(ctx, session); err != nil {
		if errors.Is(err, ErrStateConflict) {
			return nil, ErrNoOpenSession
		}
		return nil, err
	}

	s.log.Info("checkout payment failed",
		zap.String("session_id", session.ID), zap.String("user_id", userID))
	return session, nil
}

// Finalize closes a paid session and appends the finalized event to the
// outbox in the same transaction. Finalizing an already-finalized session is
// rejected with ErrAlreadyFinalized rather than treated as a no-op, so every
// successful finalize corresponds to exactly one event.
func (s *Service) Finalize(ctx context.Context, sessionID string) (*Session, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsFinalized {
		return nil, ErrAlreadyFinalized
	}
	if !session.IsPaid {
		return nil, ErrPaymentRequired
	}

	finalizedAt := s.now()
	event, err := s.finalizedEvent(session, finalizedAt)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Finalize(ctx, sessionID, finalizedAt, event); err != nil {
		if errors.Is(err, ErrStateConflict) {
			// Lost the race: reload to report the precise state.
			current, findErr := s.repo.FindByID(ctx, sessionID)
			if findErr != nil {
				return nil, findErr
			}
			if current.IsFinalized {
				return nil, ErrAlreadyFinalized
			}
			return nil, ErrPaymentRequired
		}
		return nil, err
	}

	session.IsFinalized = true
	session.FinalizedAt = &finalizedAt
	session.UpdatedAt = finalizedAt

	s.log.Info("checkout session finalized",
		zap.String("session_id", session.ID), zap.String("user_id", session.UserID))
	return session, nil
}

func (s *Service) Get(ctx context.Context, sessionID string) (*Session, error) {
	return s.repo.FindByID(ctx, sessionID)
}

func (s *Service) finalizedEvent(session *Session, finalizedAt time.Time) (*OutboxEvent, error) {
	payload, err := json.Marshal(FinalizedEvent{
		CheckoutID:      session.ID,
		UserID:          session.UserID,
		Items:           session.Items,
		ShippingAddress: session.ShippingAddress,
		PaymentMethod:   session.PaymentMethod,
		TotalPrice:      session.TotalPrice,
		FinalizedAt:     finalizedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal finalized event: %w", err)
	}

	return &OutboxEvent{
		ID:          uuid.NewString(),
		AggregateID: session.ID,
		EventType:   EventTypeFinalized,
		Payload:     payload,
		CreatedAt:   finalizedAt,
	}, nil
}

func validateAddress(a ShippingAddress) error {
	for _, field := range []string{a.Address, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(field) == "" {
			return ErrIncompleteAddress
		}
	}
	return nil
}

// normalizeCountry capitalizes the first letter and lowercases the rest, so
// "gerMANY" and "germany" group together downstream.
func normalizeCountry(country string) string {
	runes := []rune(strings.ToLower(strings.TrimSpace(country)))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
