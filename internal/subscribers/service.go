package subscribers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Subscribe(ctx context.Context, email string) (*Subscriber, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	sub := &Subscriber{
		ID:           uuid.NewString(),
		Email:        email,
		SubscribedAt: time.Now(),
	}
	if err := s.repo.Insert(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("newsletter subscription", zap.String("email", email))
	return sub, nil
}
