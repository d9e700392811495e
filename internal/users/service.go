package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("name, email and password are required")
)

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates an account and returns it. The password is stored only as
// a bcrypt hash; the unique email index turns races on the same address into
// ErrEmailTaken.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Authenticate returns the user when the email and password match. Unknown
// email and wrong password collapse into the same error so the endpoint
// cannot be used to probe for accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]*User, error) {
	return s.repo.ListAll(ctx)
}

// UpdateInput carries the admin's partial edit; nil fields stay untouched.
type UpdateInput struct {
	Name    *string
	Email   *string
	IsAdmin *bool
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidInput
		}
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			return nil, ErrInvalidInput
		}
		user.Email = email
	}
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
