package users

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: make(map[string]*User)}
}

func (m *memoryRepository) Insert(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := *user
	return &c, nil
}

func (m *memoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Email == email {
			c := *user
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryRepository) ListAll(_ context.Context) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*User, 0, len(m.users))
	for _, user := range m.users {
		c := *user
		out = append(out, &c)
	}
	return out, nil
}

func (m *memoryRepository) Update(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	for id, existing := range m.users {
		if id != user.ID && existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}
