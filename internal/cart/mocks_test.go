package cart

import (
	"context"
	"sync"

	"github.com/fashionmart/storefront/internal/catalog"
)

// memoryRepository implements Repository with the same compare-and-swap
// semantics as the Mongo implementation, so concurrency behavior can be
// exercised without a database.
type memoryRepository struct {
	mu       sync.Mutex
	carts    map[string]*Cart // by document id
	nextID   int
	err      error // forced error for every call when set
	mergeErr error // forced error for SaveMerge only
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{carts: map[string]*Cart{}}
}

func clone(c *Cart) *Cart {
	cp := *c
	cp.Items = append([]LineItem(nil), c.Items...)
	return &cp
}

func (m *memoryRepository) findLocked(owner Owner) *Cart {
	for _, c := range m.carts {
		if owner.UserID != "" && c.UserID == owner.UserID {
			return c
		}
		if owner.GuestID != "" && c.GuestID == owner.GuestID {
			return c
		}
	}
	return nil
}

func (m *memoryRepository) FindByOwner(_ context.Context, owner Owner) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if c := m.findLocked(owner); c != nil {
		return clone(c), nil
	}
	return nil, ErrCartNotFound
}

func (m *memoryRepository) Insert(_ context.Context, cart *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.findLocked(cart.Owner()) != nil {
		return ErrStateConflict
	}
	m.nextID++
	cart.ID = string(rune('a' + m.nextID))
	cart.Version = 1
	m.carts[cart.ID] = clone(cart)
	return nil
}

func (m *memoryRepository) Update(_ context.Context, cart *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	stored, ok := m.carts[cart.ID]
	if !ok {
		return ErrCartNotFound
	}
	if stored.Version != cart.Version {
		return ErrStateConflict
	}
	cart.Version++
	m.carts[cart.ID] = clone(cart)
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, owner Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	c := m.findLocked(owner)
	if c == nil {
		return ErrCartNotFound
	}
	delete(m.carts, c.ID)
	return nil
}

func (m *memoryRepository) SaveMerge(_ context.Context, userCart *Cart, guestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.mergeErr != nil {
		return m.mergeErr
	}
	stored, ok := m.carts[userCart.ID]
	if !ok || stored.Version != userCart.Version {
		return ErrStateConflict
	}
	guest := m.findLocked(GuestOwner(guestID))
	if guest == nil {
		return ErrStateConflict
	}
	userCart.Version++
	m.carts[userCart.ID] = clone(userCart)
	delete(m.carts, guest.ID)
	return nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string]*Cart
	err     error
	deletes []string
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]*Cart{}}
}

func (m *mockCache) Get(_ context.Context, owner Owner) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.entries[owner.Key()]; ok {
		return clone(c), nil
	}
	return nil, ErrCacheMiss
}

func (m *mockCache) Set(_ context.Context, owner Owner, cart *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries[owner.Key()] = clone(cart)
	return nil
}

func (m *mockCache) Delete(_ context.Context, owner Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, owner.Key())
	delete(m.entries, owner.Key())
	return m.err
}

type mockProducts struct {
	products map[string]*catalog.Product
}

func (m *mockProducts) Get(_ context.Context, id string) (*catalog.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, catalog.ErrProductNotFound
}
