package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type memoryRepository struct {
	mu     sync.Mutex
	orders map[string]*Order
	seq    int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{orders: make(map[string]*Order)}
}

func (m *memoryRepository) Insert(_ context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.orders {
		if existing.CheckoutID == order.CheckoutID {
			return ErrDuplicateCheckout
		}
	}

	m.seq++
	order.CreatedAt = time.Unix(0, int64(m.seq)*int64(time.Millisecond))
	order.UpdatedAt = order.CreatedAt
	m.orders[order.ID] = clone(order)
	return nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return clone(order), nil
}

func (m *memoryRepository) ListByUser(_ context.Context, userID string) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, clone(order))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *memoryRepository) ListAll(_ context.Context) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Order, 0, len(m.orders))
	for _, order := range m.orders {
		out = append(out, clone(order))
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *memoryRepository) Update(_ context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[order.ID]; !ok {
		return ErrOrderNotFound
	}
	order.UpdatedAt = time.Now()
	m.orders[order.ID] = clone(order)
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func sortNewestFirst(orders []*Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func clone(order *Order) *Order {
	c := *order
	c.Items = append([]Item(nil), order.Items...)
	if order.DeliveredAt != nil {
		t := *order.DeliveredAt
		c.DeliveredAt = &t
	}
	return &c
}

// scriptedReader feeds a fixed sequence of messages, then blocks on ctx.
type scriptedReader struct {
	mu       sync.Mutex
	messages []kafka.Message
	closed   bool
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		m := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *scriptedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
