package httpapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fashionmart/storefront/internal/cart"
	"github.com/fashionmart/storefront/internal/catalog"
	"github.com/fashionmart/storefront/internal/checkout"
	"github.com/fashionmart/storefront/internal/orders"
	"github.com/fashionmart/storefront/internal/payment"
	"github.com/fashionmart/storefront/internal/subscribers"
	"github.com/fashionmart/storefront/internal/users"
)

// In-memory repositories backing full services, so router tests exercise the
// real handler/service stack with only the storage swapped out.

type cartRepo struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart // keyed by document id
	seq   int
}

func newCartRepo() *cartRepo { return &cartRepo{carts: make(map[string]*cart.Cart)} }

func matchesOwner(c *cart.Cart, owner cart.Owner) bool {
	if owner.UserID != "" {
		return c.UserID == owner.UserID
	}
	return c.GuestID == owner.GuestID
}

func cloneCart(c *cart.Cart) *cart.Cart {
	copied := *c
	copied.Items = append([]cart.LineItem(nil), c.Items...)
	return &copied
}

func (r *cartRepo) FindByOwner(_ context.Context, owner cart.Owner) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if matchesOwner(c, owner) {
			return cloneCart(c), nil
		}
	}
	return nil, cart.ErrCartNotFound
}

func (r *cartRepo) Insert(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.carts {
		if matchesOwner(existing, cart.Owner{UserID: c.UserID, GuestID: c.GuestID}) {
			return cart.ErrStateConflict
		}
	}
	r.seq++
	c.ID = fmt.Sprintf("cart-%d", r.seq)
	c.Version = 1
	r.carts[c.ID] = cloneCart(c)
	return nil
}

func (r *cartRepo) Update(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.carts[c.ID]
	if !ok {
		return cart.ErrCartNotFound
	}
	if stored.Version != c.Version {
		return cart.ErrStateConflict
	}
	c.Version++
	r.carts[c.ID] = cloneCart(c)
	return nil
}

func (r *cartRepo) Delete(_ context.Context, owner cart.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.carts {
		if matchesOwner(c, owner) {
			delete(r.carts, id)
			return nil
		}
	}
	return cart.ErrCartNotFound
}

func (r *cartRepo) SaveMerge(_ context.Context, userCart *cart.Cart, guestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var guestDocID string
	for id, c := range r.carts {
		if c.GuestID == guestID {
			guestDocID = id
		}
	}
	if guestDocID == "" {
		return cart.ErrStateConflict
	}
	userCart.Version++
	r.carts[userCart.ID] = cloneCart(userCart)
	delete(r.carts, guestDocID)
	return nil
}

type noopCache struct{}

func (noopCache) Get(context.Context, cart.Owner) (*cart.Cart, error) {
	return nil, cart.ErrCacheMiss
}
func (noopCache) Set(context.Context, cart.Owner, *cart.Cart) error { return nil }
func (noopCache) Delete(context.Context, cart.Owner) error          { return nil }

type productRepo struct {
	mu       sync.Mutex
	products map[string]*catalog.Product
}

func newProductRepo() *productRepo {
	return &productRepo{products: make(map[string]*catalog.Product)}
}

func (r *productRepo) FindByID(_ context.Context, id string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *productRepo) List(_ context.Context, filter catalog.Filter) ([]*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.Product
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Gender != "" && p.Gender != filter.Gender {
			continue
		}
		if filter.Collection != "" && p.Collections != filter.Collection {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (r *productRepo) Insert(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

func (r *productRepo) Update(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

func (r *productRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

type checkoutRepo struct {
	mu       sync.Mutex
	sessions map[string]*checkout.Session
	outbox   []*checkout.OutboxEvent
	seq      int
}

func newCheckoutRepo() *checkoutRepo {
	return &checkoutRepo{sessions: make(map[string]*checkout.Session)}
}

func (r *checkoutRepo) Insert(_ context.Context, s *checkout.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.CreatedAt = time.Unix(0, int64(r.seq)*int64(time.Millisecond))
	s.UpdatedAt = s.CreatedAt
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *checkoutRepo) FindByID(_ context.Context, id string) (*checkout.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, checkout.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *checkoutRepo) FindLatestOpen(_ context.Context, userID string) (*checkout.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *checkout.Session
	for _, s := range r.sessions {
		if s.UserID != userID || s.IsFinalized {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, checkout.ErrNoOpenSession
	}
	copied := *latest
	return &copied, nil
}

func (r *checkoutRepo) UpdatePayment(_ context.Context, s *checkout.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[s.ID]
	if !ok {
		return checkout.ErrSessionNotFound
	}
	if stored.IsFinalized {
		return checkout.ErrStateConflict
	}
	copied := *s
	copied.CreatedAt = stored.CreatedAt
	r.sessions[s.ID] = &copied
	return nil
}

func (r *checkoutRepo) Finalize(_ context.Context, id string, finalizedAt time.Time, event *checkout.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[id]
	if !ok {
		return checkout.ErrSessionNotFound
	}
	if !stored.IsPaid || stored.IsFinalized {
		return checkout.ErrStateConflict
	}
	stored.IsFinalized = true
	stored.FinalizedAt = &finalizedAt
	r.outbox = append(r.outbox, event)
	return nil
}

func (r *checkoutRepo) UnprocessedEvents(_ context.Context, limit int64) ([]*checkout.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*checkout.OutboxEvent
	for _, e := range r.outbox {
		if !e.Processed && int64(len(out)) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *checkoutRepo) MarkEventProcessed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.outbox {
		if e.ID == id {
			e.Processed = true
			return nil
		}
	}
	return nil
}

type userRepo struct {
	mu    sync.Mutex
	users map[string]*users.User
}

func newUserRepo() *userRepo { return &userRepo{users: make(map[string]*users.User)} }

func (r *userRepo) Insert(_ context.Context, u *users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return users.ErrEmailTaken
		}
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, users.ErrUserNotFound
}

func (r *userRepo) ListAll(_ context.Context) ([]*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*users.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (r *userRepo) Update(_ context.Context, u *users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return users.ErrUserNotFound
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return users.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type orderRepo struct {
	mu     sync.Mutex
	orders map[string]*orders.Order
}

func newOrderRepo() *orderRepo { return &orderRepo{orders: make(map[string]*orders.Order)} }

func (r *orderRepo) Insert(_ context.Context, o *orders.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.CheckoutID == o.CheckoutID {
			return orders.ErrDuplicateCheckout
		}
	}
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *orderRepo) FindByID(_ context.Context, id string) (*orders.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *orderRepo) ListByUser(_ context.Context, userID string) ([]*orders.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*orders.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *orderRepo) ListAll(_ context.Context) ([]*orders.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*orders.Order, 0, len(r.orders))
	for _, o := range r.orders {
		copied := *o
		out = append(out, &copied)
	}
	return out, nil
}

func (r *orderRepo) Update(_ context.Context, o *orders.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return orders.ErrOrderNotFound
	}
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *orderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return orders.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

type subscriberRepo struct {
	mu   sync.Mutex
	subs map[string]*subscribers.Subscriber
}

func (r *subscriberRepo) Insert(_ context.Context, s *subscribers.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs == nil {
		r.subs = make(map[string]*subscribers.Subscriber)
	}
	if _, ok := r.subs[s.Email]; ok {
		return subscribers.ErrAlreadySubscribed
	}
	r.subs[s.Email] = s
	return nil
}

// stubCharger scripts the gateway outcome per test.
type stubCharger struct {
	result *payment.ChargeResult
	err    error
	calls  int
}

func (c *stubCharger) Charge(context.Context, payment.ChargeRequest) (*payment.ChargeResult, error) {
	c.calls++
	return c.result, c.err
}
