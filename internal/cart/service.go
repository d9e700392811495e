package cart

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fashionmart/storefront/internal/catalog"
)

// ProductFinder is the slice of the catalog the cart needs: line items
// snapshot name, image and price from it at add time.
type ProductFinder interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
}

type Service struct {
	repo     Repository
	cache    Cache
	products ProductFinder
	log      *zap.Logger
	sfg      singleflight.Group // Prevents cache stampede on the read path
}

func NewService(repo Repository, cache Cache, products ProductFinder, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		products: products,
		log:      log,
	}
}

// AddItemInput identifies the product variant to add. Size and color are
// optional; absent values stay empty and never match an explicit one.
type AddItemInput struct {
	ProductID string
	Size      string
	Color     string
	Quantity  int
}

// GetCart returns the owner's cart, or an empty unsaved one when none exists
// yet. Concurrent misses for the same owner are collapsed into a single load.
func (s *Service) GetCart(ctx context.Context, owner Owner) (*Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}

	v, err, _ := s.sfg.Do(owner.Key(), func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, owner)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("cart cache get failed", zap.String("owner", owner.Key()), zap.Error(err))
		}

		cart, err := s.repo.FindByOwner(ctx, owner)
		if errors.Is(err, ErrCartNotFound) {
			return NewCart(owner), nil
		}
		if err != nil {
			return nil, err
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(setCtx, owner, cart); err != nil {
				s.log.Warn("cart cache set failed", zap.String("owner", owner.Key()), zap.Error(err))
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Cart), nil
}

// AddItem snapshots the product into a line item and folds it into the
// owner's cart, creating the cart on first add. The snapshot price is the
// catalog price at this moment; later catalog changes do not touch the cart.
func (s *Service) AddItem(ctx context.Context, owner Owner, in AddItemInput) (*Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.Get(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, catalog.ErrProductNotFound
	}
	if !offered(product.Sizes, in.Size) || !offered(product.Colors, in.Color) {
		return nil, ErrInvalidVariant
	}

	item := LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		ImageURL:  product.FirstImageURL(),
		UnitPrice: product.Price,
		Size:      in.Size,
		Color:     in.Color,
		Quantity:  in.Quantity,
	}

	cart, err := s.repo.FindByOwner(ctx, owner)
	fresh := false
	if errors.Is(err, ErrCartNotFound) {
		cart = NewCart(owner)
		fresh = true
	} else if err != nil {
		return nil, err
	}

	if err := cart.AddItem(item); err != nil {
		return nil, err
	}

	if fresh {
		err = s.repo.Insert(ctx, cart)
	} else {
		err = s.repo.Update(ctx, cart)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(owner)
	return cart, nil
}

// SetItemQuantity replaces the matched item's quantity; zero or less removes
// the item.
func (s *Service) SetItemQuantity(ctx context.Context, owner Owner, key ItemKey, quantity int) (*Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}

	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	if err := cart.SetItemQuantity(key, quantity); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, cart); err != nil {
		return nil, err
	}

	s.invalidate(owner)
	return cart, nil
}

func (s *Service) RemoveItem(ctx context.Context, owner Owner, key ItemKey) (*Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}

	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	if err := cart.RemoveItem(key); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, cart); err != nil {
		return nil, err
	}

	s.invalidate(owner)
	return cart, nil
}

// Clear drops the owner's cart record entirely.
func (s *Service) Clear(ctx context.Context, owner Owner) error {
	if !owner.Valid() {
		return ErrInvalidOwner
	}

	if err := s.repo.Delete(ctx, owner); err != nil {
		return err
	}

	s.invalidate(owner)
	return nil
}

// offered reports whether the chosen variant value is one the product lists.
// An unset value is always allowed; a product with no listed options accepts
// only unset.
func offered(options []string, value string) bool {
	if value == "" {
		return true
	}
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

// invalidate drops the cached copy after a successful mutation. Cache failure
// is logged, not surfaced: the store already holds the truth and the entry
// expires on its own.
func (s *Service) invalidate(owner Owner) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, owner); err != nil {
		s.log.Warn("cart cache invalidate failed", zap.String("owner", owner.Key()), zap.Error(err))
	}
}
