package catalog

import (
	"context"
	"errors"
)

var ErrInvalidProduct = errors.New("product requires a name and a non-negative price")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Create(ctx context.Context, product *Product) (*Product, error) {
	if product.Name == "" || product.Price < 0 {
		return nil, ErrInvalidProduct
	}
	if !product.IsActive {
		product.IsActive = true
	}

	if err := s.repo.Insert(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateInput carries the admin's partial edit; nil fields keep the stored
// value.
type UpdateInput struct {
	Name         *string
	Description  *string
	Price        *float64
	CountInStock *int
	SKU          *string
	Category     *string
	Brand        *string
	Sizes        []string
	Colors       []string
	Collections  *string
	Material     *string
	Gender       *string
	Images       []Image
	IsActive     *bool
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, ErrInvalidProduct
		}
		product.Price = *in.Price
	}
	if in.CountInStock != nil {
		product.CountInStock = *in.CountInStock
	}
	if in.SKU != nil {
		product.SKU = *in.SKU
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Brand != nil {
		product.Brand = *in.Brand
	}
	if in.Sizes != nil {
		product.Sizes = in.Sizes
	}
	if in.Colors != nil {
		product.Colors = in.Colors
	}
	if in.Collections != nil {
		product.Collections = *in.Collections
	}
	if in.Material != nil {
		product.Material = *in.Material
	}
	if in.Gender != nil {
		product.Gender = *in.Gender
	}
	if in.Images != nil {
		product.Images = in.Images
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
