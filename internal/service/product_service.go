package service

import (
	"context"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// ProductService инкапсулирует бизнес-логику вокруг каталога
type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func validateProduct(p *domain.Product) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Code = strings.TrimSpace(p.Code)
	switch {
	case p.Title == "":
		return domain.InvalidArgument("title", "required")
	case p.Code == "":
		return domain.InvalidArgument("code", "required")
	case p.Price.IsNegative():
		return domain.InvalidArgument("price", "must be >= 0")
	case p.Stock < 0:
		return domain.InvalidArgument("stock", "must be >= 0")
	}
	switch p.Status {
	case "":
		p.Status = domain.ProductStatusActive
	case domain.ProductStatusActive, domain.ProductStatusInactive:
	default:
		return domain.InvalidArgument("status", "unknown value "+string(p.Status))
	}
	if p.Thumbnails == nil {
		p.Thumbnails = []string{}
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	cp := p
	cp.ID = ""
	if err := validateProduct(&cp); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, domain.Storage("create product", err)
	}
	return &cp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.InvalidArgument("id", "required")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("get product", err)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		return nil, domain.InvalidArgument("id", "required")
	}
	cp := p
	if err := validateProduct(&cp); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &cp); err != nil {
		return nil, domain.Storage("update product", err)
	}
	return &cp, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.InvalidArgument("id", "required")
	}
	return domain.Storage("delete product", s.repo.Delete(ctx, id))
}

func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) (*repository.ProductPage, error) {
	if f.Limit < 0 || f.Page < 0 {
		return nil, domain.InvalidArgument("paging", "limit and page must be positive")
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, domain.InvalidArgument("price range", "min_price greater than max_price")
	}
	page, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, domain.Storage("list products", err)
	}
	return page, nil
}
