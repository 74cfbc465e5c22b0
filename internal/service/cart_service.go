package service

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// CartService операции над позициями корзины
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	tx       repository.TxManager
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, tx repository.TxManager) *CartService {
	return &CartService{carts: carts, products: products, tx: tx}
}

// resolveItems раскрывает ссылки на товары одним пакетным запросом.
// Удалённый товар даёт позицию с Product == nil, а не ошибку.
func resolveItems(ctx context.Context, products repository.ProductRepository, items []domain.LineItem) ([]domain.ResolvedLineItem, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	found, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, domain.Storage("resolve products", err)
	}
	out := make([]domain.ResolvedLineItem, 0, len(items))
	for _, it := range items {
		line := domain.ResolvedLineItem{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := found[it.ProductID]; ok {
			line.Product = &p
		}
		out = append(out, line)
	}
	return out, nil
}

func (s *CartService) Create(ctx context.Context, owner string) (*domain.CartView, error) {
	c := domain.Cart{Owner: owner}
	if err := s.carts.Create(ctx, &c); err != nil {
		return nil, domain.Storage("create cart", err)
	}
	return &domain.CartView{ID: c.ID, Owner: c.Owner, Products: []domain.ResolvedLineItem{}}, nil
}

// Get возвращает корзину без раскрытия товаров
func (s *CartService) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	c, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, domain.Storage("get cart", err)
	}
	return c, nil
}

// View возвращает корзину с раскрытыми товарами
func (s *CartService) View(ctx context.Context, cartID string) (*domain.CartView, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	lines, err := resolveItems(ctx, s.products, c.Items)
	if err != nil {
		return nil, err
	}
	return &domain.CartView{ID: c.ID, Owner: c.Owner, Products: lines}, nil
}

// mutate выполняет read-modify-write списка позиций в одной транзакции
func (s *CartService) mutate(ctx context.Context, cartID string, fn func(ctx context.Context, items []domain.LineItem) ([]domain.LineItem, error)) (*domain.CartView, error) {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		c, err := s.carts.GetByID(ctx, cartID)
		if err != nil {
			return domain.Storage("get cart", err)
		}
		items, err := fn(ctx, c.Items)
		if err != nil {
			return err
		}
		return domain.Storage("update cart", s.carts.ReplaceItems(ctx, cartID, items))
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx, cartID)
}

func (s *CartService) requireProduct(ctx context.Context, productID string) error {
	if productID == "" {
		return domain.InvalidArgument("product", "required")
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return domain.Storage("get product", err)
	}
	return nil
}

func indexOf(items []domain.LineItem, productID string) int {
	for i, it := range items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddLineItem увеличивает количество на 1 или добавляет позицию в конец
func (s *CartService) AddLineItem(ctx context.Context, cartID, productID string) (*domain.CartView, error) {
	return s.mutate(ctx, cartID, func(ctx context.Context, items []domain.LineItem) ([]domain.LineItem, error) {
		if err := s.requireProduct(ctx, productID); err != nil {
			return nil, err
		}
		if i := indexOf(items, productID); i >= 0 {
			items[i].Quantity++
			return items, nil
		}
		return append(items, domain.LineItem{ProductID: productID, Quantity: 1}), nil
	})
}

// RemoveLineItem удаляет позицию; отсутствие позиции не ошибка
func (s *CartService) RemoveLineItem(ctx context.Context, cartID, productID string) (*domain.CartView, error) {
	return s.mutate(ctx, cartID, func(ctx context.Context, items []domain.LineItem) ([]domain.LineItem, error) {
		if err := s.requireProduct(ctx, productID); err != nil {
			return nil, err
		}
		out := items[:0]
		for _, it := range items {
			if it.ProductID != productID {
				out = append(out, it)
			}
		}
		return out, nil
	})
}

func (s *CartService) SetQuantity(ctx context.Context, cartID, productID string, quantity int) (*domain.CartView, error) {
	if quantity <= 0 {
		return nil, domain.InvalidArgument("quantity", "must be a positive integer")
	}
	return s.mutate(ctx, cartID, func(ctx context.Context, items []domain.LineItem) ([]domain.LineItem, error) {
		if err := s.requireProduct(ctx, productID); err != nil {
			return nil, err
		}
		i := indexOf(items, productID)
		if i < 0 {
			return nil, domain.NotFound(domain.ResourceLineItem, productID)
		}
		items[i].Quantity = quantity
		return items, nil
	})
}

// ReplaceAllLineItems заменяет список целиком; при любой ошибке корзина не меняется
func (s *CartService) ReplaceAllLineItems(ctx context.Context, cartID string, items []domain.LineItem) (*domain.CartView, error) {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			return nil, domain.InvalidArgument("product", "required")
		}
		if it.Quantity <= 0 {
			return nil, domain.InvalidArgument("quantity", "must be a positive integer")
		}
		if _, dup := seen[it.ProductID]; dup {
			return nil, domain.InvalidArgument("products", "duplicate product "+it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}
	return s.mutate(ctx, cartID, func(ctx context.Context, _ []domain.LineItem) ([]domain.LineItem, error) {
		for _, it := range items {
			if err := s.requireProduct(ctx, it.ProductID); err != nil {
				return nil, err
			}
		}
		return append([]domain.LineItem{}, items...), nil
	})
}

func (s *CartService) Clear(ctx context.Context, cartID string) (*domain.CartView, error) {
	return s.mutate(ctx, cartID, func(context.Context, []domain.LineItem) ([]domain.LineItem, error) {
		return []domain.LineItem{}, nil
	})
}
