package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// SortOrder порядок сортировки каталога по цене
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "asc"
	SortPriceDesc SortOrder = "desc"
)

// ProductFilter параметры фильтрации списка товаров
type ProductFilter struct {
	Query         string
	Category      string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	AvailableOnly bool
	Sort          SortOrder
	Limit         int
	Page          int
}

// ProductPage страница каталога
type ProductPage struct {
	Docs       []domain.Product `json:"docs"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	HasPrev    bool             `json:"has_prev"`
	HasNext    bool             `json:"has_next"`
}

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetByIDs возвращает найденные товары по id; отсутствующие просто не попадают в map
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ProductFilter) (*ProductPage, error)
	All(ctx context.Context) ([]domain.Product, error)
	// DecrementStock атомарно уменьшает остаток на qty, только если stock >= qty.
	// Возвращает false, если условие не выполнено или товара нет.
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
}

// CartRepository интерфейс репозитория корзин
type CartRepository interface {
	Create(ctx context.Context, c *domain.Cart) error
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	ReplaceItems(ctx context.Context, id string, items []domain.LineItem) error
	SetOwner(ctx context.Context, id, owner string) error
}

// TicketRepository append-only хранилище билетов. Повтор кода — domain.KindConflict.
type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	ListByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error)
	All(ctx context.Context) ([]domain.Ticket, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.User, error)
}

// TxManager абстракция транзакции. Для in-memory — глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store набор репозиториев одного хранилища
type Store struct {
	Products ProductRepository
	Carts    CartRepository
	Tickets  TicketRepository
	Users    UserRepository
	Tx       TxManager
	Close    func() error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func normalizePaging(f *ProductFilter) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Page <= 0 {
		f.Page = 1
	}
}

func newPage(docs []domain.Product, total int64, f ProductFilter) *ProductPage {
	pages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	if pages == 0 {
		pages = 1
	}
	return &ProductPage{
		Docs:       docs,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: pages,
		HasPrev:    f.Page > 1,
		HasNext:    f.Page < pages,
	}
}
