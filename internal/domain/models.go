package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus статус товара в каталоге
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product представляет товар каталога
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Code        string          `json:"code"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Status      ProductStatus   `json:"status"`
	Thumbnails  []string        `json:"thumbnails"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LineItem позиция корзины: ссылка на товар и количество
type LineItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// Cart корзина пользователя. Owner пуст только между созданием корзины и регистрацией владельца.
type Cart struct {
	ID        string     `json:"id"`
	Owner     string     `json:"owner"`
	Items     []LineItem `json:"products"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ResolvedLineItem позиция корзины с текущим снимком товара. Product == nil, если товар удалён.
type ResolvedLineItem struct {
	ProductID string   `json:"product_id"`
	Product   *Product `json:"product"`
	Quantity  int      `json:"quantity"`
}

// Bare возвращает позицию без раскрытого товара
func (r ResolvedLineItem) Bare() LineItem {
	return LineItem{ProductID: r.ProductID, Quantity: r.Quantity}
}

// CartView корзина с раскрытыми товарами
type CartView struct {
	ID       string             `json:"id"`
	Owner    string             `json:"owner"`
	Products []ResolvedLineItem `json:"products"`
}

// Ticket неизменяемая запись о покупке
type Ticket struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Amount    decimal.Decimal `json:"amount"`
	Purchaser string          `json:"purchaser"`
	CreatedAt time.Time       `json:"created_at"`
}

// PurchaseResult результат одной покупки, не сохраняется
type PurchaseResult struct {
	Ticket       *Ticket            `json:"ticket"`
	Purchased    []ResolvedLineItem `json:"purchased"`
	NotPurchased []ResolvedLineItem `json:"not_purchased"`
}

// Role роль пользователя
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User учётная запись
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Age          int       `json:"age"`
	PasswordHash string    `json:"-"`
	CartID       string    `json:"cart"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin сообщает, есть ли у пользователя права администратора
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
