package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain"
)

type productRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	Title       string `gorm:"not null"`
	Description string
	Code        string          `gorm:"uniqueIndex;not null"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock       int             `gorm:"not null"`
	Category    string          `gorm:"index"`
	Status      string          `gorm:"size:16"`
	Thumbnails  []string        `gorm:"serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productRow) TableName() string { return "products" }

type cartRow struct {
	ID        string        `gorm:"primaryKey;size:36"`
	Owner     string        `gorm:"index;size:36"`
	Items     []cartItemRow `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartRow) TableName() string { return "carts" }

// позиция хранит голую ссылку на товар: товар может быть удалён из каталога
type cartItemRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	CartID    string `gorm:"index;size:36;not null"`
	ProductID string `gorm:"size:36;not null"`
	Quantity  int    `gorm:"not null"`
	Position  int    `gorm:"not null"`
}

func (cartItemRow) TableName() string { return "cart_items" }

type ticketRow struct {
	ID        string          `gorm:"primaryKey;size:36"`
	Code      string          `gorm:"uniqueIndex;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Purchaser string          `gorm:"index;not null"`
	CreatedAt time.Time
}

func (ticketRow) TableName() string { return "tickets" }

type userRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	Age          int
	PasswordHash string `gorm:"not null"`
	CartID       string `gorm:"size:36"`
	Role         string `gorm:"size:16;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

// GormStore хранилище поверх gorm (postgres или sqlite)
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate создаёт или обновляет схему
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&productRow{},
		&cartRow{},
		&cartItemRow{},
		&ticketRow{},
		&userRow{},
	)
}

// Store собирает репозитории поверх одного соединения
func (s *GormStore) Store() *Store {
	return &Store{
		Products: &GormProducts{s},
		Carts:    &GormCarts{s},
		Tickets:  &GormTickets{s},
		Users:    &GormUsers{s},
		Tx:       s,
		Close: func() error {
			sqlDB, err := s.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

type gormTxKey struct{}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

func inGormTx(ctx context.Context) bool {
	_, ok := ctx.Value(gormTxKey{}).(*gorm.DB)
	return ok
}

var _ TxManager = (*GormStore)(nil)

func (s *GormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}

// translate переводит ошибки gorm в ошибки домена
func translate(op, resource, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Conflict(resource, "already exists")
	default:
		return domain.Storage(op, err)
	}
}

func toProductRow(p *domain.Product) productRow {
	return productRow{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Code:        p.Code,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Status:      string(p.Status),
		Thumbnails:  p.Thumbnails,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Code:        r.Code,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		Status:      domain.ProductStatus(r.Status),
		Thumbnails:  r.Thumbnails,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// GormProducts ProductRepository поверх gorm
type GormProducts struct{ s *GormStore }

var _ ProductRepository = (*GormProducts)(nil)

func (r *GormProducts) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := toProductRow(p)
	if err := r.s.conn(ctx).Create(&row).Error; err != nil {
		return translate("create product", domain.ResourceProduct, p.ID, err)
	}
	p.CreatedAt, p.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *GormProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var row productRow
	if err := r.s.conn(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate("get product", domain.ResourceProduct, id, err)
	}
	p := row.toDomain()
	return &p, nil
}

func (r *GormProducts) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []productRow
	if err := r.s.conn(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, domain.Storage("get products", err)
	}
	for _, row := range rows {
		out[row.ID] = row.toDomain()
	}
	return out, nil
}

func (r *GormProducts) Update(ctx context.Context, p *domain.Product) error {
	var cur productRow
	db := r.s.conn(ctx)
	if err := db.First(&cur, "id = ?", p.ID).Error; err != nil {
		return translate("update product", domain.ResourceProduct, p.ID, err)
	}
	row := toProductRow(p)
	row.CreatedAt = cur.CreatedAt
	if err := db.Save(&row).Error; err != nil {
		return translate("update product", domain.ResourceProduct, p.ID, err)
	}
	p.CreatedAt, p.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *GormProducts) Delete(ctx context.Context, id string) error {
	res := r.s.conn(ctx).Delete(&productRow{}, "id = ?", id)
	if res.Error != nil {
		return domain.Storage("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(domain.ResourceProduct, id)
	}
	return nil
}

func (r *GormProducts) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	// проверка и списание одним UPDATE: условие stock >= qty исполняет сама база
	res := r.s.conn(ctx).Model(&productRow{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, domain.Storage("decrement stock", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormProducts) All(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := r.s.conn(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, domain.Storage("list products", err)
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GormProducts) List(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	normalizePaging(&f)
	q := r.s.conn(ctx).Model(&productRow{})
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.Category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(f.Category))
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.AvailableOnly {
		q = q.Where("stock > 0")
	}
	// отдельная сессия, чтобы Count не испортил условия для выборки страницы
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, domain.Storage("count products", err)
	}
	page := q
	switch f.Sort {
	case SortPriceAsc:
		page = page.Order("price ASC")
	case SortPriceDesc:
		page = page.Order("price DESC")
	}
	var rows []productRow
	if err := page.Order("created_at, id").Offset((f.Page - 1) * f.Limit).Limit(f.Limit).Find(&rows).Error; err != nil {
		return nil, domain.Storage("list products", err)
	}
	docs := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.toDomain())
	}
	return newPage(docs, total, f), nil
}

// GormCarts CartRepository поверх gorm
type GormCarts struct{ s *GormStore }

var _ CartRepository = (*GormCarts)(nil)

func (r *GormCarts) Create(ctx context.Context, c *domain.Cart) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := cartRow{ID: c.ID, Owner: c.Owner}
	if err := r.s.conn(ctx).Omit("Items").Create(&row).Error; err != nil {
		return translate("create cart", domain.ResourceCart, c.ID, err)
	}
	c.CreatedAt, c.UpdatedAt = row.CreatedAt, row.UpdatedAt
	if c.Items == nil {
		c.Items = []domain.LineItem{}
	}
	if len(c.Items) > 0 {
		return r.ReplaceItems(ctx, c.ID, c.Items)
	}
	return nil
}

func (r *GormCarts) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	q := r.s.conn(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
	if inGormTx(ctx) {
		// внутри транзакции блокируем строку корзины до конца read-modify-write
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row cartRow
	if err := q.First(&row, "id = ?", id).Error; err != nil {
		return nil, translate("get cart", domain.ResourceCart, id, err)
	}
	c := &domain.Cart{
		ID:        row.ID,
		Owner:     row.Owner,
		Items:     make([]domain.LineItem, 0, len(row.Items)),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	for _, it := range row.Items {
		c.Items = append(c.Items, domain.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return c, nil
}

func (r *GormCarts) ReplaceItems(ctx context.Context, id string, items []domain.LineItem) error {
	err := r.s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&cartRow{}).Where("id = ?", id).Update("updated_at", time.Now().UTC())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound(domain.ResourceCart, id)
		}
		if err := tx.Where("cart_id = ?", id).Delete(&cartItemRow{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		rows := make([]cartItemRow, 0, len(items))
		for i, it := range items {
			rows = append(rows, cartItemRow{CartID: id, ProductID: it.ProductID, Quantity: it.Quantity, Position: i})
		}
		return tx.Create(&rows).Error
	})
	return translate("replace cart items", domain.ResourceCart, id, err)
}

func (r *GormCarts) SetOwner(ctx context.Context, id, owner string) error {
	res := r.s.conn(ctx).Model(&cartRow{}).Where("id = ?", id).Update("owner", owner)
	if res.Error != nil {
		return domain.Storage("set cart owner", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(domain.ResourceCart, id)
	}
	return nil
}

// GormTickets TicketRepository поверх gorm
type GormTickets struct{ s *GormStore }

var _ TicketRepository = (*GormTickets)(nil)

func (r ticketRow) toDomain() domain.Ticket {
	return domain.Ticket{ID: r.ID, Code: r.Code, Amount: r.Amount, Purchaser: r.Purchaser, CreatedAt: r.CreatedAt}
}

func (r *GormTickets) Create(ctx context.Context, t *domain.Ticket) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	row := ticketRow{ID: t.ID, Code: t.Code, Amount: t.Amount, Purchaser: t.Purchaser, CreatedAt: t.CreatedAt}
	if err := r.s.conn(ctx).Create(&row).Error; err != nil {
		return translate("create ticket", domain.ResourceTicket, t.Code, err)
	}
	t.CreatedAt = row.CreatedAt
	return nil
}

func (r *GormTickets) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	var row ticketRow
	if err := r.s.conn(ctx).First(&row, "code = ?", code).Error; err != nil {
		return nil, translate("get ticket", domain.ResourceTicket, code, err)
	}
	t := row.toDomain()
	return &t, nil
}

func (r *GormTickets) ListByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error) {
	return r.find(ctx, r.s.conn(ctx).Where("purchaser = ?", purchaser))
}

func (r *GormTickets) All(ctx context.Context) ([]domain.Ticket, error) {
	return r.find(ctx, r.s.conn(ctx))
}

func (r *GormTickets) find(_ context.Context, q *gorm.DB) ([]domain.Ticket, error) {
	var rows []ticketRow
	if err := q.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, domain.Storage("list tickets", err)
	}
	out := make([]domain.Ticket, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// GormUsers UserRepository поверх gorm
type GormUsers struct{ s *GormStore }

var _ UserRepository = (*GormUsers)(nil)

func toUserRow(u *domain.User) userRow {
	return userRow{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        strings.ToLower(u.Email),
		Age:          u.Age,
		PasswordHash: u.PasswordHash,
		CartID:       u.CartID,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Age:          r.Age,
		PasswordHash: r.PasswordHash,
		CartID:       r.CartID,
		Role:         domain.Role(r.Role),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r *GormUsers) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := toUserRow(u)
	if err := r.s.conn(ctx).Create(&row).Error; err != nil {
		return translate("create user", domain.ResourceUser, u.ID, err)
	}
	u.CreatedAt, u.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *GormUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var row userRow
	if err := r.s.conn(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate("get user", domain.ResourceUser, id, err)
	}
	u := row.toDomain()
	return &u, nil
}

func (r *GormUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	if err := r.s.conn(ctx).First(&row, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, translate("get user", domain.ResourceUser, email, err)
	}
	u := row.toDomain()
	return &u, nil
}

func (r *GormUsers) Update(ctx context.Context, u *domain.User) error {
	var cur userRow
	db := r.s.conn(ctx)
	if err := db.First(&cur, "id = ?", u.ID).Error; err != nil {
		return translate("update user", domain.ResourceUser, u.ID, err)
	}
	row := toUserRow(u)
	row.CreatedAt = cur.CreatedAt
	if err := db.Save(&row).Error; err != nil {
		return translate("update user", domain.ResourceUser, u.ID, err)
	}
	u.CreatedAt, u.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *GormUsers) Delete(ctx context.Context, id string) error {
	res := r.s.conn(ctx).Delete(&userRow{}, "id = ?", id)
	if res.Error != nil {
		return domain.Storage("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(domain.ResourceUser, id)
	}
	return nil
}

func (r *GormUsers) List(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := r.s.conn(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, domain.Storage("list users", err)
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
