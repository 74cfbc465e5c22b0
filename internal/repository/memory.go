package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

// MemoryStore объединённое in-memory хранилище
type MemoryStore struct {
	mu           sync.RWMutex
	seq          int64
	productSeq   map[string]int64
	productsByID map[string]domain.Product
	cartsByID    map[string]domain.Cart
	tickets      []domain.Ticket
	usersByID    map[string]domain.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		productSeq:   make(map[string]int64),
		productsByID: make(map[string]domain.Product),
		cartsByID:    make(map[string]domain.Cart),
		usersByID:    make(map[string]domain.User),
	}
}

// NewMemory собирает Store поверх одного MemoryStore
func NewMemory() *Store {
	m := NewMemoryStore()
	return &Store{
		Products: m,
		Carts:    NewMemoryCarts(m),
		Tickets:  NewMemoryTickets(m),
		Users:    NewMemoryUsers(m),
		Tx:       NewMemoryTx(m),
		Close:    func() error { return nil },
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ ProductRepository = (*MemoryStore)(nil)

func copyProduct(p domain.Product) domain.Product {
	cp := p
	if p.Thumbnails != nil {
		cp.Thumbnails = append([]string(nil), p.Thumbnails...)
	}
	return cp
}

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	for _, other := range m.productsByID {
		if other.Code == p.Code {
			return domain.Conflict(domain.ResourceProduct, "code already exists")
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m.seq++
	m.productSeq[p.ID] = m.seq
	m.productsByID[p.ID] = copyProduct(*p)
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return nil, domain.NotFound(domain.ResourceProduct, id)
	}
	cp := copyProduct(p)
	return &cp, nil
}

func (m *MemoryStore) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.productsByID[id]; ok {
			out[id] = copyProduct(p)
		}
	}
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	cur, ok := m.productsByID[p.ID]
	if !ok {
		return domain.NotFound(domain.ResourceProduct, p.ID)
	}
	for id, other := range m.productsByID {
		if id != p.ID && other.Code == p.Code {
			return domain.Conflict(domain.ResourceProduct, "code already exists")
		}
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.productsByID[p.ID] = copyProduct(*p)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[id]; !ok {
		return domain.NotFound(domain.ResourceProduct, id)
	}
	delete(m.productsByID, id)
	delete(m.productSeq, id)
	return nil
}

func (m *MemoryStore) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p, ok := m.productsByID[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now().UTC()
	m.productsByID[id] = p
	return true, nil
}

// ordered возвращает товары в порядке создания; вызывать под блокировкой
func (m *MemoryStore) ordered() []domain.Product {
	out := make([]domain.Product, 0, len(m.productsByID))
	for _, p := range m.productsByID {
		out = append(out, copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return m.productSeq[out[i].ID] < m.productSeq[out[j].ID]
	})
	return out
}

func (m *MemoryStore) All(ctx context.Context) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	return m.ordered(), nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	normalizePaging(&f)
	m.rlock(ctx)
	defer m.runlock(ctx)
	matched := make([]domain.Product, 0)
	for _, p := range m.ordered() {
		if !containsIgnoreCase(p.Title, f.Query) && !containsIgnoreCase(p.Description, f.Query) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.AvailableOnly && p.Stock <= 0 {
			continue
		}
		matched = append(matched, p)
	}
	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price.LessThan(matched[j].Price) })
	case SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price.GreaterThan(matched[j].Price) })
	}
	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return newPage(matched[start:end], total, f), nil
}

// CartRepository implementation on wrapper type
type MemoryCarts struct{ store *MemoryStore }

func NewMemoryCarts(store *MemoryStore) *MemoryCarts { return &MemoryCarts{store: store} }

var _ CartRepository = (*MemoryCarts)(nil)

func copyCart(c domain.Cart) domain.Cart {
	cp := c
	cp.Items = append([]domain.LineItem{}, c.Items...)
	return cp
}

func (mc *MemoryCarts) Create(ctx context.Context, c *domain.Cart) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Items == nil {
		c.Items = []domain.LineItem{}
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	mc.store.cartsByID[c.ID] = copyCart(*c)
	return nil
}

func (mc *MemoryCarts) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	c, ok := mc.store.cartsByID[id]
	if !ok {
		return nil, domain.NotFound(domain.ResourceCart, id)
	}
	cp := copyCart(c)
	return &cp, nil
}

func (mc *MemoryCarts) ReplaceItems(ctx context.Context, id string, items []domain.LineItem) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	c, ok := mc.store.cartsByID[id]
	if !ok {
		return domain.NotFound(domain.ResourceCart, id)
	}
	c.Items = append([]domain.LineItem{}, items...)
	c.UpdatedAt = time.Now().UTC()
	mc.store.cartsByID[id] = c
	return nil
}

func (mc *MemoryCarts) SetOwner(ctx context.Context, id, owner string) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	c, ok := mc.store.cartsByID[id]
	if !ok {
		return domain.NotFound(domain.ResourceCart, id)
	}
	c.Owner = owner
	c.UpdatedAt = time.Now().UTC()
	mc.store.cartsByID[id] = c
	return nil
}

// TicketRepository implementation
type MemoryTickets struct{ store *MemoryStore }

func NewMemoryTickets(store *MemoryStore) *MemoryTickets { return &MemoryTickets{store: store} }

var _ TicketRepository = (*MemoryTickets)(nil)

func (mt *MemoryTickets) Create(ctx context.Context, t *domain.Ticket) error {
	mt.store.wlock(ctx)
	defer mt.store.wunlock(ctx)
	for _, other := range mt.store.tickets {
		if other.Code == t.Code {
			return domain.Conflict(domain.ResourceTicket, "code already exists")
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	mt.store.tickets = append(mt.store.tickets, *t)
	return nil
}

func (mt *MemoryTickets) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	for _, t := range mt.store.tickets {
		if t.Code == code {
			cp := t
			return &cp, nil
		}
	}
	return nil, domain.NotFound(domain.ResourceTicket, code)
}

func (mt *MemoryTickets) ListByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	out := make([]domain.Ticket, 0)
	for _, t := range mt.store.tickets {
		if t.Purchaser == purchaser {
			out = append(out, t)
		}
	}
	return out, nil
}

func (mt *MemoryTickets) All(ctx context.Context) ([]domain.Ticket, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	return append([]domain.Ticket{}, mt.store.tickets...), nil
}

// UserRepository implementation
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (mu *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	for _, other := range mu.store.usersByID {
		if strings.EqualFold(other.Email, u.Email) {
			return domain.Conflict(domain.ResourceUser, "user already exists")
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	mu.store.usersByID[u.ID] = *u
	return nil
}

func (mu *MemoryUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	u, ok := mu.store.usersByID[id]
	if !ok {
		return nil, domain.NotFound(domain.ResourceUser, id)
	}
	return &u, nil
}

func (mu *MemoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	for _, u := range mu.store.usersByID {
		if strings.EqualFold(u.Email, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.NotFound(domain.ResourceUser, email)
}

func (mu *MemoryUsers) Update(ctx context.Context, u *domain.User) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	cur, ok := mu.store.usersByID[u.ID]
	if !ok {
		return domain.NotFound(domain.ResourceUser, u.ID)
	}
	for id, other := range mu.store.usersByID {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return domain.Conflict(domain.ResourceUser, "email already in use")
		}
	}
	u.CreatedAt = cur.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	mu.store.usersByID[u.ID] = *u
	return nil
}

func (mu *MemoryUsers) Delete(ctx context.Context, id string) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	if _, ok := mu.store.usersByID[id]; !ok {
		return domain.NotFound(domain.ResourceUser, id)
	}
	delete(mu.store.usersByID, id)
	return nil
}

func (mu *MemoryUsers) List(ctx context.Context) ([]domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	out := make([]domain.User, 0, len(mu.store.usersByID))
	for _, u := range mu.store.usersByID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// вложенная транзакция выполняется под уже взятой блокировкой
	if isTx(ctx) {
		return fn(ctx)
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
