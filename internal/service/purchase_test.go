package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/repository"
)

func seedProduct(t *testing.T, store *repository.Store, code string, price int64, stock int) domain.Product {
	t.Helper()
	p := domain.Product{Title: code, Code: code, Price: decimal.NewFromInt(price), Stock: stock}
	require.NoError(t, store.Products.Create(context.Background(), &p))
	return p
}

func seedCart(t *testing.T, store *repository.Store, items ...domain.LineItem) string {
	t.Helper()
	c := domain.Cart{Owner: "owner", Items: items}
	require.NoError(t, store.Carts.Create(context.Background(), &c))
	return c.ID
}

func stockOf(t *testing.T, store *repository.Store, id string) int {
	t.Helper()
	p, err := store.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func cartItems(t *testing.T, store *repository.Store, id string) []domain.LineItem {
	t.Helper()
	c, err := store.Carts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c.Items
}

func newEngine(store *repository.Store, opts ...PurchaseOption) *PurchaseEngine {
	return NewPurchaseEngine(store.Carts, store.Products, store.Tickets, append([]PurchaseOption{WithTxManager(store.Tx)}, opts...)...)
}

func TestPurchase_PartialFulfilment(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	p2 := seedProduct(t, store, "P2", 20, 1)
	cartID := seedCart(t, store,
		domain.LineItem{ProductID: p1.ID, Quantity: 2},
		domain.LineItem{ProductID: p2.ID, Quantity: 3},
	)

	res, err := newEngine(store).Purchase(ctx, cartID, "buyer@example.com")
	require.NoError(t, err)

	require.NotNil(t, res.Ticket)
	assert.True(t, res.Ticket.Amount.Equal(decimal.NewFromInt(20)), "amount %s", res.Ticket.Amount)
	assert.Equal(t, "buyer@example.com", res.Ticket.Purchaser)
	require.Len(t, res.Purchased, 1)
	assert.Equal(t, p1.ID, res.Purchased[0].ProductID)
	require.Len(t, res.NotPurchased, 1)
	assert.Equal(t, p2.ID, res.NotPurchased[0].ProductID)

	assert.Equal(t, 3, stockOf(t, store, p1.ID))
	assert.Equal(t, 1, stockOf(t, store, p2.ID))
	assert.Equal(t, []domain.LineItem{{ProductID: p2.ID, Quantity: 3}}, cartItems(t, store, cartID))

	stored, err := store.Tickets.GetByCode(ctx, res.Ticket.Code)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(res.Ticket.Amount))
}

func TestPurchase_FullFulfilmentEmptiesCart(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 7, 2)
	p2 := seedProduct(t, store, "P2", 3, 4)
	cartID := seedCart(t, store,
		domain.LineItem{ProductID: p1.ID, Quantity: 2},
		domain.LineItem{ProductID: p2.ID, Quantity: 4},
	)

	res, err := newEngine(store).Purchase(ctx, cartID, "buyer@example.com")
	require.NoError(t, err)
	assert.True(t, res.Ticket.Amount.Equal(decimal.NewFromInt(26)))
	assert.Empty(t, res.NotPurchased)
	assert.Empty(t, cartItems(t, store, cartID))
	assert.Equal(t, 0, stockOf(t, store, p1.ID))
	assert.Equal(t, 0, stockOf(t, store, p2.ID))
}

func TestPurchase_NothingAvailable(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 0)
	p2 := seedProduct(t, store, "P2", 20, 1)
	items := []domain.LineItem{
		{ProductID: p1.ID, Quantity: 1},
		{ProductID: p2.ID, Quantity: 2},
	}
	cartID := seedCart(t, store, items...)

	res, err := newEngine(store).Purchase(ctx, cartID, "buyer@example.com")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	deferred := domain.DeferredItems(err)
	require.Len(t, deferred, 2)
	assert.Equal(t, p1.ID, deferred[0].ProductID)
	assert.Equal(t, p2.ID, deferred[1].ProductID)

	assert.Equal(t, items, cartItems(t, store, cartID))
	assert.Equal(t, 1, stockOf(t, store, p2.ID))
	all, _ := store.Tickets.All(ctx)
	assert.Empty(t, all)
}

func TestPurchase_EmptyCart(t *testing.T) {
	store := repository.NewMemory()
	cartID := seedCart(t, store)

	_, err := newEngine(store).Purchase(context.Background(), cartID, "buyer@example.com")
	assert.Equal(t, domain.KindInsufficientStock, domain.KindOf(err))
	assert.Empty(t, domain.DeferredItems(err))
}

func TestPurchase_DeletedProductStaysInCart(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	p2 := seedProduct(t, store, "P2", 20, 5)
	cartID := seedCart(t, store,
		domain.LineItem{ProductID: p1.ID, Quantity: 1},
		domain.LineItem{ProductID: p2.ID, Quantity: 1},
	)
	require.NoError(t, store.Products.Delete(ctx, p2.ID))

	res, err := newEngine(store).Purchase(ctx, cartID, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, res.NotPurchased, 1)
	assert.Equal(t, p2.ID, res.NotPurchased[0].ProductID)
	assert.Nil(t, res.NotPurchased[0].Product)
	assert.Equal(t, []domain.LineItem{{ProductID: p2.ID, Quantity: 1}}, cartItems(t, store, cartID))
}

func TestPurchase_CartNotFound(t *testing.T) {
	store := repository.NewMemory()
	_, err := newEngine(store).Purchase(context.Background(), "missing", "buyer@example.com")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestPurchase_ConcurrentLastUnit(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p := seedProduct(t, store, "LAST", 10, 1)
	a := seedCart(t, store, domain.LineItem{ProductID: p.ID, Quantity: 1})
	b := seedCart(t, store, domain.LineItem{ProductID: p.ID, Quantity: 1})
	engine := newEngine(store)

	var (
		mu       sync.Mutex
		success  int
		deferred int
	)
	var g errgroup.Group
	for _, id := range []string{a, b} {
		id := id
		g.Go(func() error {
			_, err := engine.Purchase(ctx, id, "buyer@example.com")
			mu.Lock()
			defer mu.Unlock()
			switch domain.KindOf(err) {
			case domain.KindUnknown:
				if err != nil {
					return err
				}
				success++
			case domain.KindInsufficientStock:
				deferred++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, success)
	assert.Equal(t, 1, deferred)
	assert.Equal(t, 0, stockOf(t, store, p.ID))
	all, _ := store.Tickets.All(ctx)
	assert.Len(t, all, 1)
}

func TestPurchase_ConcurrentStockNeverOversold(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	const initial = 25
	p := seedProduct(t, store, "HOT", 2, initial)
	engine := newEngine(store)

	carts := make([]string, 40)
	for i := range carts {
		carts[i] = seedCart(t, store, domain.LineItem{ProductID: p.ID, Quantity: i%3 + 1})
	}

	var (
		mu   sync.Mutex
		sold int
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range carts {
		id := id
		g.Go(func() error {
			res, err := engine.Purchase(gctx, id, "buyer@example.com")
			if domain.KindOf(err) == domain.KindInsufficientStock {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			for _, l := range res.Purchased {
				sold += l.Quantity
			}
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	left := stockOf(t, store, p.ID)
	assert.GreaterOrEqual(t, left, 0)
	assert.Equal(t, initial, sold+left)

	tickets, _ := store.Tickets.All(ctx)
	total := decimal.Zero
	for _, tk := range tickets {
		total = total.Add(tk.Amount)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(int64(sold*2))), "ticket total %s for %d units", total, sold)
}

// racingProducts имитирует покупателя, выкупившего остаток между снимком и списанием
type racingProducts struct {
	repository.ProductRepository
	lose map[string]bool
	fail error
}

func (r *racingProducts) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	if r.fail != nil {
		return false, r.fail
	}
	if r.lose[id] {
		return false, nil
	}
	return r.ProductRepository.DecrementStock(ctx, id, qty)
}

func TestPurchase_LineLostAtDecrementIsDeferred(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	p2 := seedProduct(t, store, "P2", 20, 5)
	cartID := seedCart(t, store,
		domain.LineItem{ProductID: p1.ID, Quantity: 1},
		domain.LineItem{ProductID: p2.ID, Quantity: 1},
	)
	products := &racingProducts{ProductRepository: store.Products, lose: map[string]bool{p1.ID: true}}
	m := metrics.New()
	engine := NewPurchaseEngine(store.Carts, products, store.Tickets, WithMetrics(m))

	res, err := engine.Purchase(ctx, cartID, "buyer@example.com")
	require.NoError(t, err)
	assert.True(t, res.Ticket.Amount.Equal(decimal.NewFromInt(20)))
	require.Len(t, res.NotPurchased, 1)
	assert.Equal(t, p1.ID, res.NotPurchased[0].ProductID)
	assert.Equal(t, []domain.LineItem{{ProductID: p1.ID, Quantity: 1}}, cartItems(t, store, cartID))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LineItems.WithLabelValues("retro_deferred")))
}

func TestPurchase_AllLinesLostAtDecrement(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	cartID := seedCart(t, store, domain.LineItem{ProductID: p1.ID, Quantity: 1})
	products := &racingProducts{ProductRepository: store.Products, lose: map[string]bool{p1.ID: true}}
	engine := NewPurchaseEngine(store.Carts, products, store.Tickets)

	_, err := engine.Purchase(ctx, cartID, "buyer@example.com")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	require.Len(t, domain.DeferredItems(err), 1)
	all, _ := store.Tickets.All(ctx)
	assert.Empty(t, all)
}

func TestPurchase_DecrementStorageError(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	items := []domain.LineItem{{ProductID: p1.ID, Quantity: 1}}
	cartID := seedCart(t, store, items...)
	boom := errors.New("connection reset")
	products := &racingProducts{ProductRepository: store.Products, fail: boom}
	engine := NewPurchaseEngine(store.Carts, products, store.Tickets)

	_, err := engine.Purchase(ctx, cartID, "buyer@example.com")
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, items, cartItems(t, store, cartID))
}

type failingCarts struct {
	repository.CartRepository
	err error
}

func (f *failingCarts) ReplaceItems(context.Context, string, []domain.LineItem) error {
	return f.err
}

func TestPurchase_CartWriteFailureKeepsTicket(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	cartID := seedCart(t, store, domain.LineItem{ProductID: p1.ID, Quantity: 2})
	carts := &failingCarts{CartRepository: store.Carts, err: errors.New("disk full")}
	engine := NewPurchaseEngine(carts, store.Products, store.Tickets)

	_, err := engine.Purchase(ctx, cartID, "buyer@example.com")
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))

	tickets, _ := store.Tickets.All(ctx)
	require.Len(t, tickets, 1, "ticket is written before the cart")
	assert.Equal(t, 3, stockOf(t, store, p1.ID))
}

func TestPurchase_CartNotFoundOnWriteIsStorageError(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	cartID := seedCart(t, store, domain.LineItem{ProductID: p1.ID, Quantity: 1})
	carts := &failingCarts{CartRepository: store.Carts, err: domain.NotFound(domain.ResourceCart, cartID)}
	engine := NewPurchaseEngine(carts, store.Products, store.Tickets)

	_, err := engine.Purchase(ctx, cartID, "buyer@example.com")
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))
}

func TestPurchase_RetriesTicketCodeCollision(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	cartID := seedCart(t, store, domain.LineItem{ProductID: p1.ID, Quantity: 1})
	require.NoError(t, store.Tickets.Create(ctx, &domain.Ticket{Code: "T-1-1", Purchaser: "x"}))

	codes := []string{"T-1-1", "T-1-2"}
	next := 0
	gen := func() string {
		c := codes[next]
		next++
		return c
	}
	res, err := newEngine(store, WithCodeGenerator(gen)).Purchase(ctx, cartID, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "T-1-2", res.Ticket.Code)
}

func TestPurchase_TicketCodeAttemptsExhausted(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	cartID := seedCart(t, store, domain.LineItem{ProductID: p1.ID, Quantity: 1})
	require.NoError(t, store.Tickets.Create(ctx, &domain.Ticket{Code: "T-1-1", Purchaser: "x"}))

	calls := 0
	gen := func() string {
		calls++
		return "T-1-1"
	}
	_, err := newEngine(store, WithCodeGenerator(gen), WithCodeAttempts(2)).Purchase(ctx, cartID, "buyer@example.com")
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))
	assert.Equal(t, 2, calls)
}

type capturePublisher struct {
	got    []events.TicketIssued
	err    error
	ctxErr error
}

func (c *capturePublisher) PublishTicketIssued(ctx context.Context, ev events.TicketIssued) error {
	c.got = append(c.got, ev)
	c.ctxErr = ctx.Err()
	return c.err
}

func (c *capturePublisher) Close() error { return nil }

func TestPurchase_PublishesTicketIssued(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	p2 := seedProduct(t, store, "P2", 10, 0)
	cartID := seedCart(t, store,
		domain.LineItem{ProductID: p1.ID, Quantity: 1},
		domain.LineItem{ProductID: p2.ID, Quantity: 1},
	)
	pub := &capturePublisher{}

	res, err := newEngine(store, WithPublisher(pub)).Purchase(ctx, cartID, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, pub.got, 1)
	ev := pub.got[0]
	assert.Equal(t, events.TypeTicketIssued, ev.Type)
	assert.Equal(t, cartID, ev.CartID)
	assert.Equal(t, res.Ticket.Code, ev.TicketCode)
	assert.Equal(t, []domain.LineItem{{ProductID: p1.ID, Quantity: 1}}, ev.Purchased)
	assert.Equal(t, []domain.LineItem{{ProductID: p2.ID, Quantity: 1}}, ev.NotPurchased)
	assert.NotEmpty(t, ev.EventID)
}

func TestPurchase_PublishFailureDoesNotFailPurchase(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	cartID := seedCart(t, store, domain.LineItem{ProductID: p1.ID, Quantity: 1})
	m := metrics.New()
	pub := &capturePublisher{err: errors.New("broker down")}

	res, err := newEngine(store, WithPublisher(pub), WithMetrics(m)).Purchase(ctx, cartID, "buyer@example.com")
	require.NoError(t, err)
	require.NotNil(t, res.Ticket)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Purchases.WithLabelValues("success")))
}

func TestTicketCode_Format(t *testing.T) {
	assert.Equal(t, "T-1700000000000-42", TicketCode(time.UnixMilli(1700000000000), 42))

	re := regexp.MustCompile(`^T-\d+-\d{1,3}$`)
	for i := 0; i < 20; i++ {
		code := defaultTicketCode()
		assert.Regexp(t, re, code, fmt.Sprintf("attempt %d", i))
	}
}

func TestPurchase_PublishOutlivesRequestContext(t *testing.T) {
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	cartID := seedCart(t, store, domain.LineItem{ProductID: p1.ID, Quantity: 1})
	pub := &capturePublisher{}

	// клиент отключился: запрос отменён, покупка в памяти всё равно проходит
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newEngine(store, WithPublisher(pub)).Purchase(ctx, cartID, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, pub.got, 1)
	assert.NoError(t, pub.ctxErr)
}

// interleavedCarts применяет чужую правку корзины сразу после первого чтения
type interleavedCarts struct {
	repository.CartRepository
	once  sync.Once
	apply func()
}

func (c *interleavedCarts) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	cart, err := c.CartRepository.GetByID(ctx, id)
	c.once.Do(c.apply)
	return cart, err
}

func TestPurchase_KeepsConcurrentCartEdits(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	p1 := seedProduct(t, store, "P1", 10, 5)
	p2 := seedProduct(t, store, "P2", 20, 5)
	cartID := seedCart(t, store, domain.LineItem{ProductID: p1.ID, Quantity: 2})

	cartSvc := NewCartService(store.Carts, store.Products, store.Tx)
	carts := &interleavedCarts{CartRepository: store.Carts, apply: func() {
		_, err := cartSvc.AddLineItem(ctx, cartID, p1.ID)
		require.NoError(t, err)
		_, err = cartSvc.AddLineItem(ctx, cartID, p2.ID)
		require.NoError(t, err)
	}}
	engine := NewPurchaseEngine(carts, store.Products, store.Tickets, WithTxManager(store.Tx))

	res, err := engine.Purchase(ctx, cartID, "buyer@example.com")
	require.NoError(t, err)
	assert.True(t, res.Ticket.Amount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 3, stockOf(t, store, p1.ID))
	assert.Equal(t, []domain.LineItem{
		{ProductID: p1.ID, Quantity: 1},
		{ProductID: p2.ID, Quantity: 1},
	}, cartItems(t, store, cartID))
}

func TestSettle(t *testing.T) {
	purchased := []domain.ResolvedLineItem{{ProductID: "a", Quantity: 2}}
	got := settle([]domain.LineItem{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 1},
	}, purchased)
	assert.Equal(t, []domain.LineItem{{ProductID: "b", Quantity: 1}}, got)
	assert.Empty(t, settle(nil, purchased))
}
