package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/repository"
)

var errCodeCollision = errors.New("ticket code collision")

// PurchaseEngine оформляет покупку содержимого корзины
type PurchaseEngine struct {
	carts     repository.CartRepository
	products  repository.ProductRepository
	tickets   repository.TicketRepository
	codes     CodeGenerator
	attempts  int
	tx        repository.TxManager
	publisher events.Publisher
	pubWait   time.Duration
	metrics   *metrics.Metrics
	log       *slog.Logger
	now       func() time.Time
}

type PurchaseOption func(*PurchaseEngine)

func WithCodeGenerator(g CodeGenerator) PurchaseOption {
	return func(e *PurchaseEngine) { e.codes = g }
}

// WithCodeAttempts сколько раз перегенерировать код при коллизии
func WithCodeAttempts(n int) PurchaseOption {
	return func(e *PurchaseEngine) {
		if n > 0 {
			e.attempts = n
		}
	}
}

func WithPublisher(p events.Publisher) PurchaseOption {
	return func(e *PurchaseEngine) { e.publisher = p }
}

// WithPublishTimeout ограничивает отправку события после покупки
func WithPublishTimeout(d time.Duration) PurchaseOption {
	return func(e *PurchaseEngine) {
		if d > 0 {
			e.pubWait = d
		}
	}
}

// WithTxManager транзакция для итоговой записи корзины
func WithTxManager(tx repository.TxManager) PurchaseOption {
	return func(e *PurchaseEngine) { e.tx = tx }
}

func WithMetrics(m *metrics.Metrics) PurchaseOption {
	return func(e *PurchaseEngine) { e.metrics = m }
}

func WithLogger(l *slog.Logger) PurchaseOption {
	return func(e *PurchaseEngine) { e.log = l }
}

func NewPurchaseEngine(carts repository.CartRepository, products repository.ProductRepository, tickets repository.TicketRepository, opts ...PurchaseOption) *PurchaseEngine {
	e := &PurchaseEngine{
		carts:     carts,
		products:  products,
		tickets:   tickets,
		codes:     defaultTicketCode,
		attempts:  3,
		tx:        noTx{},
		publisher: events.Nop{},
		pubWait:   5 * time.Second,
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type noTx struct{}

func (noTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Purchase покупает всё, что есть в наличии, и оставляет в корзине остальное.
// Право покупателя на корзину проверяет вызывающая сторона.
func (e *PurchaseEngine) Purchase(ctx context.Context, cartID, purchaser string) (*domain.PurchaseResult, error) {
	res, err := e.purchase(ctx, cartID, purchaser)
	if e.metrics != nil {
		outcome := "success"
		switch domain.KindOf(err) {
		case domain.KindUnknown:
			if err != nil {
				outcome = "error"
			}
		case domain.KindNotFound:
			outcome = "not_found"
		case domain.KindInsufficientStock:
			outcome = "insufficient_stock"
		default:
			outcome = "error"
		}
		e.metrics.Purchases.WithLabelValues(outcome).Inc()
	}
	return res, err
}

func (e *PurchaseEngine) purchase(ctx context.Context, cartID, purchaser string) (*domain.PurchaseResult, error) {
	cart, err := e.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, domain.Storage("load cart", err)
	}
	lines, err := resolveItems(ctx, e.products, cart.Items)
	if err != nil {
		return nil, err
	}

	// снимок остатков только отсеивает заведомо непокупаемое; решает условное списание ниже
	purchasable := make([]bool, len(lines))
	candidates := 0
	for i, l := range lines {
		if l.Product != nil && l.Product.Stock >= l.Quantity {
			purchasable[i] = true
			candidates++
		}
	}
	if candidates == 0 {
		e.countItems("deferred", len(lines))
		return nil, domain.InsufficientStock(lines)
	}

	purchased := make([]domain.ResolvedLineItem, 0, candidates)
	amount := decimal.Zero
	for i, l := range lines {
		if !purchasable[i] {
			continue
		}
		ok, err := e.products.DecrementStock(ctx, l.ProductID, l.Quantity)
		if err != nil {
			if len(purchased) > 0 {
				e.log.Error("purchase aborted after stock was decremented",
					"cart_id", cartID, "product_id", l.ProductID, "decremented", len(purchased), "error", err)
			}
			return nil, domain.WrapStorage("decrement stock", err)
		}
		if !ok {
			// остаток выкупили между снимком и списанием
			purchasable[i] = false
			e.countItems("retro_deferred", 1)
			e.log.Warn("line item deferred at decrement", "cart_id", cartID, "product_id", l.ProductID, "quantity", l.Quantity)
			continue
		}
		purchased = append(purchased, l)
		amount = amount.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	notPurchased := make([]domain.ResolvedLineItem, 0, len(lines)-len(purchased))
	for i, l := range lines {
		if !purchasable[i] {
			notPurchased = append(notPurchased, l)
		}
	}
	if len(purchased) == 0 {
		// ни одно списание не прошло, состояние не менялось
		e.countItems("deferred", len(notPurchased))
		return nil, domain.InsufficientStock(notPurchased)
	}

	ticket, err := e.issueTicket(ctx, amount, purchaser)
	if err != nil {
		e.log.Error("stock decremented but ticket not issued",
			"cart_id", cartID, "purchaser", purchaser, "amount", amount.String(), "error", err)
		return nil, err
	}
	// билет пишется раньше корзины: при сбое остаётся «билет есть, корзина устарела».
	// Корзина перечитывается под блокировкой, чтобы не затереть правки, сделанные во время покупки.
	err = e.tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := e.carts.GetByID(ctx, cartID)
		if err != nil {
			return err
		}
		return e.carts.ReplaceItems(ctx, cartID, settle(current.Items, purchased))
	})
	if err != nil {
		e.log.Error("ticket issued but cart not updated",
			"cart_id", cartID, "ticket_code", ticket.Code, "error", err)
		return nil, domain.WrapStorage("update cart", err)
	}

	e.countItems("purchased", len(purchased))
	e.countItems("deferred", len(notPurchased))
	e.log.Info("purchase completed",
		"cart_id", cartID, "ticket_code", ticket.Code, "amount", amount.String(),
		"purchased", len(purchased), "deferred", len(notPurchased))
	e.publish(ctx, cartID, ticket, purchased, notPurchased)

	return &domain.PurchaseResult{Ticket: ticket, Purchased: purchased, NotPurchased: notPurchased}, nil
}

func (e *PurchaseEngine) issueTicket(ctx context.Context, amount decimal.Decimal, purchaser string) (*domain.Ticket, error) {
	for i := 0; i < e.attempts; i++ {
		t := &domain.Ticket{
			Code:      e.codes(),
			Amount:    amount,
			Purchaser: purchaser,
			CreatedAt: e.now().UTC(),
		}
		err := e.tickets.Create(ctx, t)
		if err == nil {
			return t, nil
		}
		if domain.KindOf(err) != domain.KindConflict {
			return nil, domain.WrapStorage("create ticket", err)
		}
	}
	return nil, domain.WrapStorage("create ticket", errCodeCollision)
}

func (e *PurchaseEngine) publish(ctx context.Context, cartID string, t *domain.Ticket, purchased, deferred []domain.ResolvedLineItem) {
	ev := events.TicketIssued{
		EventID:      uuid.NewString(),
		Type:         events.TypeTicketIssued,
		CartID:       cartID,
		TicketCode:   t.Code,
		Amount:       t.Amount,
		Purchaser:    t.Purchaser,
		Purchased:    bareItems(purchased),
		NotPurchased: bareItems(deferred),
		CreatedAt:    t.CreatedAt,
	}
	// покупка уже зафиксирована: ни сбой доставки, ни отключение клиента её не отменяют
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.pubWait)
	defer cancel()
	if err := e.publisher.PublishTicketIssued(ctx, ev); err != nil {
		if e.metrics != nil {
			e.metrics.PublishFailures.Inc()
		}
		e.log.Warn("ticket event not published", "ticket_code", t.Code, "error", err)
	}
}

func (e *PurchaseEngine) countItems(result string, n int) {
	if e.metrics != nil && n > 0 {
		e.metrics.LineItems.WithLabelValues(result).Add(float64(n))
	}
}

// settle вычитает купленное из текущего содержимого корзины
func settle(items []domain.LineItem, purchased []domain.ResolvedLineItem) []domain.LineItem {
	bought := make(map[string]int, len(purchased))
	for _, l := range purchased {
		bought[l.ProductID] += l.Quantity
	}
	out := make([]domain.LineItem, 0, len(items))
	for _, it := range items {
		it.Quantity -= bought[it.ProductID]
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out
}

func bareItems(lines []domain.ResolvedLineItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Bare())
	}
	return out
}
