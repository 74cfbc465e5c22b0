// Package events публикует уведомления о покупках.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

const TypeTicketIssued = "ticket.issued"

// TicketIssued событие о выпущенном билете
type TicketIssued struct {
	EventID      string            `json:"event_id"`
	Type         string            `json:"type"`
	CartID       string            `json:"cart_id"`
	TicketCode   string            `json:"ticket_code"`
	Amount       decimal.Decimal   `json:"amount"`
	Purchaser    string            `json:"purchaser"`
	Purchased    []domain.LineItem `json:"purchased"`
	NotPurchased []domain.LineItem `json:"not_purchased"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Publisher получатель событий покупки
type Publisher interface {
	PublishTicketIssued(ctx context.Context, ev TicketIssued) error
	Close() error
}

// Nop ничего не публикует
type Nop struct{}

func (Nop) PublishTicketIssued(context.Context, TicketIssued) error { return nil }
func (Nop) Close() error                                            { return nil }
