package service

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// TicketService чтение выпущенных билетов
type TicketService struct {
	tickets repository.TicketRepository
}

func NewTicketService(tickets repository.TicketRepository) *TicketService {
	return &TicketService{tickets: tickets}
}

// ListFor билеты пользователя; администратор видит все
func (s *TicketService) ListFor(ctx context.Context, u *domain.User) ([]domain.Ticket, error) {
	var (
		out []domain.Ticket
		err error
	)
	if u.IsAdmin() {
		out, err = s.tickets.All(ctx)
	} else {
		out, err = s.tickets.ListByPurchaser(ctx, u.Email)
	}
	if err != nil {
		return nil, domain.Storage("list tickets", err)
	}
	return out, nil
}

func (s *TicketService) Get(ctx context.Context, u *domain.User, code string) (*domain.Ticket, error) {
	t, err := s.tickets.GetByCode(ctx, code)
	if err != nil {
		return nil, domain.Storage("get ticket", err)
	}
	if !u.IsAdmin() && t.Purchaser != u.Email {
		return nil, domain.Forbidden("ticket belongs to another purchaser")
	}
	return t, nil
}
