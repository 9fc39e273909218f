// Package tickets implements the support ticket workflow.
package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxx-dev16/Maxx-OS/store"
)

var (
	ErrNotOpen       = errors.New("ticket is not open")
	ErrAlreadyClosed = errors.New("ticket is already closed")
)

// Service provides ticket operations.
type Service struct {
	store store.Store
	log   zerolog.Logger
}

func New(st store.Store, logger zerolog.Logger) *Service {
	return &Service{store: st, log: logger}
}

// Open creates a new ticket for the user.
func (s *Service) Open(ctx context.Context, userID, subject string) (*store.Ticket, error) {
	t := &store.Ticket{
		ID:      uuid.NewString(),
		UserID:  userID,
		Subject: subject,
		Status:  store.TicketOpen,
	}
	if err := s.store.CreateTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("open ticket: %w", err)
	}
	s.log.Info().Str("ticket", t.ID).Str("user", userID).Msg("ticket opened")
	return t, nil
}

// Claim assigns an open ticket to a handler.
func (s *Service) Claim(ctx context.Context, ticketID, handlerID string) error {
	t, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if t.Status != store.TicketOpen {
		return ErrNotOpen
	}
	return s.store.UpdateTicket(ctx, ticketID, store.TicketClaimed, handlerID)
}

// Close closes a ticket in any non-closed state.
func (s *Service) Close(ctx context.Context, ticketID string) error {
	t, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if t.Status == store.TicketClosed {
		return ErrAlreadyClosed
	}
	if err := s.store.UpdateTicket(ctx, ticketID, store.TicketClosed, t.ClaimedBy); err != nil {
		return err
	}
	s.log.Info().Str("ticket", ticketID).Msg("ticket closed")
	return nil
}

// ListOpen returns all open tickets, newest first.
func (s *Service) ListOpen(ctx context.Context) ([]*store.Ticket, error) {
	return s.store.ListTickets(ctx, store.TicketOpen)
}
