package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maxx-dev16/Maxx-OS/store"
)

// CreateTicket inserts a new ticket.
func (s *SQLiteStore) CreateTicket(ctx context.Context, t *store.Ticket) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tickets (id, user_id, subject, status) VALUES (?, ?, ?, ?)
	`, t.ID, t.UserID, t.Subject, t.Status)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// GetTicket retrieves a ticket by id.
func (s *SQLiteStore) GetTicket(ctx context.Context, id string) (*store.Ticket, error) {
	var t store.Ticket
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, subject, status, claimed_by, created_at, updated_at
		FROM tickets WHERE id = ?
	`, id).Scan(&t.ID, &t.UserID, &t.Subject, &t.Status, &t.ClaimedBy, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query ticket: %w", err)
	}
	return &t, nil
}

// UpdateTicket moves a ticket to a new workflow state.
func (s *SQLiteStore) UpdateTicket(ctx context.Context, id string, status store.TicketStatus, claimedBy string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tickets SET status = ?, claimed_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, claimedBy, id)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListTickets returns tickets in the given state, newest first.
func (s *SQLiteStore) ListTickets(ctx context.Context, status store.TicketStatus) ([]*store.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, subject, status, claimed_by, created_at, updated_at
		FROM tickets WHERE status = ? ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*store.Ticket
	for rows.Next() {
		var t store.Ticket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Subject, &t.Status, &t.ClaimedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, &t)
	}
	return tickets, rows.Err()
}
