package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maxx-dev16/Maxx-OS/store"
)

// UpsertUser creates the user row or refreshes username/avatar.
func (s *SQLiteStore) UpsertUser(ctx context.Context, id, username, avatar string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_data (user_id, username, avatar)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET username = excluded.username, avatar = excluded.avatar
	`, id, username, avatar)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*store.User, error) {
	var u store.User
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, username, avatar, coins, warns, notes, created_at
		FROM user_data WHERE user_id = ?
	`, id).Scan(&u.ID, &u.Username, &u.Avatar, &u.Coins, &u.Warns, &u.Notes, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// ListUsers returns up to limit users.
func (s *SQLiteStore) ListUsers(ctx context.Context, limit int) ([]*store.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, username, avatar, coins, warns, notes, created_at
		FROM user_data ORDER BY username LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*store.User
	for rows.Next() {
		var u store.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Avatar, &u.Coins, &u.Warns, &u.Notes, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// AddCoins adjusts the balance by delta and returns the new balance.
func (s *SQLiteStore) AddCoins(ctx context.Context, id string, delta int64) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_data (user_id, coins) VALUES (?, MAX(?, 0))
		ON CONFLICT(user_id) DO UPDATE SET coins = coins + ?
	`, id, delta, delta)
	if err != nil {
		return 0, fmt.Errorf("add coins: %w", err)
	}

	var balance int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT coins FROM user_data WHERE user_id = ?`, id,
	).Scan(&balance); err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

// AdjustWarns adds delta to the warn count, floored at zero.
func (s *SQLiteStore) AdjustWarns(ctx context.Context, id string, delta int) (int, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_data (user_id, warns) VALUES (?, MAX(?, 0))
		ON CONFLICT(user_id) DO UPDATE SET warns = MAX(warns + ?, 0)
	`, id, delta, delta)
	if err != nil {
		return 0, fmt.Errorf("adjust warns: %w", err)
	}

	var warns int
	if err := s.db.QueryRowContext(ctx,
		`SELECT warns FROM user_data WHERE user_id = ?`, id,
	).Scan(&warns); err != nil {
		return 0, fmt.Errorf("read warns: %w", err)
	}
	return warns, nil
}

// AppendNote appends a line to the user's notes.
func (s *SQLiteStore) AppendNote(ctx context.Context, id, note string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_data (user_id, notes) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			notes = CASE WHEN notes = '' THEN ? ELSE notes || char(10) || ? END
	`, id, note, note, note)
	if err != nil {
		return fmt.Errorf("append note: %w", err)
	}
	return nil
}

// Totals returns the user count and the guild-wide warn sum.
func (s *SQLiteStore) Totals(ctx context.Context) (int, int, error) {
	var users, warns int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(warns), 0) FROM user_data`,
	).Scan(&users, &warns)
	if err != nil {
		return 0, 0, fmt.Errorf("totals: %w", err)
	}
	return users, warns, nil
}
