package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maxx-dev16/Maxx-OS/store"
)

// AddModLog records a moderation action.
func (s *SQLiteStore) AddModLog(ctx context.Context, userID, action, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mod_logs (user_id, action, reason) VALUES (?, ?, ?)`,
		userID, action, reason,
	)
	if err != nil {
		return fmt.Errorf("insert mod log: %w", err)
	}
	return nil
}

// ListModLogs returns the most recent moderation actions.
func (s *SQLiteStore) ListModLogs(ctx context.Context, limit int) ([]*store.ModLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, reason, timestamp
		FROM mod_logs ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query mod logs: %w", err)
	}
	defer rows.Close()

	var logs []*store.ModLog
	for rows.Next() {
		var l store.ModLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Reason, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mod log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// AddAdminLog records a panel action.
func (s *SQLiteStore) AddAdminLog(ctx context.Context, l *store.AdminLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_logs (action, channel_id, message, role_id) VALUES (?, ?, ?, ?)
	`, l.Action, l.ChannelID, l.Message, l.RoleID)
	if err != nil {
		return fmt.Errorf("insert admin log: %w", err)
	}
	return nil
}

// ListAdminLogs returns the most recent panel actions.
func (s *SQLiteStore) ListAdminLogs(ctx context.Context, limit int) ([]*store.AdminLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, channel_id, message, role_id, timestamp
		FROM admin_logs ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query admin logs: %w", err)
	}
	defer rows.Close()

	var logs []*store.AdminLog
	for rows.Next() {
		var l store.AdminLog
		if err := rows.Scan(&l.ID, &l.Action, &l.ChannelID, &l.Message, &l.RoleID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// RecordStats appends a bot status snapshot.
func (s *SQLiteStore) RecordStats(ctx context.Context, st *store.Stats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bot_stats (total_users, total_warnings, uptime, bot_status)
		VALUES (?, ?, ?, ?)
	`, st.TotalUsers, st.TotalWarnings, st.UptimeSeconds, st.BotStatus)
	if err != nil {
		return fmt.Errorf("insert stats: %w", err)
	}
	return nil
}

// LatestStats returns the most recent snapshot.
func (s *SQLiteStore) LatestStats(ctx context.Context) (*store.Stats, error) {
	var st store.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT total_users, total_warnings, uptime, bot_status, timestamp
		FROM bot_stats ORDER BY id DESC LIMIT 1
	`).Scan(&st.TotalUsers, &st.TotalWarnings, &st.UptimeSeconds, &st.BotStatus, &st.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return &st, nil
}

// ReplaceChannels replaces the mirrored guild channel list.
func (s *SQLiteStore) ReplaceChannels(ctx context.Context, channels []store.Channel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bot_channels`); err != nil {
		return fmt.Errorf("clear channels: %w", err)
	}
	for _, ch := range channels {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bot_channels (channel_id, channel_name) VALUES (?, ?)`,
			ch.ID, ch.Name,
		); err != nil {
			return fmt.Errorf("insert channel: %w", err)
		}
	}
	return tx.Commit()
}

// ListChannels returns the mirrored guild channels.
func (s *SQLiteStore) ListChannels(ctx context.Context) ([]store.Channel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT channel_id, channel_name FROM bot_channels ORDER BY channel_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	var channels []store.Channel
	for rows.Next() {
		var ch store.Channel
		if err := rows.Scan(&ch.ID, &ch.Name); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// ReplaceRoles replaces the mirrored guild role list.
func (s *SQLiteStore) ReplaceRoles(ctx context.Context, roles []store.Role) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bot_roles`); err != nil {
		return fmt.Errorf("clear roles: %w", err)
	}
	for _, r := range roles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bot_roles (role_id, role_name) VALUES (?, ?)`,
			r.ID, r.Name,
		); err != nil {
			return fmt.Errorf("insert role: %w", err)
		}
	}
	return tx.Commit()
}

// ListRoles returns the mirrored guild roles.
func (s *SQLiteStore) ListRoles(ctx context.Context) ([]store.Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role_id, role_name FROM bot_roles ORDER BY role_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []store.Role
	for rows.Next() {
		var r store.Role
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}
