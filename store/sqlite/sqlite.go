// Package sqlite implements store.Store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/maxx-dev16/Maxx-OS/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, applySchema)
}

// NewWithSetup opens the database and runs a setup function. Tests use this
// with ":memory:" and a reduced schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func applySchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS bot_settings (
	setting_key   TEXT PRIMARY KEY,
	setting_value TEXT NOT NULL,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_data (
	user_id    TEXT PRIMARY KEY,
	username   TEXT NOT NULL DEFAULT '',
	avatar     TEXT NOT NULL DEFAULT '',
	coins      INTEGER NOT NULL DEFAULT 0,
	warns      INTEGER NOT NULL DEFAULT 0,
	notes      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS quests (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id  TEXT NOT NULL,
	title    TEXT NOT NULL,
	kind     TEXT NOT NULL,
	goal     INTEGER NOT NULL,
	progress INTEGER NOT NULL DEFAULT 0,
	reward   INTEGER NOT NULL,
	done     BOOLEAN NOT NULL DEFAULT 0,
	day      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quests_user_day ON quests(user_id, day);

CREATE TABLE IF NOT EXISTS shop_items (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	price       INTEGER NOT NULL,
	role_id     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS purchases (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	item_id    INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tickets (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	subject    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'open',
	claimed_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS mod_logs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	action     TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	timestamp  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS admin_logs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	action     TEXT NOT NULL,
	channel_id TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL DEFAULT '',
	role_id    TEXT NOT NULL DEFAULT '',
	timestamp  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bot_stats (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	total_users    INTEGER NOT NULL,
	total_warnings INTEGER NOT NULL,
	uptime         INTEGER NOT NULL,
	bot_status     TEXT NOT NULL,
	timestamp      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bot_channels (
	channel_id   TEXT PRIMARY KEY,
	channel_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bot_roles (
	role_id   TEXT PRIMARY KEY,
	role_name TEXT NOT NULL
);
`

// GetSetting returns the value for a settings key.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT setting_value FROM bot_settings WHERE setting_key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query setting: %w", err)
	}
	return value, nil
}

// SetSetting inserts or updates a settings key.
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bot_settings (setting_key, setting_value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(setting_key) DO UPDATE SET setting_value = excluded.setting_value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}
