package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maxx-dev16/Maxx-OS/store"
)

// ListItems returns the shop inventory.
func (s *SQLiteStore) ListItems(ctx context.Context) ([]*store.ShopItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, price, role_id FROM shop_items ORDER BY price`,
	)
	if err != nil {
		return nil, fmt.Errorf("query shop items: %w", err)
	}
	defer rows.Close()

	var items []*store.ShopItem
	for rows.Next() {
		var it store.ShopItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.RoleID); err != nil {
			return nil, fmt.Errorf("scan shop item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// GetItemByName finds a shop item by name, case-insensitively.
func (s *SQLiteStore) GetItemByName(ctx context.Context, name string) (*store.ShopItem, error) {
	var it store.ShopItem
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, role_id FROM shop_items
		WHERE name = ? COLLATE NOCASE
	`, name).Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.RoleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query shop item: %w", err)
	}
	return &it, nil
}

// RecordPurchase records that a user bought an item.
func (s *SQLiteStore) RecordPurchase(ctx context.Context, userID string, itemID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO purchases (user_id, item_id) VALUES (?, ?)`, userID, itemID,
	)
	if err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}
	return nil
}

// AddShopItem inserts a shop item, used for seeding the inventory.
func (s *SQLiteStore) AddShopItem(ctx context.Context, it *store.ShopItem) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO shop_items (name, description, price, role_id) VALUES (?, ?, ?, ?)
	`, it.Name, it.Description, it.Price, it.RoleID)
	if err != nil {
		return fmt.Errorf("insert shop item: %w", err)
	}
	it.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}
