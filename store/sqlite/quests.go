package sqlite

import (
	"context"
	"fmt"

	"github.com/maxx-dev16/Maxx-OS/store"
)

// QuestsFor returns the user's quests for the given day.
func (s *SQLiteStore) QuestsFor(ctx context.Context, userID, day string) ([]*store.Quest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, kind, goal, progress, reward, done, day
		FROM quests WHERE user_id = ? AND day = ? ORDER BY id
	`, userID, day)
	if err != nil {
		return nil, fmt.Errorf("query quests: %w", err)
	}
	defer rows.Close()

	var quests []*store.Quest
	for rows.Next() {
		var q store.Quest
		if err := rows.Scan(&q.ID, &q.UserID, &q.Title, &q.Kind, &q.Goal, &q.Progress, &q.Reward, &q.Done, &q.Day); err != nil {
			return nil, fmt.Errorf("scan quest: %w", err)
		}
		quests = append(quests, &q)
	}
	return quests, rows.Err()
}

// ReplaceDailyQuests drops the user's quests for the day and inserts the
// given set.
func (s *SQLiteStore) ReplaceDailyQuests(ctx context.Context, userID, day string, quests []*store.Quest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM quests WHERE user_id = ? AND day = ?`, userID, day,
	); err != nil {
		return fmt.Errorf("clear quests: %w", err)
	}

	for _, q := range quests {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quests (user_id, title, kind, goal, progress, reward, done, day)
			VALUES (?, ?, ?, ?, 0, ?, 0, ?)
		`, userID, q.Title, q.Kind, q.Goal, q.Reward, day); err != nil {
			return fmt.Errorf("insert quest: %w", err)
		}
	}

	return tx.Commit()
}

// AdvanceQuests adds n progress to every unfinished quest of the given kind
// and returns the quests that completed on this call.
func (s *SQLiteStore) AdvanceQuests(ctx context.Context, userID, day, kind string, n int) ([]*store.Quest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE quests SET progress = MIN(progress + ?, goal)
		WHERE user_id = ? AND day = ? AND kind = ? AND done = 0
	`, n, userID, day, kind); err != nil {
		return nil, fmt.Errorf("advance quests: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, user_id, title, kind, goal, progress, reward, done, day
		FROM quests
		WHERE user_id = ? AND day = ? AND kind = ? AND done = 0 AND progress >= goal
	`, userID, day, kind)
	if err != nil {
		return nil, fmt.Errorf("query completed quests: %w", err)
	}

	var completed []*store.Quest
	for rows.Next() {
		var q store.Quest
		if err := rows.Scan(&q.ID, &q.UserID, &q.Title, &q.Kind, &q.Goal, &q.Progress, &q.Reward, &q.Done, &q.Day); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan quest: %w", err)
		}
		q.Done = true
		completed = append(completed, &q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, q := range completed {
		if _, err := tx.ExecContext(ctx,
			`UPDATE quests SET done = 1 WHERE id = ?`, q.ID,
		); err != nil {
			return nil, fmt.Errorf("mark quest done: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return completed, nil
}
