// Package moderation implements warns, notes, and ban records over the
// relational store.
package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxx-dev16/Maxx-OS/store"
)

// Service provides moderation operations.
type Service struct {
	store store.Store
	log   zerolog.Logger
}

func New(st store.Store, logger zerolog.Logger) *Service {
	return &Service{store: st, log: logger}
}

// Warn increments the user's warn count and logs the action. Returns the
// new count.
func (s *Service) Warn(ctx context.Context, userID, reason string) (int, error) {
	if reason == "" {
		reason = "no reason given"
	}
	count, err := s.store.AdjustWarns(ctx, userID, 1)
	if err != nil {
		return 0, err
	}
	if err := s.store.AddModLog(ctx, userID, "WARN", reason); err != nil {
		return count, fmt.Errorf("log warn: %w", err)
	}
	s.log.Info().Str("user", userID).Int("warns", count).Str("reason", reason).Msg("user warned")
	return count, nil
}

// RemoveWarn decrements the warn count, floored at zero.
func (s *Service) RemoveWarn(ctx context.Context, userID string) (int, error) {
	count, err := s.store.AdjustWarns(ctx, userID, -1)
	if err != nil {
		return 0, err
	}
	if err := s.store.AddModLog(ctx, userID, "WARN_REMOVED", "warning removed"); err != nil {
		return count, fmt.Errorf("log warn removal: %w", err)
	}
	return count, nil
}

// ClearWarns resets the warn count to zero.
func (s *Service) ClearWarns(ctx context.Context, userID string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.store.AdjustWarns(ctx, userID, -user.Warns); err != nil {
		return err
	}
	if err := s.store.AddModLog(ctx, userID, "WARNS_CLEARED", "all warnings cleared"); err != nil {
		return fmt.Errorf("log warn clear: %w", err)
	}
	return nil
}

// Note appends a moderator note to the user's record.
func (s *Service) Note(ctx context.Context, userID, note string) error {
	return s.store.AppendNote(ctx, userID, note)
}

// UserInfo returns the stored profile for a user.
func (s *Service) UserInfo(ctx context.Context, userID string) (*store.User, error) {
	return s.store.GetUser(ctx, userID)
}

// Ban records a ban action. duration is zero for permanent bans. The actual
// platform-side ban is the caller's responsibility.
func (s *Service) Ban(ctx context.Context, userID, reason string, duration time.Duration) error {
	if reason == "" {
		reason = "no reason given"
	}
	action := "BAN"
	if duration > 0 {
		action = fmt.Sprintf("BAN (%s)", duration)
	}
	if err := s.store.AddModLog(ctx, userID, action, reason); err != nil {
		return fmt.Errorf("log ban: %w", err)
	}
	s.log.Info().Str("user", userID).Dur("duration", duration).Str("reason", reason).Msg("user banned")
	return nil
}

// Logs returns the most recent moderation actions.
func (s *Service) Logs(ctx context.Context, limit int) ([]*store.ModLog, error) {
	return s.store.ListModLogs(ctx, limit)
}
