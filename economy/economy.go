// Package economy implements the daily quest and shop features on top of
// the relational store.
package economy

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxx-dev16/Maxx-OS/store"
)

var (
	ErrUnknownItem       = errors.New("that item is not in the shop")
	ErrInsufficientCoins = errors.New("not enough coins")
)

// questTemplate is one entry of the fixed pool daily quests are drawn from.
type questTemplate struct {
	Title  string
	Kind   string
	Goal   int
	Reward int64
}

var questPool = []questTemplate{
	{Title: "Send 20 messages", Kind: "message", Goal: 20, Reward: 50},
	{Title: "Send 50 messages", Kind: "message", Goal: 50, Reward: 120},
	{Title: "Spend 30 minutes in voice", Kind: "voice", Goal: 30, Reward: 80},
	{Title: "Spend 60 minutes in voice", Kind: "voice", Goal: 60, Reward: 150},
	{Title: "Create a temp room", Kind: "temproom", Goal: 1, Reward: 40},
	{Title: "React to 10 messages", Kind: "reaction", Goal: 10, Reward: 30},
}

const questsPerDay = 3

// Service provides quest and shop operations.
type Service struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func New(st store.Store, logger zerolog.Logger) *Service {
	return &Service{store: st, log: logger, now: time.Now}
}

func (s *Service) today() string {
	return s.now().UTC().Format("2006-01-02")
}

// Quests returns the user's quests for today, generating a fresh set on
// first access of the day.
func (s *Service) Quests(ctx context.Context, userID string) ([]*store.Quest, error) {
	day := s.today()
	quests, err := s.store.QuestsFor(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if len(quests) > 0 {
		return quests, nil
	}
	if err := s.Regenerate(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.QuestsFor(ctx, userID, day)
}

// Regenerate replaces the user's quests for today with a random draw from
// the pool.
func (s *Service) Regenerate(ctx context.Context, userID string) error {
	day := s.today()

	picks := rand.Perm(len(questPool))[:questsPerDay]
	quests := make([]*store.Quest, 0, questsPerDay)
	for _, i := range picks {
		t := questPool[i]
		quests = append(quests, &store.Quest{
			Title:  t.Title,
			Kind:   t.Kind,
			Goal:   t.Goal,
			Reward: t.Reward,
		})
	}

	if err := s.store.ReplaceDailyQuests(ctx, userID, day, quests); err != nil {
		return fmt.Errorf("regenerate quests: %w", err)
	}
	s.log.Debug().Str("user", userID).Str("day", day).Msg("daily quests regenerated")
	return nil
}

// Track advances the user's quests of the given kind and pays out rewards
// for any that completed. Returns the completed quests.
func (s *Service) Track(ctx context.Context, userID, kind string, n int) ([]*store.Quest, error) {
	completed, err := s.store.AdvanceQuests(ctx, userID, s.today(), kind, n)
	if err != nil {
		return nil, err
	}
	for _, q := range completed {
		if _, err := s.store.AddCoins(ctx, userID, q.Reward); err != nil {
			return nil, fmt.Errorf("pay quest reward: %w", err)
		}
		s.log.Info().Str("user", userID).Str("quest", q.Title).Int64("reward", q.Reward).Msg("quest completed")
	}
	return completed, nil
}

// Shop returns the current inventory.
func (s *Service) Shop(ctx context.Context) ([]*store.ShopItem, error) {
	return s.store.ListItems(ctx)
}

// Buy purchases an item by name, deducting its price from the user's
// balance.
func (s *Service) Buy(ctx context.Context, userID, itemName string) (*store.ShopItem, error) {
	item, err := s.store.GetItemByName(ctx, itemName)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownItem
	}
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInsufficientCoins
	}
	if err != nil {
		return nil, err
	}
	if user.Coins < item.Price {
		return nil, ErrInsufficientCoins
	}

	if _, err := s.store.AddCoins(ctx, userID, -item.Price); err != nil {
		return nil, fmt.Errorf("deduct price: %w", err)
	}
	if err := s.store.RecordPurchase(ctx, userID, item.ID); err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}

	s.log.Info().Str("user", userID).Str("item", item.Name).Int64("price", item.Price).Msg("shop purchase")
	return item, nil
}
