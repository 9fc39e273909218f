package economy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxx-dev16/Maxx-OS/store"
	"github.com/maxx-dev16/Maxx-OS/store/sqlite"
)

func newTestService(t *testing.T) (*Service, *sqlite.SQLiteStore) {
	t.Helper()
	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := New(st, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	return svc, st
}

func TestQuestsGeneratedOnFirstAccess(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	quests, err := svc.Quests(ctx, "u1")
	if err != nil {
		t.Fatalf("Quests: %v", err)
	}
	if len(quests) != questsPerDay {
		t.Fatalf("quest count = %d, want %d", len(quests), questsPerDay)
	}
	for _, q := range quests {
		if q.Done || q.Progress != 0 {
			t.Errorf("fresh quest has progress: %+v", q)
		}
	}

	// A second read returns the same set, not a new draw.
	again, err := svc.Quests(ctx, "u1")
	if err != nil {
		t.Fatalf("Quests again: %v", err)
	}
	for i := range quests {
		if quests[i].ID != again[i].ID {
			t.Fatalf("second access regenerated the quests")
		}
	}
}

func TestTrackPaysRewards(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	day := svc.today()
	err := st.ReplaceDailyQuests(ctx, "u1", day, []*store.Quest{
		{Title: "Send 2 messages", Kind: "message", Goal: 2, Reward: 25},
	})
	if err != nil {
		t.Fatalf("seed quests: %v", err)
	}

	completed, err := svc.Track(ctx, "u1", "message", 1)
	if err != nil || len(completed) != 0 {
		t.Fatalf("Track partial = (%v, %v)", completed, err)
	}

	completed, err = svc.Track(ctx, "u1", "message", 1)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if len(completed) != 1 {
		t.Fatalf("completed = %v, want one quest", completed)
	}

	user, err := st.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Coins != 25 {
		t.Errorf("coins = %d, want the quest reward 25", user.Coins)
	}
}

func TestTrackIgnoresOtherKinds(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	st.ReplaceDailyQuests(ctx, "u1", svc.today(), []*store.Quest{
		{Title: "Join voice", Kind: "voice", Goal: 1, Reward: 10},
	})

	completed, err := svc.Track(ctx, "u1", "message", 5)
	if err != nil || len(completed) != 0 {
		t.Fatalf("Track = (%v, %v), message events must not advance voice quests", completed, err)
	}
}

func TestBuy(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedItem(t, st, "VIP", 100)

	if _, err := svc.Buy(ctx, "u1", "nope"); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("unknown item: err = %v, want ErrUnknownItem", err)
	}

	// No profile yet, so no coins.
	if _, err := svc.Buy(ctx, "u1", "VIP"); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("broke user: err = %v, want ErrInsufficientCoins", err)
	}

	st.AddCoins(ctx, "u1", 150)
	item, err := svc.Buy(ctx, "u1", "vip")
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if item.Name != "VIP" {
		t.Errorf("item = %+v", item)
	}

	user, _ := st.GetUser(ctx, "u1")
	if user.Coins != 50 {
		t.Errorf("coins after purchase = %d, want 50", user.Coins)
	}

	// Cannot afford a second one.
	if _, err := svc.Buy(ctx, "u1", "VIP"); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("second buy: err = %v, want ErrInsufficientCoins", err)
	}
}

func seedItem(t *testing.T, st *sqlite.SQLiteStore, name string, price int64) {
	t.Helper()
	item := &store.ShopItem{Name: name, Price: price}
	if err := st.AddShopItem(context.Background(), item); err != nil {
		t.Fatalf("seed item: %v", err)
	}
}
