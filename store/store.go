package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User is one guild member's persisted profile.
type User struct {
	ID        string
	Username  string
	Avatar    string
	Coins     int64
	Warns     int
	Notes     string
	CreatedAt time.Time
}

// Quest is one daily quest assigned to a user.
type Quest struct {
	ID       int64
	UserID   string
	Title    string
	Kind     string
	Goal     int
	Progress int
	Reward   int64
	Done     bool
	Day      string
}

// ShopItem is one purchasable entry in the shop.
type ShopItem struct {
	ID          int64
	Name        string
	Description string
	Price       int64
	RoleID      string
}

// Ticket is one support ticket.
type Ticket struct {
	ID        string
	UserID    string
	Subject   string
	Status    TicketStatus
	ClaimedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TicketStatus is the workflow state of a ticket.
type TicketStatus string

const (
	TicketOpen    TicketStatus = "open"
	TicketClaimed TicketStatus = "claimed"
	TicketClosed  TicketStatus = "closed"
)

// ModLog is one moderation action against a user.
type ModLog struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminLog is one action taken through the web panel.
type AdminLog struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	ChannelID string    `json:"channel_id"`
	Message   string    `json:"message"`
	RoleID    string    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats is one bot status snapshot consumed by the panel.
type Stats struct {
	TotalUsers    int
	TotalWarnings int
	UptimeSeconds int64
	BotStatus     string
	RecordedAt    time.Time
}

// Channel and Role mirror guild metadata for the panel's pickers.
type Channel struct {
	ID   string
	Name string
}

type Role struct {
	ID   string
	Name string
}

// SettingsStore holds key/value bot settings shared with the panel.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// UserStore handles user profile persistence.
type UserStore interface {
	// UpsertUser creates the user row or refreshes username/avatar.
	UpsertUser(ctx context.Context, id, username, avatar string) error
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context, limit int) ([]*User, error)

	// AddCoins adjusts the balance by delta and returns the new balance.
	AddCoins(ctx context.Context, id string, delta int64) (int64, error)

	// AdjustWarns adds delta to the warn count, floored at zero, and returns
	// the new count.
	AdjustWarns(ctx context.Context, id string, delta int) (int, error)

	AppendNote(ctx context.Context, id, note string) error

	// Totals returns the number of known users and the sum of their warns.
	Totals(ctx context.Context) (users int, warns int, err error)
}

// QuestStore handles daily quest persistence.
type QuestStore interface {
	QuestsFor(ctx context.Context, userID, day string) ([]*Quest, error)

	// ReplaceDailyQuests drops the user's quests for the day and inserts the
	// given set.
	ReplaceDailyQuests(ctx context.Context, userID, day string, quests []*Quest) error

	// AdvanceQuests adds n progress to every unfinished quest of the given
	// kind for the day, marks finished ones done, and returns the quests
	// that completed on this call.
	AdvanceQuests(ctx context.Context, userID, day, kind string, n int) ([]*Quest, error)
}

// ShopStore handles shop inventory and purchases.
type ShopStore interface {
	ListItems(ctx context.Context) ([]*ShopItem, error)
	GetItemByName(ctx context.Context, name string) (*ShopItem, error)
	RecordPurchase(ctx context.Context, userID string, itemID int64) error
}

// TicketStore handles the support ticket workflow.
type TicketStore interface {
	CreateTicket(ctx context.Context, t *Ticket) error
	GetTicket(ctx context.Context, id string) (*Ticket, error)
	UpdateTicket(ctx context.Context, id string, status TicketStatus, claimedBy string) error
	ListTickets(ctx context.Context, status TicketStatus) ([]*Ticket, error)
}

// ModLogStore records moderation actions.
type ModLogStore interface {
	AddModLog(ctx context.Context, userID, action, reason string) error
	ListModLogs(ctx context.Context, limit int) ([]*ModLog, error)
}

// AdminLogStore records panel actions.
type AdminLogStore interface {
	AddAdminLog(ctx context.Context, l *AdminLog) error
	ListAdminLogs(ctx context.Context, limit int) ([]*AdminLog, error)
}

// StatsStore records bot status snapshots.
type StatsStore interface {
	RecordStats(ctx context.Context, s *Stats) error
	LatestStats(ctx context.Context) (*Stats, error)
}

// GuildMetaStore mirrors guild channels and roles for the panel.
type GuildMetaStore interface {
	ReplaceChannels(ctx context.Context, channels []Channel) error
	ListChannels(ctx context.Context) ([]Channel, error)
	ReplaceRoles(ctx context.Context, roles []Role) error
	ListRoles(ctx context.Context) ([]Role, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	SettingsStore
	UserStore
	QuestStore
	ShopStore
	TicketStore
	ModLogStore
	AdminLogStore
	StatsStore
	GuildMetaStore

	Close() error
}
