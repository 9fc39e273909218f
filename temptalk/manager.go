package temptalk

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// MaxUserLimit is the upper bound submitted limits are clamped to.
	MaxUserLimit = 99

	defaultReclaimDelay = 3 * time.Second
)

type (
	// VoiceEvent is one voice-presence transition of a guild member.
	VoiceEvent struct {
		UserID       string
		DisplayName  string
		OldChannelID string
		NewChannelID string
	}

	// Summary is the rendered state of a room's control surface. UserLimit
	// and Locked are read live from the platform at render time.
	Summary struct {
		RoomID     string
		OwnerID    string
		UserLimit  int
		AutoDelete bool
		Locked     bool
	}

	// Reply is the outcome text for the requester.
	Reply struct {
		Content string
	}

	// Prompt asks the platform to open a structured-input dialog for an
	// action that needs a free-text parameter.
	Prompt struct {
		Action      Action
		RoomID      string
		Title       string
		Label       string
		Placeholder string
	}

	// Manager owns the lifecycle of temporary voice rooms: creation on
	// trigger-join, owner-gated actions, control-surface upkeep, and
	// empty-room reclamation.
	//
	// Actions on the same room are not serialized against each other; two
	// near-simultaneous owner actions can interleave across platform calls
	// and the last platform-side write wins. Accepted limitation: actions
	// are manual, rare, and gated to a single owner.
	Manager struct {
		platform Platform
		registry *Registry
		log      zerolog.Logger

		triggerID    string
		reclaimDelay time.Duration

		timerMu sync.Mutex
		timers  map[string]*time.Timer
	}

	// Options configures a Manager.
	Options struct {
		TriggerChannelID string
		ReclaimDelay     time.Duration
	}
)

func NewManager(platform Platform, logger zerolog.Logger, opts Options) *Manager {
	delay := opts.ReclaimDelay
	if delay <= 0 {
		delay = defaultReclaimDelay
	}
	return &Manager{
		platform:     platform,
		registry:     NewRegistry(),
		log:          logger,
		triggerID:    opts.TriggerChannelID,
		reclaimDelay: delay,
		timers:       make(map[string]*time.Timer),
	}
}

// Registry exposes the room registry for read access.
func (m *Manager) Registry() *Registry { return m.registry }

// HandleVoiceEvent routes one voice-presence transition: a genuine entry
// into the trigger channel creates a room, and leaving a tracked room arms
// the empty-room re-check.
func (m *Manager) HandleVoiceEvent(ev VoiceEvent) {
	if ev.NewChannelID == m.triggerID && ev.OldChannelID != m.triggerID {
		m.createRoom(ev)
	}

	if ev.OldChannelID != "" && ev.OldChannelID != ev.NewChannelID {
		if room, ok := m.registry.Get(ev.OldChannelID); ok && room.AutoDelete {
			m.armReclaim(room.ID)
		}
	}
}

func (m *Manager) createRoom(ev VoiceEvent) {
	name := fmt.Sprintf("TempTalk - %s", ev.DisplayName)

	roomID, err := m.platform.CreateVoiceRoom(name, ev.UserID)
	if err != nil {
		// Covers the trigger channel being unresolvable: no room is created.
		m.log.Error().Err(err).Str("user", ev.UserID).Msg("create temp room")
		return
	}

	if err := m.platform.MoveMember(ev.UserID, roomID); err != nil {
		m.log.Warn().Err(err).Str("room", roomID).Msg("move member into temp room")
	}

	m.registry.Put(Room{ID: roomID, OwnerID: ev.UserID, AutoDelete: true})

	sum, err := m.summary(roomID)
	if err != nil {
		m.log.Warn().Err(err).Str("room", roomID).Msg("render control surface")
		return
	}
	msgID, err := m.platform.SendControlMessage(sum)
	if err != nil {
		// Room stays usable without a control surface.
		m.log.Warn().Err(err).Str("room", roomID).Msg("send control message")
		return
	}
	m.registry.SetControlMessage(roomID, msgID)

	m.log.Info().Str("room", roomID).Str("owner", ev.UserID).Msg("temp room created")
}

// summary reads the room's live state. Pure with respect to the registry and
// platform; it caches nothing.
func (m *Manager) summary(roomID string) (Summary, error) {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return Summary{}, ErrRoomNotFound
	}
	limit, err := m.platform.UserLimit(roomID)
	if err != nil {
		return Summary{}, fmt.Errorf("read user limit: %w", err)
	}
	locked, err := m.platform.RoomLocked(roomID)
	if err != nil {
		return Summary{}, fmt.Errorf("read lock state: %w", err)
	}
	return Summary{
		RoomID:     roomID,
		OwnerID:    room.OwnerID,
		UserLimit:  limit,
		AutoDelete: room.AutoDelete,
		Locked:     locked,
	}, nil
}

// refresh re-renders the control surface in place. A control message deleted
// out of band is re-created rather than failing the calling action.
func (m *Manager) refresh(roomID string) {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return
	}
	sum, err := m.summary(roomID)
	if err != nil {
		m.log.Warn().Err(err).Str("room", roomID).Msg("refresh control surface")
		return
	}
	if room.ControlMessageID != "" {
		if err := m.platform.EditControlMessage(room.ControlMessageID, sum); err == nil {
			return
		}
	}
	msgID, err := m.platform.SendControlMessage(sum)
	if err != nil {
		m.log.Warn().Err(err).Str("room", roomID).Msg("recreate control message")
		return
	}
	m.registry.SetControlMessage(roomID, msgID)
}

// authorize applies the uniform gate: the room must be tracked and the
// requester must be its current owner.
func (m *Manager) authorize(roomID, requesterID string) (Room, error) {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	if requesterID != room.OwnerID {
		return Room{}, ErrNotOwner
	}
	return room, nil
}

// Press executes a direct action trigger. Actions needing a free-text
// parameter return a Prompt instead of an immediate Reply.
func (m *Manager) Press(action Action, roomID, requesterID string) (*Reply, *Prompt, error) {
	room, err := m.authorize(roomID, requesterID)
	if err != nil {
		return nil, nil, err
	}

	switch action {
	case ActionLock:
		reply, err := m.toggleLock(roomID)
		return reply, nil, err

	case ActionLimit:
		return nil, &Prompt{
			Action:      ActionLimit,
			RoomID:      roomID,
			Title:       "Set user limit",
			Label:       "Max users (0 = unlimited)",
			Placeholder: "e.g. 0 or 5",
		}, nil

	case ActionTransfer:
		return nil, &Prompt{
			Action:      ActionTransfer,
			RoomID:      roomID,
			Title:       "Transfer ownership",
			Label:       "New owner (mention or id)",
			Placeholder: "<@123456789012345678> or 123456789012345678",
		}, nil

	case ActionInvite:
		return nil, &Prompt{
			Action:      ActionInvite,
			RoomID:      roomID,
			Title:       "Invite user",
			Label:       "User to invite (mention or id)",
			Placeholder: "<@1234> or 1234",
		}, nil

	case ActionBlock:
		return nil, &Prompt{
			Action:      ActionBlock,
			RoomID:      roomID,
			Title:       "Block user",
			Label:       "User to block (mention or id)",
			Placeholder: "<@1234> or 1234",
		}, nil

	case ActionDelete:
		reply, err := m.deleteRoom(room)
		return reply, nil, err

	default:
		return nil, nil, fmt.Errorf("unknown action %d", action)
	}
}

// Submit executes the input-submission branch of an action.
func (m *Manager) Submit(action Action, roomID, requesterID, value string) (*Reply, error) {
	if _, err := m.authorize(roomID, requesterID); err != nil {
		return nil, err
	}

	switch action {
	case ActionLimit:
		return m.setLimit(roomID, value)
	case ActionTransfer:
		return m.transferOwnership(roomID, value)
	case ActionInvite:
		return m.inviteUser(roomID, requesterID, value)
	case ActionBlock:
		return m.blockUser(roomID, value)
	default:
		return nil, fmt.Errorf("action %s takes no input", action)
	}
}

func (m *Manager) toggleLock(roomID string) (*Reply, error) {
	locked, err := m.platform.RoomLocked(roomID)
	if err != nil {
		return nil, fmt.Errorf("read lock state: %w", err)
	}
	if locked {
		if err := m.platform.SetConnectEveryone(roomID, ConnectInherit); err != nil {
			return nil, fmt.Errorf("unlock room: %w", err)
		}
		m.refresh(roomID)
		return &Reply{Content: "Room unlocked."}, nil
	}
	if err := m.platform.SetConnectEveryone(roomID, ConnectDeny); err != nil {
		return nil, fmt.Errorf("lock room: %w", err)
	}
	m.refresh(roomID)
	return &Reply{Content: "Room locked. Nobody else can connect."}, nil
}

func (m *Manager) setLimit(roomID, value string) (*Reply, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil, ErrInvalidLimit
	}
	n = min(max(n, 0), MaxUserLimit)
	if err := m.platform.SetUserLimit(roomID, n); err != nil {
		return nil, fmt.Errorf("set user limit: %w", err)
	}
	m.refresh(roomID)
	if n == 0 {
		return &Reply{Content: "User limit removed."}, nil
	}
	return &Reply{Content: fmt.Sprintf("User limit set to %d.", n)}, nil
}

func (m *Manager) transferOwnership(roomID, value string) (*Reply, error) {
	targetID, err := ParseUserReference(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	member, err := m.platform.FetchMember(targetID)
	if err != nil {
		return nil, err
	}
	if !m.registry.SetOwner(roomID, member.ID) {
		return nil, ErrRoomNotFound
	}
	if err := m.platform.GrantOwner(roomID, member.ID); err != nil {
		return nil, fmt.Errorf("grant owner permissions: %w", err)
	}
	m.refresh(roomID)
	return &Reply{Content: fmt.Sprintf("Ownership transferred to %s.", member.Name)}, nil
}

func (m *Manager) inviteUser(roomID, requesterID, value string) (*Reply, error) {
	targetID, err := ParseUserReference(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	member, err := m.platform.FetchMember(targetID)
	if err != nil {
		return nil, err
	}
	url, err := m.platform.CreateInvite(roomID)
	if err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}
	if err := m.platform.DirectMessage(member.ID, "You have been invited to a voice room: "+url); err != nil {
		// DM delivery failed; surface the link to the requester instead.
		return &Reply{Content: "Could not send a DM. Invite link: " + url}, nil
	}
	return &Reply{Content: fmt.Sprintf("Invite sent to %s by DM.", member.Name)}, nil
}

func (m *Manager) blockUser(roomID, value string) (*Reply, error) {
	targetID, err := ParseUserReference(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	member, err := m.platform.FetchMember(targetID)
	if err != nil {
		return nil, err
	}
	if err := m.platform.SetConnectMember(roomID, member.ID, ConnectDeny); err != nil {
		return nil, fmt.Errorf("block user: %w", err)
	}
	current, err := m.platform.MemberVoiceRoom(member.ID)
	if err == nil && current == roomID {
		if err := m.platform.DisconnectMember(member.ID); err != nil {
			m.log.Warn().Err(err).Str("room", roomID).Str("user", member.ID).Msg("disconnect blocked user")
		}
	}
	return &Reply{Content: fmt.Sprintf("%s is blocked from connecting.", member.Name)}, nil
}

func (m *Manager) deleteRoom(room Room) (*Reply, error) {
	if room.ControlMessageID != "" {
		if err := m.platform.DeleteControlMessage(room.ControlMessageID); err != nil {
			m.log.Warn().Err(err).Str("room", room.ID).Msg("delete control message")
		}
	}
	if err := m.platform.DeleteRoom(room.ID); err != nil {
		// Keep the registry entry so the owner can retry. The already-deleted
		// control message is an accepted minor inconsistency.
		return nil, fmt.Errorf("delete room: %w", err)
	}
	m.registry.Delete(room.ID)
	m.cancelReclaim(room.ID)
	m.log.Info().Str("room", room.ID).Msg("temp room deleted by owner")
	return &Reply{Content: "Room deleted."}, nil
}
