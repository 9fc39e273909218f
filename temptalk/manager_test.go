package temptalk

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const triggerID = "trigger-channel"

func newTestManager(t *testing.T, platform *fakePlatform, delay time.Duration) *Manager {
	t.Helper()
	return NewManager(platform, zerolog.Nop(), Options{
		TriggerChannelID: triggerID,
		ReclaimDelay:     delay,
	})
}

// join simulates a member entering the trigger channel from silence and
// returns the created room's id.
func createRoom(t *testing.T, m *Manager, platform *fakePlatform, userID, name string) string {
	t.Helper()
	m.HandleVoiceEvent(VoiceEvent{UserID: userID, DisplayName: name, NewChannelID: triggerID})

	var roomID string
	platform.mu.Lock()
	for id := range platform.rooms {
		roomID = id
	}
	platform.mu.Unlock()
	if roomID == "" {
		t.Fatal("no room was created")
	}
	if _, ok := m.Registry().Get(roomID); !ok {
		t.Fatalf("room %s not tracked in registry", roomID)
	}
	return roomID
}

func TestTriggerJoinCreatesSingleRoom(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, time.Minute)

	roomID := createRoom(t, m, platform, "alice", "Alice")

	if got := platform.roomCount(); got != 1 {
		t.Fatalf("room count = %d, want 1", got)
	}
	room, _ := m.Registry().Get(roomID)
	if room.OwnerID != "alice" {
		t.Errorf("owner = %q, want alice", room.OwnerID)
	}
	if !room.AutoDelete {
		t.Error("auto delete should default to on")
	}
	if room.ControlMessageID == "" {
		t.Error("control message was not recorded")
	}
	if got := platform.messageCount(); got != 1 {
		t.Errorf("control message count = %d, want 1", got)
	}

	// The creator is moved into the new room.
	if current, _ := platform.MemberVoiceRoom("alice"); current != roomID {
		t.Errorf("alice is in %q, want %q", current, roomID)
	}

	platform.mu.Lock()
	name := platform.rooms[roomID].name
	platform.mu.Unlock()
	if !strings.Contains(name, "Alice") {
		t.Errorf("room name %q does not carry the display name", name)
	}
}

func TestNonTriggerMovesCreateNothing(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, time.Minute)

	events := []VoiceEvent{
		{UserID: "bob", NewChannelID: "general"},                          // join elsewhere
		{UserID: "bob", OldChannelID: "general", NewChannelID: "lounge"}, // move elsewhere
		{UserID: "bob", OldChannelID: "lounge"},                          // leave
	}
	for _, ev := range events {
		m.HandleVoiceEvent(ev)
	}

	if got := platform.roomCount(); got != 0 {
		t.Fatalf("room count = %d, want 0", got)
	}
	if got := m.Registry().Len(); got != 0 {
		t.Fatalf("registry size = %d, want 0", got)
	}
}

func TestMoveWithinTriggerCreatesNothing(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, time.Minute)

	m.HandleVoiceEvent(VoiceEvent{UserID: "bob", OldChannelID: triggerID, NewChannelID: triggerID})

	if got := platform.roomCount(); got != 0 {
		t.Fatalf("room count = %d, want 0", got)
	}
}

func TestNonOwnerActionsRejected(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, time.Minute)
	roomID := createRoom(t, m, platform, "alice", "Alice")

	actions := []Action{ActionLock, ActionLimit, ActionTransfer, ActionInvite, ActionBlock, ActionDelete}
	for _, action := range actions {
		if _, _, err := m.Press(action, roomID, "mallory"); !errors.Is(err, ErrNotOwner) {
			t.Errorf("Press(%s) by non-owner: err = %v, want ErrNotOwner", action, err)
		}
	}
	if _, err := m.Submit(ActionLimit, roomID, "mallory", "5"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Submit by non-owner: err = %v, want ErrNotOwner", err)
	}

	// Nothing changed.
	if locked, _ := platform.RoomLocked(roomID); locked {
		t.Error("room became locked despite rejection")
	}
	if limit, _ := platform.UserLimit(roomID); limit != 0 {
		t.Errorf("limit = %d, want 0", limit)
	}
	if got := platform.roomCount(); got != 1 {
		t.Errorf("room count = %d, want 1", got)
	}
	room, _ := m.Registry().Get(roomID)
	if room.OwnerID != "alice" {
		t.Errorf("owner = %q, want alice", room.OwnerID)
	}
}

func TestUnknownRoomRejected(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, time.Minute)

	if _, _, err := m.Press(ActionLock, "no-such-room", "alice"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestLockToggle(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, time.Minute)
	roomID := createRoom(t, m, platform, "alice", "Alice")

	reply, prompt, err := m.Press(ActionLock, roomID, "alice")
	if err != nil || prompt != nil {
		t.Fatalf("lock: reply=%v prompt=%v err=%v", reply, prompt, err)
	}
	if locked, _ := platform.RoomLocked(roomID); !locked {
		t.Fatal("room should be locked after first toggle")
	}

	if _, _, err := m.Press(ActionLock, roomID, "alice"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if locked, _ := platform.RoomLocked(roomID); locked {
		t.Fatal("room should be unlocked after second toggle")
	}
}

func TestSetLimitClampsAndRejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{name: "plain", input: "5", want: 5},
		{name: "zero clears", input: "0", want: 0},
		{name: "above max clamps", input: "150", want: 99},
		{name: "negative clamps to zero", input: "-3", want: 0},
		{name: "max exact", input: "99", want: 99},
		{name: "whitespace ok", input: " 7 ", want: 7},
		{name: "non numeric rejected", input: "abc", wantErr: ErrInvalidLimit},
		{name: "empty rejected", input: "", wantErr: ErrInvalidLimit},
		{name: "mixed rejected", input: "5x", wantErr: ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := newFakePlatform()
			m := newTestManager(t, platform, time.Minute)
			roomID := createRoom(t, m, platform, "alice", "Alice")

			_, err := m.Submit(ActionLimit, roomID, "alice", tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if limit, _ := platform.UserLimit(roomID); limit != 0 {
					t.Errorf("limit changed to %d on rejected input", limit)
				}
				return
			}
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if limit, _ := platform.UserLimit(roomID); limit != tt.want {
				t.Errorf("limit = %d, want %d", limit, tt.want)
			}
		})
	}
}

func TestTransferOwnership(t *testing.T) {
	platform := newFakePlatform()
	platform.addGuildMember("bob", "Bob")
	m := newTestManager(t, platform, time.Minute)
	roomID := createRoom(t, m, platform, "alice", "Alice")

	reply, err := m.Submit(ActionTransfer, roomID, "alice", "<@bob>")
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("non-numeric mention: err = %v, want ErrInvalidReference", err)
	}

	platform.addGuildMember("99001", "Bob")
	reply, err = m.Submit(ActionTransfer, roomID, "alice", "<@99001>")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !strings.Contains(reply.Content, "Bob") {
		t.Errorf("reply %q does not name the new owner", reply.Content)
	}

	room, _ := m.Registry().Get(roomID)
	if room.OwnerID != "99001" {
		t.Errorf("owner = %q, want 99001", room.OwnerID)
	}

	// The old owner lost the gate, the new owner holds it.
	if _, _, err := m.Press(ActionLock, roomID, "alice"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("old owner: err = %v, want ErrNotOwner", err)
	}
	if _, _, err := m.Press(ActionLock, roomID, "99001"); err != nil {
		t.Errorf("new owner: %v", err)
	}
}

func TestInviteSendsDM(t *testing.T) {
	platform := newFakePlatform()
	platform.addGuildMember("42", "Carol")
	m := newTestManager(t, platform, time.Minute)
	roomID := createRoom(t, m, platform, "alice", "Alice")

	reply, err := m.Submit(ActionInvite, roomID, "alice", "42")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if !strings.Contains(reply.Content, "Carol") {
		t.Errorf("reply %q does not name the invitee", reply.Content)
	}

	platform.mu.Lock()
	dms := platform.dms["42"]
	platform.mu.Unlock()
	if len(dms) != 1 || !strings.Contains(dms[0], "https://invite.test/"+roomID) {
		t.Fatalf("dm = %v, want one message with the invite link", dms)
	}
}

func TestInviteDMFailureSurfacesLink(t *testing.T) {
	platform := newFakePlatform()
	platform.addGuildMember("42", "Carol")
	platform.dmErr = errors.New("dms closed")
	m := newTestManager(t, platform, time.Minute)
	roomID := createRoom(t, m, platform, "alice", "Alice")

	reply, err := m.Submit(ActionInvite, roomID, "alice", "42")
	if err != nil {
		t.Fatalf("invite with closed DMs should not fail: %v", err)
	}
	if !strings.Contains(reply.Content, "https://invite.test/"+roomID) {
		t.Errorf("reply %q does not surface the invite link", reply.Content)
	}
}

func TestBlockDeniesAndDisconnects(t *testing.T) {
	platform := newFakePlatform()
	platform.addGuildMember("42", "Carol")
	m := newTestManager(t, platform, time.Minute)
	roomID := createRoom(t, m, platform, "alice", "Alice")
	platform.MoveMember("42", roomID)

	if _, err := m.Submit(ActionBlock, roomID, "alice", "42"); err != nil {
		t.Fatalf("block: %v", err)
	}

	platform.mu.Lock()
	denied := platform.rooms[roomID].denied["42"]
	platform.mu.Unlock()
	if !denied {
		t.Error("connect was not denied for the blocked user")
	}
	if current, _ := platform.MemberVoiceRoom("42"); current != "" {
		t.Errorf("blocked user still connected to %q", current)
	}
}

func TestBlockOutsideRoomDoesNotDisconnect(t *testing.T) {
	platform := newFakePlatform()
	platform.addGuildMember("42", "Carol")
	m := newTestManager(t, platform, time.Minute)
	roomID := createRoom(t, m, platform, "alice", "Alice")
	platform.mu.Lock()
	platform.rooms["elsewhere-room"] = &fakeRoom{denied: make(map[string]bool)}
	platform.mu.Unlock()
	platform.MoveMember("42", "elsewhere-room")

	if _, err := m.Submit(ActionBlock, roomID, "alice", "42"); err != nil {
		t.Fatalf("block: %v", err)
	}
	if current, _ := platform.MemberVoiceRoom("42"); current != "elsewhere-room" {
		t.Errorf("user in %q, should have stayed in elsewhere-room", current)
	}
}

func TestResolutionFailuresBeforeLookup(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, time.Minute)
	roomID := createRoom(t, m, platform, "alice", "Alice")

	for _, action := range []Action{ActionTransfer, ActionInvite, ActionBlock} {
		if _, err := m.Submit(action, roomID, "alice", "not a user"); !errors.Is(err, ErrInvalidReference) {
			t.Errorf("Submit(%s, garbage): err = %v, want ErrInvalidReference", action, err)
		}
	}
	platform.mu.Lock()
	fetched := len(platform.fetchedUsers)
	platform.mu.Unlock()
	if fetched != 0 {
		t.Errorf("FetchMember called %d times for malformed input, want 0", fetched)
	}

	// Well-formed but unknown ids fail after the lookup.
	if _, err := m.Submit(ActionInvite, roomID, "alice", "<@999>"); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("unknown member: err = %v, want ErrMemberNotFound", err)
	}
	platform.mu.Lock()
	fetched = len(platform.fetchedUsers)
	platform.mu.Unlock()
	if fetched != 1 {
		t.Errorf("FetchMember called %d times for valid id, want 1", fetched)
	}
}

func TestDeleteRoomAndDoubleDelete(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, time.Minute)
	roomID := createRoom(t, m, platform, "alice", "Alice")

	reply, prompt, err := m.Press(ActionDelete, roomID, "alice")
	if err != nil || prompt != nil {
		t.Fatalf("delete: reply=%v prompt=%v err=%v", reply, prompt, err)
	}
	if got := platform.roomCount(); got != 0 {
		t.Errorf("room count = %d, want 0", got)
	}
	if got := platform.messageCount(); got != 0 {
		t.Errorf("control message count = %d, want 0", got)
	}
	if got := m.Registry().Len(); got != 0 {
		t.Errorf("registry size = %d, want 0", got)
	}

	if _, _, err := m.Press(ActionDelete, roomID, "alice"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("second delete: err = %v, want ErrRoomNotFound", err)
	}
}

func TestPromptsForInputActions(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, time.Minute)
	roomID := createRoom(t, m, platform, "alice", "Alice")

	for _, action := range []Action{ActionLimit, ActionTransfer, ActionInvite, ActionBlock} {
		reply, prompt, err := m.Press(action, roomID, "alice")
		if err != nil {
			t.Fatalf("Press(%s): %v", action, err)
		}
		if reply != nil || prompt == nil {
			t.Fatalf("Press(%s): reply=%v prompt=%v, want a prompt", action, reply, prompt)
		}
		if prompt.Action != action || prompt.RoomID != roomID {
			t.Errorf("prompt routes to %s/%s, want %s/%s", prompt.Action, prompt.RoomID, action, roomID)
		}
		if prompt.Title == "" || prompt.Label == "" {
			t.Errorf("Press(%s): prompt is missing display text", action)
		}
	}
}

func TestControlMessageRecreatedAfterOutOfBandDelete(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, time.Minute)

	roomID := createRoom(t, m, platform, "alice", "Alice")
	room, _ := m.Registry().Get(roomID)
	oldMsgID := room.ControlMessageID

	// Someone removes the control message behind the manager's back.
	if err := platform.DeleteControlMessage(oldMsgID); err != nil {
		t.Fatal(err)
	}

	if _, _, err := m.Press(ActionLock, roomID, "alice"); err != nil {
		t.Fatalf("lock after message loss: %v", err)
	}

	room, _ = m.Registry().Get(roomID)
	if room.ControlMessageID == "" || room.ControlMessageID == oldMsgID {
		t.Fatalf("control message id = %q, want a fresh id (old %q)", room.ControlMessageID, oldMsgID)
	}
	if got := platform.messageCount(); got != 1 {
		t.Errorf("control message count = %d, want 1", got)
	}
	platform.mu.Lock()
	sum := platform.messages[room.ControlMessageID]
	platform.mu.Unlock()
	if !sum.Locked {
		t.Error("recreated message does not show the locked state")
	}
}

func TestRoomUsableWhenControlMessageSendFails(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, time.Minute)

	platform.mu.Lock()
	platform.sendErr = errors.New("channel unavailable")
	platform.mu.Unlock()

	roomID := createRoom(t, m, platform, "alice", "Alice")

	room, _ := m.Registry().Get(roomID)
	if room.ControlMessageID != "" {
		t.Fatalf("control message id = %q, want empty after send failure", room.ControlMessageID)
	}
	if current, _ := platform.MemberVoiceRoom("alice"); current != roomID {
		t.Errorf("alice is in %q, want %q", current, roomID)
	}

	// Owner actions still work without a surface.
	if _, _, err := m.Press(ActionLock, roomID, "alice"); err != nil {
		t.Fatalf("lock without control message: %v", err)
	}
	locked, _ := platform.RoomLocked(roomID)
	if !locked {
		t.Error("room was not locked")
	}

	// Once sending recovers, the next action restores the surface.
	platform.mu.Lock()
	platform.sendErr = nil
	platform.mu.Unlock()
	if _, _, err := m.Press(ActionLock, roomID, "alice"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	room, _ = m.Registry().Get(roomID)
	if room.ControlMessageID == "" {
		t.Error("control message was not recreated after sending recovered")
	}
}

func TestReclaimDeletesEmptyRoom(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, 20*time.Millisecond)
	roomID := createRoom(t, m, platform, "alice", "Alice")

	platform.DisconnectMember("alice")
	m.HandleVoiceEvent(VoiceEvent{UserID: "alice", OldChannelID: roomID})

	waitFor(t, 2*time.Second, func() bool { return platform.roomCount() == 0 })
	if got := m.Registry().Len(); got != 0 {
		t.Errorf("registry size = %d, want 0", got)
	}
	if got := platform.messageCount(); got != 0 {
		t.Errorf("control message count = %d, want 0", got)
	}
}

func TestReclaimSparesRejoinedRoom(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, 50*time.Millisecond)
	roomID := createRoom(t, m, platform, "alice", "Alice")

	// Alice leaves and the empty-room check is armed.
	platform.DisconnectMember("alice")
	m.HandleVoiceEvent(VoiceEvent{UserID: "alice", OldChannelID: roomID})

	// Bob's join lands before the check fires.
	platform.MoveMember("bob", roomID)

	time.Sleep(200 * time.Millisecond)
	if got := platform.roomCount(); got != 1 {
		t.Fatalf("room count = %d, want 1 (occupied room must survive)", got)
	}
	if _, ok := m.Registry().Get(roomID); !ok {
		t.Error("room dropped from registry despite being occupied")
	}
}

func TestReclaimTolerantOfConcurrentDelete(t *testing.T) {
	platform := newFakePlatform()
	m := newTestManager(t, platform, 20*time.Millisecond)
	roomID := createRoom(t, m, platform, "alice", "Alice")

	platform.DisconnectMember("alice")
	m.HandleVoiceEvent(VoiceEvent{UserID: "alice", OldChannelID: roomID})

	// The owner deletes before the re-check fires.
	if _, _, err := m.Press(ActionDelete, roomID, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if got := m.Registry().Len(); got != 0 {
		t.Errorf("registry size = %d, want 0", got)
	}
}

func TestCreateFailureLeavesNoState(t *testing.T) {
	platform := newFakePlatform()
	platform.createErr = errors.New("category full")
	m := newTestManager(t, platform, time.Minute)

	m.HandleVoiceEvent(VoiceEvent{UserID: "alice", DisplayName: "Alice", NewChannelID: triggerID})

	if got := m.Registry().Len(); got != 0 {
		t.Errorf("registry size = %d, want 0", got)
	}
	if got := platform.messageCount(); got != 0 {
		t.Errorf("control message count = %d, want 0", got)
	}
}

// Full lifecycle: create, lock, limit, invite, transfer, reclaim.
func TestRoomLifecycle(t *testing.T) {
	platform := newFakePlatform()
	platform.addGuildMember("2001", "Bob")
	m := newTestManager(t, platform, 20*time.Millisecond)

	roomID := createRoom(t, m, platform, "1001", "Alice")

	if _, _, err := m.Press(ActionLock, roomID, "1001"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := m.Submit(ActionLimit, roomID, "1001", "120"); err != nil {
		t.Fatalf("limit: %v", err)
	}
	if limit, _ := platform.UserLimit(roomID); limit != MaxUserLimit {
		t.Fatalf("limit = %d, want %d", limit, MaxUserLimit)
	}
	if _, err := m.Submit(ActionInvite, roomID, "1001", "<@2001>"); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := m.Submit(ActionTransfer, roomID, "1001", "2001"); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	// The new owner drives; the old owner is out.
	if _, _, err := m.Press(ActionLock, roomID, "1001"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("old owner still authorized: %v", err)
	}

	// Everyone leaves; the room is reclaimed.
	platform.DisconnectMember("1001")
	m.HandleVoiceEvent(VoiceEvent{UserID: "1001", OldChannelID: roomID})

	waitFor(t, 2*time.Second, func() bool { return platform.roomCount() == 0 })
	if got := m.Registry().Len(); got != 0 {
		t.Errorf("registry size = %d, want 0", got)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
