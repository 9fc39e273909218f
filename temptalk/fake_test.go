package temptalk

import (
	"errors"
	"fmt"
	"sync"
)

var errUnknownRoom = errors.New("unknown room")

type fakeRoom struct {
	name           string
	limit          int
	lockedEveryone bool
	denied         map[string]bool
}

// fakePlatform is an in-process Platform for tests. All state is guarded by
// one mutex since reclaim timers fire on their own goroutines.
type fakePlatform struct {
	mu sync.Mutex

	nextRoom int
	nextMsg  int

	rooms      map[string]*fakeRoom
	messages   map[string]Summary
	memberRoom map[string]string
	guild      map[string]string // userID -> display name
	dms        map[string][]string

	dmErr        error
	createErr    error
	sendErr      error
	fetchedUsers []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		rooms:      make(map[string]*fakeRoom),
		messages:   make(map[string]Summary),
		memberRoom: make(map[string]string),
		guild:      make(map[string]string),
		dms:        make(map[string][]string),
	}
}

func (f *fakePlatform) addGuildMember(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guild[id] = name
}

func (f *fakePlatform) roomCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rooms)
}

func (f *fakePlatform) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakePlatform) CreateVoiceRoom(name, ownerID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextRoom++
	id := fmt.Sprintf("room-%d", f.nextRoom)
	f.rooms[id] = &fakeRoom{name: name, denied: make(map[string]bool)}
	return id, nil
}

func (f *fakePlatform) MoveMember(userID, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[roomID]; !ok {
		return errUnknownRoom
	}
	f.memberRoom[userID] = roomID
	return nil
}

func (f *fakePlatform) DisconnectMember(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.memberRoom, userID)
	return nil
}

func (f *fakePlatform) MemberVoiceRoom(userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memberRoom[userID], nil
}

func (f *fakePlatform) SendControlMessage(s Summary) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.nextMsg++
	id := fmt.Sprintf("msg-%d", f.nextMsg)
	f.messages[id] = s
	return id, nil
}

func (f *fakePlatform) EditControlMessage(messageID string, s Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[messageID]; !ok {
		return errors.New("unknown message")
	}
	f.messages[messageID] = s
	return nil
}

func (f *fakePlatform) DeleteControlMessage(messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[messageID]; !ok {
		return errors.New("unknown message")
	}
	delete(f.messages, messageID)
	return nil
}

func (f *fakePlatform) SetConnectEveryone(roomID string, p ConnectPolicy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return errUnknownRoom
	}
	room.lockedEveryone = p == ConnectDeny
	return nil
}

func (f *fakePlatform) SetConnectMember(roomID, userID string, p ConnectPolicy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return errUnknownRoom
	}
	room.denied[userID] = p == ConnectDeny
	return nil
}

func (f *fakePlatform) GrantOwner(roomID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[roomID]; !ok {
		return errUnknownRoom
	}
	return nil
}

func (f *fakePlatform) RoomLocked(roomID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return false, errUnknownRoom
	}
	return room.lockedEveryone, nil
}

func (f *fakePlatform) SetUserLimit(roomID string, limit int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return errUnknownRoom
	}
	room.limit = limit
	return nil
}

func (f *fakePlatform) UserLimit(roomID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return 0, errUnknownRoom
	}
	return room.limit, nil
}

func (f *fakePlatform) MemberCount(roomID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.memberRoom {
		if r == roomID {
			count++
		}
	}
	return count, nil
}

func (f *fakePlatform) RoomExists(roomID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rooms[roomID]
	return ok, nil
}

func (f *fakePlatform) DeleteRoom(roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[roomID]; !ok {
		return errUnknownRoom
	}
	delete(f.rooms, roomID)
	for user, r := range f.memberRoom {
		if r == roomID {
			delete(f.memberRoom, user)
		}
	}
	return nil
}

func (f *fakePlatform) CreateInvite(roomID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[roomID]; !ok {
		return "", errUnknownRoom
	}
	return "https://invite.test/" + roomID, nil
}

func (f *fakePlatform) FetchMember(userID string) (Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchedUsers = append(f.fetchedUsers, userID)
	name, ok := f.guild[userID]
	if !ok {
		return Member{}, fmt.Errorf("%s: %w", userID, ErrMemberNotFound)
	}
	return Member{ID: userID, Name: name}, nil
}

func (f *fakePlatform) DirectMessage(userID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms[userID] = append(f.dms[userID], content)
	return nil
}
