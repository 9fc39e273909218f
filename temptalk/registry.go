package temptalk

import "sync"

type (
	// Room is the tracked record of one active temporary voice room. Lock
	// state and user limit are deliberately not stored here: the platform is
	// the source of truth for both, so the record cannot drift from reality.
	Room struct {
		ID               string
		OwnerID          string
		AutoDelete       bool
		ControlMessageID string
	}

	// Registry is the single-writer map of active rooms. A room id is
	// present exactly while the manager believes the platform-side room
	// still exists and has not been reclaimed.
	Registry struct {
		mu    sync.RWMutex
		rooms map[string]Room
	}
)

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]Room)}
}

// Put registers a room. The caller must have verified the owner is a guild
// member at time of assignment.
func (r *Registry) Put(room Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = room
}

// Get returns a copy of the room record.
func (r *Registry) Get(roomID string) (Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	return room, ok
}

// Delete removes the room and reports whether it was present.
func (r *Registry) Delete(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[roomID]
	delete(r.rooms, roomID)
	return ok
}

// SetOwner updates the room's owner in place.
func (r *Registry) SetOwner(roomID, ownerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	room.OwnerID = ownerID
	r.rooms[roomID] = room
	return true
}

// SetControlMessage updates the room's control message reference in place.
func (r *Registry) SetControlMessage(roomID, messageID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	room.ControlMessageID = messageID
	r.rooms[roomID] = room
	return true
}

// Len returns the number of tracked rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
