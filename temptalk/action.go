package temptalk

import "strings"

// Action is one entry of the fixed owner-action vocabulary.
type Action int

const (
	ActionLock Action = iota
	ActionLimit
	ActionTransfer
	ActionInvite
	ActionBlock
	ActionDelete
)

var actionNames = map[Action]string{
	ActionLock:     "temp_lock",
	ActionLimit:    "temp_limit",
	ActionTransfer: "temp_transfer",
	ActionInvite:   "temp_invite",
	ActionBlock:    "temp_block",
	ActionDelete:   "temp_delete",
}

func (a Action) String() string { return actionNames[a] }

// ButtonID returns the component custom id for this action on a room.
func (a Action) ButtonID(roomID string) string {
	return a.String() + ":" + roomID
}

// ModalID returns the modal custom id for this action's input prompt.
func (a Action) ModalID(roomID string) string {
	return a.String() + "_modal:" + roomID
}

// ParseButtonID parses a button custom id back into its action and room id.
// The composite id is split exactly once at the platform boundary; everything
// downstream dispatches on the typed Action.
func ParseButtonID(customID string) (Action, string, bool) {
	name, roomID, ok := strings.Cut(customID, ":")
	if !ok {
		return 0, "", false
	}
	for a, n := range actionNames {
		if n == name {
			return a, roomID, true
		}
	}
	return 0, "", false
}

// ParseModalID parses a modal custom id back into its action and room id.
func ParseModalID(customID string) (Action, string, bool) {
	name, roomID, ok := strings.Cut(customID, ":")
	if !ok || !strings.HasSuffix(name, "_modal") {
		return 0, "", false
	}
	name = strings.TrimSuffix(name, "_modal")
	for a, n := range actionNames {
		if n == name {
			return a, roomID, true
		}
	}
	return 0, "", false
}
