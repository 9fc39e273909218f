package temptalk

import "testing"

func TestButtonIDRoundTrip(t *testing.T) {
	actions := []Action{ActionLock, ActionLimit, ActionTransfer, ActionInvite, ActionBlock, ActionDelete}
	for _, action := range actions {
		id := action.ButtonID("room-7")
		got, roomID, ok := ParseButtonID(id)
		if !ok || got != action || roomID != "room-7" {
			t.Errorf("ParseButtonID(%q) = (%v, %q, %v), want (%v, room-7, true)", id, got, roomID, ok, action)
		}
	}
}

func TestModalIDRoundTrip(t *testing.T) {
	for _, action := range []Action{ActionLimit, ActionTransfer, ActionInvite, ActionBlock} {
		id := action.ModalID("room-7")
		got, roomID, ok := ParseModalID(id)
		if !ok || got != action || roomID != "room-7" {
			t.Errorf("ParseModalID(%q) = (%v, %q, %v), want (%v, room-7, true)", id, got, roomID, ok, action)
		}
	}
}

func TestParseButtonIDRejectsForeignIDs(t *testing.T) {
	bad := []string{
		"",
		"temp_lock",            // no separator
		"other_button:room-7",  // unknown action
		"temp_lock_modal:r1",   // modal id is not a button id
		"get_role:12345",
	}
	for _, id := range bad {
		if _, _, ok := ParseButtonID(id); ok {
			t.Errorf("ParseButtonID(%q) accepted a foreign id", id)
		}
	}
}

func TestParseModalIDRejectsForeignIDs(t *testing.T) {
	bad := []string{
		"",
		"temp_limit:room-7", // button id is not a modal id
		"temp_limit_modal",  // no separator
		"nope_modal:room-7",
	}
	for _, id := range bad {
		if _, _, ok := ParseModalID(id); ok {
			t.Errorf("ParseModalID(%q) accepted a foreign id", id)
		}
	}
}

func TestModalRoomIDSurvivesColons(t *testing.T) {
	// Room ids are opaque; only the first separator splits.
	action, roomID, ok := ParseButtonID("temp_lock:a:b:c")
	if !ok || action != ActionLock || roomID != "a:b:c" {
		t.Fatalf("got (%v, %q, %v)", action, roomID, ok)
	}
}
