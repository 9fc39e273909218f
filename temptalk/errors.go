package temptalk

import "errors"

var (
	// ErrRoomNotFound is returned for any request referencing a room id that
	// is no longer tracked.
	ErrRoomNotFound = errors.New("room no longer exists")

	// ErrNotOwner is returned when the requester does not own the room.
	ErrNotOwner = errors.New("only the room owner may do this")

	// ErrInvalidReference is returned before any guild lookup when a target
	// reference is neither a mention nor a bare numeric id.
	ErrInvalidReference = errors.New("expected a mention or a user id")

	// ErrMemberNotFound is returned when a syntactically valid reference does
	// not resolve to a current guild member.
	ErrMemberNotFound = errors.New("user not found in this server")

	// ErrInvalidLimit is returned when a submitted user limit is not numeric.
	ErrInvalidLimit = errors.New("limit must be a number")
)
