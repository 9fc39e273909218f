package temptalk

// ConnectPolicy is the connect permission applied to a principal on a room.
type ConnectPolicy int

const (
	ConnectInherit ConnectPolicy = iota
	ConnectAllow
	ConnectDeny
)

// Member is a resolved guild member.
type Member struct {
	ID   string
	Name string
}

// Platform is the chat-platform capability the room manager drives. The
// production implementation lives in the bot package on top of discordgo;
// tests substitute an in-process fake.
type Platform interface {
	// CreateVoiceRoom creates a voice room as a sibling of the trigger
	// channel with elevated permissions for ownerID and default connect for
	// everyone else. Returns the new room id.
	CreateVoiceRoom(name, ownerID string) (string, error)

	MoveMember(userID, roomID string) error
	DisconnectMember(userID string) error

	// MemberVoiceRoom returns the id of the voice room the user is currently
	// in, or "" if they are not connected.
	MemberVoiceRoom(userID string) (string, error)

	// SendControlMessage posts a fresh control surface for the room to the
	// fixed control channel and returns the message id.
	SendControlMessage(s Summary) (string, error)
	EditControlMessage(messageID string, s Summary) error
	DeleteControlMessage(messageID string) error

	SetConnectEveryone(roomID string, p ConnectPolicy) error
	SetConnectMember(roomID, userID string, p ConnectPolicy) error
	GrantOwner(roomID, userID string) error

	// RoomLocked reports whether default connect is denied for everyone.
	RoomLocked(roomID string) (bool, error)

	SetUserLimit(roomID string, limit int) error
	UserLimit(roomID string) (int, error)

	MemberCount(roomID string) (int, error)
	RoomExists(roomID string) (bool, error)
	DeleteRoom(roomID string) error

	// CreateInvite creates a single-use, time-limited invite link to the room.
	CreateInvite(roomID string) (string, error)

	// FetchMember resolves a guild member by id. Returns an error wrapping
	// ErrMemberNotFound if the user is not in the guild.
	FetchMember(userID string) (Member, error)

	DirectMessage(userID, content string) error
}
