package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventOK acknowledges a successful request.
	EventOK EventKind = iota
	// EventError reports a recoverable domain error.
	EventError
	// EventNotice is a system message shown to room members.
	EventNotice
	// EventMessage delivers a chat message, room or private.
	EventMessage
	// EventUserList delivers the member list of a room.
	EventUserList
	// EventRoomList delivers the set of known room names.
	EventRoomList
	// EventHistory delivers persisted messages of a room.
	EventHistory
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind      EventKind
	Room      string
	Text      string // OK/notice text
	Error     *CoreError
	Message   *Message
	Users     []string
	Rooms     []string
	History   []*Message
	Truncated bool // history reply is incomplete (store failure)
}
