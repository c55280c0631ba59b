package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSetName claims a username for the session.
	CommandSetName CommandKind = iota
	// CommandJoinRoom moves the client into a room, auto-creating it.
	CommandJoinRoom
	// CommandLeaveRoom moves the client back to the default room.
	CommandLeaveRoom
	// CommandSendRoomMessage delivers a chat message to room members.
	CommandSendRoomMessage
	// CommandSendPrivate delivers a message to one named recipient.
	CommandSendPrivate
	// CommandSendFile delivers a base64 file payload to a room or recipient.
	CommandSendFile
	// CommandListUsers requests the member list of the current room.
	CommandListUsers
	// CommandListRooms requests the set of known room names.
	CommandListRooms
	// CommandHistory requests persisted messages of a room.
	CommandHistory
	// commandSnapshot answers registry queries from outside the hub loop.
	commandSnapshot
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Client   *Client
	Name     string
	Room     string
	To       string
	Text     string
	Filename string
	Data     string
	Limit    int

	reply chan []RoomInfo // commandSnapshot only
}

// RoomInfo is a point-in-time view of one room for registry queries.
type RoomInfo struct {
	Name    string
	Members []string
}
