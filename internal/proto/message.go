package proto

// Inbound message types.
const (
	TypeSetName      = "SETNAME"
	TypeJoinRoom     = "JOINROOM"
	TypeLeaveRoom    = "LEAVEROOM"
	TypeMsg          = "MSG"
	TypePM           = "PM"
	TypeFile         = "FILE"
	TypeListReq      = "LISTREQ"
	TypeListRoomsReq = "LISTROOMSREQ"
	TypeHistoryReq   = "HISTORYREQ"
)

// Outbound message types.
const (
	TypeOK        = "OK"
	TypeErr       = "ERR"
	TypeNotice    = "NOTICE"
	TypeList      = "LIST"
	TypeListRooms = "LISTROOMS"
	TypeHistory   = "HISTORY"
	// Server-to-client chat messages reuse TypeMsg.
)

// Inbound is one protocol message from the client. The wire format is flat
// JSON, one object per line; Type selects which fields are meaningful.
type Inbound struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	Room     string `json:"room,omitempty"`
	To       string `json:"to,omitempty"`
	Message  string `json:"message,omitempty"`
	Filename string `json:"filename,omitempty"`
	Data     string `json:"data,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Outbound is one protocol message to the client, same framing as Inbound.
type Outbound struct {
	Type      string         `json:"type"`
	Code      string         `json:"code,omitempty"`
	Message   string         `json:"message,omitempty"`
	From      string         `json:"from,omitempty"`
	Room      string         `json:"room,omitempty"`
	Private   bool           `json:"private,omitempty"`
	Filename  string         `json:"filename,omitempty"`
	Data      string         `json:"data,omitempty"`
	TS        int64          `json:"ts,omitempty"`
	Users     []string       `json:"users,omitempty"`
	Rooms     []string       `json:"rooms,omitempty"`
	Messages  []HistoryEntry `json:"messages,omitempty"`
	Truncated bool           `json:"truncated,omitempty"`
}

// HistoryEntry is one persisted message inside a HISTORY reply.
type HistoryEntry struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	From      string `json:"from"`
	Message   string `json:"message"`
	Filename  string `json:"filename,omitempty"`
	Data      string `json:"data,omitempty"`
}
