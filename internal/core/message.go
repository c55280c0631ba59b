package core

import "time"

// Message is the domain model for a chat message, text or file.
type Message struct {
	ID        int64
	Room      string
	From      string
	To        string
	Body      string
	Filename  string // non-empty for file messages; Body then holds base64 data
	Private   bool
	CreatedAt time.Time
}

// IsFile reports whether the message carries a file payload.
func (m *Message) IsFile() bool {
	return m.Filename != ""
}
