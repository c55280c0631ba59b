package core

// Client is a chat participant as seen by the core layer. The Events channel
// is drained by the transport's writer; name and room are owned by the hub
// goroutine and must not be touched elsewhere.
type Client struct {
	ID     string
	Events chan *Event

	name   string
	room   string
	closed bool
}

// NewClient constructs a client with an event queue of the given capacity.
func NewClient(id string, queueSize int) *Client {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, queueSize),
	}
}

// trySend enqueues an event without blocking. Returns false when the queue
// is full, which marks the client as a slow consumer.
func (c *Client) trySend(ev *Event) bool {
	if c.closed {
		return false
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
