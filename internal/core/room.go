package core

import "sort"

// Room groups clients subscribed to the same channel. Only the hub goroutine
// touches it.
type Room struct {
	Name    string
	clients map[*Client]struct{}
}

// NewRoom constructs a room with no clients.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Broadcast sends an event to all clients in the room except exclude.
// Clients whose queue is full are returned so the hub can drop them.
func (r *Room) Broadcast(ev *Event, exclude *Client) []*Client {
	var slow []*Client
	for client := range r.clients {
		if client == exclude {
			continue
		}
		if !client.trySend(ev) {
			slow = append(slow, client)
		}
	}
	return slow
}

// Members returns the sorted usernames of all named clients in the room.
func (r *Room) Members() []string {
	names := make([]string, 0, len(r.clients))
	for client := range r.clients {
		if client.name != "" {
			names = append(names, client.name)
		}
	}
	sort.Strings(names)
	return names
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
