package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomchat/roomchat-server/internal/store"
)

// Options tune hub behavior.
type Options struct {
	DefaultRoom     string
	HistoryLimit    int   // rows returned when the client asks for no limit
	MaxHistoryLimit int   // hard cap on client-requested limits
	MaxFileBytes    int64 // ceiling on decoded file payload size
}

const (
	defaultRoomName     = "Lobby"
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

func (o Options) withDefaults() Options {
	if o.DefaultRoom == "" {
		o.DefaultRoom = defaultRoomName
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = defaultHistoryLimit
	}
	if o.MaxHistoryLimit <= 0 {
		o.MaxHistoryLimit = maxHistoryLimit
	}
	if o.MaxFileBytes <= 0 {
		o.MaxFileBytes = MaxFileSize
	}
	return o
}

// Hub owns the room and username registries. All mutation and fan-out runs
// on the single Run goroutine, which makes membership changes atomic and
// keeps per-room delivery in arrival order.
type Hub struct {
	opts  Options
	store store.HistoryStore
	log   *zerolog.Logger

	commands   chan *Command
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	ctx     context.Context
	clients map[*Client]struct{}
	rooms   map[string]*Room
	byName  map[string]*Client
}

// NewHub creates a hub. The store may be nil, in which case persistence is
// disabled and history queries return empty results.
func NewHub(st store.HistoryStore, logger *zerolog.Logger, opts Options) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	opts = opts.withDefaults()

	h := &Hub{
		opts:       opts,
		store:      st,
		log:        logger,
		commands:   make(chan *Command, 256),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]*Room),
		byName:     make(map[string]*Client),
	}
	// The default room exists from startup and is always a valid join target.
	h.rooms[opts.DefaultRoom] = NewRoom(opts.DefaultRoom)
	return h
}

// Run processes registrations and commands until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.ctx = ctx
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Debug().Str("client_id", c.ID).Msg("client registered")
		case c := <-h.unregister:
			h.drop(c, "disconnected")
		case cmd := <-h.commands:
			h.dispatch(cmd)
		}
	}
}

// RegisterClient adds a client to the hub.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// UnregisterClient removes a client, cleaning up its name and room
// membership. Safe to call more than once.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Send submits a command for processing. It may block briefly when the hub
// is busy, which backpressures the submitting reader.
func (h *Hub) Send(cmd *Command) {
	select {
	case h.commands <- cmd:
	case <-h.done:
	}
}

// Snapshot returns a point-in-time view of all rooms and their members.
func (h *Hub) Snapshot() []RoomInfo {
	reply := make(chan []RoomInfo, 1)
	select {
	case h.commands <- &Command{Kind: commandSnapshot, reply: reply}:
	case <-h.done:
		return nil
	}
	select {
	case infos := <-reply:
		return infos
	case <-h.done:
		return nil
	}
}

// DefaultRoom returns the configured default room name.
func (h *Hub) DefaultRoom() string {
	return h.opts.DefaultRoom
}

func (h *Hub) dispatch(cmd *Command) {
	if cmd.Kind == commandSnapshot {
		cmd.reply <- h.snapshot()
		return
	}

	c := cmd.Client
	if c == nil || c.closed {
		return
	}

	switch cmd.Kind {
	case CommandSetName:
		h.handleSetName(c, cmd.Name)
	case CommandJoinRoom:
		h.handleJoinRoom(c, cmd.Room)
	case CommandLeaveRoom:
		h.handleLeaveRoom(c)
	case CommandSendRoomMessage:
		h.handleRoomMessage(c, cmd.Room, cmd.Text, nil)
	case CommandSendPrivate:
		h.handlePrivate(c, cmd.To, cmd.Text, nil)
	case CommandSendFile:
		h.handleFile(c, cmd)
	case CommandListUsers:
		h.handleListUsers(c)
	case CommandListRooms:
		h.handleListRooms(c)
	case CommandHistory:
		h.handleHistory(c, cmd.Room, cmd.Limit)
	default:
		h.sendError(c, coreError(ErrCodeUnsupportedMessage, "Unknown command."))
	}
}

func (h *Hub) handleSetName(c *Client, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		h.sendError(c, coreError(ErrCodeBadRequest, "Empty name not allowed."))
		return
	}
	if c.name != "" {
		h.sendError(c, coreError(ErrCodeBadRequest, "Name already set."))
		return
	}
	if _, taken := h.byName[name]; taken {
		h.sendError(c, coreError(ErrCodeNameTaken, "Name already taken."))
		return
	}

	c.name = name
	h.byName[name] = c
	h.sendOK(c, fmt.Sprintf("Welcome %s!", name))
	h.log.Info().Str("client_id", c.ID).Str("user", name).Msg("name claimed")
}

func (h *Hub) handleJoinRoom(c *Client, roomName string) {
	if !h.requireName(c) {
		return
	}
	roomName = strings.TrimSpace(roomName)
	if roomName == "" {
		roomName = h.opts.DefaultRoom
	}

	if c.room == roomName {
		h.sendOK(c, fmt.Sprintf("Already in %s.", roomName))
		h.sendHistory(c, roomName, 0)
		h.sendUserList(c, h.rooms[roomName])
		return
	}

	if c.room != "" {
		h.leaveCurrentRoom(c)
	}

	room := h.ensureRoom(roomName)
	room.AddClient(c)
	c.room = roomName

	h.sendOK(c, fmt.Sprintf("Joined room %s.", roomName))
	h.broadcastRoom(room, &Event{
		Kind: EventNotice,
		Room: roomName,
		Text: fmt.Sprintf("%s has joined %s.", c.name, roomName),
	}, c)
	h.sendHistory(c, roomName, 0)
	h.broadcastUserList(room)
	h.broadcastRoomList()

	h.log.Info().Str("user", c.name).Str("room", roomName).Msg("joined room")
}

func (h *Hub) handleLeaveRoom(c *Client) {
	if !h.requireName(c) {
		return
	}
	if c.room == "" {
		h.sendError(c, coreError(ErrCodeNotInRoom, "Not in any room."))
		return
	}

	old := c.room
	h.leaveCurrentRoom(c)

	def := h.ensureRoom(h.opts.DefaultRoom)
	def.AddClient(c)
	c.room = def.Name

	h.sendOK(c, fmt.Sprintf("Left room %s, joined %s.", old, def.Name))
	h.broadcastRoom(def, &Event{
		Kind: EventNotice,
		Room: def.Name,
		Text: fmt.Sprintf("%s has joined %s.", c.name, def.Name),
	}, c)
	h.broadcastUserList(def)
	h.broadcastRoomList()
}

func (h *Hub) handleRoomMessage(c *Client, roomName, text string, file *FilePayload) {
	if !h.requireName(c) {
		return
	}
	if c.room == "" {
		h.sendError(c, coreError(ErrCodeNotInRoom, "Join a room first."))
		return
	}
	if roomName == "" {
		roomName = c.room
	}
	if roomName != c.room {
		h.sendError(c, coreError(ErrCodeBadRequest,
			fmt.Sprintf("You are not in room %s.", roomName)))
		return
	}

	msg := &Message{
		Room:      roomName,
		From:      c.name,
		CreatedAt: time.Now().UTC(),
	}
	if file != nil {
		msg.Filename = file.Filename
		msg.Body = file.Data
	} else {
		msg.Body = text
	}

	h.persist(msg)

	room := h.rooms[roomName]
	h.broadcastRoom(room, &Event{Kind: EventMessage, Room: roomName, Message: msg}, c)
}

func (h *Hub) handlePrivate(c *Client, to, text string, file *FilePayload) {
	if !h.requireName(c) {
		return
	}
	to = strings.TrimSpace(to)
	target, ok := h.byName[to]
	if !ok {
		h.sendError(c, coreError(ErrCodeNotFound, fmt.Sprintf("User %s not found.", to)))
		return
	}

	msg := &Message{
		From:      c.name,
		To:        to,
		Private:   true,
		CreatedAt: time.Now().UTC(),
	}
	if file != nil {
		msg.Filename = file.Filename
		msg.Body = file.Data
	} else {
		msg.Body = text
	}

	// Private messages reach only the two parties and skip history.
	ev := &Event{Kind: EventMessage, Message: msg}
	h.send(target, ev)
	if target != c {
		h.send(c, ev)
	}
}

func (h *Hub) handleFile(c *Client, cmd *Command) {
	if !h.requireName(c) {
		return
	}
	payload, cerr := ValidateFile(cmd.Filename, cmd.Data, h.opts.MaxFileBytes)
	if cerr != nil {
		h.sendError(c, cerr)
		return
	}

	if cmd.To != "" {
		h.handlePrivate(c, cmd.To, "", payload)
		return
	}
	h.handleRoomMessage(c, cmd.Room, "", payload)
}

func (h *Hub) handleListUsers(c *Client) {
	if c.room == "" {
		h.send(c, &Event{Kind: EventUserList, Users: []string{}})
		return
	}
	h.sendUserList(c, h.rooms[c.room])
}

func (h *Hub) handleListRooms(c *Client) {
	h.send(c, &Event{Kind: EventRoomList, Rooms: h.roomNames()})
}

func (h *Hub) handleHistory(c *Client, roomName string, limit int) {
	roomName = strings.TrimSpace(roomName)
	if roomName == "" {
		roomName = h.opts.DefaultRoom
	}
	h.sendHistory(c, roomName, limit)
}

// persist appends a room message to history, best effort. Append failures
// degrade persistence but never interrupt live delivery.
func (h *Hub) persist(msg *Message) {
	if h.store == nil {
		return
	}
	id, err := h.store.Append(h.ctx, &store.Message{
		Room:      msg.Room,
		Sender:    msg.From,
		Body:      msg.Body,
		Filename:  msg.Filename,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("room", msg.Room).Msg("history append failed")
		return
	}
	msg.ID = id
}

func (h *Hub) sendHistory(c *Client, roomName string, limit int) {
	if limit <= 0 {
		limit = h.opts.HistoryLimit
	}
	if limit > h.opts.MaxHistoryLimit {
		limit = h.opts.MaxHistoryLimit
	}

	if h.store == nil {
		h.send(c, &Event{Kind: EventHistory, Room: roomName})
		return
	}

	records, err := h.store.History(h.ctx, roomName, limit)
	if err != nil {
		h.log.Warn().Err(err).Str("room", roomName).Msg("history query failed")
		h.sendError(c, coreError(ErrCodeStoreUnavailable, "History unavailable."))
		h.send(c, &Event{Kind: EventHistory, Room: roomName, Truncated: true})
		return
	}

	history := make([]*Message, 0, len(records))
	for _, rec := range records {
		history = append(history, &Message{
			ID:        rec.ID,
			Room:      rec.Room,
			From:      rec.Sender,
			Body:      rec.Body,
			Filename:  rec.Filename,
			CreatedAt: rec.CreatedAt,
		})
	}
	h.send(c, &Event{Kind: EventHistory, Room: roomName, History: history})
}

func (h *Hub) requireName(c *Client) bool {
	if c.name == "" {
		h.sendError(c, coreError(ErrCodeNameRequired, "Set a name first."))
		return false
	}
	return true
}

func (h *Hub) ensureRoom(name string) *Room {
	room, ok := h.rooms[name]
	if !ok {
		room = NewRoom(name)
		h.rooms[name] = room
		h.log.Info().Str("room", name).Msg("room created")
	}
	return room
}

// leaveCurrentRoom removes the client from its room and tells the remaining
// members. Rooms are never deleted; empty ones stay valid join targets.
func (h *Hub) leaveCurrentRoom(c *Client) {
	room := h.rooms[c.room]
	c.room = ""
	if room == nil {
		return
	}
	room.RemoveClient(c)
	if room.Empty() {
		h.log.Debug().Str("room", room.Name).Msg("room now empty")
	}
	h.broadcastRoom(room, &Event{
		Kind: EventNotice,
		Room: room.Name,
		Text: fmt.Sprintf("%s has left %s.", c.name, room.Name),
	}, nil)
	h.broadcastUserList(room)
}

// drop removes a client entirely: name mapping, room membership, event
// channel. Safe against repeat calls for the same client.
func (h *Hub) drop(c *Client, reason string) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)

	if c.name != "" && h.byName[c.name] == c {
		delete(h.byName, c.name)
	}
	if c.room != "" {
		h.leaveCurrentRoom(c)
	}

	c.closed = true
	close(c.Events)
	h.broadcastRoomList()

	h.log.Info().Str("client_id", c.ID).Str("user", c.name).Str("reason", reason).
		Msg("client dropped")
}

func (h *Hub) send(c *Client, ev *Event) {
	if !c.trySend(ev) {
		h.dropSlow(c)
	}
}

func (h *Hub) sendOK(c *Client, text string) {
	h.send(c, &Event{Kind: EventOK, Text: text})
}

func (h *Hub) sendError(c *Client, cerr *CoreError) {
	h.send(c, &Event{Kind: EventError, Error: cerr})
}

// broadcastRoom fans an event out to room members. Slow consumers are
// disconnected afterwards so the rest of the room keeps its liveness.
func (h *Hub) broadcastRoom(room *Room, ev *Event, exclude *Client) {
	if room == nil {
		return
	}
	for _, slow := range room.Broadcast(ev, exclude) {
		h.dropSlow(slow)
	}
}

func (h *Hub) broadcastAll(ev *Event) {
	var slow []*Client
	for c := range h.clients {
		if !c.trySend(ev) {
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.dropSlow(c)
	}
}

func (h *Hub) dropSlow(c *Client) {
	h.log.Warn().Str("client_id", c.ID).Str("user", c.name).
		Msg("event queue full, dropping slow consumer")
	h.drop(c, "slow consumer")
}

func (h *Hub) sendUserList(c *Client, room *Room) {
	if room == nil {
		h.send(c, &Event{Kind: EventUserList, Users: []string{}})
		return
	}
	h.send(c, &Event{Kind: EventUserList, Room: room.Name, Users: room.Members()})
}

func (h *Hub) broadcastUserList(room *Room) {
	h.broadcastRoom(room, &Event{
		Kind:  EventUserList,
		Room:  room.Name,
		Users: room.Members(),
	}, nil)
}

func (h *Hub) broadcastRoomList() {
	h.broadcastAll(&Event{Kind: EventRoomList, Rooms: h.roomNames()})
}

func (h *Hub) roomNames() []string {
	names := make([]string, 0, len(h.rooms))
	for name := range h.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Hub) snapshot() []RoomInfo {
	infos := make([]RoomInfo, 0, len(h.rooms))
	for _, name := range h.roomNames() {
		room := h.rooms[name]
		infos = append(infos, RoomInfo{Name: name, Members: room.Members()})
	}
	return infos
}
