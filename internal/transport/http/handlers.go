package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomchat/roomchat-server/internal/core"
	"github.com/roomchat/roomchat-server/internal/store"
)

// apiHandlers serves the read-only ops endpoints.
type apiHandlers struct {
	hub          *core.Hub
	store        store.HistoryStore
	historyLimit int
	log          *zerolog.Logger
}

func newAPIHandlers(hub *core.Hub, st store.HistoryStore, historyLimit int, logger *zerolog.Logger) *apiHandlers {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &apiHandlers{
		hub:          hub,
		store:        st,
		historyLimit: historyLimit,
		log:          logger,
	}
}

// RoomResponse describes one room in list responses.
type RoomResponse struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// HistoryMessageResponse describes one persisted message.
type HistoryMessageResponse struct {
	ID        int64  `json:"id"`
	From      string `json:"from"`
	Message   string `json:"message,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GET /api/rooms
func (h *apiHandlers) listRooms(c *gin.Context) {
	infos := h.hub.Snapshot()
	rooms := make([]RoomResponse, 0, len(infos))
	for _, info := range infos {
		rooms = append(rooms, RoomResponse{Name: info.Name, Members: info.Members})
	}
	c.JSON(http.StatusOK, rooms)
}

// GET /api/rooms/:room/members
func (h *apiHandlers) listMembers(c *gin.Context) {
	name := c.Param("room")
	for _, info := range h.hub.Snapshot() {
		if info.Name == name {
			c.JSON(http.StatusOK, RoomResponse{Name: info.Name, Members: info.Members})
			return
		}
	}
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
}

// GET /api/rooms/:room/history?limit=N
func (h *apiHandlers) roomHistory(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "history disabled"})
		return
	}

	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.store.History(c.Request.Context(), c.Param("room"), limit)
	if err != nil {
		h.log.Warn().Err(err).Str("room", c.Param("room")).Msg("history query failed")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "history unavailable"})
		return
	}

	messages := make([]HistoryMessageResponse, 0, len(records))
	for _, rec := range records {
		resp := HistoryMessageResponse{
			ID:        rec.ID,
			From:      rec.Sender,
			Timestamp: rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		if rec.IsFile() {
			resp.Filename = rec.Filename
		} else {
			resp.Message = rec.Body
		}
		messages = append(messages, resp)
	}
	c.JSON(http.StatusOK, messages)
}
