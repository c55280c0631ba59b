// Package http exposes the chat protocol over WebSocket plus a small
// read-only ops API for inspecting rooms and history.
package http

import (
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomchat/roomchat-server/internal/core"
	"github.com/roomchat/roomchat-server/internal/store"
)

// ServerOptions configure the HTTP server.
type ServerOptions struct {
	Addr         string
	QueueSize    int // per-session outbound event queue
	HistoryLimit int // default rows for history queries
}

// NewServer builds the HTTP server: /ws speaks the chat protocol, the rest
// is unauthenticated read-only introspection.
func NewServer(hub *core.Hub, st store.HistoryStore, opts ServerOptions, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handlers := newAPIHandlers(hub, st, opts.HistoryLimit, logger)

	router.GET("/health", healthHandler)

	api := router.Group("/api")
	{
		api.GET("/rooms", handlers.listRooms)
		api.GET("/rooms/:room/members", handlers.listMembers)
		api.GET("/rooms/:room/history", handlers.roomHistory)
	}

	// The upgrade hijacks the connection, which gin's response writer refuses
	// once headers are out. /ws is dispatched before the router so the
	// websocket library sees the raw ResponseWriter.
	ws := newWSHandler(hub, opts.QueueSize, logger)
	root := stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if r.URL.Path == "/ws" {
			ws.ServeHTTP(w, r)
			return
		}
		router.ServeHTTP(w, r)
	})

	return &stdhttp.Server{
		Addr:              opts.Addr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func healthHandler(c *gin.Context) {
	fmt.Fprint(c.Writer, "ok")
}
