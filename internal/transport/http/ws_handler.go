package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomchat/roomchat-server/internal/core"
	"github.com/roomchat/roomchat-server/internal/proto"
	"github.com/roomchat/roomchat-server/internal/transport"
)

// wsHandler upgrades HTTP connections and bridges them to the hub. Each
// WebSocket message carries one protocol frame, the same flat JSON objects
// the TCP transport frames with newlines.
type wsHandler struct {
	hub       *core.Hub
	queueSize int
	log       *zerolog.Logger
}

func newWSHandler(hub *core.Hub, queueSize int, logger *zerolog.Logger) stdhttp.Handler {
	return &wsHandler{hub: hub, queueSize: queueSize, log: logger}
}

func (h *wsHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	conn.SetReadLimit(proto.MaxFrameSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := core.NewClient(uuid.NewString(), h.queueSize)
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		} else {
			status = websocket.StatusInternalError
			reason = "error"
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}
	conn.Close(status, reason)
}

func (h *wsHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		var in proto.Inbound
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			return err
		}

		cmd, cerr := transport.InboundToCommand(client, &in)
		if cerr != nil {
			if err := wsjson.Write(ctx, conn, &proto.Outbound{
				Type:    proto.TypeErr,
				Code:    cerr.Code,
				Message: cerr.Message,
			}); err != nil {
				return err
			}
			continue
		}
		h.hub.Send(cmd)
	}
}

func (h *wsHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, transport.OutboundFromEvent(ev)); err != nil {
				return err
			}
		}
	}
}
