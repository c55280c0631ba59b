// Package tcp serves the chat protocol over plain TCP, one JSON frame per
// line, the transport the reference clients speak.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomchat/roomchat-server/internal/core"
	"github.com/roomchat/roomchat-server/internal/proto"
	"github.com/roomchat/roomchat-server/internal/transport"
)

// Server accepts TCP connections and runs one session per connection.
type Server struct {
	hub       *core.Hub
	log       *zerolog.Logger
	addr      string
	queueSize int

	ln net.Listener
	wg sync.WaitGroup
}

// NewServer builds a TCP server for the given listen address. queueSize
// bounds each session's outbound event queue.
func NewServer(hub *core.Hub, addr string, queueSize int, logger *zerolog.Logger) *Server {
	return &Server{
		hub:       hub,
		log:       logger,
		addr:      addr,
		queueSize: queueSize,
	}
}

// Listen binds the listener. Split from Serve so callers can learn the
// bound address before accepting (tests listen on port 0).
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound listener address. Valid after Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until the context is cancelled, then waits for
// all sessions to finish.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	s.log.Info().Str("addr", s.ln.Addr().String()).Msg("tcp server listening")

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	client := core.NewClient(uuid.NewString(), s.queueSize)
	s.hub.RegisterClient(client)

	s.log.Debug().Str("client_id", client.ID).
		Str("remote", conn.RemoteAddr().String()).Msg("connection accepted")

	// Replies carries transport-level error frames from the reader to the
	// writer, which owns all writes on the connection.
	replies := make(chan *proto.Outbound, 8)
	writerErr := make(chan error, 1)
	go func() {
		err := s.writeLoop(ctx, conn, client, replies)
		// Closing the connection unblocks a reader stuck in Read.
		conn.Close()
		writerErr <- err
	}()

	readErr := s.readLoop(conn, client, replies)
	close(replies)
	s.hub.UnregisterClient(client)

	if err := <-writerErr; err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, net.ErrClosed) {
		s.log.Debug().Err(err).Str("client_id", client.ID).Msg("write loop ended")
	}
	if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, net.ErrClosed) {
		s.log.Warn().Err(readErr).Str("client_id", client.ID).Msg("connection closed with error")
	} else {
		s.log.Debug().Str("client_id", client.ID).Msg("connection closed")
	}
}

// readLoop decodes frames and submits commands. A malformed frame produces
// an ERR reply and closes the session; anything the mapper rejects produces
// an ERR reply and the session continues.
func (s *Server) readLoop(conn net.Conn, client *core.Client, replies chan<- *proto.Outbound) error {
	dec := proto.NewDecoder(conn)
	for {
		in, err := dec.Next()
		if err != nil {
			if errors.Is(err, proto.ErrMalformed) {
				s.reply(replies, &proto.Outbound{
					Type:    proto.TypeErr,
					Code:    core.ErrCodeMalformedMessage,
					Message: "Bad JSON.",
				})
			}
			return err
		}

		cmd, cerr := transport.InboundToCommand(client, in)
		if cerr != nil {
			s.reply(replies, &proto.Outbound{
				Type:    proto.TypeErr,
				Code:    cerr.Code,
				Message: cerr.Message,
			})
			continue
		}
		s.hub.Send(cmd)
	}
}

// reply enqueues without blocking; if the writer is gone or saturated the
// error frame is dropped, the session is about to close anyway.
func (s *Server) reply(replies chan<- *proto.Outbound, out *proto.Outbound) {
	select {
	case replies <- out:
	default:
	}
}

// writeLoop drains hub events and reader replies onto the connection. It
// returns once both sources are closed, or on the first write error.
func (s *Server) writeLoop(ctx context.Context, conn net.Conn, client *core.Client, replies <-chan *proto.Outbound) error {
	enc := proto.NewEncoder(conn)
	events := client.Events

	for events != nil || replies != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out, ok := <-replies:
			if !ok {
				replies = nil
				continue
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				// The hub dropped this client. Flush any buffered replies
				// and let the connection close instead of waiting on the
				// reader.
				return flushReplies(enc, replies)
			}
			if err := enc.Encode(transport.OutboundFromEvent(ev)); err != nil {
				return err
			}
		}
	}
	return nil
}

func flushReplies(enc *proto.Encoder, replies <-chan *proto.Outbound) error {
	for {
		select {
		case out, ok := <-replies:
			if !ok {
				return nil
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}
