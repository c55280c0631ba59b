package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomchat/roomchat-server/internal/config"
	"github.com/roomchat/roomchat-server/internal/core"
	"github.com/roomchat/roomchat-server/internal/store"
	"github.com/roomchat/roomchat-server/internal/store/sqlite"
	transporthttp "github.com/roomchat/roomchat-server/internal/transport/http"
	"github.com/roomchat/roomchat-server/internal/transport/tcp"
)

// App wires together store, hub, and transports.
type App struct {
	tcpServer       *tcp.Server
	httpServer      *stdhttp.Server
	hub             *core.Hub
	store           store.HistoryStore
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("history store initialized")

	hub := core.NewHub(st, logger, core.Options{
		DefaultRoom:  cfg.DefaultRoom,
		HistoryLimit: cfg.HistoryLimit,
		MaxFileBytes: cfg.MaxFileBytes,
	})

	tcpServer := tcp.NewServer(hub, cfg.Addr, cfg.ClientQueueSize, logger)
	httpServer := transporthttp.NewServer(hub, st, transporthttp.ServerOptions{
		Addr:         cfg.HTTPAddr,
		QueueSize:    cfg.ClientQueueSize,
		HistoryLimit: cfg.HistoryLimit,
	}, logger)

	return &App{
		tcpServer:       tcpServer,
		httpServer:      httpServer,
		hub:             hub,
		store:           st,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}, nil
}

// Run starts the hub and both transports and blocks until context
// cancellation or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 2)

	go a.hub.Run(ctx)

	go func() {
		serverErr <- a.tcpServer.Serve(ctx)
	}()
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down")
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the store and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
