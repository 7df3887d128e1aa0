// Package server exposes the debate engine over HTTP: a JSON API for
// running and querying debates plus a websocket stream of debate events.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/concord/internal/app"
	"github.com/ternarybob/concord/internal/common"
)

// Server manages the HTTP server and routes
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
	events *EventStream
}

// New creates a new HTTP server with the given app
func New(application *app.App) *Server {
	s := &Server{
		app:    application,
		events: NewEventStream(application.Bus, application.Logger),
	}

	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections outlive any fixed write window
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and the event stream pump. Blocks until
// the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.app.Config.Server.Host, s.app.Config.Server.Port)

	s.events.Start()

	s.app.Logger.Info().
		Str("address", addr).
		Str("version", common.GetVersion()).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server")

	s.events.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
