// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

// Package httpapi exposes the account system as a REST API with
// cookie-backed sessions.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/broadside-game/broadside/internal/account"
	"github.com/broadside-game/broadside/internal/observability"
	"github.com/broadside-game/broadside/pkg/errutil"
)

// SessionCookieName is the cookie carrying the opaque session context id.
const SessionCookieName = "broadside_session"

// Server serves the account REST API.
type Server struct {
	addr       string
	users      *account.UserService
	sessions   *account.SessionManager
	metrics    *observability.Metrics
	logger     *slog.Logger
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates an API server. metrics may be nil.
func NewServer(addr string, users *account.UserService, sessions *account.SessionManager, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if users == nil {
		return nil, oops.Code("API_SERVER_INVALID").Errorf("user service is required")
	}
	if sessions == nil {
		return nil, oops.Code("API_SERVER_INVALID").Errorf("session manager is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:     addr,
		users:    users,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Handler returns the routed handler, exposed separately so tests can
// drive it through httptest without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /signin", s.handleSignin)
	mux.HandleFunc("DELETE /signout", s.handleSignout)
	mux.HandleFunc("GET /me", s.handleMe)
	mux.HandleFunc("PATCH /me", s.handleUpdateMe)
	mux.HandleFunc("POST /users", s.handleRegister)
	mux.HandleFunc("GET /scoreboard", s.handleScoreboard)
	return mux
}

// Start begins serving the API. The returned channel receives any server
// error and is closed on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			errutil.LogError(s.logger, "api server error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown api server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the listen address, or "" when not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
