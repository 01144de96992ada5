// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

// Package web serves the JSON API and static assets.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/blog"
	"github.com/inkpress/inkpress/internal/observability"
)

// Server is the public HTTP API server.
type Server struct {
	addr      string
	staticDir string
	logger    *slog.Logger

	tokens  *auth.TokenManager
	auths   *auth.Service
	resets  *auth.PasswordResetService
	blogs   *blog.Service
	metrics *observability.Metrics

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// Options carries the collaborators a Server needs.
type Options struct {
	Addr      string
	StaticDir string
	Logger    *slog.Logger
	Tokens    *auth.TokenManager
	Auth      *auth.Service
	Resets    *auth.PasswordResetService
	Blog      *blog.Service
	Metrics   *observability.Metrics
}

// NewServer creates a new API server.
func NewServer(opts Options) (*Server, error) {
	if opts.Addr == "" {
		return nil, oops.Code("WEB_SERVER_INVALID").Errorf("listen address is required")
	}
	if opts.Tokens == nil {
		return nil, oops.Code("WEB_SERVER_INVALID").Errorf("token manager is required")
	}
	if opts.Auth == nil {
		return nil, oops.Code("WEB_SERVER_INVALID").Errorf("auth service is required")
	}
	if opts.Resets == nil {
		return nil, oops.Code("WEB_SERVER_INVALID").Errorf("password reset service is required")
	}
	if opts.Blog == nil {
		return nil, oops.Code("WEB_SERVER_INVALID").Errorf("blog service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:      opts.Addr,
		staticDir: opts.StaticDir,
		logger:    logger,
		tokens:    opts.Tokens,
		auths:     opts.Auth,
		resets:    opts.Resets,
		blogs:     opts.Blog,
		metrics:   opts.Metrics,
	}, nil
}

// routes builds the request mux. Method-and-pattern routing needs no
// third-party router.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	handle := func(pattern, route string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.instrument(route, h))
	}
	authed := func(pattern, route string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.instrument(route, s.requireAuth(h)))
	}

	handle("POST /api/register", "/api/register", s.handleRegister)
	handle("POST /api/login", "/api/login", s.handleLogin)

	handle("POST /api/password/forgot", "/api/password/forgot", s.handleForgotPassword)
	handle("POST /api/password/verify", "/api/password/verify", s.handleVerifyResetToken)
	handle("POST /api/password/reset", "/api/password/reset", s.handleResetPassword)
	authed("POST /api/password/change", "/api/password/change", s.handleChangePassword)

	handle("GET /api/posts", "/api/posts", s.handleListPosts)
	handle("GET /api/posts/{id}", "/api/posts/{id}", s.handleGetPost)
	authed("POST /api/posts", "/api/posts", s.handleCreatePost)
	authed("PUT /api/posts/{id}", "/api/posts/{id}", s.handleUpdatePost)
	authed("DELETE /api/posts/{id}", "/api/posts/{id}", s.handleDeletePost)

	handle("GET /api/posts/{id}/comments", "/api/posts/{id}/comments", s.handleListComments)
	authed("POST /api/posts/{id}/comments", "/api/posts/{id}/comments", s.handleCreateComment)
	authed("PUT /api/comments/{id}", "/api/comments/{id}", s.handleUpdateComment)
	authed("DELETE /api/comments/{id}", "/api/comments/{id}", s.handleDeleteComment)

	authed("PUT /api/account", "/api/account", s.handleUpdateProfile)
	authed("DELETE /api/account", "/api/account", s.handleDeleteAccount)

	if s.staticDir != "" {
		if _, err := os.Stat(s.staticDir); err == nil {
			mux.Handle("GET /", http.FileServer(http.Dir(s.staticDir)))
		} else {
			s.logger.Warn("static directory not found, skipping", "dir", s.staticDir)
		}
	}

	return mux
}

// Start begins serving the API. It returns an error channel that receives
// any error from the HTTP server after startup; the channel is closed on
// graceful stop.
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
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
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
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
