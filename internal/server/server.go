// Package server exposes the trip store and mock auth over HTTP, with an
// event feed of store changes.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/theirongolddev/tripbudget/internal/auth"
	"github.com/theirongolddev/tripbudget/internal/config"
	"github.com/theirongolddev/tripbudget/internal/logging"
	"github.com/theirongolddev/tripbudget/internal/trips"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	CORSOrigins  []string
	EventsBuffer int
	TokenSecret  string
	TokenTTL     time.Duration
}

// ConfigFrom maps the file config onto server settings.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		Addr:         cfg.Server.Addr,
		CORSOrigins:  cfg.Server.CORSOrigins,
		EventsBuffer: cfg.Server.EventsBuffer,
		TokenSecret:  cfg.Server.TokenSecret,
		TokenTTL:     cfg.TokenTTL(),
	}
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	trips  *trips.Store
	auth   *auth.Service
	tokens *auth.Tokens
	log    *slog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a server over the given store and auth service.
func New(cfg Config, store *trips.Store, authSvc *auth.Service, log *slog.Logger) *Server {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if log == nil {
		log = logging.Discard()
	}
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = randomSecret()
		log.Warn("server.token_secret not set; tokens will not survive a restart")
	}

	// Secret is non-empty here, so NewTokens cannot fail.
	tokens, _ := auth.NewTokens(cfg.TokenSecret, cfg.TokenTTL)

	return &Server{
		cfg:       cfg,
		trips:     store,
		auth:      authSvc,
		tokens:    tokens,
		log:       log,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the routed handler wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /v1/trips", s.handleListTrips)
	mux.HandleFunc("POST /v1/trips", s.handleCreateTrip)
	mux.HandleFunc("GET /v1/trips/current", s.handleCurrentTrip)
	mux.HandleFunc("PUT /v1/trips/current", s.handleSelectTrip)
	mux.HandleFunc("DELETE /v1/trips/current", s.handleClearTrip)
	mux.HandleFunc("GET /v1/trips/{id}", s.handleGetTrip)
	mux.HandleFunc("GET /v1/summary", s.handleSummary)

	mux.HandleFunc("POST /v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /v1/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /v1/me", s.handleMe)

	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
	return s.withRequestLog(c.Handler(mux))
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("http server listening", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
