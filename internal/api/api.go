// Package api provides the HTTP webhook server for DrillLine.
//
// It exposes the telephony-provider callback endpoints that drive the call
// flow, plus liveness and version probes. The server is stateless: every
// handler reconstructs its context from the inbound request alone.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/CallForge/DrillLine/internal/alerts"
	"github.com/CallForge/DrillLine/internal/events"
	"github.com/CallForge/DrillLine/internal/ivr"
	"github.com/CallForge/DrillLine/internal/models"
)

// Default server configuration constants
const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":3000"
	// DefaultVersion is reported by /version when no build version is set.
	DefaultVersion = "dev"
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
	// DefaultReadHeaderTimeout bounds inbound request header reads.
	DefaultReadHeaderTimeout = 5 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr    string
	Version string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithVersion sets the build/version string reported by /version.
func WithVersion(v string) Option {
	return func(o *Opts) { o.Version = v }
}

// Server handles the telephony webhook endpoints.
type Server struct {
	addr    string
	version string
	flows   *ivr.Registry
	events  *events.Logger
	alerts  *alerts.Fanout
}

// NewServer creates a webhook server over the given flow registry, transition
// logger, and alert fan-out.
func NewServer(flows *ivr.Registry, eventLogger *events.Logger, fanout *alerts.Fanout, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr, Version: DefaultVersion}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		addr:    cfg.Addr,
		version: cfg.Version,
		flows:   flows,
		events:  eventLogger,
		alerts:  fanout,
	}
}

// Handler returns the route table as an http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.healthHandler)
	mux.HandleFunc("/version", s.versionHandler)
	mux.HandleFunc(ivr.EntryPath, s.voiceHandler)
	mux.HandleFunc(ivr.MenuPath, s.menuHandler)
	mux.HandleFunc(ivr.DifficultyPath, s.difficultyHandler)
	mux.HandleFunc(ivr.ScenarioPath, s.scenarioHandler)
	for _, def := range s.flows.All() {
		mux.HandleFunc(def.PromptPath(), s.gatePromptHandler(def))
		mux.HandleFunc(def.GatePath(), s.gateEvalHandler(def))
	}
	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: listening", "addr", s.addr, "version", s.version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.alertFailure("server stopped unexpectedly", err, nil)
			return err
		}
		return nil
	case <-ctx.Done():
		slog.Info("Server.Run: shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server.Run: graceful shutdown failed", "error", err)
			return err
		}
		slog.Info("Server.Run: shutdown complete")
		return nil
	}
}

// alertFailure raises an operational alert without blocking the caller.
func (s *Server) alertFailure(title string, err error, details map[string]any) {
	if s.alerts == nil {
		return
	}
	if details == nil {
		details = map[string]any{}
	}
	details["error"] = err.Error()
	alert := models.Alert{
		Kind:    models.AlertKindError,
		Title:   title,
		Message: err.Error(),
		Details: details,
	}
	go s.alerts.Deliver(context.Background(), alert)
}
