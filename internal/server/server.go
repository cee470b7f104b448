package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Transport selects how the server receives requests.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportUnix  Transport = "unix"
	TransportHTTP  Transport = "http"
)

// ParseTransport validates a transport flag value.
func ParseTransport(s string) (Transport, error) {
	switch Transport(s) {
	case TransportStdio, TransportUnix, TransportHTTP:
		return Transport(s), nil
	}
	return "", fmt.Errorf("unsupported transport: %q (use stdio, unix, or http)", s)
}

// Config holds the server's transport configuration.
type Config struct {
	Transport Transport
	// Port for the HTTP transport. 0 lets the OS assign one; a non-zero
	// port is probed linearly up to +100 on conflict.
	Port int
	// SocketPath for the unix transport. Empty means the pid-derived
	// default under the system temp directory.
	SocketPath string
}

// Server runs one transport over a dispatcher. Shutdown is single-shot:
// the first call (or context cancellation) stops the accept/read loops at
// their next suspension point and triggers transport cleanup.
type Server struct {
	dispatcher *Dispatcher
	cfg        Config
	log        zerolog.Logger

	shutdownOnce sync.Once
	cancel       context.CancelFunc

	mu       sync.Mutex
	httpAddr string
}

// New creates a server; Run starts it.
func New(dispatcher *Dispatcher, cfg Config, log zerolog.Logger) *Server {
	return &Server{dispatcher: dispatcher, cfg: cfg, log: log}
}

// Run serves until the context is cancelled, Shutdown is called, or the
// transport fails fatally. Bind failures are returned; per-connection
// failures are logged and terminate only that connection.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	switch s.cfg.Transport {
	case TransportStdio:
		return s.runStdio(ctx)
	case TransportUnix:
		return s.runUnix(ctx)
	case TransportHTTP:
		return s.runHTTP(ctx)
	}
	return fmt.Errorf("unsupported transport: %q", s.cfg.Transport)
}

// Shutdown requests a graceful stop. Safe to call more than once and from
// any goroutine; only the first call has an effect.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			s.log.Info().Msg("shutdown requested")
			cancel()
		}
	})
}

// HTTPAddr returns the bound HTTP address once the HTTP transport is
// listening, or "" before that.
func (s *Server) HTTPAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpAddr
}

func (s *Server) setHTTPAddr(addr string) {
	s.mu.Lock()
	s.httpAddr = addr
	s.mu.Unlock()
}
