package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mj1618/a11y-mcp/internal/protocol"
)

// portProbeRange is how far past the requested port the server will look
// for a free one before falling back to the requested port.
const portProbeRange = 100

func (s *Server) runHTTP(ctx context.Context) error {
	port := s.cfg.Port
	if port != 0 {
		port = probePort(port, port+portProbeRange)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("bind http listener on port %d: %w", port, err)
	}

	addr := fmt.Sprintf("http://%s", ln.Addr())
	s.setHTTPAddr(ln.Addr().String())
	fmt.Fprintf(os.Stderr, "[a11y-mcp] listening on %s\n", addr)
	s.log.Info().Str("addr", addr).Msg("serving on http")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /mcp", s.handleMCP)

	srv := &http.Server{Handler: permissiveCORS(mux)}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLineBytes))
	if err != nil {
		writeMessage(w, http.StatusBadRequest,
			protocol.Error(protocol.CodeInternal, fmt.Sprintf("Failed to read body: %v", err)))
		return
	}
	writeMessage(w, http.StatusOK, s.dispatcher.HandleLine(body))
}

func writeMessage(w http.ResponseWriter, status int, msg protocol.Message) {
	data, err := protocol.EncodeMessage(msg)
	if err != nil {
		http.Error(w, "encode failure", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// permissiveCORS allows any origin, matching the browser-facing posture of
// the HTTP transport. The server only listens on loopback.
func permissiveCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// probePort returns the first free port in [start, end], or start when the
// whole range is occupied (the subsequent bind then reports the conflict).
func probePort(start, end int) int {
	for p := start; p <= end; p++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p))
		if err == nil {
			ln.Close()
			return p
		}
	}
	return start
}
