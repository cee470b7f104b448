package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
)

// DefaultSocketPath derives the unix socket path from the process id, so
// multiple servers can coexist on one machine.
func DefaultSocketPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("a11y_mcp_%d.sock", os.Getpid()))
}

func (s *Server) runUnix(ctx context.Context) error {
	path := s.cfg.SocketPath
	if path == "" {
		path = DefaultSocketPath()
	}

	// A previous run that died hard may have left the socket file behind.
	_ = os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("bind unix socket %s: %w", path, err)
	}
	defer func() {
		ln.Close()
		os.Remove(path)
	}()

	fmt.Fprintf(os.Stderr, "[a11y-mcp] listening on unix socket %s\n", path)
	s.log.Info().Str("socket", path).Msg("serving on unix socket")

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Error().Err(err).Msg("accept failed")
			continue
		}
		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()
			unblock := context.AfterFunc(ctx, func() { c.Close() })
			defer unblock()
			if err := s.serveStream(ctx, c, c); err != nil && ctx.Err() == nil {
				s.log.Warn().Err(err).Msg("connection terminated")
			}
		}(conn)
	}
	wg.Wait()
	return nil
}
