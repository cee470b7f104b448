package server

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mj1618/a11y-mcp/internal/protocol"
)

// maxLineBytes bounds a single request line. Trees are fetched node by
// node, so requests stay small; this guards against a runaway client.
const maxLineBytes = 4 * 1024 * 1024

func (s *Server) runStdio(ctx context.Context) error {
	fmt.Fprintln(os.Stderr, "[a11y-mcp] listening on stdio")
	s.log.Info().Msg("serving on stdio")
	return s.serveStream(ctx, os.Stdin, os.Stdout)
}

// serveStream runs the newline-delimited request loop shared by the stdio
// transport and each unix socket connection. It returns on EOF, context
// cancellation, or a stream I/O error.
func (s *Server) serveStream(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	out := bufio.NewWriter(w)

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		for scanner.Scan() {
			// Scanner reuses its buffer; copy before handing off.
			line := bytes.TrimSpace(bytes.Clone(scanner.Bytes()))
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				// EOF ends the loop cleanly; a read error is the
				// connection's problem, not the server's.
				if err := <-readErr; err != nil {
					return fmt.Errorf("read: %w", err)
				}
				s.log.Info().Msg("input closed")
				return nil
			}
			if len(line) == 0 {
				continue
			}
			resp := s.dispatcher.HandleLine(line)
			data, err := protocol.EncodeMessage(resp)
			if err != nil {
				s.log.Error().Err(err).Msg("failed to encode response")
				continue
			}
			if _, err := out.Write(data); err != nil {
				return fmt.Errorf("write: %w", err)
			}
			if err := out.WriteByte('\n'); err != nil {
				return fmt.Errorf("write: %w", err)
			}
			if err := out.Flush(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
		}
	}
}
