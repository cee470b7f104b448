package server

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mj1618/a11y-mcp/internal/platform/statictree"
	"github.com/mj1618/a11y-mcp/internal/protocol"
)

func newTestServer(cfg Config) *Server {
	d := NewDispatcher(statictree.Sample(), zerolog.Nop())
	return New(d, cfg, zerolog.Nop())
}

func TestServeStreamRequestResponse(t *testing.T) {
	in := strings.NewReader(
		`{"protocol_version":"1.0","content":{"request":{"get_node":{"node_id":"ok"}}}}` + "\n" +
			"\n" + // blank lines are skipped
			`{"protocol_version":"1.0","content":{"request":{"tools_list":{}}}}` + "\n")
	var out bytes.Buffer

	s := newTestServer(Config{Transport: TransportStdio})
	if err := s.serveStream(context.Background(), in, &out); err != nil {
		t.Fatalf("serveStream: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d response lines, want 2:\n%s", len(lines), out.String())
	}

	first, err := protocol.DecodeMessage([]byte(lines[0]))
	if err != nil {
		t.Fatalf("decode first response: %v", err)
	}
	res := first.Content.Response
	if res == nil || res.Success == nil || res.Success.Result.Node == nil {
		t.Fatalf("first response = %s, want node result", lines[0])
	}
	if res.Success.Result.Node.Name != "OK" {
		t.Errorf("node name = %q, want OK", res.Success.Result.Node.Name)
	}

	second, err := protocol.DecodeMessage([]byte(lines[1]))
	if err != nil {
		t.Fatalf("decode second response: %v", err)
	}
	if second.Content.Response.Success == nil || len(second.Content.Response.Success.Result.Tools) != 4 {
		t.Errorf("second response = %s, want 4 tools", lines[1])
	}
}

func TestServeStreamMalformedLineKeepsLoopAlive(t *testing.T) {
	in := strings.NewReader("{garbage\n" +
		`{"protocol_version":"1.0","content":{"request":{"tools_list":{}}}}` + "\n")
	var out bytes.Buffer

	s := newTestServer(Config{Transport: TransportStdio})
	if err := s.serveStream(context.Background(), in, &out); err != nil {
		t.Fatalf("serveStream: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d response lines, want 2 (error then success)", len(lines))
	}
	first, err := protocol.DecodeMessage([]byte(lines[0]))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Content.Response.Error == nil || first.Content.Response.Error.Code != protocol.CodeInternal {
		t.Errorf("first response = %s, want internal error", lines[0])
	}
}

func TestUnixSocketServeAndCleanup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a11y.sock")
	s := newTestServer(Config{Transport: TransportUnix, SocketPath: path})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	conn := dialRetry(t, "unix", path)
	defer conn.Close()

	req := `{"protocol_version":"1.0","content":{"request":{"find_by_name":{"name":"ok"}}}}` + "\n"
	if _, err := conn.Write([]byte(req)); err != nil {
		t.Fatalf("write: %v", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	msg, err := protocol.DecodeMessage([]byte(line))
	if err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	res := msg.Content.Response
	if res == nil || res.Success == nil || len(res.Success.Result.Nodes) != 1 {
		t.Fatalf("response = %s, want one match", line)
	}

	s.Shutdown()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after Shutdown")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("socket file %s still exists after shutdown", path)
	}
}

func TestUnixSocketDefaultPathIsPIDScoped(t *testing.T) {
	path := DefaultSocketPath()
	if !strings.Contains(path, fmt.Sprintf("%d", os.Getpid())) {
		t.Errorf("default socket path %q does not contain the pid", path)
	}
	if !strings.HasSuffix(path, ".sock") {
		t.Errorf("default socket path %q has no .sock suffix", path)
	}
}

func TestHTTPServeAndShutdown(t *testing.T) {
	s := newTestServer(Config{Transport: TransportHTTP, Port: 0})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	addr := waitForAddr(t, s)

	resp, err := http.Post("http://"+addr+"/mcp", "application/json",
		strings.NewReader(`{"protocol_version":"1.0","content":{"request":{"query_tree":{}}}}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin header = %q, want *", got)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	msg, err := protocol.DecodeMessage(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	res := msg.Content.Response
	if res == nil || res.Success == nil || len(res.Success.Result.Nodes) != 1 {
		t.Fatalf("response = %s, want root-only tree", buf.String())
	}
	if res.Success.Result.Nodes[0].Role != "window" {
		t.Errorf("root role = %q, want window", res.Success.Result.Nodes[0].Role)
	}

	s.Shutdown()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after Shutdown")
	}
}

func TestHTTPPreflight(t *testing.T) {
	s := newTestServer(Config{Transport: TransportHTTP, Port: 0})
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	defer func() { s.Shutdown(); <-done }()

	addr := waitForAddr(t, s)
	req, err := http.NewRequest(http.MethodOptions, "http://"+addr+"/mcp", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("allow-methods = %q, want POST", got)
	}
}

func TestProbePortSkipsOccupied(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	occupied := ln.Addr().(*net.TCPAddr).Port

	got := probePort(occupied, occupied+portProbeRange)
	if got == occupied {
		t.Errorf("probePort returned the occupied port %d", occupied)
	}
	if got < occupied || got > occupied+portProbeRange {
		t.Errorf("probePort returned %d, outside [%d, %d]", got, occupied, occupied+portProbeRange)
	}
}

// dialRetry dials until the listener is up or the deadline passes.
func dialRetry(t *testing.T, network, addr string) net.Conn {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		conn, err := net.Dial(network, addr)
		if err == nil {
			return conn
		}
		if time.Now().After(deadline) {
			t.Fatalf("dial %s %s: %v", network, addr, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// waitForAddr polls until the HTTP transport reports its bound address.
func waitForAddr(t *testing.T, s *Server) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if addr := s.HTTPAddr(); addr != "" {
			return addr
		}
		if time.Now().After(deadline) {
			t.Fatal("server never reported an HTTP address")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
