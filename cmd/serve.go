package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mj1618/a11y-mcp/internal/config"
	"github.com/mj1618/a11y-mcp/internal/logging"
	"github.com/mj1618/a11y-mcp/internal/platform"
	"github.com/mj1618/a11y-mcp/internal/platform/statictree"
	"github.com/mj1618/a11y-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the accessibility protocol server",
	Long: `Start a server exposing the accessibility tree over line-delimited JSON.

Transports:
  stdio   Newline-delimited JSON on stdin/stdout (default)
  unix    Unix domain socket (path derived from the pid unless --socket is set)
  http    POST /mcp with a JSON body (OS-assigned port unless --port is set)

Flag defaults can also come from A11Y_MCP_TRANSPORT, A11Y_MCP_PORT,
A11Y_MCP_SOCKET, A11Y_MCP_PID, and A11Y_MCP_LOG_LEVEL.

Examples:
  a11y-mcp serve
  a11y-mcp serve --transport unix --socket /tmp/myapp.sock
  a11y-mcp serve --transport http --port 9123
  a11y-mcp serve --demo --transport http`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "", "Transport: stdio, unix, http")
	serveCmd.Flags().Int("port", -1, "HTTP port (0 = OS-assigned; probes +100 on conflict)")
	serveCmd.Flags().String("socket", "", "Unix socket path")
	serveCmd.Flags().Int("pid", -1, "Target process ID (0 = this process)")
	serveCmd.Flags().Bool("demo", false, "Serve a built-in sample tree instead of a live application")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("transport"); v != "" {
		cfg.Transport = v
	}
	if v, _ := cmd.Flags().GetInt("port"); v >= 0 {
		cfg.Port = v
	}
	if v, _ := cmd.Flags().GetString("socket"); v != "" {
		cfg.SocketPath = v
	}
	if v, _ := cmd.Flags().GetInt("pid"); v >= 0 {
		cfg.PID = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}

	transport, err := server.ParseTransport(cfg.Transport)
	if err != nil {
		return err
	}
	log, err := logging.Setup(cfg.LogLevel)
	if err != nil {
		return err
	}

	demo, _ := cmd.Flags().GetBool("demo")
	provider, err := buildProvider(demo, cfg.PID, log)
	if err != nil {
		return fmt.Errorf("failed to create accessibility provider: %w", err)
	}

	srv := server.New(
		server.NewDispatcher(provider, log),
		server.Config{Transport: transport, Port: cfg.Port, SocketPath: cfg.SocketPath},
		log,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// buildProvider selects the demo tree or the registered OS backend.
func buildProvider(demo bool, pid int, log zerolog.Logger) (platform.Provider, error) {
	if demo {
		log.Info().Msg("using built-in demo tree")
		return statictree.Sample(), nil
	}
	return platform.NewProvider(pid)
}
