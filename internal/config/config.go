// Package config reads serve defaults from the environment. Flags override
// these; the environment covers deployments where editing the launch
// command is awkward (launchd plists, containers).
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Serve holds the environment-derived defaults for the serve command.
type Serve struct {
	Transport  string `env:"A11Y_MCP_TRANSPORT" envDefault:"stdio"`
	Port       int    `env:"A11Y_MCP_PORT" envDefault:"0"`
	SocketPath string `env:"A11Y_MCP_SOCKET"`
	LogLevel   string `env:"A11Y_MCP_LOG_LEVEL" envDefault:"info"`
	PID        int    `env:"A11Y_MCP_PID" envDefault:"0"`
}

// FromEnv parses the A11Y_MCP_* environment variables.
func FromEnv() (Serve, error) {
	var cfg Serve
	if err := env.Parse(&cfg); err != nil {
		return Serve{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
