package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Transport != "stdio" {
		t.Errorf("Transport = %q, want stdio", cfg.Transport)
	}
	if cfg.Port != 0 {
		t.Errorf("Port = %d, want 0", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("A11Y_MCP_TRANSPORT", "http")
	t.Setenv("A11Y_MCP_PORT", "9123")
	t.Setenv("A11Y_MCP_SOCKET", "/tmp/custom.sock")
	t.Setenv("A11Y_MCP_LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Transport != "http" {
		t.Errorf("Transport = %q, want http", cfg.Transport)
	}
	if cfg.Port != 9123 {
		t.Errorf("Port = %d, want 9123", cfg.Port)
	}
	if cfg.SocketPath != "/tmp/custom.sock" {
		t.Errorf("SocketPath = %q", cfg.SocketPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestFromEnvRejectsBadPort(t *testing.T) {
	t.Setenv("A11Y_MCP_PORT", "not-a-port")
	if _, err := FromEnv(); err == nil {
		t.Error("expected error for non-numeric port")
	}
}
