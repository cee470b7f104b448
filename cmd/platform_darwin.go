//go:build darwin && cgo

package cmd

import (
	// Register the macOS accessibility provider.
	_ "github.com/mj1618/a11y-mcp/internal/platform/darwin"
)
