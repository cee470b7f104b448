package platform

import (
	"fmt"
	"runtime"

	"github.com/mj1618/a11y-mcp/internal/protocol"
)

// ErrUnsupported is returned on platforms with no registered backend.
var ErrUnsupported = fmt.Errorf("a11y-mcp has no accessibility backend for %s/%s; supported: darwin/amd64, darwin/arm64", runtime.GOOS, runtime.GOARCH)

// ErrNodeNotFound is wrapped by providers when a node ID cannot be
// resolved, typically because the ID is stale or was never issued.
var ErrNodeNotFound = fmt.Errorf("node not found")

// ErrPermissionDenied is wrapped by providers when the OS accessibility
// API refuses access, e.g. the accessibility permission was not granted.
var ErrPermissionDenied = fmt.Errorf("accessibility permission denied")

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/darwin for the macOS registration.
// The pid selects the target process; 0 means the current process.
var NewProviderFunc func(pid int) (Provider, error)

// NewProvider returns the registered Provider for the current OS.
func NewProvider(pid int) (Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(pid)
}

// NotFoundError builds the standard resolution failure for an ID.
func NotFoundError(id protocol.NodeID) error {
	return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}
