// Package platform defines the accessibility provider contract and the
// registration point for OS-specific backends.
package platform

import "github.com/mj1618/a11y-mcp/internal/protocol"

// Provider answers tree and action queries against a live accessibility
// API. Implementations must be safe for concurrent use; the dispatcher
// performs no locking of its own.
type Provider interface {
	// GetRoot returns the top-level node for the target application.
	GetRoot() (protocol.Node, error)

	// GetChildren returns the direct children of a node.
	GetChildren(id protocol.NodeID) ([]protocol.Node, error)

	// GetNode resolves a node by ID. Returns an error wrapping
	// ErrNodeNotFound if the ID is stale or unknown.
	GetNode(id protocol.NodeID) (protocol.Node, error)

	// PerformAction executes an action on a node. Fails if the action is
	// unsupported for that node or the underlying platform call errors.
	PerformAction(id protocol.NodeID, action protocol.Action) error
}
