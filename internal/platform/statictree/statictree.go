// Package statictree provides an in-memory accessibility provider backed by
// a fixed node table. It lets the server run and be exercised end to end
// without any OS accessibility API, and backs the serve --demo mode.
package statictree

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mj1618/a11y-mcp/internal/platform"
	"github.com/mj1618/a11y-mcp/internal/protocol"
)

// Provider serves a tree from an in-memory node table. Reads are cheap;
// set_value actions mutate the stored node so the demo behaves like a live
// UI. Safe for concurrent use.
type Provider struct {
	mu    sync.RWMutex
	root  protocol.NodeID
	nodes map[protocol.NodeID]protocol.Node
}

// New creates an empty provider. The first node added becomes the root
// unless SetRoot is called.
func New() *Provider {
	return &Provider{nodes: make(map[protocol.NodeID]protocol.Node)}
}

// Add registers a node. An empty ID is replaced with a generated one; the
// (possibly generated) ID is returned.
func (p *Provider) Add(node protocol.Node) protocol.NodeID {
	if node.ID == "" {
		node.ID = protocol.NodeID(uuid.NewString())
	}
	p.mu.Lock()
	if len(p.nodes) == 0 {
		p.root = node.ID
	}
	p.nodes[node.ID] = node
	p.mu.Unlock()
	return node.ID
}

// SetRoot overrides which node GetRoot returns.
func (p *Provider) SetRoot(id protocol.NodeID) {
	p.mu.Lock()
	p.root = id
	p.mu.Unlock()
}

func (p *Provider) GetRoot() (protocol.Node, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	node, ok := p.nodes[p.root]
	if !ok {
		return protocol.Node{}, fmt.Errorf("provider has no root node")
	}
	return node, nil
}

func (p *Provider) GetNode(id protocol.NodeID) (protocol.Node, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	node, ok := p.nodes[id]
	if !ok {
		return protocol.Node{}, platform.NotFoundError(id)
	}
	return node, nil
}

func (p *Provider) GetChildren(id protocol.NodeID) ([]protocol.Node, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	node, ok := p.nodes[id]
	if !ok {
		return nil, platform.NotFoundError(id)
	}
	children := make([]protocol.Node, 0, len(node.Children))
	for _, childID := range node.Children {
		child, ok := p.nodes[childID]
		if !ok {
			return nil, platform.NotFoundError(childID)
		}
		children = append(children, child)
	}
	return children, nil
}

// PerformAction accepts an action only if the node advertises it. set_value
// updates the stored node's value; the remaining actions are no-ops beyond
// the advertisement check, which is all a headless tree can do.
func (p *Provider) PerformAction(id protocol.NodeID, action protocol.Action) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	node, ok := p.nodes[id]
	if !ok {
		return platform.NotFoundError(id)
	}
	if !advertises(node, action) {
		return fmt.Errorf("node %s (%s) does not support action %s", id, node.Role, action)
	}
	if action.Type == protocol.ActionSetValue {
		node.Value = action.Value
		p.nodes[id] = node
	}
	return nil
}

func advertises(node protocol.Node, action protocol.Action) bool {
	for _, a := range node.Actions {
		if a.Type != action.Type {
			continue
		}
		if a.Type == protocol.ActionCustom && a.Name != action.Name {
			continue
		}
		return true
	}
	return false
}

// Sample builds the demo tree: a small login form with a text field, two
// buttons, a slider, and a status label.
func Sample() *Provider {
	p := New()
	p.Add(protocol.Node{
		ID:   "root",
		Role: "window",
		Name: "Demo Form",
		Bounds: &protocol.Rect{
			X: 0, Y: 0, Width: 480, Height: 320,
		},
		Actions:  []protocol.Action{{Type: protocol.ActionFocus}},
		Children: []protocol.NodeID{"username", "ok", "cancel", "volume", "status"},
	})
	p.Add(protocol.Node{
		ID:     "username",
		Role:   "text_input",
		Name:   "Username",
		Value:  "",
		Bounds: &protocol.Rect{X: 24, Y: 48, Width: 200, Height: 28},
		Actions: []protocol.Action{
			{Type: protocol.ActionFocus},
			{Type: protocol.ActionSetValue},
		},
	})
	p.Add(protocol.Node{
		ID:     "ok",
		Role:   "button",
		Name:   "OK",
		Bounds: &protocol.Rect{X: 24, Y: 96, Width: 80, Height: 28},
		Actions: []protocol.Action{
			{Type: protocol.ActionFocus},
			{Type: protocol.ActionPress},
		},
	})
	p.Add(protocol.Node{
		ID:     "cancel",
		Role:   "button",
		Name:   "Cancel",
		Bounds: &protocol.Rect{X: 120, Y: 96, Width: 80, Height: 28},
		Actions: []protocol.Action{
			{Type: protocol.ActionFocus},
			{Type: protocol.ActionPress},
		},
	})
	p.Add(protocol.Node{
		ID:     "volume",
		Role:   "slider",
		Name:   "Volume",
		Value:  "50",
		Bounds: &protocol.Rect{X: 24, Y: 144, Width: 200, Height: 20},
		Actions: []protocol.Action{
			{Type: protocol.ActionIncrement},
			{Type: protocol.ActionDecrement},
		},
	})
	p.Add(protocol.Node{
		ID:      "status",
		Role:    "label",
		Name:    "Status",
		Value:   "Ready",
		Bounds:  &protocol.Rect{X: 24, Y: 192, Width: 200, Height: 20},
		Actions: []protocol.Action{},
	})
	return p
}
