package server

import (
	"fmt"
	"testing"

	"github.com/mj1618/a11y-mcp/internal/protocol"
)

func findRequest(name string) protocol.Message {
	return protocol.NewRequest(protocol.Request{FindByName: &protocol.FindByNameRequest{Name: name}})
}

func TestFindByNameCaseInsensitive(t *testing.T) {
	d := newTestDispatcher(buttonTree())
	res := result(t, d.Handle(findRequest("ok")))
	if len(res.Nodes) != 1 {
		t.Fatalf("got %d matches, want 1", len(res.Nodes))
	}
	if res.Nodes[0].Name != "OK" {
		t.Errorf("match = %q, want OK", res.Nodes[0].Name)
	}
}

func TestFindByNameEmptyQueryMatchesNamedNodes(t *testing.T) {
	d := newTestDispatcher(buttonTree())
	res := result(t, d.Handle(findRequest("")))
	// Both the window and the button have names; an empty query is a
	// substring of any name.
	if len(res.Nodes) != 2 {
		t.Fatalf("got %d matches, want 2", len(res.Nodes))
	}
}

func TestFindByNameNoMatch(t *testing.T) {
	d := newTestDispatcher(buttonTree())
	res := result(t, d.Handle(findRequest("does-not-exist")))
	if len(res.Nodes) != 0 {
		t.Errorf("got %d matches, want 0", len(res.Nodes))
	}
}

func TestFindByNameSurvivesCycles(t *testing.T) {
	// a -> b -> a: a provider bug, but the visited set must keep the
	// traversal finite and each node counted once.
	p := &fakeProvider{
		root: "a",
		nodes: map[protocol.NodeID]protocol.Node{
			"a": {ID: "a", Role: "group", Name: "Alpha", Children: []protocol.NodeID{"b"}},
			"b": {ID: "b", Role: "group", Name: "Beta", Children: []protocol.NodeID{"a"}},
		},
	}
	d := newTestDispatcher(p)
	res := result(t, d.Handle(findRequest("a")))
	// "a" matches Alpha and Beta, each exactly once.
	if len(res.Nodes) != 2 {
		t.Fatalf("got %d matches, want 2", len(res.Nodes))
	}
	seen := map[protocol.NodeID]int{}
	for _, n := range res.Nodes {
		seen[n.ID]++
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("node %q matched %d times, want 1", id, count)
		}
	}
}

// chainProvider fabricates an unbounded linked chain of nodes on demand:
// node i has a single child i+1, forever.
type chainProvider struct{}

func (chainProvider) node(i int) protocol.Node {
	return protocol.Node{
		ID:       protocol.NodeID(fmt.Sprintf("n%d", i)),
		Role:     "group",
		Name:     fmt.Sprintf("Item %d", i),
		Children: []protocol.NodeID{protocol.NodeID(fmt.Sprintf("n%d", i+1))},
	}
}

func (c chainProvider) GetRoot() (protocol.Node, error) { return c.node(0), nil }

func (c chainProvider) GetNode(id protocol.NodeID) (protocol.Node, error) {
	var i int
	if _, err := fmt.Sscanf(string(id), "n%d", &i); err != nil {
		return protocol.Node{}, fmt.Errorf("bad id %q", id)
	}
	return c.node(i), nil
}

func (c chainProvider) GetChildren(id protocol.NodeID) ([]protocol.Node, error) {
	node, err := c.GetNode(id)
	if err != nil {
		return nil, err
	}
	child, err := c.GetNode(node.Children[0])
	if err != nil {
		return nil, err
	}
	return []protocol.Node{child}, nil
}

func (chainProvider) PerformAction(protocol.NodeID, protocol.Action) error { return nil }

func TestFindByNameBudgetOnUnboundedTree(t *testing.T) {
	d := newTestDispatcher(chainProvider{})
	// Every node matches "Item"; the traversal must stop at the budget and
	// still return a success.
	res := result(t, d.Handle(findRequest("Item")))
	if len(res.Nodes) == 0 {
		t.Fatal("got no matches, want partial results")
	}
	if len(res.Nodes) > maxSearchNodes {
		t.Errorf("got %d matches, budget is %d", len(res.Nodes), maxSearchNodes)
	}
}

func TestFindByNameSkipsUnresolvableChildren(t *testing.T) {
	p := &fakeProvider{
		root: "root",
		nodes: map[protocol.NodeID]protocol.Node{
			"root": {ID: "root", Role: "window", Name: "Main", Children: []protocol.NodeID{"gone", "n1"}},
			"n1":   {ID: "n1", Role: "button", Name: "OK"},
		},
		failIDs: map[protocol.NodeID]bool{"gone": true},
	}
	d := newTestDispatcher(p)
	res := result(t, d.Handle(findRequest("ok")))
	if len(res.Nodes) != 1 || res.Nodes[0].ID != "n1" {
		t.Fatalf("matches = %+v, want just n1", res.Nodes)
	}
}

func TestFindByNameRootFailure(t *testing.T) {
	d := newTestDispatcher(&fakeProvider{rootErr: fmt.Errorf("boom")})
	info := errorInfo(t, d.Handle(findRequest("x")))
	if info.Code != protocol.CodeInternal {
		t.Errorf("code = %q, want internal", info.Code)
	}
}
