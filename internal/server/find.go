package server

import (
	"fmt"
	"strings"

	"github.com/mj1618/a11y-mcp/internal/protocol"
)

// maxSearchNodes caps how many nodes one find_by_name traversal will check.
// Hitting the cap returns the matches found so far as a normal success,
// not an error; a diagnostic is logged.
const maxSearchNodes = 1000

// findByName runs a depth-first search from the root using an explicit
// stack. A visited set of node IDs defends against providers reporting
// cyclic child references, and the node budget defends against unbounded
// trees. Children that fail to resolve are logged and skipped; the search
// continues with the rest.
func (d *Dispatcher) findByName(name string) protocol.Response {
	root, err := d.provider.GetRoot()
	if err != nil {
		return errorResponse(classify(err, protocol.CodeInternal),
			fmt.Sprintf("Failed to get root: %v", err))
	}

	query := strings.ToLower(name)
	var matches []protocol.Node
	stack := []protocol.Node{root}
	visited := make(map[protocol.NodeID]struct{})
	checked := 0

	for len(stack) > 0 {
		if checked >= maxSearchNodes {
			d.log.Warn().
				Int("limit", maxSearchNodes).
				Int("matches", len(matches)).
				Msg("find_by_name hit node limit, returning partial results")
			break
		}
		checked++

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[node.ID]; seen {
			continue
		}
		visited[node.ID] = struct{}{}

		if node.Name != "" && strings.Contains(strings.ToLower(node.Name), query) {
			matches = append(matches, node)
		}

		for _, childID := range node.Children {
			child, err := d.provider.GetNode(childID)
			if err != nil {
				d.log.Debug().
					Str("node_id", string(childID)).
					Err(err).
					Msg("skipping unresolvable child")
				continue
			}
			stack = append(stack, child)
		}
	}

	return successResponse(protocol.NodesResult(matches))
}
