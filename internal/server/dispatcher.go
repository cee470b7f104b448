// Package server contains the request dispatcher, the transports that feed
// it, and the lifecycle that ties them together.
package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mj1618/a11y-mcp/internal/platform"
	"github.com/mj1618/a11y-mcp/internal/protocol"
	"github.com/mj1618/a11y-mcp/internal/version"
)

// ServerName identifies this implementation in the initialize payload.
const ServerName = "a11y-mcp"

// Dispatcher turns decoded messages into response messages. It holds no
// per-request state and is safe for concurrent use as long as the provider
// is; transports may call it from multiple goroutines.
type Dispatcher struct {
	provider platform.Provider
	log      zerolog.Logger
}

// NewDispatcher creates a dispatcher over the given provider.
func NewDispatcher(provider platform.Provider, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{provider: provider, log: log}
}

// HandleLine processes one raw wire message. Decode failures produce an
// internal error response rather than a transport fault; the caller always
// gets a well-formed message to write back.
func (d *Dispatcher) HandleLine(line []byte) protocol.Message {
	msg, err := protocol.DecodeMessage(line)
	if err != nil {
		return protocol.Error(protocol.CodeInternal, fmt.Sprintf("Invalid JSON: %v", err))
	}
	return d.Handle(msg)
}

// Handle validates the envelope and routes the request. The version gate
// applies uniformly to every request kind, including initialize, whose own
// body-level version check is looser by design.
func (d *Dispatcher) Handle(msg protocol.Message) protocol.Message {
	if msg.ProtocolVersion != protocol.Version {
		return protocol.Error(protocol.CodeInternal,
			fmt.Sprintf("Unsupported protocol version: %s", msg.ProtocolVersion))
	}
	if msg.Content.Response != nil {
		return protocol.Error(protocol.CodeInternal, "Expected request, got response")
	}
	req := msg.Content.Request
	if req == nil {
		return protocol.Error(protocol.CodeInternal, "Message content is empty")
	}

	d.log.Debug().Str("kind", req.Kind()).Msg("dispatching request")

	var resp protocol.Response
	switch {
	case req.QueryTree != nil:
		resp = d.queryTree(req.QueryTree)
	case req.GetNode != nil:
		resp = d.getNode(req.GetNode)
	case req.PerformAction != nil:
		resp = d.performAction(req.PerformAction)
	case req.FindByName != nil:
		resp = d.findByName(req.FindByName.Name)
	case req.Initialize != nil:
		resp = d.initialize(req.Initialize)
	case req.ToolsList != nil:
		resp = toolsList()
	default:
		// Unreachable with the union codec, which rejects unknown kinds.
		return protocol.Error(protocol.CodeInternal, "Unknown request kind")
	}
	return protocol.NewResponse(resp)
}

// queryTree returns the root node only. max_depth and max_nodes are
// accepted but not enforced; callers walk deeper via get_node. This keeps
// query_tree a cheap probe rather than a full-tree dump.
func (d *Dispatcher) queryTree(req *protocol.QueryTreeRequest) protocol.Response {
	if req.MaxDepth != nil || req.MaxNodes != nil {
		d.log.Debug().Msg("query_tree bounds are accepted but not enforced; returning root only")
	}
	root, err := d.provider.GetRoot()
	if err != nil {
		return errorResponse(classify(err, protocol.CodeInternal),
			fmt.Sprintf("Failed to get root: %v", err))
	}
	return successResponse(protocol.TreeResult([]protocol.Node{root}))
}

func (d *Dispatcher) getNode(req *protocol.GetNodeRequest) protocol.Response {
	node, err := d.provider.GetNode(req.NodeID)
	if err != nil {
		return errorResponse(classify(err, protocol.CodeNotFound),
			fmt.Sprintf("Node not found: %v", err))
	}
	return successResponse(protocol.NodeResult(node))
}

// performAction forwards the action without checking it against the node's
// role; legality is the provider's concern.
func (d *Dispatcher) performAction(req *protocol.PerformActionRequest) protocol.Response {
	if err := d.provider.PerformAction(req.NodeID, req.Action); err != nil {
		return errorResponse(classify(err, protocol.CodeInvalidAction),
			fmt.Sprintf("Failed to perform action: %v", err))
	}
	return successResponse(protocol.ActionResult(true))
}

// initialize checks the client's declared version against the major-version
// prefix only. This is deliberately looser than the strict envelope gate in
// Handle; both checks are kept as observed behavior.
func (d *Dispatcher) initialize(req *protocol.InitializeRequest) protocol.Response {
	if req.ProtocolVersion != "" && !strings.HasPrefix(req.ProtocolVersion, "1.") {
		return errorResponse(protocol.CodeInternal,
			fmt.Sprintf("Unsupported protocol version: %s", req.ProtocolVersion))
	}
	return successResponse(protocol.InitializeResult(ServerName, version.Version))
}

func toolsList() protocol.Response {
	return successResponse(protocol.ToolsResult(protocol.ToolCatalog()))
}

func successResponse(result protocol.Result) protocol.Response {
	return protocol.Response{Success: &protocol.SuccessBody{Result: result}}
}

func errorResponse(code protocol.ErrorCode, message string) protocol.Response {
	return protocol.Response{Error: &protocol.ErrorInfo{Code: code, Message: message}}
}

// classify maps provider-reported conditions onto the error taxonomy,
// falling back to the handler's default code for anything unrecognized.
func classify(err error, fallback protocol.ErrorCode) protocol.ErrorCode {
	switch {
	case errors.Is(err, platform.ErrPermissionDenied):
		return protocol.CodePermissionDenied
	case errors.Is(err, platform.ErrNodeNotFound):
		if fallback == protocol.CodeInvalidAction {
			return protocol.CodeInvalidAction
		}
		return protocol.CodeNotFound
	}
	return fallback
}
