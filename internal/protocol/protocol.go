// Package protocol defines the wire contract for the accessibility server:
// the versioned message envelope, request/response unions, node and action
// shapes, and the closed error taxonomy. It contains no business logic.
package protocol

// Version is the protocol version stamped on every message. A request whose
// envelope declares any other value is rejected before routing; there is no
// negotiation in this version.
const Version = "1.0"

// NodeID is an opaque, provider-assigned identifier for an accessibility
// node. It is stable for the lifetime of the provider and never interpreted
// by the core.
type NodeID string

// Rect is a node's bounding box in top-left-origin screen coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is the normalized representation of one UI element. Children are
// referenced by ID rather than embedded; callers reconstruct the tree
// lazily via repeated get_node calls, which keeps payloads bounded for
// deep or large trees.
type Node struct {
	ID          NodeID   `json:"id"`
	Role        string   `json:"role"`
	Name        string   `json:"name,omitempty"`
	Value       string   `json:"value,omitempty"`
	Description string   `json:"description,omitempty"`
	Bounds      *Rect    `json:"bounds,omitempty"`
	Actions     []Action `json:"actions"`
	Children    []NodeID `json:"children"`
}

// ErrorCode classifies a failed request. The taxonomy is closed; providers
// map their own failures onto one of these.
type ErrorCode string

const (
	CodeNotFound         ErrorCode = "not_found"
	CodePermissionDenied ErrorCode = "permission_denied"
	CodeTransient        ErrorCode = "transient"
	CodeInvalidAction    ErrorCode = "invalid_action"
	CodeInternal         ErrorCode = "internal"
)

// ErrorInfo carries the code and human-readable message of an error response.
type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Capabilities describes what the server supports, returned by initialize.
type Capabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability signals tool support. ListChanged is always false; the
// tool catalog is static.
type ToolsCapability struct {
	ListChanged bool `json:"list_changed"`
}

// ServerInfo identifies the server implementation in the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Tool is one entry in the tools_list catalog. InputSchema is a
// JSON-schema-shaped description of the tool's arguments.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Result is the payload of a success response. Exactly one group of fields
// is populated depending on the request kind; the encoding is untagged, so
// a tree result and a search result share the nodes field.
type Result struct {
	Nodes           []Node        `json:"nodes,omitempty"`
	Node            *Node         `json:"node,omitempty"`
	Success         *bool         `json:"success,omitempty"`
	ProtocolVersion string        `json:"protocol_version,omitempty"`
	Capabilities    *Capabilities `json:"capabilities,omitempty"`
	ServerInfo      *ServerInfo   `json:"server_info,omitempty"`
	Tools           []Tool        `json:"tools,omitempty"`
}

// TreeResult wraps nodes returned by query_tree.
func TreeResult(nodes []Node) Result {
	return Result{Nodes: nodes}
}

// NodeResult wraps a single node returned by get_node.
func NodeResult(node Node) Result {
	return Result{Node: &node}
}

// ActionResult reports the outcome of perform_action.
func ActionResult(ok bool) Result {
	return Result{Success: &ok}
}

// NodesResult wraps the matches returned by find_by_name.
func NodesResult(nodes []Node) Result {
	return Result{Nodes: nodes}
}

// InitializeResult builds the static initialize payload.
func InitializeResult(serverName, serverVersion string) Result {
	return Result{
		ProtocolVersion: Version,
		Capabilities: &Capabilities{
			Tools: &ToolsCapability{ListChanged: false},
		},
		ServerInfo: &ServerInfo{Name: serverName, Version: serverVersion},
	}
}

// ToolsResult wraps the tool catalog returned by tools_list.
func ToolsResult(tools []Tool) Result {
	return Result{Tools: tools}
}

// SuccessBody is the success arm of a response.
type SuccessBody struct {
	Result Result `json:"result"`
}

// Response is the success-or-error union. Exactly one field is non-nil.
type Response struct {
	Success *SuccessBody
	Error   *ErrorInfo
}

// Content is the envelope body: a request or a response.
type Content struct {
	Request  *Request  `json:"request,omitempty"`
	Response *Response `json:"response,omitempty"`
}

// Message is the versioned envelope wrapping every protocol exchange.
type Message struct {
	ProtocolVersion string  `json:"protocol_version"`
	Content         Content `json:"content"`
}

// NewRequest wraps a request in an envelope carrying the current version.
func NewRequest(req Request) Message {
	return Message{
		ProtocolVersion: Version,
		Content:         Content{Request: &req},
	}
}

// NewResponse wraps a response in an envelope carrying the current version.
func NewResponse(resp Response) Message {
	return Message{
		ProtocolVersion: Version,
		Content:         Content{Response: &resp},
	}
}

// Success builds a success response message.
func Success(result Result) Message {
	return NewResponse(Response{Success: &SuccessBody{Result: result}})
}

// Error builds an error response message.
func Error(code ErrorCode, message string) Message {
	return NewResponse(Response{Error: &ErrorInfo{Code: code, Message: message}})
}
