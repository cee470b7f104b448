package protocol

import "encoding/json"

// Request kind tags as they appear on the wire.
const (
	KindQueryTree     = "query_tree"
	KindGetNode       = "get_node"
	KindPerformAction = "perform_action"
	KindFindByName    = "find_by_name"
	KindInitialize    = "initialize"
	KindToolsList     = "tools_list"
)

// QueryTreeRequest asks for the accessibility tree from the root. MaxDepth
// and MaxNodes are accepted for forward compatibility but the server
// currently returns the root node only; see the query_tree tool description.
type QueryTreeRequest struct {
	MaxDepth *int `json:"max_depth,omitempty"`
	MaxNodes *int `json:"max_nodes,omitempty"`
}

// GetNodeRequest resolves one node by ID.
type GetNodeRequest struct {
	NodeID NodeID `json:"node_id"`
}

// PerformActionRequest invokes an action on a node. The server forwards the
// action to the provider without checking it against the node's role; action
// legality is the provider's concern.
type PerformActionRequest struct {
	NodeID NodeID `json:"node_id"`
	Action Action `json:"action"`
}

// FindByNameRequest searches the tree for nodes whose name contains the
// given substring, case-insensitively.
type FindByNameRequest struct {
	Name string `json:"name"`
}

// InitializeRequest optionally declares the client's protocol version and
// capabilities. The version here is checked loosely (major-version prefix
// "1."), unlike the strict equality applied to the envelope version; the
// asymmetry is deliberate and documented.
type InitializeRequest struct {
	ProtocolVersion string          `json:"protocol_version,omitempty"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
}

// ToolsListRequest asks for the static tool catalog. It has no fields.
type ToolsListRequest struct{}

// Request is the externally tagged request union: on the wire it is an
// object with exactly one key naming the kind. Exactly one field is non-nil.
type Request struct {
	QueryTree     *QueryTreeRequest
	GetNode       *GetNodeRequest
	PerformAction *PerformActionRequest
	FindByName    *FindByNameRequest
	Initialize    *InitializeRequest
	ToolsList     *ToolsListRequest
}

// Kind returns the wire tag of the populated variant, or "" if none is set.
func (r Request) Kind() string {
	switch {
	case r.QueryTree != nil:
		return KindQueryTree
	case r.GetNode != nil:
		return KindGetNode
	case r.PerformAction != nil:
		return KindPerformAction
	case r.FindByName != nil:
		return KindFindByName
	case r.Initialize != nil:
		return KindInitialize
	case r.ToolsList != nil:
		return KindToolsList
	}
	return ""
}

func (r Request) MarshalJSON() ([]byte, error) {
	switch {
	case r.QueryTree != nil:
		return marshalTagged(KindQueryTree, r.QueryTree)
	case r.GetNode != nil:
		return marshalTagged(KindGetNode, r.GetNode)
	case r.PerformAction != nil:
		return marshalTagged(KindPerformAction, r.PerformAction)
	case r.FindByName != nil:
		return marshalTagged(KindFindByName, r.FindByName)
	case r.Initialize != nil:
		return marshalTagged(KindInitialize, r.Initialize)
	case r.ToolsList != nil:
		return marshalTagged(KindToolsList, r.ToolsList)
	}
	return nil, errEmptyUnion("request")
}

func (r *Request) UnmarshalJSON(data []byte) error {
	tag, body, err := unmarshalTagged(data, "request")
	if err != nil {
		return err
	}
	*r = Request{}
	switch tag {
	case KindQueryTree:
		r.QueryTree = new(QueryTreeRequest)
		return json.Unmarshal(body, r.QueryTree)
	case KindGetNode:
		r.GetNode = new(GetNodeRequest)
		return json.Unmarshal(body, r.GetNode)
	case KindPerformAction:
		r.PerformAction = new(PerformActionRequest)
		return json.Unmarshal(body, r.PerformAction)
	case KindFindByName:
		r.FindByName = new(FindByNameRequest)
		return json.Unmarshal(body, r.FindByName)
	case KindInitialize:
		r.Initialize = new(InitializeRequest)
		return json.Unmarshal(body, r.Initialize)
	case KindToolsList:
		r.ToolsList = new(ToolsListRequest)
		return json.Unmarshal(body, r.ToolsList)
	}
	return errUnknownTag("request", tag)
}
