package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/a11y-mcp/internal/logging"
	"github.com/mj1618/a11y-mcp/internal/protocol"
	"github.com/mj1618/a11y-mcp/internal/server"
	"github.com/mj1618/a11y-mcp/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the accessibility tools over the Model Context Protocol",
	Long: `Expose query_tree, get_node, perform_action, and find_by_name as MCP
tools, for agents that speak MCP rather than the native line protocol.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  a11y-mcp mcp
  a11y-mcp mcp --transport streamable-http --port 8080
  a11y-mcp mcp --demo`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	mcpCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	mcpCmd.Flags().Int("pid", 0, "Target process ID (0 = this process)")
	mcpCmd.Flags().Bool("demo", false, "Serve the built-in sample tree")
}

// mcpBridge adapts the request dispatcher to an MCP tool server. The
// native protocol stays authoritative; this is a second front door for
// MCP-only clients.
type mcpBridge struct {
	dispatcher *server.Dispatcher
	mcp        *mcpserver.MCPServer
}

func runMCP(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	log, err := logging.Setup(level)
	if err != nil {
		return err
	}
	pid, _ := cmd.Flags().GetInt("pid")
	demo, _ := cmd.Flags().GetBool("demo")

	provider, err := buildProvider(demo, pid, log)
	if err != nil {
		return fmt.Errorf("failed to create accessibility provider: %w", err)
	}

	b := &mcpBridge{dispatcher: server.NewDispatcher(provider, log)}
	b.mcp = mcpserver.NewMCPServer(server.ServerName, version.Version)
	b.registerTools()

	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	switch transport {
	case "stdio":
		return mcpserver.ServeStdio(b.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(b.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

func (b *mcpBridge) registerTools() {
	b.mcp.AddTool(
		mcp.NewTool("query_tree",
			mcp.WithDescription("Query the accessibility tree starting from the root node"),
			mcp.WithNumber("max_depth", mcp.Description("Maximum depth to traverse (optional)")),
			mcp.WithNumber("max_nodes", mcp.Description("Maximum number of nodes to return (optional)")),
		),
		b.handleQueryTree,
	)

	b.mcp.AddTool(
		mcp.NewTool("get_node",
			mcp.WithDescription("Get details for a specific accessibility node by ID"),
			mcp.WithString("node_id", mcp.Description("The unique identifier of the node"), mcp.Required()),
		),
		b.handleGetNode,
	)

	b.mcp.AddTool(
		mcp.NewTool("perform_action",
			mcp.WithDescription("Perform an accessibility action (focus, press, increment, decrement, set_value, scroll, context_menu, custom) on a node"),
			mcp.WithString("node_id", mcp.Description("The unique identifier of the node"), mcp.Required()),
			mcp.WithString("action", mcp.Description("Action type to perform"), mcp.Required()),
			mcp.WithString("value", mcp.Description("Value for set_value actions")),
			mcp.WithNumber("dx", mcp.Description("Horizontal delta for scroll actions")),
			mcp.WithNumber("dy", mcp.Description("Vertical delta for scroll actions")),
		),
		b.handlePerformAction,
	)

	b.mcp.AddTool(
		mcp.NewTool("find_by_name",
			mcp.WithDescription("Find accessibility nodes by name (substring match, case-insensitive)"),
			mcp.WithString("name", mcp.Description("The name or partial name to search for"), mcp.Required()),
		),
		b.handleFindByName,
	)
}

func (b *mcpBridge) handleQueryTree(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	q := &protocol.QueryTreeRequest{}
	if v, ok := params["max_depth"].(float64); ok {
		d := int(v)
		q.MaxDepth = &d
	}
	if v, ok := params["max_nodes"].(float64); ok {
		n := int(v)
		q.MaxNodes = &n
	}
	return b.dispatch(protocol.Request{QueryTree: q})
}

func (b *mcpBridge) handleGetNode(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return b.dispatch(protocol.Request{GetNode: &protocol.GetNodeRequest{
		NodeID: protocol.NodeID(stringParam(params, "node_id")),
	}})
}

func (b *mcpBridge) handlePerformAction(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	action, err := buildAction(stringParam(params, "action"), actionArgs{
		Value: stringParam(params, "value"),
		DX:    floatParam(params, "dx"),
		DY:    floatParam(params, "dy"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return b.dispatch(protocol.Request{PerformAction: &protocol.PerformActionRequest{
		NodeID: protocol.NodeID(stringParam(params, "node_id")),
		Action: action,
	}})
}

func (b *mcpBridge) handleFindByName(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return b.dispatch(protocol.Request{FindByName: &protocol.FindByNameRequest{
		Name: stringParam(params, "name"),
	}})
}

// dispatch routes a request through the native dispatcher and renders the
// outcome as tool text (YAML, matching the client command's output).
func (b *mcpBridge) dispatch(req protocol.Request) (*mcp.CallToolResult, error) {
	msg := b.dispatcher.Handle(protocol.NewRequest(req))
	resp := msg.Content.Response
	if resp == nil {
		return mcp.NewToolResultError("dispatcher returned no response"), nil
	}
	if resp.Error != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", resp.Error.Code, resp.Error.Message)), nil
	}
	text, err := resultToYAML(resp.Success.Result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func resultToYAML(result protocol.Result) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func floatParam(params map[string]any, key string) float64 {
	if v, ok := params[key].(float64); ok {
		return v
	}
	return 0
}
