package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/a11y-mcp/internal/protocol"
)

var clientCmd = &cobra.Command{
	Use:   "client <method> [args]",
	Short: "Send one request to a running server and print the response",
	Long: `Send a single protocol request to a running a11y-mcp server over its
unix socket or HTTP endpoint and print the response.

Methods:
  query_tree
  get_node <node_id>
  perform_action <node_id> <action_type>
  find_by_name <name>
  initialize
  tools_list

Examples:
  a11y-mcp client --socket /tmp/a11y_mcp_1234.sock query_tree
  a11y-mcp client --socket /tmp/a11y_mcp_1234.sock find_by_name OK
  a11y-mcp client --url http://127.0.0.1:9123 perform_action n1 press
  a11y-mcp client --url http://127.0.0.1:9123 perform_action n2 set_value --value hello`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClient,
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.Flags().String("socket", "", "Unix socket path of the server")
	clientCmd.Flags().String("url", "", "Base URL of the server's HTTP transport")
	clientCmd.Flags().String("format", "yaml", "Output format: yaml, json")
	clientCmd.Flags().String("value", "", "Value for set_value actions")
	clientCmd.Flags().Float64("dx", 0, "Horizontal delta for scroll actions")
	clientCmd.Flags().Float64("dy", 0, "Vertical delta for scroll actions")
}

// actionArgs carries the flag values that parameterize an action.
type actionArgs struct {
	Value  string
	DX, DY float64
}

func runClient(cmd *cobra.Command, args []string) error {
	socket, _ := cmd.Flags().GetString("socket")
	url, _ := cmd.Flags().GetString("url")
	format, _ := cmd.Flags().GetString("format")
	if (socket == "") == (url == "") {
		return fmt.Errorf("specify exactly one of --socket or --url")
	}

	var action actionArgs
	action.Value, _ = cmd.Flags().GetString("value")
	action.DX, _ = cmd.Flags().GetFloat64("dx")
	action.DY, _ = cmd.Flags().GetFloat64("dy")

	req, err := buildRequest(args[0], args[1:], action)
	if err != nil {
		return err
	}
	line, err := protocol.EncodeMessage(protocol.NewRequest(req))
	if err != nil {
		return err
	}

	var reply []byte
	if socket != "" {
		reply, err = sendUnix(socket, line)
	} else {
		reply, err = sendHTTP(url, line)
	}
	if err != nil {
		return err
	}

	return printReply(cmd.OutOrStdout(), reply, format)
}

// buildRequest maps the CLI method and positional args onto a request.
func buildRequest(method string, args []string, action actionArgs) (protocol.Request, error) {
	switch method {
	case protocol.KindQueryTree:
		return protocol.Request{QueryTree: &protocol.QueryTreeRequest{}}, nil
	case protocol.KindGetNode:
		if len(args) != 1 {
			return protocol.Request{}, fmt.Errorf("get_node expects exactly one node_id")
		}
		return protocol.Request{GetNode: &protocol.GetNodeRequest{NodeID: protocol.NodeID(args[0])}}, nil
	case protocol.KindPerformAction:
		if len(args) != 2 {
			return protocol.Request{}, fmt.Errorf("perform_action expects <node_id> <action_type>")
		}
		act, err := buildAction(args[1], action)
		if err != nil {
			return protocol.Request{}, err
		}
		return protocol.Request{PerformAction: &protocol.PerformActionRequest{
			NodeID: protocol.NodeID(args[0]),
			Action: act,
		}}, nil
	case protocol.KindFindByName:
		if len(args) != 1 {
			return protocol.Request{}, fmt.Errorf("find_by_name expects exactly one name")
		}
		return protocol.Request{FindByName: &protocol.FindByNameRequest{Name: args[0]}}, nil
	case protocol.KindInitialize:
		return protocol.Request{Initialize: &protocol.InitializeRequest{ProtocolVersion: protocol.Version}}, nil
	case protocol.KindToolsList:
		return protocol.Request{ToolsList: &protocol.ToolsListRequest{}}, nil
	}
	return protocol.Request{}, fmt.Errorf("unknown method: %q", method)
}

// buildAction interprets the action type argument. Known tags get their
// flag-driven payloads; anything else becomes a custom action, which is
// how platform-specific names like AXRaise are reached.
func buildAction(kind string, args actionArgs) (protocol.Action, error) {
	switch kind {
	case protocol.ActionFocus, protocol.ActionPress, protocol.ActionIncrement,
		protocol.ActionDecrement, protocol.ActionContextMenu:
		return protocol.Action{Type: kind}, nil
	case protocol.ActionSetValue:
		return protocol.SetValue(args.Value), nil
	case protocol.ActionScroll:
		return protocol.Scroll(args.DX, args.DY), nil
	}
	return protocol.Custom(kind), nil
}

func sendUnix(socket string, line []byte) ([]byte, error) {
	conn, err := net.DialTimeout("unix", socket, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", socket, err)
	}
	defer conn.Close()

	if _, err := conn.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	reply, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return bytes.TrimSpace(reply), nil
}

func sendHTTP(baseURL string, line []byte) ([]byte, error) {
	resp, err := http.Post(baseURL+"/mcp", "application/json", bytes.NewReader(line))
	if err != nil {
		return nil, fmt.Errorf("post request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s: %s", strconv.Itoa(resp.StatusCode), body)
	}
	return body, nil
}

// printReply renders the raw response. YAML goes through a generic decode
// so the output reflects the wire shape, not internal struct layout.
func printReply(w io.Writer, reply []byte, format string) error {
	switch format {
	case "json":
		var buf bytes.Buffer
		if err := json.Indent(&buf, reply, "", "  "); err != nil {
			return fmt.Errorf("response is not valid JSON: %w", err)
		}
		fmt.Fprintln(w, buf.String())
		return nil
	case "yaml":
		var v any
		if err := json.Unmarshal(reply, &v); err != nil {
			return fmt.Errorf("response is not valid JSON: %w", err)
		}
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(out))
		return nil
	}
	return fmt.Errorf("unsupported format: %q (use yaml or json)", format)
}
