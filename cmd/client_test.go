package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mj1618/a11y-mcp/internal/protocol"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		args    []string
		action  actionArgs
		check   func(t *testing.T, req protocol.Request)
		wantErr bool
	}{
		{
			name:   "query_tree",
			method: "query_tree",
			check: func(t *testing.T, req protocol.Request) {
				if req.QueryTree == nil {
					t.Fatal("expected query_tree request")
				}
			},
		},
		{
			name:   "get_node",
			method: "get_node",
			args:   []string{"n1"},
			check: func(t *testing.T, req protocol.Request) {
				if req.GetNode == nil || req.GetNode.NodeID != "n1" {
					t.Fatalf("unexpected request: %+v", req.GetNode)
				}
			},
		},
		{
			name:    "get_node missing arg",
			method:  "get_node",
			wantErr: true,
		},
		{
			name:   "perform_action press",
			method: "perform_action",
			args:   []string{"n1", "press"},
			check: func(t *testing.T, req protocol.Request) {
				if req.PerformAction == nil {
					t.Fatal("expected perform_action request")
				}
				if req.PerformAction.NodeID != "n1" || req.PerformAction.Action.Type != protocol.ActionPress {
					t.Fatalf("unexpected request: %+v", req.PerformAction)
				}
			},
		},
		{
			name:    "perform_action missing action",
			method:  "perform_action",
			args:    []string{"n1"},
			wantErr: true,
		},
		{
			name:   "find_by_name",
			method: "find_by_name",
			args:   []string{"OK"},
			check: func(t *testing.T, req protocol.Request) {
				if req.FindByName == nil || req.FindByName.Name != "OK" {
					t.Fatalf("unexpected request: %+v", req.FindByName)
				}
			},
		},
		{
			name:   "initialize stamps current version",
			method: "initialize",
			check: func(t *testing.T, req protocol.Request) {
				if req.Initialize == nil || req.Initialize.ProtocolVersion != protocol.Version {
					t.Fatalf("unexpected request: %+v", req.Initialize)
				}
			},
		},
		{
			name:   "tools_list",
			method: "tools_list",
			check: func(t *testing.T, req protocol.Request) {
				if req.ToolsList == nil {
					t.Fatal("expected tools_list request")
				}
			},
		},
		{
			name:    "unknown method",
			method:  "reboot",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := buildRequest(tt.method, tt.args, tt.action)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildRequest: %v", err)
			}
			tt.check(t, req)
		})
	}
}

func TestBuildAction(t *testing.T) {
	act, err := buildAction("set_value", actionArgs{Value: "hello"})
	if err != nil {
		t.Fatalf("buildAction: %v", err)
	}
	if act.Type != protocol.ActionSetValue || act.Value != "hello" {
		t.Fatalf("unexpected action: %+v", act)
	}

	act, err = buildAction("scroll", actionArgs{DX: 3, DY: -7})
	if err != nil {
		t.Fatalf("buildAction: %v", err)
	}
	if act.Type != protocol.ActionScroll || act.X != 3 || act.Y != -7 {
		t.Fatalf("unexpected action: %+v", act)
	}

	// Unrecognized names pass through as custom actions.
	act, err = buildAction("AXRaise", actionArgs{})
	if err != nil {
		t.Fatalf("buildAction: %v", err)
	}
	if act.Type != protocol.ActionCustom || act.Name != "AXRaise" {
		t.Fatalf("unexpected action: %+v", act)
	}
}

func TestPrintReply(t *testing.T) {
	reply := []byte(`{"protocol_version":"1.0","content":{"response":{"success":{"result":{"success":true}}}}}`)

	var buf bytes.Buffer
	if err := printReply(&buf, reply, "json"); err != nil {
		t.Fatalf("printReply json: %v", err)
	}
	if !strings.Contains(buf.String(), "\"protocol_version\": \"1.0\"") {
		t.Errorf("json output missing version: %s", buf.String())
	}

	buf.Reset()
	if err := printReply(&buf, reply, "yaml"); err != nil {
		t.Fatalf("printReply yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "protocol_version: \"1.0\"") {
		t.Errorf("yaml output missing version: %s", buf.String())
	}

	if err := printReply(&buf, reply, "toml"); err == nil {
		t.Error("expected error for unsupported format")
	}
	if err := printReply(&buf, []byte("not json"), "json"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
