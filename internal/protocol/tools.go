package protocol

// ToolCatalog returns the static tool descriptors served by tools_list.
// The catalog never changes at runtime, matching the list_changed: false
// capability reported by initialize.
func ToolCatalog() []Tool {
	return []Tool{
		{
			Name:        "query_tree",
			Description: "Query the accessibility tree starting from the root node",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"max_depth": map[string]any{
						"type":        "integer",
						"description": "Maximum depth to traverse (optional)",
					},
					"max_nodes": map[string]any{
						"type":        "integer",
						"description": "Maximum number of nodes to return (optional)",
					},
				},
			},
		},
		{
			Name:        "get_node",
			Description: "Get details for a specific accessibility node by ID",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"node_id": map[string]any{
						"type":        "string",
						"description": "The unique identifier of the node",
					},
				},
				"required": []any{"node_id"},
			},
		},
		{
			Name:        "perform_action",
			Description: "Perform an accessibility action on a node",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"node_id": map[string]any{
						"type":        "string",
						"description": "The unique identifier of the node",
					},
					"action": map[string]any{
						"type":        "object",
						"description": "The action to perform",
						"properties": map[string]any{
							"type": map[string]any{
								"type": "string",
								"enum": []any{
									ActionFocus, ActionPress, ActionIncrement,
									ActionDecrement, ActionSetValue, ActionScroll,
									ActionContextMenu, ActionCustom,
								},
							},
						},
						"required": []any{"type"},
					},
				},
				"required": []any{"node_id", "action"},
			},
		},
		{
			Name:        "find_by_name",
			Description: "Find accessibility nodes by name (substring match)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "The name or partial name to search for",
					},
				},
				"required": []any{"name"},
			},
		},
	}
}
