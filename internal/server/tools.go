package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// screenshotProperty is shared by every tool that captures the table.
var screenshotProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to a full-screen screenshot to read instead of the live screen",
}

func tableSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"screenshot": screenshotProperty,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Table Recognition
		{
			Name:        "table_recognize_hole",
			Description: "Capture and recognize the player's two hole cards. Each slot reports its card (or null) with rank and suit confidences.",
			InputSchema: tableSchema(),
		},
		{
			Name:        "table_recognize_community",
			Description: "Capture and recognize every community card slot in layout order. Unresolved slots are cards not yet dealt.",
			InputSchema: tableSchema(),
		},
		{
			Name:        "table_first_community_card",
			Description: "Recognize only the first community slot. Returns null while the flop is not dealt.",
			InputSchema: tableSchema(),
		},
		{
			Name:        "table_recognize_all",
			Description: "Recognize every configured slot (left, right, comm_1 onward) in one capture cycle.",
			InputSchema: tableSchema(),
		},

		// Equity
		{
			Name:        "table_equity",
			Description: "Recognize the hero's hole cards and the board, then estimate win, lose and tie probabilities against random opponent hands. Fails with insufficient information when a hole card is unresolved.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"screenshot": screenshotProperty,
					"opponents": map[string]interface{}{
						"type":        "integer",
						"description": "Number of opponents (default from configuration, normally 3)",
						"minimum":     1,
					},
					"iterations": map[string]interface{}{
						"type":        "integer",
						"description": "Simulated deals (default from configuration, normally 2500)",
						"minimum":     1,
					},
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Random seed; the same seed and cards always give the same result",
					},
					"community": map[string]interface{}{
						"type":        "string",
						"description": "Comma-separated board overriding recognition, e.g. \"Ah,Kd,7c\". Empty string means pre-flop.",
					},
				},
			},
		},

		// Calibration
		{
			Name:        "card_recognize_file",
			Description: "Recognize a single card crop loaded from an image file. Use it to check templates and suit ranges against saved crops.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"region": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x":      map[string]interface{}{"type": "integer"},
							"y":      map[string]interface{}{"type": "integer"},
							"width":  map[string]interface{}{"type": "integer"},
							"height": map[string]interface{}{"type": "integer"},
						},
						"required":    []string{"x", "y", "width", "height"},
						"description": "Optional card region within the image",
					},
					"slot": map[string]interface{}{
						"type":        "string",
						"description": "Slot name reported in the result (default \"card\")",
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the recognized crop as a base64 PNG",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "table_calibration",
			Description: "Return the active calibration profile: capture regions, suit colour ranges, template files and acceptance thresholds.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Debug
		{
			Name:        "debug_crops",
			Description: "List crops saved by the debug archive, newest first, or fetch one by id with its card, suit region and suit mask images as base64 PNGs.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": map[string]interface{}{
						"type":        "string",
						"description": "Crop id to fetch with images; omit to list",
					},
					"slot": map[string]interface{}{
						"type":        "string",
						"description": "Only list crops from this slot, e.g. \"left\" or \"comm_2\"",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum crops to list (default 20)",
						"minimum":     1,
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
