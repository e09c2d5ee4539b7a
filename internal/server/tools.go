package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Tool names.
const (
	ToolExtract    = "lab_report_extract"
	ToolInterpret  = "lab_report_interpret"
	ToolTables     = "lab_report_tables"
	ToolPreprocess = "lab_report_preprocess"
	ToolOCRInfo    = "lab_report_ocr_info"
)

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the lab report image (PNG, JPEG, GIF, TIFF, BMP or WebP)",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Pipeline
		{
			Name: ToolExtract,
			Description: "Extract lab test records from a lab report image. Returns {is_success, data} where data lists " +
				"test_name, test_value, bio_reference_range, test_unit and lab_test_out_of_range for every usable row. " +
				"An unreadable image yields is_success=false; a readable image with no tables yields is_success=true with no data.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name: ToolInterpret,
			Description: "Interpret already-extracted tables without OCR. Each table has a header (column labels) and rows " +
				"of cells, where a cell is a string or null. Returns the same {is_success, data} result as lab_report_extract.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tables": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"header": map[string]interface{}{
									"type":  "array",
									"items": map[string]interface{}{"type": "string"},
								},
								"rows": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type":  "array",
										"items": map[string]interface{}{"type": []string{"string", "null"}},
									},
								},
							},
							"required": []string{"rows"},
						},
						"description": "Raw tables in document order",
					},
				},
				"required": []string{"tables"},
			},
		},

		// Diagnostics
		{
			Name:        ToolTables,
			Description: "Run OCR and table detection on a lab report image and return the raw tables with their page bounds, before any column classification.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolPreprocess,
			Description: "Return the cleaned black-on-white image that OCR sees, as base64-encoded PNG. Optionally crop to a region of the cleaned image and scale it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 0.5 to halve size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolOCRInfo,
			Description: "Report the Tesseract version, configured language and page segmentation mode, and whether the training data is installed.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
