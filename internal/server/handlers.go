package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/ironsheep/labreport-mcp/internal/detection"
	"github.com/ironsheep/labreport-mcp/internal/imaging"
	"github.com/ironsheep/labreport-mcp/internal/labtable"
	"github.com/ironsheep/labreport-mcp/internal/ocr"
)

// JSON-RPC error codes.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

var (
	errInvalidArgs = errors.New("invalid arguments")
	errUnknownTool = errors.New("unknown tool")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "lab_report_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments and unknown tools return code -32602. Other tool
// failures return code -32000. lab_report_extract never fails this way: a
// document it cannot process is reported as is_success=false.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		s.logger.Warn("tool call failed", "tool", params.Name, "elapsed", elapsed, "err", err)
		if errors.Is(err, errInvalidArgs) || errors.Is(err, errUnknownTool) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool call", "tool", params.Name, "elapsed", elapsed)

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case ToolExtract:
		return s.handleExtract(ctx, args)
	case ToolInterpret:
		return s.handleInterpret(args)
	case ToolTables:
		return s.handleTables(ctx, args)
	case ToolPreprocess:
		return s.handlePreprocess(args)
	case ToolOCRInfo:
		return s.handleOCRInfo()
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into v. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// loadImage reads and decodes the image at path.
func loadImage(path string) (image.Image, *imaging.ImageInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image: %w", err)
	}
	return imaging.DecodeWithInfo(data)
}

// === Pipeline Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (a pathArgs) validate() error {
	if a.Path == "" {
		return fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return nil
}

func (s *Server) handleExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return s.processor.ProcessFile(ctx, a.Path), nil
}

type interpretArgs struct {
	Tables []labtable.RawTable `json:"tables"`
}

func (s *Server) handleInterpret(args json.RawMessage) (interface{}, error) {
	var a interpretArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Tables == nil {
		return nil, fmt.Errorf("%w: tables is required", errInvalidArgs)
	}
	return labtable.Interpreter{Logger: s.logger}.Interpret(a.Tables), nil
}

// === Diagnostic Handlers ===

// TablesResult is the output of lab_report_tables.
type TablesResult struct {
	Image  *imaging.ImageInfo `json:"image"`
	Tables []detection.Table  `json:"tables"`
	Count  int                `json:"count"`
}

func (s *Server) handleTables(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}

	img, info, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	tables, err := s.detector.DetectTables(ctx, s.preprocessor.Preprocess(img))
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []detection.Table{}
	}
	return &TablesResult{Image: info, Tables: tables, Count: len(tables)}, nil
}

type preprocessArgs struct {
	Path  string  `json:"path"`
	X1    *int    `json:"x1"`
	Y1    *int    `json:"y1"`
	X2    *int    `json:"x2"`
	Y2    *int    `json:"y2"`
	Scale float64 `json:"scale"`
}

// region returns the requested crop, or nil when no coordinates were given.
func (a preprocessArgs) region() (*image.Rectangle, error) {
	coords := []*int{a.X1, a.Y1, a.X2, a.Y2}
	set := 0
	for _, c := range coords {
		if c != nil {
			set++
		}
	}
	switch set {
	case 0:
		return nil, nil
	case len(coords):
		r := image.Rect(*a.X1, *a.Y1, *a.X2, *a.Y2)
		if *a.X1 >= *a.X2 || *a.Y1 >= *a.Y2 {
			return nil, fmt.Errorf("%w: x1 must be < x2, y1 must be < y2", errInvalidArgs)
		}
		return &r, nil
	default:
		return nil, fmt.Errorf("%w: region needs all of x1, y1, x2, y2", errInvalidArgs)
	}
}

func (s *Server) handlePreprocess(args json.RawMessage) (interface{}, error) {
	var a preprocessArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := (pathArgs{Path: a.Path}).validate(); err != nil {
		return nil, err
	}
	region, err := a.region()
	if err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Scale < 0 {
		return nil, fmt.Errorf("%w: scale must be positive", errInvalidArgs)
	}

	img, _, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Preview(s.preprocessor.Preprocess(img), region, a.Scale)
}

func (s *Server) handleOCRInfo() (interface{}, error) {
	return ocr.GetOCRInfo(s.ocrConfig), nil
}
