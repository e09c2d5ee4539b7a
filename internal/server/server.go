package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/ironsheep/labreport-mcp/internal/detection"
	"github.com/ironsheep/labreport-mcp/internal/imaging"
	"github.com/ironsheep/labreport-mcp/internal/ocr"
	"github.com/ironsheep/labreport-mcp/internal/report"
)

// ServerName is reported to clients during initialize.
const ServerName = "labreport-mcp"

// TableDetector finds tables in a preprocessed page. *detection.TableExtractor
// implements it.
type TableDetector interface {
	report.TableExtractor
	DetectTables(ctx context.Context, img *image.Gray) ([]detection.Table, error)
}

// Options configures a Server. Zero fields fall back to defaults.
type Options struct {
	// Version is reported in serverInfo.
	Version string

	// Preprocess configures image cleanup before OCR.
	Preprocess imaging.PreprocessConfig

	// Detection configures OCR and table assembly.
	Detection detection.Config

	// Detector overrides the Tesseract-backed table detector.
	Detector TableDetector

	// Logger receives protocol and pipeline logs. It must not write to stdout.
	Logger *log.Logger
}

// Server handles MCP protocol communication
type Server struct {
	version      string
	ocrConfig    ocr.Config
	preprocessor *imaging.Preprocessor
	detector     TableDetector
	processor    *report.Processor
	logger       *log.Logger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a new MCP server instance
func New(opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Preprocess == (imaging.PreprocessConfig{}) {
		opts.Preprocess = imaging.DefaultPreprocessConfig()
	}
	if opts.Detection == (detection.Config{}) {
		opts.Detection = detection.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	detector := opts.Detector
	if detector == nil {
		detector = detection.NewTableExtractor(opts.Detection, logger)
	}
	pre := imaging.NewPreprocessor(opts.Preprocess)

	return &Server{
		version:      opts.Version,
		ocrConfig:    opts.Detection.OCR,
		preprocessor: pre,
		detector:     detector,
		processor:    report.NewProcessor(pre, detector, logger),
		logger:       logger,
	}
}

// Run serves MCP on stdin and stdout until stdin closes or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "err", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "method", req.Method, "err", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    codeMethodNotFound,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": s.version,
			},
		},
	}
}

