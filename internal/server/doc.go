// Package server implements the MCP (Model Context Protocol) server for lab
// report extraction.
//
// This package provides a JSON-RPC 2.0 server that exposes the lab report
// pipeline through the MCP protocol, so MCP-compatible clients can turn a
// photographed or scanned lab report into structured test records.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Pipeline:
//   - lab_report_extract: Image to {is_success, data} records
//   - lab_report_interpret: Raw tables to records, no OCR
//
// Diagnostics:
//   - lab_report_tables: Tables found by OCR, with page bounds
//   - lab_report_preprocess: The cleaned image OCR sees
//   - lab_report_ocr_info: Tesseract version and language data
//
// # Error Handling
//
// Malformed arguments and unknown tools return code -32602. Other tool
// failures return code -32000 with the Go error string as data.
// lab_report_extract reports unreadable documents in its result
// (is_success=false) instead.
//
// Nothing is cached between calls; each call decodes its image again.
//
// # Usage
//
//	srv := server.New(server.Options{Version: version, Logger: logger})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
