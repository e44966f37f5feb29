// Package server implements the MCP (Model Context Protocol) server for the
// card recognizer.
//
// This package provides a JSON-RPC 2.0 server that exposes table recognition
// and hand equity through the MCP protocol, so an MCP client can ask what is
// on the table and how strong the hero's hand is.
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
// Table Recognition:
//   - table_recognize_hole: Both hole cards
//   - table_recognize_community: Every community slot
//   - table_first_community_card: First community slot only
//   - table_recognize_all: Every slot, keyed by name
//
// Equity:
//   - table_equity: Win, lose and tie probabilities for the recognized hand
//
// Calibration:
//   - card_recognize_file: Recognize one card crop from an image file, with
//     every rank and suit score
//   - table_calibration: Active calibration profile
//
// Debug:
//   - debug_crops: List or fetch crops saved by the SQLite debug archive
//
// Every table tool accepts an optional screenshot path. When given, the call
// reads that file instead of the live screen.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// An unrecognized card is not an error: the slot reports a null card and its
// confidences. table_equity is the exception, since it cannot run without
// both hole cards.
//
// # Usage
//
//	srv, err := server.New(server.Config{Profile: profile, Recognizer: recognizer})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
