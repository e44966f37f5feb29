package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cardsight/internal/calibration"
	"github.com/ironsheep/cardsight/internal/capture"
	"github.com/ironsheep/cardsight/internal/debugsink"
	"github.com/ironsheep/cardsight/internal/equity"
	"github.com/ironsheep/cardsight/internal/imaging"
	"github.com/ironsheep/cardsight/internal/recognition"
)

// Version is reported in the initialize handshake.
var Version = "0.1.0"

// Config wires a Server to the recognition pipeline.
type Config struct {
	Profile    calibration.Profile
	Recognizer *recognition.Recognizer

	// Source defaults to the live screen.
	Source capture.Source

	// Engine defaults to equity.MonteCarlo.
	Engine equity.Engine

	// Cache defaults to a fresh cache.
	Cache *imaging.ImageCache

	// Archive backs debug_crops; nil leaves the tool unavailable.
	Archive *debugsink.Archive

	// Simulation defaults for table_equity.
	Opponents  int
	Iterations int
	Seed       uint64
}

// Server handles MCP protocol communication
type Server struct {
	cache      *imaging.ImageCache
	profile    calibration.Profile
	recognizer *recognition.Recognizer
	session    *recognition.Session
	engine     equity.Engine
	archive    *debugsink.Archive
	opponents  int
	iterations int
	seed       uint64
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

// New creates a new MCP server instance
func New(cfg Config) (*Server, error) {
	if cfg.Recognizer == nil {
		return nil, fmt.Errorf("server requires a recognizer")
	}
	if cfg.Source == nil {
		cfg.Source = capture.Screen{}
	}
	if cfg.Engine == nil {
		cfg.Engine = equity.MonteCarlo{}
	}
	if cfg.Cache == nil {
		cfg.Cache = imaging.NewImageCache()
	}
	if cfg.Opponents == 0 {
		cfg.Opponents = equity.DefaultOpponents
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = equity.DefaultIterations
	}

	session, err := cfg.Profile.NewSession(cfg.Source, cfg.Recognizer)
	if err != nil {
		return nil, err
	}

	return &Server{
		cache:      cfg.Cache,
		profile:    cfg.Profile,
		recognizer: cfg.Recognizer,
		session:    session,
		engine:     cfg.Engine,
		archive:    cfg.Archive,
		opponents:  cfg.Opponents,
		iterations: cfg.Iterations,
		seed:       cfg.Seed,
	}, nil
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve processes newline-delimited JSON-RPC requests from in until EOF,
// writing responses to out.
func (s *Server) Serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.WithError(err).Warn("failed to parse request")
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.WithError(err).Error("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	log.WithField("method", req.Method).Debug("request received")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
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
				Code:    -32601,
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
				"name":    "cardsight",
				"version": Version,
			},
		},
	}
}
