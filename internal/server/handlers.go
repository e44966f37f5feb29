package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cardsight/internal/calibration"
	"github.com/ironsheep/cardsight/internal/capture"
	"github.com/ironsheep/cardsight/internal/debugsink"
	"github.com/ironsheep/cardsight/internal/equity"
	"github.com/ironsheep/cardsight/internal/imaging"
	"github.com/ironsheep/cardsight/internal/recognition"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "table_recognize_hole", "table_equity").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.WithFields(log.Fields{"tool": params.Name}).WithError(err).Warn("tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies server defaults for optional parameters
//  3. Captures from the live source, or from a screenshot file when one is named
//  4. Calls the recognition session or equity engine
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Table Recognition
	case "table_recognize_hole":
		return s.handleTableRecognizeHole(args)
	case "table_recognize_community":
		return s.handleTableRecognizeCommunity(args)
	case "table_first_community_card":
		return s.handleTableFirstCommunityCard(args)
	case "table_recognize_all":
		return s.handleTableRecognizeAll(args)

	// Equity
	case "table_equity":
		return s.handleTableEquity(args)

	// Calibration
	case "card_recognize_file":
		return s.handleCardRecognizeFile(args)
	case "table_calibration":
		return s.handleTableCalibration(args)
	case "debug_crops":
		return s.handleDebugCrops(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into v. Tools whose parameters are all
// optional may be called without arguments.
func decodeArgs(args json.RawMessage, v interface{}) error {
	trimmed := strings.TrimSpace(string(args))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// sessionFor returns the live session, or a session replaying screenshot
// when a path is given.
func (s *Server) sessionFor(screenshot string) (*recognition.Session, error) {
	if screenshot == "" {
		return s.session, nil
	}
	return s.profile.NewSession(capture.FileSource{Path: screenshot}, s.recognizer)
}

// === Table Recognition Handlers ===

type tableArgs struct {
	Screenshot string `json:"screenshot,omitempty"`
}

func (s *Server) tableSession(args json.RawMessage) (*recognition.Session, error) {
	var a tableArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.sessionFor(a.Screenshot)
}

type holeResponse struct {
	Left  recognition.RecognizedSlot `json:"left"`
	Right recognition.RecognizedSlot `json:"right"`

	// Hand is set when both cards resolved; Failure explains why it is not.
	Hand    []string `json:"hand,omitempty"`
	Failure string   `json:"failure,omitempty"`
}

func (s *Server) handleTableRecognizeHole(args json.RawMessage) (interface{}, error) {
	session, err := s.tableSession(args)
	if err != nil {
		return nil, err
	}
	hole, err := session.RecognizeHole()
	if err != nil {
		return nil, err
	}

	resp := holeResponse{Left: hole.Left, Right: hole.Right}
	if hand, err := hole.Hand(); err != nil {
		resp.Failure = err.Error()
	} else {
		resp.Hand = cardStrings(hand[:])
	}
	return resp, nil
}

func (s *Server) handleTableRecognizeCommunity(args json.RawMessage) (interface{}, error) {
	session, err := s.tableSession(args)
	if err != nil {
		return nil, err
	}
	slots, err := session.RecognizeCommunity()
	if err != nil {
		return nil, err
	}

	var cards []recognition.Card
	for _, slot := range slots {
		if slot.Card != nil {
			cards = append(cards, *slot.Card)
		}
	}
	return map[string]interface{}{
		"slots": slots,
		"cards": cardStrings(cards),
	}, nil
}

func (s *Server) handleTableFirstCommunityCard(args json.RawMessage) (interface{}, error) {
	session, err := s.tableSession(args)
	if err != nil {
		return nil, err
	}
	card, err := session.RecognizeFirstCommunityCard()
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"slot": recognition.CommunitySlot(1),
		"card": nil,
	}
	if card != nil {
		result["card"] = card.String()
	}
	return result, nil
}

func (s *Server) handleTableRecognizeAll(args json.RawMessage) (interface{}, error) {
	session, err := s.tableSession(args)
	if err != nil {
		return nil, err
	}
	return session.RecognizeAll()
}

// === Equity Handlers ===

type tableEquityArgs struct {
	Screenshot string  `json:"screenshot,omitempty"`
	Opponents  int     `json:"opponents,omitempty"`
	Iterations int     `json:"iterations,omitempty"`
	Seed       *uint64 `json:"seed,omitempty"`

	// Community replaces the recognized board, e.g. "Ah,Kd,7c". An empty
	// string means a pre-flop board.
	Community *string `json:"community,omitempty"`
}

type equityResponse struct {
	Hero       []string `json:"hero"`
	Board      []string `json:"board"`
	Opponents  int      `json:"opponents"`
	Iterations int      `json:"iterations"`
	Seed       uint64   `json:"seed"`

	Win         float64   `json:"win"`
	Lose        float64   `json:"lose"`
	Tie         float64   `json:"tie"`
	OpponentWin []float64 `json:"opponent_win"`

	// Hand names the hero's made hand on the flop and river.
	Hand string `json:"hand,omitempty"`

	// Formatted holds the same probabilities rendered as percentages.
	Formatted map[string]string `json:"formatted"`
	Lines     []string          `json:"lines"`
}

func (s *Server) handleTableEquity(args json.RawMessage) (interface{}, error) {
	var a tableEquityArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Opponents < 0 || a.Iterations < 0 {
		return nil, fmt.Errorf("%w: opponents and iterations must not be negative", equity.ErrInvalidRequest)
	}

	session, err := s.sessionFor(a.Screenshot)
	if err != nil {
		return nil, err
	}

	var hole recognition.HoleResult
	var board []recognition.Card
	if a.Community != nil {
		if board, err = recognition.ParseCards(*a.Community); err != nil {
			return nil, fmt.Errorf("%w: community: %v", equity.ErrInvalidRequest, err)
		}
		if hole, err = session.RecognizeHole(); err != nil {
			return nil, err
		}
	} else {
		table, err := session.RecognizeAll()
		if err != nil {
			return nil, err
		}
		hole = recognition.HoleResult{
			Left:  table.Slots[recognition.SlotLeft],
			Right: table.Slots[recognition.SlotRight],
		}
		board = table.Cards(communityNames(table)...)
	}

	hero, err := hole.Hand()
	if err != nil {
		return nil, err
	}

	req := equity.Request{
		Hero:       hero,
		Board:      board,
		Opponents:  orDefault(a.Opponents, s.opponents),
		Iterations: orDefault(a.Iterations, s.iterations),
		Seed:       s.seed,
	}
	if a.Seed != nil {
		req.Seed = *a.Seed
	}

	res, err := s.engine.Estimate(req)
	if err != nil {
		return nil, err
	}
	hand, err := equity.DescribeHand(hero, board)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"hero":      cardStrings(hero[:]),
		"board":     cardStrings(board),
		"opponents": req.Opponents,
		"win":       res.Win,
	}).Info("equity estimated")

	formatted := map[string]string{
		"win":  equity.FormatPercent(res.Win),
		"lose": equity.FormatPercent(res.Lose),
		"tie":  equity.FormatPercent(res.Tie),
	}
	for i, p := range res.OpponentWin {
		formatted[fmt.Sprintf("opponent_%d", i+1)] = equity.FormatPercent(p)
	}

	return equityResponse{
		Hero:        cardStrings(hero[:]),
		Board:       cardStrings(board),
		Opponents:   req.Opponents,
		Iterations:  res.Iterations,
		Seed:        req.Seed,
		Win:         res.Win,
		Lose:        res.Lose,
		Tie:         res.Tie,
		OpponentWin: res.OpponentWin,
		Hand:        hand,
		Formatted:   formatted,
		Lines:       equity.NewReport(req, res).Lines(),
	}, nil
}

// === Calibration Handlers ===

type cardRecognizeFileArgs struct {
	Path         string          `json:"path"`
	Region       *capture.Region `json:"region,omitempty"`
	Slot         string          `json:"slot,omitempty"`
	IncludeImage bool            `json:"include_image,omitempty"`
}

func (s *Server) handleCardRecognizeFile(args json.RawMessage) (interface{}, error) {
	var a cardRecognizeFileArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.Slot == "" {
		a.Slot = "card"
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	if a.Region != nil {
		if err := a.Region.Validate(); err != nil {
			return nil, err
		}
		if img, err = imaging.Crop(img, a.Region.Rect()); err != nil {
			return nil, err
		}
	}

	result := s.recognizer.Recognize(a.Slot, img)
	resp := map[string]interface{}{
		"width":   img.Bounds().Dx(),
		"height":  img.Bounds().Dy(),
		"result":  result,
		"failure": result.Failure(),
		"scores":  s.recognizer.Scores(img),
	}
	if a.IncludeImage {
		encoded, err := imaging.EncodeBase64PNG(img)
		if err != nil {
			return nil, err
		}
		resp["image_png"] = encoded
	}
	return resp, nil
}

type calibrationResponse struct {
	Profile    calibration.Profile `json:"profile"`
	Opponents  int                 `json:"opponents"`
	Iterations int                 `json:"iterations"`
	Seed       uint64              `json:"seed"`
}

func (s *Server) handleTableCalibration(args json.RawMessage) (interface{}, error) {
	return calibrationResponse{
		Profile:    s.profile,
		Opponents:  s.opponents,
		Iterations: s.iterations,
		Seed:       s.seed,
	}, nil
}

// === Debug Handlers ===

// defaultCropLimit caps debug_crops listings when no limit is given.
const defaultCropLimit = 20

type debugCropsArgs struct {
	ID    string `json:"id,omitempty"`
	Slot  string `json:"slot,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type debugCropResponse struct {
	debugsink.Record

	// Base64 PNGs; empty when the crop had no such image.
	CardPNG       string `json:"card_png,omitempty"`
	SuitRegionPNG string `json:"suit_region_png,omitempty"`
	SuitMaskPNG   string `json:"suit_mask_png,omitempty"`
}

func (s *Server) handleDebugCrops(args json.RawMessage) (interface{}, error) {
	if s.archive == nil {
		return nil, errors.New("debug archive not configured (set CARDSIGHT_DEBUG_DB)")
	}
	var a debugCropsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Limit < 0 {
		return nil, fmt.Errorf("limit %d must not be negative", a.Limit)
	}

	if a.ID != "" {
		rec, err := s.archive.Get(a.ID)
		if err != nil {
			return nil, err
		}
		return debugCropResponse{
			Record:        *rec,
			CardPNG:       base64.StdEncoding.EncodeToString(rec.CardPNG),
			SuitRegionPNG: base64.StdEncoding.EncodeToString(rec.SuitRegionPNG),
			SuitMaskPNG:   base64.StdEncoding.EncodeToString(rec.SuitMaskPNG),
		}, nil
	}

	records, err := s.archive.List(a.Slot, orDefault(a.Limit, defaultCropLimit))
	if err != nil {
		return nil, err
	}
	total, err := s.archive.Count()
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []debugsink.Record{}
	}
	return map[string]interface{}{
		"total": total,
		"crops": records,
	}, nil
}

// === Helpers ===

func cardStrings(cards []recognition.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func communityNames(table *recognition.TableResult) []string {
	var names []string
	for _, name := range table.Order {
		if name != recognition.SlotLeft && name != recognition.SlotRight {
			names = append(names, name)
		}
	}
	return names
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
