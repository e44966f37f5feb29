package equity

import (
	"fmt"
	"strings"

	"github.com/ironsheep/cardsight/internal/recognition"
)

// FormatPercent renders a probability as a percentage with two decimals,
// e.g. 0.632 as "63.20%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// Report is a simulation result alongside the cards it was computed for.
type Report struct {
	Hero   []recognition.Card
	Board  []recognition.Card
	Result Result
}

// NewReport pairs a request with its result.
func NewReport(req Request, res Result) Report {
	return Report{Hero: req.Hero[:], Board: req.Board, Result: res}
}

// Lines renders the report one fact per line:
//
//	Detected Player Cards: AS, KH
//	Community Cards: None
//	Win Probability: 63.20%
//	Lose Probability: 35.10%
//	Opponent 1 Win Probability: 12.04%
func (r Report) Lines() []string {
	community := "None"
	if len(r.Board) > 0 {
		community = joinCards(r.Board)
	}
	lines := []string{
		"Detected Player Cards: " + joinCards(r.Hero),
		"Community Cards: " + community,
		"Win Probability: " + FormatPercent(r.Result.Win),
		"Lose Probability: " + FormatPercent(r.Result.Lose),
	}
	for i, p := range r.Result.OpponentWin {
		lines = append(lines, fmt.Sprintf("Opponent %d Win Probability: %s", i+1, FormatPercent(p)))
	}
	return lines
}

func (r Report) String() string {
	return strings.Join(r.Lines(), "\n")
}

func joinCards(cards []recognition.Card) string {
	s := make([]string, len(cards))
	for i, c := range cards {
		s[i] = strings.ToUpper(c.String())
	}
	return strings.Join(s, ", ")
}
