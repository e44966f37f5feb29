// Package equity estimates hand equity over unseen cards by Monte Carlo
// simulation.
//
// Hands are evaluated with github.com/paulhankin/poker. Card identities use
// the recognition alphabet (ranks 2-10, J, Q, K, A and suits s, h, d, c) and
// are validated before any simulation runs, so malformed identities never
// reach the evaluator.
package equity

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/paulhankin/poker"

	"github.com/ironsheep/cardsight/internal/recognition"
)

// ErrInvalidRequest is returned for malformed or impossible requests.
var ErrInvalidRequest = errors.New("invalid equity request")

// Defaults applied to zero-valued request fields.
const (
	DefaultOpponents  = 3
	DefaultIterations = 2500
)

// Request describes one simulation.
type Request struct {
	Hero      [2]recognition.Card `json:"hero"`
	Board     []recognition.Card  `json:"board,omitempty"`
	Opponents int                 `json:"opponents"`

	// Iterations defaults to DefaultIterations when zero.
	Iterations int `json:"iterations,omitempty"`

	// Seed makes the simulation reproducible.
	Seed uint64 `json:"seed"`
}

// Result holds the hero's outcome probabilities in [0, 1].
type Result struct {
	Iterations int `json:"iterations"`

	// Win counts deals where the hero holds the single best hand, Tie deals
	// where the hero shares it, and Lose the rest.
	Win  float64 `json:"win"`
	Lose float64 `json:"lose"`
	Tie  float64 `json:"tie"`

	// OpponentWin[i] is the probability that opponent i+1 holds the single
	// best hand.
	OpponentWin []float64 `json:"opponent_win"`
}

// Engine computes equity for a request.
type Engine interface {
	Estimate(req Request) (Result, error)
}

// MonteCarlo is an Engine that deals random completions of the board and
// opponent hands.
type MonteCarlo struct{}

// Estimate implements Engine.
func (MonteCarlo) Estimate(req Request) (Result, error) {
	return Estimate(req)
}

// Estimate validates req and runs the simulation. The same request always
// yields the same result.
func Estimate(req Request) (Result, error) {
	if req.Opponents == 0 {
		req.Opponents = DefaultOpponents
	}
	if req.Iterations == 0 {
		req.Iterations = DefaultIterations
	}
	known, err := validate(req)
	if err != nil {
		return Result{}, err
	}

	hero := known[:2]
	board := known[2:]
	deck := remainingDeck(known)
	rng := rand.New(rand.NewPCG(req.Seed, req.Seed^0x9e3779b97f4a7c15))

	missing := 5 - len(board)
	need := missing + 2*req.Opponents

	var wins, ties int
	oppWins := make([]int, req.Opponents)

	var hand [7]poker.Card
	copy(hand[:], board)
	for iter := 0; iter < req.Iterations; iter++ {
		// Partial Fisher-Yates: the first need cards of deck are the deal.
		for i := 0; i < need; i++ {
			j := i + rng.IntN(len(deck)-i)
			deck[i], deck[j] = deck[j], deck[i]
		}
		copy(hand[len(board):5], deck[:missing])

		hand[5], hand[6] = hero[0], hero[1]
		heroScore := poker.Eval7(&hand)

		best := heroScore
		bestCount := 1
		bestOpp := -1
		for o := 0; o < req.Opponents; o++ {
			hand[5], hand[6] = deck[missing+2*o], deck[missing+2*o+1]
			score := poker.Eval7(&hand)
			switch {
			case score > best:
				best, bestCount, bestOpp = score, 1, o
			case score == best:
				bestCount++
			}
		}

		switch {
		case best == heroScore && bestCount == 1:
			wins++
		case best == heroScore:
			ties++
		case bestCount == 1:
			oppWins[bestOpp]++
		}
	}

	n := float64(req.Iterations)
	result := Result{
		Iterations:  req.Iterations,
		Win:         float64(wins) / n,
		Tie:         float64(ties) / n,
		OpponentWin: make([]float64, req.Opponents),
	}
	result.Lose = float64(req.Iterations-wins-ties) / n
	for i, w := range oppWins {
		result.OpponentWin[i] = float64(w) / n
	}
	return result, nil
}

// validate checks req and returns the hero cards followed by the board as
// evaluator cards.
func validate(req Request) ([]poker.Card, error) {
	if req.Opponents < 1 {
		return nil, fmt.Errorf("%w: opponents %d must be at least 1", ErrInvalidRequest, req.Opponents)
	}
	if req.Iterations < 1 {
		return nil, fmt.Errorf("%w: iterations %d must be at least 1", ErrInvalidRequest, req.Iterations)
	}
	if len(req.Board) > 5 {
		return nil, fmt.Errorf("%w: board has %d cards, at most 5 allowed", ErrInvalidRequest, len(req.Board))
	}

	ids := append(req.Hero[:], req.Board...)
	known := make([]poker.Card, 0, len(ids))
	seen := make(map[poker.Card]bool, len(ids))
	for _, id := range ids {
		c, err := toPoker(id)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: card %s appears twice", ErrInvalidRequest, id)
		}
		seen[c] = true
		known = append(known, c)
	}

	if avail := 52 - len(known); 5-len(req.Board)+2*req.Opponents > avail {
		return nil, fmt.Errorf("%w: %d opponents need more than the %d unseen cards", ErrInvalidRequest, req.Opponents, avail)
	}
	return known, nil
}

var suits = map[string]poker.Suit{
	recognition.Clubs:    poker.Club,
	recognition.Diamonds: poker.Diamond,
	recognition.Hearts:   poker.Heart,
	recognition.Spades:   poker.Spade,
}

// toPoker converts a recognized identity to an evaluator card. Aces are rank
// 1 in the evaluator.
func toPoker(c recognition.Card) (poker.Card, error) {
	var zero poker.Card
	if err := c.Validate(); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	var rank int
	switch c.Rank {
	case "A":
		rank = 1
	case "J":
		rank = 11
	case "Q":
		rank = 12
	case "K":
		rank = 13
	default:
		rank, _ = strconv.Atoi(c.Rank)
	}
	card, err := poker.MakeCard(suits[c.Suit], poker.Rank(rank))
	if err != nil {
		return zero, fmt.Errorf("%w: card %s: %v", ErrInvalidRequest, c, err)
	}
	return card, nil
}

func remainingDeck(known []poker.Card) []poker.Card {
	used := make(map[poker.Card]bool, len(known))
	for _, c := range known {
		used[c] = true
	}
	deck := make([]poker.Card, 0, 52-len(known))
	for _, s := range []poker.Suit{poker.Club, poker.Diamond, poker.Heart, poker.Spade} {
		for r := 1; r <= 13; r++ {
			c, err := poker.MakeCard(s, poker.Rank(r))
			if err == nil && !used[c] {
				deck = append(deck, c)
			}
		}
	}
	return deck
}

// DescribeHand names the hero's made hand, such as "pair of aces", on the
// flop and on the river. Other board sizes yield "".
func DescribeHand(hero [2]recognition.Card, board []recognition.Card) (string, error) {
	if len(board) != 3 && len(board) != 5 {
		return "", nil
	}
	cards := make([]poker.Card, 0, 2+len(board))
	for _, c := range append(hero[:], board...) {
		pc, err := toPoker(c)
		if err != nil {
			return "", err
		}
		cards = append(cards, pc)
	}
	return poker.Describe(cards)
}
