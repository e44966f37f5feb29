package recognition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/cardsight/internal/templates"
)

// ErrInsufficientInformation is returned when a caller needs a fully resolved
// hand but at least one hole card is unresolved.
var ErrInsufficientInformation = errors.New("insufficient information")

// Suit labels, using the alphabet the equity engine expects.
const (
	Spades   = "s"
	Hearts   = "h"
	Diamonds = "d"
	Clubs    = "c"
)

// Suits lists the suit labels in enumeration order.
var Suits = []string{Spades, Hearts, Diamonds, Clubs}

var suitNames = map[string]string{
	Spades:   "spades",
	Hearts:   "hearts",
	Diamonds: "diamonds",
	Clubs:    "clubs",
}

// SuitName returns the long name of a suit label, or "" if the label is unknown.
func SuitName(suit string) string {
	return suitNames[suit]
}

func suitIndex(suit string) int {
	for i, s := range Suits {
		if s == suit {
			return i
		}
	}
	return -1
}

// ClassificationResult is the outcome of one classifier on one crop.
//
// Label is empty when no candidate beat the zero baseline (or the acceptance
// policy rejected the winner). Confidence is classifier-specific: a
// correlation score for ranks, a pixel count for suits. It is only meaningful
// for ranking candidates and thresholding, not as a probability.
type ClassificationResult struct {
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence"`

	// RunnerUp is the best losing candidate, if any scored above zero.
	RunnerUp string `json:"runner_up,omitempty"`

	// Margin is Confidence minus the runner-up's score (zero on exact ties).
	Margin float64 `json:"margin"`

	// Coverage is the matching fraction of the suit window. Zero for ranks.
	Coverage float64 `json:"coverage,omitempty"`
}

// Found reports whether a label was assigned.
func (c ClassificationResult) Found() bool {
	return c.Label != ""
}

// Card is a fully resolved card identity.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// ParseCard parses identities such as "As", "10h", "qd" or "K c".
func ParseCard(s string) (Card, error) {
	v := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if len(v) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	c := Card{Rank: v[:len(v)-1], Suit: strings.ToLower(v[len(v)-1:])}
	if err := c.Validate(); err != nil {
		return Card{}, err
	}
	c.Rank, _ = templates.NormalizeRank(c.Rank)
	return c, nil
}

// ParseCards parses a comma-separated list such as "4s, 4h, 10s". An empty
// string yields no cards.
func ParseCards(s string) ([]Card, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	cards := make([]Card, 0, len(parts))
	for _, p := range parts {
		c, err := ParseCard(p)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Validate checks both halves of the identity against the engine alphabets.
func (c Card) Validate() error {
	if _, ok := templates.NormalizeRank(c.Rank); !ok {
		return fmt.Errorf("invalid card %q: unknown rank %q", c.String(), c.Rank)
	}
	if suitIndex(c.Suit) < 0 {
		return fmt.Errorf("invalid card %q: unknown suit %q", c.String(), c.Suit)
	}
	return nil
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

// RecognizedSlot is the recognition outcome for one card slot in one cycle.
type RecognizedSlot struct {
	Slot string `json:"slot"`

	// Card is nil unless both rank and suit resolved.
	Card *Card `json:"card"`

	Rank ClassificationResult `json:"rank"`
	Suit ClassificationResult `json:"suit"`
}

// Resolved reports whether the slot holds a card.
func (s RecognizedSlot) Resolved() bool {
	return s.Card != nil
}

// RankConfidence returns the rank classifier's winning score.
func (s RecognizedSlot) RankConfidence() float64 {
	return s.Rank.Confidence
}

// SuitConfidence returns the suit classifier's winning pixel count.
func (s RecognizedSlot) SuitConfidence() float64 {
	return s.Suit.Confidence
}

// Failure describes why the slot is unresolved, or returns "" when it is
// resolved.
func (s RecognizedSlot) Failure() string {
	switch {
	case s.Card != nil:
		return ""
	case !s.Rank.Found() && !s.Suit.Found():
		return "rank and suit not recognized"
	case !s.Rank.Found():
		return "rank not recognized"
	default:
		return "suit not recognized"
	}
}

// HoleResult holds the two hole-card slots.
type HoleResult struct {
	Left  RecognizedSlot `json:"left"`
	Right RecognizedSlot `json:"right"`
}

// Hand returns both hole cards, or ErrInsufficientInformation naming the first
// unresolved side. A missing rank usually means the capture region needs
// re-alignment.
func (h HoleResult) Hand() ([2]Card, error) {
	for _, s := range []RecognizedSlot{h.Left, h.Right} {
		if s.Card != nil {
			continue
		}
		hint := ""
		if !s.Rank.Found() {
			hint = "; re-align the capture region"
		}
		return [2]Card{}, fmt.Errorf("%w: %s card %s%s", ErrInsufficientInformation, s.Slot, s.Failure(), hint)
	}
	return [2]Card{*h.Left.Card, *h.Right.Card}, nil
}

// TableResult is the keyed result of recognizing every configured slot.
type TableResult struct {
	// Order lists the slot names in layout order.
	Order []string                  `json:"order"`
	Slots map[string]RecognizedSlot `json:"slots"`
}

func newTableResult() *TableResult {
	return &TableResult{Slots: make(map[string]RecognizedSlot)}
}

func (t *TableResult) add(s RecognizedSlot) {
	t.Order = append(t.Order, s.Slot)
	t.Slots[s.Slot] = s
}

// Cards returns the resolved cards of the named slots in order, skipping
// unresolved slots.
func (t *TableResult) Cards(names ...string) []Card {
	var cards []Card
	for _, n := range names {
		if s, ok := t.Slots[n]; ok && s.Card != nil {
			cards = append(cards, *s.Card)
		}
	}
	return cards
}
