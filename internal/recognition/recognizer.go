package recognition

import (
	"fmt"
	"image"
	"time"

	log "github.com/sirupsen/logrus"
)

// Policy decides whether classifier winners are trustworthy enough to name a
// card. The zero Policy accepts any winner.
type Policy struct {
	// MinRankConfidence is the lowest correlation score accepted as a rank.
	MinRankConfidence float64 `json:"min_rank_confidence"`

	// MinRankMargin is the lowest lead over the runner-up template.
	MinRankMargin float64 `json:"min_rank_margin"`

	// MinSuitPixels is the lowest matching pixel count accepted as a suit.
	MinSuitPixels int `json:"min_suit_pixels"`

	// MinSuitCoverage is the lowest matching fraction of the suit window.
	MinSuitCoverage float64 `json:"min_suit_coverage"`
}

// Validate rejects thresholds outside their classifier's score range.
func (p Policy) Validate() error {
	if p.MinRankConfidence < 0 || p.MinRankConfidence > 1 {
		return fmt.Errorf("min_rank_confidence %v outside [0,1]", p.MinRankConfidence)
	}
	if p.MinRankMargin < 0 || p.MinRankMargin > 2 {
		return fmt.Errorf("min_rank_margin %v outside [0,2]", p.MinRankMargin)
	}
	if p.MinSuitPixels < 0 {
		return fmt.Errorf("min_suit_pixels %d must be >= 0", p.MinSuitPixels)
	}
	if p.MinSuitCoverage < 0 || p.MinSuitCoverage > 1 {
		return fmt.Errorf("min_suit_coverage %v outside [0,1]", p.MinSuitCoverage)
	}
	return nil
}

func (p Policy) acceptRank(r ClassificationResult) bool {
	return r.Found() && r.Confidence >= p.MinRankConfidence && r.Margin >= p.MinRankMargin
}

func (p Policy) acceptSuit(r ClassificationResult) bool {
	return r.Found() && r.Confidence >= float64(p.MinSuitPixels) && r.Coverage >= p.MinSuitCoverage
}

// DebugCrop is everything a debug sink receives for one recognized slot.
type DebugCrop struct {
	Slot       string
	Time       time.Time
	Card       image.Image
	SuitRegion image.Image // nil when the suit window could not be cut
	SuitMask   *image.Gray // mask of the winning suit, nil when none matched
	Result     RecognizedSlot
}

// DebugSink receives card crops for offline inspection. Implementations must
// return quickly; a Recognizer logs and ignores every error a sink returns.
type DebugSink interface {
	Submit(crop DebugCrop) error
}

// Recognizer combines the rank and suit classifiers into card identities.
type Recognizer struct {
	rank   *RankClassifier
	suit   *SuitClassifier
	policy Policy
	sink   DebugSink
}

// NewRecognizer builds a recognizer from two classifiers and an acceptance
// policy.
func NewRecognizer(rank *RankClassifier, suit *SuitClassifier, policy Policy) (*Recognizer, error) {
	if rank == nil || suit == nil {
		return nil, fmt.Errorf("recognizer requires both a rank and a suit classifier")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recognition policy: %w", err)
	}
	return &Recognizer{rank: rank, suit: suit, policy: policy}, nil
}

// WithDebugSink returns a copy of the recognizer that submits every crop to
// sink. A nil sink disables submission.
func (r *Recognizer) WithDebugSink(sink DebugSink) *Recognizer {
	cp := *r
	cp.sink = sink
	return &cp
}

// Policy returns the acceptance policy.
func (r *Recognizer) Policy() Policy {
	return r.policy
}

// Recognize classifies one card crop. The returned slot carries a Card only
// when both classifiers produced a label the policy accepts; rejected labels
// are cleared but their scores are kept.
func (r *Recognizer) Recognize(slot string, card image.Image) RecognizedSlot {
	rankCh := make(chan ClassificationResult, 1)
	go func() { rankCh <- r.rank.Classify(card) }()

	suit, detail := r.suit.classify(card)
	rank := <-rankCh

	if !r.policy.acceptRank(rank) {
		rank.Label = ""
	}
	if !r.policy.acceptSuit(suit) {
		suit.Label = ""
	}

	result := RecognizedSlot{Slot: slot, Rank: rank, Suit: suit}
	if rank.Found() && suit.Found() {
		result.Card = &Card{Rank: rank.Label, Suit: suit.Label}
	}

	log.WithFields(log.Fields{
		"slot":            slot,
		"rank":            rank.Label,
		"rank_confidence": rank.Confidence,
		"suit":            suit.Label,
		"suit_pixels":     suit.Confidence,
	}).Debug("slot recognized")

	r.submit(DebugCrop{
		Slot:       slot,
		Time:       time.Now(),
		Card:       card,
		SuitRegion: detail.region,
		SuitMask:   detail.mask,
		Result:     result,
	})
	return result
}

// ScoreSheet holds every classifier score for one crop, not just the winners.
type ScoreSheet struct {
	// Rank maps each template label to its correlation score.
	Rank map[string]float64 `json:"rank"`

	// Suit maps each suit to its matching pixel count.
	Suit map[string]int `json:"suit"`
}

// Scores scores card against every rank template and suit profile without
// applying the policy or notifying the debug sink.
func (r *Recognizer) Scores(card image.Image) ScoreSheet {
	labels := r.rank.Labels()
	scores := r.rank.Scores(card)
	sheet := ScoreSheet{Rank: make(map[string]float64, len(labels)), Suit: r.suit.Counts(card)}
	for i, label := range labels {
		sheet.Rank[label] = scores[i]
	}
	return sheet
}

// submit hands a crop to the debug sink. Sink errors and panics are logged and
// never reach the caller.
func (r *Recognizer) submit(crop DebugCrop) {
	if r.sink == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			log.WithField("slot", crop.Slot).Errorf("debug sink panicked: %v", p)
		}
	}()
	if err := r.sink.Submit(crop); err != nil {
		log.WithError(err).WithField("slot", crop.Slot).Warn("debug sink rejected crop")
	}
}
