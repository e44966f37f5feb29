package recognition

import (
	"fmt"
	"image"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cardsight/internal/capture"
)

// Hole slot names.
const (
	SlotLeft  = "left"
	SlotRight = "right"
)

// CommunitySlot returns the name of the i-th community slot, counting from 1.
func CommunitySlot(i int) string {
	return fmt.Sprintf("comm_%d", i)
}

// HoleLayout locates the two hole cards. Exactly one form is used: a combined
// Region cut at one SplitOffset, or two individual Slots.
type HoleLayout struct {
	Region       *capture.Region  `json:"region,omitempty"`
	SplitOffsets []int            `json:"split_offsets,omitempty"`
	Slots        []capture.Region `json:"slots,omitempty"`
}

// Validate checks that exactly one form is configured and that it yields two
// non-empty slots.
func (l HoleLayout) Validate() error {
	switch {
	case l.Region != nil && len(l.Slots) > 0:
		return fmt.Errorf("hole layout sets both a combined region and individual slots")
	case l.Region != nil:
		if err := l.Region.Validate(); err != nil {
			return fmt.Errorf("hole region: %w", err)
		}
		if len(l.SplitOffsets) != 1 {
			return fmt.Errorf("%w: hole region needs exactly 1 split offset, got %d", ErrInvalidSplit, len(l.SplitOffsets))
		}
		return validateOffsets(l.Region.Width, l.SplitOffsets)
	case len(l.Slots) == 2:
		for i, s := range l.Slots {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("hole slot %d: %w", i+1, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("hole layout needs a combined region or exactly 2 slots, got %d slots", len(l.Slots))
	}
}

// CommunityLayout locates the community cards: a combined Region cut into
// SlotCount equal slices, or individual Slots.
type CommunityLayout struct {
	Region    *capture.Region  `json:"region,omitempty"`
	SlotCount int              `json:"slot_count,omitempty"`
	Slots     []capture.Region `json:"slots,omitempty"`
}

// MaxCommunitySlots is the largest board a layout may describe.
const MaxCommunitySlots = 5

// Validate checks that exactly one form is configured with 1 to 5 slots.
func (l CommunityLayout) Validate() error {
	switch {
	case l.Region != nil && len(l.Slots) > 0:
		return fmt.Errorf("community layout sets both a combined region and individual slots")
	case l.Region != nil:
		if err := l.Region.Validate(); err != nil {
			return fmt.Errorf("community region: %w", err)
		}
		if l.SlotCount < 1 || l.SlotCount > MaxCommunitySlots {
			return fmt.Errorf("%w: community slot count %d outside 1-%d", ErrInvalidSplit, l.SlotCount, MaxCommunitySlots)
		}
		if l.Region.Width < l.SlotCount {
			return fmt.Errorf("%w: community width %d too small for %d slots", ErrInvalidSplit, l.Region.Width, l.SlotCount)
		}
		return nil
	case len(l.Slots) >= 1 && len(l.Slots) <= MaxCommunitySlots:
		for i, s := range l.Slots {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("community slot %d: %w", i+1, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("community layout needs a combined region or 1-%d slots, got %d slots", MaxCommunitySlots, len(l.Slots))
	}
}

// Count returns the number of community slots the layout describes.
func (l CommunityLayout) Count() int {
	if l.Region != nil {
		return l.SlotCount
	}
	return len(l.Slots)
}

// Session runs capture, split and recognition for a fixed table layout.
type Session struct {
	source     capture.Source
	recognizer *Recognizer
	hole       HoleLayout
	community  CommunityLayout
}

// NewSession validates both layouts and binds them to a pixel source and a
// recognizer.
func NewSession(source capture.Source, recognizer *Recognizer, hole HoleLayout, community CommunityLayout) (*Session, error) {
	if source == nil || recognizer == nil {
		return nil, fmt.Errorf("session requires a capture source and a recognizer")
	}
	if err := hole.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hole layout: %w", err)
	}
	if err := community.Validate(); err != nil {
		return nil, fmt.Errorf("invalid community layout: %w", err)
	}
	return &Session{source: source, recognizer: recognizer, hole: hole, community: community}, nil
}

// RecognizeHole captures and recognizes both hole cards. Unresolved cards are
// reported in the result; only capture failures are errors.
func (s *Session) RecognizeHole() (HoleResult, error) {
	crops, err := s.holeCrops()
	if err != nil {
		return HoleResult{}, err
	}
	slots := s.recognizeAll([]string{SlotLeft, SlotRight}, crops)
	return HoleResult{Left: slots[0], Right: slots[1]}, nil
}

// RecognizeCommunity captures and recognizes every community slot, in layout
// order. An unresolved slot means the card is not dealt yet.
func (s *Session) RecognizeCommunity() ([]RecognizedSlot, error) {
	crops, err := s.communityCrops(s.community.Count())
	if err != nil {
		return nil, err
	}
	names := make([]string, len(crops))
	for i := range crops {
		names[i] = CommunitySlot(i + 1)
	}
	return s.recognizeAll(names, crops), nil
}

// RecognizeFirstCommunityCard recognizes only the first community slot and
// returns its card, or nil when it is unresolved.
func (s *Session) RecognizeFirstCommunityCard() (*Card, error) {
	crops, err := s.communityCrops(1)
	if err != nil {
		return nil, err
	}
	return s.recognizer.Recognize(CommunitySlot(1), crops[0]).Card, nil
}

// RecognizeAll recognizes every configured slot: left, right, then comm_1
// onward.
func (s *Session) RecognizeAll() (*TableResult, error) {
	hole, err := s.holeCrops()
	if err != nil {
		return nil, err
	}
	board, err := s.communityCrops(s.community.Count())
	if err != nil {
		return nil, err
	}

	names := []string{SlotLeft, SlotRight}
	for i := range board {
		names = append(names, CommunitySlot(i+1))
	}
	slots := s.recognizeAll(names, append(hole, board...))

	result := newTableResult()
	for _, slot := range slots {
		result.add(slot)
	}
	return result, nil
}

// holeCrops captures the two hole-card crops, left first.
func (s *Session) holeCrops() ([]image.Image, error) {
	if s.hole.Region == nil {
		return s.captureEach(s.hole.Slots)
	}
	img, err := capture.Capture(s.source, *s.hole.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to capture hole region: %w", err)
	}
	return SplitAt(img, s.hole.SplitOffsets...)
}

// communityCrops captures the first n community crops. A combined region is
// always captured whole and cut evenly, so slice widths do not depend on n.
func (s *Session) communityCrops(n int) ([]image.Image, error) {
	if s.community.Region == nil {
		return s.captureEach(s.community.Slots[:n])
	}
	img, err := capture.Capture(s.source, *s.community.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to capture community region: %w", err)
	}
	crops, err := SplitEven(img, s.community.SlotCount)
	if err != nil {
		return nil, err
	}
	return crops[:n], nil
}

func (s *Session) captureEach(regions []capture.Region) ([]image.Image, error) {
	crops := make([]image.Image, len(regions))
	for i, r := range regions {
		img, err := capture.Capture(s.source, r)
		if err != nil {
			return nil, fmt.Errorf("failed to capture slot %d: %w", i+1, err)
		}
		crops[i] = img
	}
	return crops, nil
}

// recognizeAll recognizes crops concurrently. Results keep the input order.
func (s *Session) recognizeAll(names []string, crops []image.Image) []RecognizedSlot {
	results := make([]RecognizedSlot, len(crops))
	var wg sync.WaitGroup
	for i := range crops {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.recognizer.Recognize(names[i], crops[i])
		}(i)
	}
	wg.Wait()

	resolved := 0
	for _, r := range results {
		if r.Resolved() {
			resolved++
		}
	}
	log.WithFields(log.Fields{
		"slots":    len(results),
		"resolved": resolved,
	}).Debug("recognition cycle complete")
	return results
}
