package recognition

import (
	"fmt"
	"image"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cardsight/internal/imaging"
)

// DefaultSuitWindow is the part of a card crop where the suit pip sits: the
// lower 45% of the height and the middle 40% of the width.
var DefaultSuitWindow = imaging.RelativeRect{X1: 0.30, Y1: 0.55, X2: 0.70, Y2: 1.0}

// DefaultBlurRadius approximates a 5×5 gaussian kernel.
const DefaultBlurRadius = 1.1

// SuitProfile is the calibrated HSV range for one suit.
type SuitProfile struct {
	Suit  string           `json:"suit"`
	Range imaging.HSVRange `json:"range"`
}

// DefaultSuitProfiles returns the color table for the reference deck: red
// hearts, green clubs, blue diamonds and dark, desaturated spades.
func DefaultSuitProfiles() []SuitProfile {
	return []SuitProfile{
		{Suit: Hearts, Range: imaging.HSVRange{Lower: imaging.HSV{H: 0, S: 100, V: 50}, Upper: imaging.HSV{H: 10, S: 255, V: 255}}},
		{Suit: Clubs, Range: imaging.HSVRange{Lower: imaging.HSV{H: 40, S: 50, V: 50}, Upper: imaging.HSV{H: 90, S: 255, V: 255}}},
		{Suit: Diamonds, Range: imaging.HSVRange{Lower: imaging.HSV{H: 100, S: 50, V: 50}, Upper: imaging.HSV{H: 140, S: 255, V: 255}}},
		{Suit: Spades, Range: imaging.HSVRange{Lower: imaging.HSV{H: 0, S: 0, V: 0}, Upper: imaging.HSV{H: 180, S: 50, V: 70}}},
	}
}

// SuitConfig configures a SuitClassifier. Zero values select the defaults.
type SuitConfig struct {
	Profiles   []SuitProfile
	Window     *imaging.RelativeRect
	BlurRadius *float64
}

// SuitClassifier identifies a card's suit by counting pixels in calibrated
// HSV ranges.
type SuitClassifier struct {
	profiles   []SuitProfile
	window     imaging.RelativeRect
	blurRadius float64
}

// suitDetail carries the intermediate images of one classification for debug
// sinks.
type suitDetail struct {
	region image.Image
	mask   *image.Gray
}

// NewSuitClassifier validates cfg and builds a classifier. Profiles are
// reordered to suit enumeration order, so results never depend on the order
// the table was written in.
func NewSuitClassifier(cfg SuitConfig) (*SuitClassifier, error) {
	profiles := cfg.Profiles
	if len(profiles) == 0 {
		profiles = DefaultSuitProfiles()
	}
	window := DefaultSuitWindow
	if cfg.Window != nil {
		window = *cfg.Window
	}
	radius := DefaultBlurRadius
	if cfg.BlurRadius != nil {
		radius = *cfg.BlurRadius
	}

	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suit window: %w", err)
	}
	if radius < 0 {
		return nil, fmt.Errorf("invalid blur radius %v: must be >= 0", radius)
	}

	seen := make(map[string]bool, len(profiles))
	sorted := make([]SuitProfile, 0, len(profiles))
	for _, p := range profiles {
		if suitIndex(p.Suit) < 0 {
			return nil, fmt.Errorf("invalid suit profile: unknown suit %q", p.Suit)
		}
		if seen[p.Suit] {
			return nil, fmt.Errorf("invalid suit profile: duplicate suit %q", p.Suit)
		}
		if err := p.Range.Validate(); err != nil {
			return nil, fmt.Errorf("invalid suit profile %q: %w", p.Suit, err)
		}
		seen[p.Suit] = true
		sorted = append(sorted, p)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return suitIndex(sorted[i].Suit) < suitIndex(sorted[j].Suit)
	})

	return &SuitClassifier{profiles: sorted, window: window, blurRadius: radius}, nil
}

// Profiles returns a copy of the classifier's color table in enumeration
// order.
func (c *SuitClassifier) Profiles() []SuitProfile {
	return append([]SuitProfile(nil), c.profiles...)
}

// Classify returns the suit whose range matches the most pixels in the suit
// window. When no profile matches a single pixel the label is empty.
func (c *SuitClassifier) Classify(card image.Image) ClassificationResult {
	result, _ := c.classify(card)
	return result
}

// Counts returns each profile's matching pixel count keyed by suit.
func (c *SuitClassifier) Counts(card image.Image) map[string]int {
	hsv, _, err := c.prepare(card)
	if err != nil {
		return map[string]int{}
	}
	counts := make(map[string]int, len(c.profiles))
	for _, p := range c.profiles {
		counts[p.Suit], _ = imaging.InRange(hsv, p.Range)
	}
	return counts
}

func (c *SuitClassifier) prepare(card image.Image) (*imaging.HSVImage, image.Image, error) {
	region, err := imaging.CropRelative(card, c.window)
	if err != nil {
		return nil, nil, err
	}
	hsv := imaging.ConvertHSV(region)
	if c.blurRadius > 0 {
		hsv = imaging.BlurHSV(hsv, c.blurRadius)
	}
	return hsv, region, nil
}

func (c *SuitClassifier) classify(card image.Image) (ClassificationResult, suitDetail) {
	hsv, region, err := c.prepare(card)
	if err != nil {
		log.WithError(err).Debug("suit window unavailable")
		return ClassificationResult{}, suitDetail{}
	}

	detail := suitDetail{region: region}
	area := float64(hsv.Width * hsv.Height)

	var result ClassificationResult
	runnerCount := 0
	bestCount := 0
	for _, p := range c.profiles {
		count, mask := imaging.InRange(hsv, p.Range)
		switch {
		case count > bestCount:
			if result.Label != "" {
				result.RunnerUp, runnerCount = result.Label, bestCount
			}
			result.Label, bestCount = p.Suit, count
			detail.mask = mask
		case count > runnerCount:
			result.RunnerUp, runnerCount = p.Suit, count
		}
	}
	if result.Label == "" {
		return ClassificationResult{}, detail
	}

	result.Confidence = float64(bestCount)
	result.Margin = float64(bestCount - runnerCount)
	result.Coverage = float64(bestCount) / area
	return result, detail
}
