package recognition

import (
	"image/color"
	"testing"

	"github.com/ironsheep/cardsight/internal/imaging"
)

func newDefaultSuitClassifier(t *testing.T) *SuitClassifier {
	t.Helper()
	c, err := NewSuitClassifier(SuitConfig{})
	if err != nil {
		t.Fatalf("NewSuitClassifier failed: %v", err)
	}
	return c
}

func TestSuitClassifier_DefaultTable(t *testing.T) {
	classifier := newDefaultSuitClassifier(t)

	tests := []struct {
		name string
		ink  color.Color
		want string
	}{
		{"spades", spadeInk, Spades},
		{"hearts", heartInk, Hearts},
		{"diamonds", diamondInk, Diamonds},
		{"clubs", clubInk, Clubs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(createCard(40, 60, "A", tt.ink))
			if got.Label != tt.want {
				t.Fatalf("Label: got %q, want %q", got.Label, tt.want)
			}
			if got.Confidence <= 0 {
				t.Errorf("Confidence: got %v, want > 0", got.Confidence)
			}
			if got.Coverage <= 0 || got.Coverage > 1 {
				t.Errorf("Coverage: got %v, want in (0,1]", got.Coverage)
			}
			if got.Margin <= 0 {
				t.Errorf("Margin: got %v, want > 0", got.Margin)
			}
		})
	}
}

func TestSuitClassifier_BlankCrop(t *testing.T) {
	classifier := newDefaultSuitClassifier(t)

	got := classifier.Classify(createCard(40, 60, "", nil))
	if got.Found() {
		t.Errorf("Label: got %q, want none", got.Label)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence: got %v, want 0", got.Confidence)
	}
	for suit, count := range classifier.Counts(createCard(40, 60, "", nil)) {
		if count != 0 {
			t.Errorf("Counts[%s]: got %d, want 0", suit, count)
		}
	}
}

func TestSuitClassifier_IgnoresRankCorner(t *testing.T) {
	classifier := newDefaultSuitClassifier(t)

	// Black rank ink sits above the suit window and must not read as spades.
	got := classifier.Classify(createCard(40, 60, "10", nil))
	if got.Found() {
		t.Errorf("Label: got %q, want none", got.Label)
	}
}

func TestSuitClassifier_TooSmallForWindow(t *testing.T) {
	classifier := newDefaultSuitClassifier(t)

	got := classifier.Classify(createCard(1, 1, "", heartInk))
	if got.Found() {
		t.Errorf("Label: got %q, want none", got.Label)
	}
}

func TestSuitClassifier_OrderIndependent(t *testing.T) {
	reversed := DefaultSuitProfiles()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	classifier, err := NewSuitClassifier(SuitConfig{Profiles: reversed})
	if err != nil {
		t.Fatalf("NewSuitClassifier failed: %v", err)
	}
	baseline := newDefaultSuitClassifier(t)

	for _, ink := range []color.Color{spadeInk, heartInk, diamondInk, clubInk} {
		card := createCard(40, 60, "", ink)
		if got, want := classifier.Classify(card), baseline.Classify(card); got != want {
			t.Errorf("Classify: got %+v, want %+v", got, want)
		}
	}

	var order []string
	for _, p := range classifier.Profiles() {
		order = append(order, p.Suit)
	}
	for i, suit := range Suits {
		if order[i] != suit {
			t.Errorf("Profiles()[%d]: got %q, want %q", i, order[i], suit)
		}
	}
}

func TestSuitClassifier_TieGoesToEnumerationOrder(t *testing.T) {
	everything := imaging.HSVRange{Upper: imaging.HSV{H: 180, S: 255, V: 255}}
	classifier, err := NewSuitClassifier(SuitConfig{Profiles: []SuitProfile{
		{Suit: Hearts, Range: everything},
		{Suit: Spades, Range: everything},
	}})
	if err != nil {
		t.Fatalf("NewSuitClassifier failed: %v", err)
	}

	got := classifier.Classify(createCard(40, 60, "", nil))
	if got.Label != Spades {
		t.Errorf("Label: got %q, want %q", got.Label, Spades)
	}
	if got.RunnerUp != Hearts {
		t.Errorf("RunnerUp: got %q, want %q", got.RunnerUp, Hearts)
	}
	if got.Margin != 0 {
		t.Errorf("Margin: got %v, want 0", got.Margin)
	}
	if got.Coverage != 1 {
		t.Errorf("Coverage: got %v, want 1", got.Coverage)
	}
}

func TestSuitClassifier_CustomWindow(t *testing.T) {
	// Only the top-left corner of the card, where the rank glyph sits.
	window := imaging.RelativeRect{X1: 0, Y1: 0, X2: 0.5, Y2: 0.3}
	noBlur := 0.0
	classifier, err := NewSuitClassifier(SuitConfig{Window: &window, BlurRadius: &noBlur})
	if err != nil {
		t.Fatalf("NewSuitClassifier failed: %v", err)
	}

	got := classifier.Classify(createCard(40, 60, "8", heartInk))
	if got.Label != Spades {
		t.Errorf("Label: got %q, want %q (black glyph ink)", got.Label, Spades)
	}
}

func TestNewSuitClassifier_Invalid(t *testing.T) {
	good := imaging.HSVRange{Upper: imaging.HSV{H: 10, S: 255, V: 255}}
	badWindow := imaging.RelativeRect{X1: 0.7, Y1: 0, X2: 0.3, Y2: 1}
	negative := -1.0

	tests := []struct {
		name string
		cfg  SuitConfig
	}{
		{"unknown suit", SuitConfig{Profiles: []SuitProfile{{Suit: "x", Range: good}}}},
		{"duplicate suit", SuitConfig{Profiles: []SuitProfile{{Suit: Hearts, Range: good}, {Suit: Hearts, Range: good}}}},
		{"inverted range", SuitConfig{Profiles: []SuitProfile{{Suit: Hearts, Range: imaging.HSVRange{Lower: imaging.HSV{H: 20}, Upper: imaging.HSV{H: 10}}}}}},
		{"empty window", SuitConfig{Window: &badWindow}},
		{"negative blur", SuitConfig{BlurRadius: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSuitClassifier(tt.cfg); err == nil {
				t.Error("NewSuitClassifier should fail")
			}
		})
	}
}
