package recognition

import (
	"errors"
	"image"
	"reflect"
	"sync"
	"testing"
)

func newTestRecognizer(t *testing.T, policy Policy) *Recognizer {
	t.Helper()
	r, err := NewRecognizer(NewRankClassifier(newTestRepository(t)), newDefaultSuitClassifier(t), policy)
	if err != nil {
		t.Fatalf("NewRecognizer failed: %v", err)
	}
	return r
}

type recordingSink struct {
	mu    sync.Mutex
	crops []DebugCrop
}

func (s *recordingSink) Submit(crop DebugCrop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crops = append(s.crops, crop)
	return nil
}

type failingSink struct{}

func (failingSink) Submit(DebugCrop) error { return errors.New("disk full") }

type panickingSink struct{}

func (panickingSink) Submit(DebugCrop) error { panic("sink exploded") }

func TestRecognizer_Recognize(t *testing.T) {
	recognizer := newTestRecognizer(t, Policy{})

	got := recognizer.Recognize("left", createCard(40, 60, "A", spadeInk))
	if got.Slot != "left" {
		t.Errorf("Slot: got %q, want %q", got.Slot, "left")
	}
	if got.Card == nil {
		t.Fatalf("Card: got nil, want As (%s)", got.Failure())
	}
	if *got.Card != (Card{Rank: "A", Suit: Spades}) {
		t.Errorf("Card: got %v, want As", *got.Card)
	}
	if got.RankConfidence() < 0.99 {
		t.Errorf("RankConfidence: got %v, want ~1.0", got.RankConfidence())
	}
	if got.SuitConfidence() <= 0 {
		t.Errorf("SuitConfidence: got %v, want > 0", got.SuitConfidence())
	}
	if got.Failure() != "" {
		t.Errorf("Failure: got %q, want empty", got.Failure())
	}
}

func TestRecognizer_Scores(t *testing.T) {
	sink := &recordingSink{}
	recognizer := newTestRecognizer(t, Policy{MinRankConfidence: 0.99}).WithDebugSink(sink)

	sheet := recognizer.Scores(createCard(40, 60, "K", heartInk))
	if len(sheet.Rank) != len(recognizer.rank.Labels()) {
		t.Fatalf("Rank: got %d scores, want %d", len(sheet.Rank), len(recognizer.rank.Labels()))
	}
	for label, score := range sheet.Rank {
		if label != "K" && score >= sheet.Rank["K"] {
			t.Errorf("Rank[%s] = %v, want below Rank[K] = %v", label, score, sheet.Rank["K"])
		}
	}
	if len(sheet.Suit) != 4 {
		t.Fatalf("Suit: got %d counts, want 4", len(sheet.Suit))
	}
	for suit, count := range sheet.Suit {
		if suit != Hearts && count >= sheet.Suit[Hearts] {
			t.Errorf("Suit[%s] = %d, want below Suit[h] = %d", suit, count, sheet.Suit[Hearts])
		}
	}
	if len(sink.crops) != 0 {
		t.Errorf("sink: got %d crops, want 0", len(sink.crops))
	}
}

func TestRecognizer_BlankCrop(t *testing.T) {
	recognizer := newTestRecognizer(t, Policy{})

	got := recognizer.Recognize("comm_1", createCard(40, 60, "", nil))
	if got.Card != nil {
		t.Errorf("Card: got %v, want nil", *got.Card)
	}
	if got.Suit.Found() {
		t.Errorf("Suit: got %q, want none", got.Suit.Label)
	}
	if got.Failure() != "rank and suit not recognized" {
		t.Errorf("Failure: got %q", got.Failure())
	}
}

func TestRecognizer_SuitWithoutRank(t *testing.T) {
	recognizer := newTestRecognizer(t, Policy{MinRankConfidence: 0.9})

	got := recognizer.Recognize("comm_1", createCard(40, 60, "", heartInk))
	if got.Card != nil {
		t.Fatalf("Card: got %v, want nil", *got.Card)
	}
	if got.Suit.Label != Hearts {
		t.Errorf("Suit: got %q, want %q", got.Suit.Label, Hearts)
	}
	if got.Failure() != "rank not recognized" {
		t.Errorf("Failure: got %q", got.Failure())
	}
}

func TestRecognizer_Deterministic(t *testing.T) {
	recognizer := newTestRecognizer(t, Policy{})
	card := createCard(40, 60, "J", diamondInk)

	first := recognizer.Recognize("right", card)
	second := recognizer.Recognize("right", card)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

func TestRecognizer_PolicyRejectsSuit(t *testing.T) {
	recognizer := newTestRecognizer(t, Policy{MinSuitPixels: 1_000_000})

	got := recognizer.Recognize("left", createCard(40, 60, "K", heartInk))
	if got.Card != nil {
		t.Fatalf("Card: got %v, want nil", *got.Card)
	}
	if got.Rank.Label != "K" {
		t.Errorf("Rank: got %q, want %q", got.Rank.Label, "K")
	}
	if got.Suit.Found() {
		t.Errorf("Suit: got %q, want rejected", got.Suit.Label)
	}
	if got.SuitConfidence() <= 0 {
		t.Error("rejected suit should keep its pixel count")
	}
	if got.Failure() != "suit not recognized" {
		t.Errorf("Failure: got %q", got.Failure())
	}
}

func TestPolicy_Accept(t *testing.T) {
	policy := Policy{MinRankConfidence: 0.5, MinRankMargin: 0.1, MinSuitPixels: 10, MinSuitCoverage: 0.2}

	rankTests := []struct {
		name string
		r    ClassificationResult
		want bool
	}{
		{"strong", ClassificationResult{Label: "A", Confidence: 0.95, Margin: 0.4}, true},
		{"weak", ClassificationResult{Label: "A", Confidence: 0.05, Margin: 0.05}, false},
		{"ambiguous", ClassificationResult{Label: "A", Confidence: 0.9, Margin: 0}, false},
		{"no label", ClassificationResult{Confidence: 0.9, Margin: 0.9}, false},
	}
	for _, tt := range rankTests {
		t.Run("rank "+tt.name, func(t *testing.T) {
			if got := policy.acceptRank(tt.r); got != tt.want {
				t.Errorf("acceptRank: got %v, want %v", got, tt.want)
			}
		})
	}

	suitTests := []struct {
		name string
		r    ClassificationResult
		want bool
	}{
		{"strong", ClassificationResult{Label: "h", Confidence: 200, Coverage: 0.5}, true},
		{"few pixels", ClassificationResult{Label: "h", Confidence: 5, Coverage: 0.5}, false},
		{"low coverage", ClassificationResult{Label: "h", Confidence: 200, Coverage: 0.1}, false},
	}
	for _, tt := range suitTests {
		t.Run("suit "+tt.name, func(t *testing.T) {
			if got := policy.acceptSuit(tt.r); got != tt.want {
				t.Errorf("acceptSuit: got %v, want %v", got, tt.want)
			}
		})
	}

	if !(Policy{}).acceptRank(ClassificationResult{Label: "2", Confidence: 0.01, Margin: 0.001}) {
		t.Error("zero Policy should accept any found rank")
	}
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Policy
		wantErr bool
	}{
		{"zero", Policy{}, false},
		{"typical", Policy{MinRankConfidence: 0.5, MinSuitPixels: 20}, false},
		{"confidence above one", Policy{MinRankConfidence: 1.5}, true},
		{"negative margin", Policy{MinRankMargin: -0.1}, true},
		{"negative pixels", Policy{MinSuitPixels: -1}, true},
		{"coverage above one", Policy{MinSuitCoverage: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate: got err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRecognizer_Invalid(t *testing.T) {
	if _, err := NewRecognizer(nil, newDefaultSuitClassifier(t), Policy{}); err == nil {
		t.Error("NewRecognizer should fail without a rank classifier")
	}
	rank := NewRankClassifier(newTestRepository(t))
	if _, err := NewRecognizer(rank, newDefaultSuitClassifier(t), Policy{MinRankConfidence: 2}); err == nil {
		t.Error("NewRecognizer should fail with an invalid policy")
	}
}

func TestRecognizer_DebugSink(t *testing.T) {
	sink := &recordingSink{}
	recognizer := newTestRecognizer(t, Policy{}).WithDebugSink(sink)
	card := createCard(40, 60, "Q", clubInk)

	got := recognizer.Recognize("comm_2", card)

	if len(sink.crops) != 1 {
		t.Fatalf("sink received %d crops, want 1", len(sink.crops))
	}
	crop := sink.crops[0]
	if crop.Slot != "comm_2" {
		t.Errorf("Slot: got %q, want %q", crop.Slot, "comm_2")
	}
	if crop.Card != image.Image(card) {
		t.Error("sink should receive the recognized crop")
	}
	if crop.SuitRegion == nil || crop.SuitMask == nil {
		t.Error("sink should receive the suit region and mask")
	}
	if !reflect.DeepEqual(crop.Result, got) {
		t.Errorf("Result: got %+v, want %+v", crop.Result, got)
	}
}

func TestRecognizer_SinkFailuresDoNotPropagate(t *testing.T) {
	base := newTestRecognizer(t, Policy{})
	card := createCard(40, 60, "5", spadeInk)
	want := base.Recognize("left", card)

	for name, sink := range map[string]DebugSink{"error": failingSink{}, "panic": panickingSink{}} {
		t.Run(name, func(t *testing.T) {
			got := base.WithDebugSink(sink).Recognize("left", card)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("result with %s sink: got %+v, want %+v", name, got, want)
			}
		})
	}
}
