package recognition

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCard(t *testing.T) {
	tests := []struct {
		in      string
		want    Card
		wantErr bool
	}{
		{"As", Card{"A", "s"}, false},
		{"10h", Card{"10", "h"}, false},
		{"qd", Card{"Q", "d"}, false},
		{" K c ", Card{"K", "c"}, false},
		{"2S", Card{"2", "s"}, false},
		{"1s", Card{}, true},
		{"Ax", Card{}, true},
		{"T", Card{}, true},
		{"", Card{}, true},
		{"11h", Card{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCard(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCard(%q): got err=%v, wantErr=%v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCard(%q): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCards(t *testing.T) {
	got, err := ParseCards("4s, 4h, 10s")
	if err != nil {
		t.Fatalf("ParseCards failed: %v", err)
	}
	want := []Card{{"4", "s"}, {"4", "h"}, {"10", "s"}}
	if len(got) != len(want) {
		t.Fatalf("ParseCards: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("card %d: got %v, want %v", i, got[i], want[i])
		}
	}

	if cards, err := ParseCards("  "); err != nil || cards != nil {
		t.Errorf("ParseCards(blank): got %v, %v, want nil, nil", cards, err)
	}
	if _, err := ParseCards("4s, zz"); err == nil {
		t.Error("ParseCards should reject malformed identities")
	}
}

func TestCard_String(t *testing.T) {
	if got := (Card{Rank: "10", Suit: Hearts}).String(); got != "10h" {
		t.Errorf("String: got %q, want %q", got, "10h")
	}
}

func TestSuitName(t *testing.T) {
	if got := SuitName(Diamonds); got != "diamonds" {
		t.Errorf("SuitName: got %q, want %q", got, "diamonds")
	}
	if got := SuitName("x"); got != "" {
		t.Errorf("SuitName(unknown): got %q, want empty", got)
	}
}

func TestHoleResult_Hand(t *testing.T) {
	as := &Card{Rank: "A", Suit: Spades}
	resolved := RecognizedSlot{Slot: SlotLeft, Card: as, Rank: ClassificationResult{Label: "A"}, Suit: ClassificationResult{Label: Spades}}

	tests := []struct {
		name     string
		right    RecognizedSlot
		contains string
	}{
		{"rank missing", RecognizedSlot{Slot: SlotRight, Suit: ClassificationResult{Label: Hearts}}, "re-align the capture region"},
		{"suit missing", RecognizedSlot{Slot: SlotRight, Rank: ClassificationResult{Label: "K"}}, "right card suit not recognized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HoleResult{Left: resolved, Right: tt.right}.Hand()
			if !errors.Is(err, ErrInsufficientInformation) {
				t.Fatalf("Hand: got err=%v, want ErrInsufficientInformation", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should contain %q", err, tt.contains)
			}
		})
	}
}

func TestTableResult_Cards(t *testing.T) {
	result := newTableResult()
	result.add(RecognizedSlot{Slot: "comm_1", Card: &Card{Rank: "4", Suit: Spades}})
	result.add(RecognizedSlot{Slot: "comm_2"})
	result.add(RecognizedSlot{Slot: "comm_3", Card: &Card{Rank: "10", Suit: Clubs}})

	got := result.Cards("comm_1", "comm_2", "comm_3", "comm_4")
	if len(got) != 2 || got[0].String() != "4s" || got[1].String() != "10c" {
		t.Errorf("Cards: got %v, want [4s 10c]", got)
	}
}
