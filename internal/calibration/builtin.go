package calibration

import (
	"github.com/ironsheep/cardsight/internal/capture"
	"github.com/ironsheep/cardsight/internal/recognition"
)

// SeparateSlotsProfileName is the built-in profile with one region per slot.
const SeparateSlotsProfileName = "separate-slots-1920x1080"

// Builtin returns the profiles compiled into the binary. Each call returns
// fresh values.
func Builtin() []Profile {
	return []Profile{defaultProfile(), separateSlotsProfile()}
}

// defaultProfile covers a 1920x1080 table with both hole cards in one region
// and the board in another.
func defaultProfile() Profile {
	hole := capture.Region{X: 1200, Y: 980, Width: 200, Height: 120}
	board := capture.Region{X: 950, Y: 670, Width: 700, Height: 125}
	return Profile{
		Name:        DefaultProfileName,
		Description: "1920x1080 table, combined hole and board regions, four-colour deck",
		Hole:        recognition.HoleLayout{Region: &hole, SplitOffsets: []int{75}},
		Community:   recognition.CommunityLayout{Region: &board, SlotCount: 5},
		Suits:       recognition.DefaultSuitProfiles(),
		Templates:   TemplateConfig{Dir: DefaultTemplateDir},
		Policy:      recognition.Policy{MinRankConfidence: 0.5},
	}
}

func separateSlotsProfile() Profile {
	p := defaultProfile()
	p.Name = SeparateSlotsProfileName
	p.Description = "1920x1080 table, one capture region per card slot"
	p.Hole = recognition.HoleLayout{Slots: []capture.Region{
		{X: 1228, Y: 988, Width: 44, Height: 55},
		{X: 1276, Y: 988, Width: 44, Height: 55},
	}}
	p.Community = recognition.CommunityLayout{}
	for _, x := range []int{400, 480, 560, 640, 720} {
		p.Community.Slots = append(p.Community.Slots, capture.Region{X: x, Y: 400, Width: 50, Height: 80})
	}
	return p
}
