package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/ironsheep/cardsight/internal/equity"
	"github.com/ironsheep/cardsight/internal/recognition"
)

// renderTable prints one row per slot with the recognized card and the
// classifier scores behind it.
func renderTable(table *recognition.TableResult) {
	data := pterm.TableData{{"Slot", "Card", "Rank", "Rank score", "Margin", "Suit", "Suit pixels", "Status"}}
	for _, name := range table.Order {
		slot := table.Slots[name]
		card := pterm.Gray("-")
		status := pterm.LightGreen("ok")
		if slot.Card != nil {
			card = cardLabel(*slot.Card)
		} else {
			status = pterm.LightRed(slot.Failure())
		}
		data = append(data, []string{
			name,
			card,
			orDash(slot.Rank.Label),
			fmt.Sprintf("%.3f", slot.Rank.Confidence),
			fmt.Sprintf("%.3f", slot.Rank.Margin),
			orDash(recognition.SuitName(slot.Suit.Label)),
			fmt.Sprintf("%.0f", slot.Suit.Confidence),
			status,
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}

// renderReport prints the equity report in a box, probabilities highlighted.
func renderReport(r equity.Report, hand string) {
	lines := r.Lines()
	for i, line := range lines {
		if name, value, ok := strings.Cut(line, ": "); ok && strings.HasSuffix(value, "%") {
			lines[i] = name + ": " + pterm.LightCyan(value)
		}
	}
	if hand != "" {
		lines = append(lines, "Current Hand: "+pterm.LightYellow(hand))
	}

	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	pbox.WithTitle(pterm.LightGreen("|ODDS|")).WithTitleTopCenter().Println(strings.Join(lines, "\n"))
}

// renderInsufficient reports that the hero's hand could not be read.
func renderInsufficient(err error) {
	pterm.Error.Println(err)
	pterm.Info.Println("Check the hole card regions of the active calibration profile, or run detect with CARDSIGHT_DEBUG_DIR set to inspect the crops.")
}

func cardLabel(c recognition.Card) string {
	switch c.Suit {
	case recognition.Hearts:
		return pterm.LightRed(c.String())
	case recognition.Diamonds:
		return pterm.LightBlue(c.String())
	case recognition.Clubs:
		return pterm.LightGreen(c.String())
	default:
		return pterm.White(c.String())
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
