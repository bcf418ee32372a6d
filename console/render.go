// Package console draws games in a terminal and drives a local game from
// line-based input.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tiggercwh/go-dealornodeal/gameModel"
)

const (
	wideRow   = 7
	narrowRow = 6
)

// Money formats an amount the way the board shows it: whole dollars without
// cents, anything else to the cent.
func Money(d decimal.Decimal) string {
	if d.IsInteger() {
		return "$" + d.String()
	}
	return "$" + d.StringFixed(2)
}

// Offer formats a banker offer, always to the cent.
func Offer(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Strike draws a line through s with combining overlay characters.
func Strike(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		b.WriteRune('\u0336')
	}
	return b.String()
}

// PrintBoard prints the case grid, the held case and the prize board with
// revealed amounts struck through.
func PrintBoard(w io.Writer, state gameModel.GameState) {
	width := len(fmt.Sprintf("[%d]", len(state.Cases)))
	cells := make([]string, len(state.Cases))
	for i, c := range state.Cases {
		if c.Opened || c.Held {
			cells[i] = strings.Repeat(" ", width)
			continue
		}
		cells[i] = fmt.Sprintf("%-*s", width, fmt.Sprintf("[%d]", c.ID))
	}

	// Rows alternate seven and six cases, the short rows set in by half a cell.
	for start, row := 0, 0; start < len(cells); row++ {
		size, indent := wideRow, ""
		if row%2 == 1 {
			size, indent = narrowRow, strings.Repeat(" ", width/2+1)
		}
		end := min(start+size, len(cells))
		fmt.Fprintln(w, indent+strings.Join(cells[start:end], "  "))
		start = end
	}

	if state.PlayerCase != 0 {
		fmt.Fprintf(w, "\n\t\t\tYour case: \033[1;33m[%d]\033[0m\n\n", state.PlayerCase)
	}

	half := (len(state.Board) + 1) / 2
	left, right := state.Board[:half], state.Board[half:]
	leftWidth := 0
	for _, b := range left {
		leftWidth = max(leftWidth, len(Money(b.Value)))
	}
	for i, b := range left {
		line := "\t" + boardEntry(b) + strings.Repeat(" ", leftWidth-len(Money(b.Value)))
		if i < len(right) {
			line += "\t\t" + boardEntry(right[i])
		}
		fmt.Fprintln(w, line)
	}
}

func boardEntry(b gameModel.BoardValue) string {
	s := Money(b.Value)
	if !b.Remaining {
		return Strike(s)
	}
	return s
}

// Announce tells the player their pick was replaced. parsed is false when the
// input was not a number at all.
func Announce(w io.Writer, parsed bool, sub gameModel.Substitution) {
	if !parsed {
		fmt.Fprintln(w, "I don't recognize that number! I'll choose a random case for you")
	} else {
		fmt.Fprintln(w, "That case isn't available. I'll choose one at random for you")
	}
	fmt.Fprintf(w, "You get case [%d]\n", sub.CaseID)
}

// PrintOffer shows the banker's offer.
func PrintOffer(w io.Writer, offer decimal.Decimal) {
	fmt.Fprintf(w, "The banker's offer is: \033[1;32m%s\033[0m\n", Offer(offer))
}

// PrintOpened shows a case as it is opened.
func PrintOpened(w io.Writer, c gameModel.Case) {
	if c.Value == nil {
		fmt.Fprintf(w, "[%d]\n", c.ID)
		return
	}
	fmt.Fprintf(w, "[%d] - %s\n", c.ID, Money(*c.Value))
}

// PrintOutcome reports how a finished game ended.
func PrintOutcome(w io.Writer, state gameModel.GameState) {
	if state.Payout == nil {
		return
	}
	if state.Phase == "deal" {
		fmt.Fprintf(w, "You left with %s\n", Offer(*state.Payout))
		for _, c := range state.Cases {
			if c.Held && c.Value != nil {
				fmt.Fprintf(w, "Your case [%d] held %s\n", c.ID, Money(*c.Value))
			}
		}
		return
	}

	fmt.Fprintf(w, "Your final winnings are: %s\n", Money(*state.Payout))
	if len(state.Offers) == 0 {
		return
	}
	offers := make([]string, len(state.Offers))
	for i, o := range state.Offers {
		offers[i] = Offer(o)
	}
	fmt.Fprintf(w, "Offers you turned down: %s\n", strings.Join(offers, ", "))
	switch state.BetterOffers {
	case 0:
		fmt.Fprintln(w, "You beat every offer the banker made.")
	case 1:
		fmt.Fprintln(w, "1 offer was better than your winnings.")
	default:
		fmt.Fprintf(w, "%d offers were better than your winnings.\n", state.BetterOffers)
	}
}
