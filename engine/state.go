package engine

import "github.com/shopspring/decimal"

// Outcome summarizes a finished game.
type Outcome struct {
	Phase  Phase
	Payout decimal.Decimal
	// Offers is every offer made. After a deal the last one is the accepted
	// offer; after a final choice all of them were declined.
	Offers    []decimal.Decimal
	HeldCase  Case
	FinalCase Case
	// BetterOffers counts declined offers above the final payout.
	BetterOffers int
}

func (g *Game) Phase() Phase { return g.phase }

// Round is the zero-based index of the current round.
func (g *Game) Round() int { return g.round }

func (g *Game) Rounds() int { return len(g.rounds) }

// RoundSize is the number of cases round i opens.
func (g *Game) RoundSize(i int) int {
	if i < 0 || i >= len(g.rounds) {
		return 0
	}
	return g.rounds[i]
}

// PendingReveals is the number of cases still to open this round.
func (g *Game) PendingReveals() int {
	if g.phase != PhaseReveal {
		return 0
	}
	return g.pending
}

// AvailableCaseIDs lists the unopened cases other than the held one, in id
// order.
func (g *Game) AvailableCaseIDs() []int {
	ids := make([]int, 0, len(g.cases))
	for _, c := range g.cases {
		if c.Available {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// RemainingValues lists the amounts not yet revealed in ascending order. The
// held case's value stays in it until the game ends.
func (g *Game) RemainingValues() []decimal.Decimal {
	return append([]decimal.Decimal(nil), g.remaining...)
}

// PrizeValues is the full board in ascending order.
func (g *Game) PrizeValues() []decimal.Decimal {
	return append([]decimal.Decimal(nil), g.prizes...)
}

func (g *Game) OfferHistory() []decimal.Decimal {
	return append([]decimal.Decimal(nil), g.offers...)
}

// Cases returns every case in id order.
func (g *Game) Cases() []Case {
	return append([]Case(nil), g.cases...)
}

// Case looks up a case by id.
func (g *Game) Case(id int) (Case, bool) {
	if id < 1 || id > len(g.cases) {
		return Case{}, false
	}
	return g.cases[id-1], true
}

// PlayerCase is the held case, once chosen.
func (g *Game) PlayerCase() (Case, bool) {
	if g.held == 0 {
		return Case{}, false
	}
	return g.cases[g.held-1], true
}

// Opened reports whether a case has been revealed. The held case is never
// opened even though it is unavailable.
func (g *Game) Opened(id int) bool {
	c, ok := g.Case(id)
	return ok && !c.Available && id != g.held
}

// FinalCase is the case the player walked away with after a final choice.
func (g *Game) FinalCase() (Case, bool) {
	if g.final == 0 {
		return Case{}, false
	}
	return g.cases[g.final-1], true
}

// Payout is the amount won, set once the game reaches a terminal phase.
func (g *Game) Payout() (decimal.Decimal, bool) {
	if !g.phase.Terminal() {
		return decimal.Zero, false
	}
	return g.payout, true
}

// Outcome reports the result of a finished game.
func (g *Game) Outcome() (Outcome, bool) {
	if !g.phase.Terminal() {
		return Outcome{}, false
	}
	out := Outcome{
		Phase:    g.phase,
		Payout:   g.payout,
		Offers:   g.OfferHistory(),
		HeldCase: g.cases[g.held-1],
	}
	if g.final != 0 {
		out.FinalCase = g.cases[g.final-1]
	}
	if g.phase == PhaseFinal {
		for _, o := range g.offers {
			if o.GreaterThan(g.payout) {
				out.BetterOffers++
			}
		}
	}
	return out, true
}
