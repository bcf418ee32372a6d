package gameModel

import (
	"github.com/shopspring/decimal"
	"github.com/tiggercwh/go-dealornodeal/engine"
)

// NewGameState projects g into what a player may see. Values of unopened
// cases, the held one included, stay hidden until the game is over.
func NewGameState(id string, g *engine.Game) GameState {
	phase := g.Phase()
	state := GameState{
		ID:             id,
		Phase:          phase.String(),
		Round:          g.Round() + 1,
		MaxRounds:      g.Rounds(),
		RoundSize:      g.RoundSize(g.Round()),
		PendingReveals: g.PendingReveals(),
		Offers:         g.OfferHistory(),
		GameOver:       phase.Terminal(),
	}
	if phase == engine.PhaseChooseCase {
		state.Round = 0
	}

	if held, ok := g.PlayerCase(); ok {
		state.PlayerCase = held.ID
	}
	for _, c := range g.Cases() {
		state.Cases = append(state.Cases, caseView(g, c, state.GameOver))
	}
	state.Board = board(g.PrizeValues(), g.RemainingValues())

	if phase == engine.PhaseDecision && len(state.Offers) > 0 {
		offer := state.Offers[len(state.Offers)-1]
		state.CurrentOffer = &offer
	}
	if payout, ok := g.Payout(); ok {
		state.Payout = &payout
	}
	if final, ok := g.FinalCase(); ok {
		state.FinalCase = final.ID
	}
	if out, ok := g.Outcome(); ok {
		state.BetterOffers = out.BetterOffers
	}
	return state
}

// OpenedCase is the view of a case that has just been revealed.
func OpenedCase(c engine.Case) Case {
	v := c.Value
	return Case{ID: c.ID, Opened: true, Value: &v}
}

// FinalCaseView is the view of the case a player walks away with.
func FinalCaseView(g *engine.Game, c engine.Case) Case {
	return caseView(g, c, true)
}

func Substitutions(subs ...engine.Substitution) []Substitution {
	if len(subs) == 0 {
		return nil
	}
	out := make([]Substitution, len(subs))
	for i, s := range subs {
		out[i] = Substitution{Requested: s.Requested, CaseID: s.CaseID, Reason: s.Reason.String()}
	}
	return out
}

func caseView(g *engine.Game, c engine.Case, reveal bool) Case {
	held, _ := g.PlayerCase()
	view := Case{
		ID:     c.ID,
		Opened: g.Opened(c.ID),
		Held:   held.ID == c.ID,
	}
	if view.Opened || reveal {
		v := c.Value
		view.Value = &v
	}
	return view
}

// board marks each prize as remaining or struck. Both slices are ascending and
// remaining is a sub-multiset of prizes, so one pass matches duplicates.
func board(prizes, remaining []decimal.Decimal) []BoardValue {
	out := make([]BoardValue, len(prizes))
	j := 0
	for i, p := range prizes {
		left := j < len(remaining) && remaining[j].Equal(p)
		if left {
			j++
		}
		out[i] = BoardValue{Value: p, Remaining: left}
	}
	return out
}
