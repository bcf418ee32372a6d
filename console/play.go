package console

import (
	"fmt"
	"io"

	"github.com/tiggercwh/go-dealornodeal/engine"
	"github.com/tiggercwh/go-dealornodeal/gameModel"
)

// Play runs g from case selection to the end, reading answers from in and
// writing the show to out. Errors only come from the engine rejecting a call,
// which means g was not a fresh game.
func Play(g *engine.Game, in io.Reader, out io.Writer) (engine.Outcome, error) {
	p := NewPrompter(in, out)
	show := func() { PrintBoard(out, gameModel.NewGameState("", g)) }

	fmt.Fprintln(out, "Welcome to Deal or No Deal!")
	show()
	fmt.Fprintln(out, "Choose a case to begin.")
	id, parsed := p.CaseID("Choose a case number: ")
	sub, err := g.ChooseCase(id)
	if err != nil {
		return engine.Outcome{}, fmt.Errorf("choose case: %w", err)
	}
	if sub != nil {
		Announce(out, parsed, gameModel.Substitutions(*sub)[0])
	}
	fmt.Fprintln(out, "Let's get started!")
	show()

	for g.Phase() == engine.PhaseReveal {
		fmt.Fprintf(out, "Round %d/%d: open %d cases\n", g.Round()+1, g.Rounds(), g.PendingReveals())
		for g.PendingReveals() > 0 {
			id, parsed := p.CaseID("Choose a case number: ")
			c, sub, err := g.RevealOne(id)
			if err != nil {
				return engine.Outcome{}, fmt.Errorf("reveal: %w", err)
			}
			if sub != nil {
				Announce(out, parsed, gameModel.Substitutions(*sub)[0])
			}
			PrintOpened(out, gameModel.OpenedCase(c))
		}
		show()

		offer, err := g.MakeOffer()
		if err != nil {
			return engine.Outcome{}, fmt.Errorf("make offer: %w", err)
		}
		PrintOffer(out, offer)
		deal := p.YesNo("Deal (Y) or No Deal (N)? ")
		if err := g.Decide(deal); err != nil {
			return engine.Outcome{}, fmt.Errorf("decide: %w", err)
		}
		if deal {
			fmt.Fprintln(out, "You accepted the deal!")
			break
		}
		fmt.Fprintf(out, "Just turned down %s\n", Offer(offer))
	}

	if g.Phase() == engine.PhaseFinalChoice {
		show()
		keep := p.YesNo("Do you want your original case (Y) or the last case left (N)? ")
		if _, err := g.ResolveFinal(keep); err != nil {
			return engine.Outcome{}, fmt.Errorf("resolve final: %w", err)
		}
	}

	outcome, ok := g.Outcome()
	if !ok {
		return engine.Outcome{}, fmt.Errorf("game ended in phase %s", g.Phase())
	}
	PrintOutcome(out, gameModel.NewGameState("", g))
	fmt.Fprintln(out, "Game over!")
	return outcome, nil
}
