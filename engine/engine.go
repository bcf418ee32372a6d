// Package engine runs a single game of Deal or No Deal.
//
// A Game moves through a fixed sequence of phases: the player picks a case to
// hold, then each round opens a scheduled batch of the other cases, receives a
// banker offer and decides deal or no deal. Declining every offer leads to a
// final choice between the held case and the last unopened one.
//
// Operations called out of phase return ErrInvalidPhase and leave the game
// untouched. Case ids chosen by the player are never an error: an unknown,
// opened or held id is replaced with a uniformly random available case and
// reported as a Substitution.
//
// A Game is not safe for concurrent use.
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Phase is a step of the game state machine.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseChooseCase
	PhaseReveal
	PhaseOffer
	PhaseDecision
	PhaseFinalChoice
	PhaseDeal
	PhaseFinal
)

var phaseNames = map[Phase]string{
	PhaseSetup:       "setup",
	PhaseChooseCase:  "choose_case",
	PhaseReveal:      "reveal",
	PhaseOffer:       "offer",
	PhaseDecision:    "decision",
	PhaseFinalChoice: "final_choice",
	PhaseDeal:        "deal",
	PhaseFinal:       "final",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the game is over.
func (p Phase) Terminal() bool {
	return p == PhaseDeal || p == PhaseFinal
}

// Case is one sealed case on the board.
type Case struct {
	ID        int
	Value     decimal.Decimal
	Available bool
}

// Option adjusts a new game.
type Option func(*Game)

// WithOfferRange sets the inclusive range of whole percentages the banker
// offer factor is drawn from.
func WithOfferRange(minPercent, maxPercent int) Option {
	return func(g *Game) {
		g.offerMin = minPercent
		g.offerMax = maxPercent
	}
}

// Game holds the full state of one game.
type Game struct {
	prizes    []decimal.Decimal
	remaining []decimal.Decimal
	cases     []Case
	rounds    []int
	offers    []decimal.Decimal

	phase   Phase
	round   int
	pending int
	held    int
	final   int
	payout  decimal.Decimal

	rng      Source
	offerMin int
	offerMax int
}

// NewGame deals prizes onto cases numbered 1..len(prizes) in an order drawn
// from rng. The rounds must open every case except the held one and the
// final one, so they have to sum to len(prizes)-2.
func NewGame(prizes []decimal.Decimal, rounds []int, rng Source, opts ...Option) (*Game, error) {
	if rng == nil {
		return nil, configErrorf("random source is required")
	}
	if len(prizes) < 3 {
		return nil, configErrorf("need at least 3 prizes, got %d", len(prizes))
	}
	total := 0
	for i, n := range rounds {
		if n <= 0 {
			return nil, configErrorf("round %d opens %d cases", i+1, n)
		}
		total += n
	}
	if total != len(prizes)-2 {
		return nil, configErrorf("rounds open %d cases, board of %d needs %d", total, len(prizes), len(prizes)-2)
	}
	for _, p := range prizes {
		if p.IsNegative() {
			return nil, configErrorf("negative prize %s", p)
		}
	}

	g := &Game{
		rng:      rng,
		offerMin: DefaultOfferMinPercent,
		offerMax: DefaultOfferMaxPercent,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.offerMin < 0 || g.offerMin > g.offerMax || g.offerMax > MaxOfferPercent {
		return nil, configErrorf("offer range %d..%d", g.offerMin, g.offerMax)
	}

	g.prizes = sortedCopy(prizes)
	g.remaining = sortedCopy(prizes)
	g.rounds = append([]int(nil), rounds...)

	shuffled := append([]decimal.Decimal(nil), g.prizes...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	g.cases = make([]Case, len(shuffled))
	for i, v := range shuffled {
		g.cases[i] = Case{ID: i + 1, Value: v, Available: true}
	}
	g.phase = PhaseChooseCase
	return g, nil
}

// ChooseCase sets the case the player holds until the end. An id that cannot
// be chosen is substituted.
func (g *Game) ChooseCase(id int) (*Substitution, error) {
	if g.phase != PhaseChooseCase {
		return nil, phaseError("choose case", g.phase)
	}
	idx, sub := g.pick(id)
	g.cases[idx].Available = false
	g.held = g.cases[idx].ID
	g.startRound(0)
	return sub, nil
}

// Reveal opens the round's pending cases in order. len(ids) must match the
// number of reveals left in the round; each id that cannot be opened is
// substituted. Revealed cases are returned in opening order.
func (g *Game) Reveal(ids []int) ([]Case, []Substitution, error) {
	if g.phase != PhaseReveal {
		return nil, nil, phaseError("reveal", g.phase)
	}
	if len(ids) != g.pending {
		return nil, nil, phaseErrorf("reveal: round %d expects %d cases, got %d", g.round+1, g.pending, len(ids))
	}
	opened := make([]Case, 0, len(ids))
	var subs []Substitution
	for _, id := range ids {
		c, sub := g.open(id)
		opened = append(opened, c)
		if sub != nil {
			subs = append(subs, *sub)
		}
	}
	return opened, subs, nil
}

// RevealOne opens a single case of the current round.
func (g *Game) RevealOne(id int) (Case, *Substitution, error) {
	if g.phase != PhaseReveal {
		return Case{}, nil, phaseError("reveal", g.phase)
	}
	c, sub := g.open(id)
	return c, sub, nil
}

func (g *Game) open(id int) (Case, *Substitution) {
	idx, sub := g.pick(id)
	g.cases[idx].Available = false
	g.remaining = removeValue(g.remaining, g.cases[idx].Value)
	g.pending--
	if g.pending == 0 {
		g.phase = PhaseOffer
	}
	return g.cases[idx], sub
}

// Decide answers the round's offer. Accepting ends the game on that offer;
// declining moves to the next round, or to the final choice after the last.
func (g *Game) Decide(accept bool) error {
	if g.phase != PhaseDecision {
		return phaseError("decide", g.phase)
	}
	if accept {
		g.payout = g.offers[len(g.offers)-1]
		g.phase = PhaseDeal
		return nil
	}
	if g.round+1 == len(g.rounds) {
		g.phase = PhaseFinalChoice
		return nil
	}
	g.startRound(g.round + 1)
	return nil
}

// ResolveFinal ends the game with either the held case or the last unopened
// one and returns the case the player walks away with.
func (g *Game) ResolveFinal(keepOwn bool) (Case, error) {
	if g.phase != PhaseFinalChoice {
		return Case{}, phaseError("resolve final", g.phase)
	}
	final := g.held
	if !keepOwn {
		ids := g.AvailableCaseIDs()
		if len(ids) != 1 {
			return Case{}, phaseErrorf("resolve final: expected one unopened case, found %d", len(ids))
		}
		final = ids[0]
	}
	g.final = final
	g.payout = g.cases[final-1].Value
	g.phase = PhaseFinal
	return g.cases[final-1], nil
}

func (g *Game) startRound(i int) {
	g.round = i
	g.pending = g.rounds[i]
	g.phase = PhaseReveal
}

func sortedCopy(values []decimal.Decimal) []decimal.Decimal {
	out := append([]decimal.Decimal(nil), values...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].LessThan(out[j]) })
	return out
}

func removeValue(values []decimal.Decimal, v decimal.Decimal) []decimal.Decimal {
	for i := range values {
		if values[i].Equal(v) {
			return append(values[:i], values[i+1:]...)
		}
	}
	return values
}
