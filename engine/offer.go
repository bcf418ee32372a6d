package engine

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Offer is the banker formula: the mean of values scaled by factor, rounded
// half-to-even to cents. An empty slice offers zero.
func Offer(values []decimal.Decimal, factor decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(values))))
	return mean.Mul(factor).RoundBank(2)
}

// ComputeOffer draws a factor and prices the values still in play, the held
// case included. It does not record the offer.
func (g *Game) ComputeOffer() decimal.Decimal {
	return Offer(g.remaining, g.drawFactor())
}

// drawFactor picks a whole percentage uniformly from the configured range.
func (g *Game) drawFactor() decimal.Decimal {
	pct := g.offerMin + g.rng.Intn(g.offerMax-g.offerMin+1)
	return decimal.NewFromInt(int64(pct)).Div(hundred)
}

// MakeOffer computes the round's offer and appends it to the offer history.
// It is valid once per round, after the round's reveals.
func (g *Game) MakeOffer() (decimal.Decimal, error) {
	if g.phase != PhaseOffer {
		return decimal.Zero, phaseError("make offer", g.phase)
	}
	offer := g.ComputeOffer()
	g.offers = append(g.offers, offer)
	g.phase = PhaseDecision
	return offer, nil
}
