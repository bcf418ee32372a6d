package engine

// SubstitutionReason says why a requested case could not be used.
type SubstitutionReason int

const (
	// ReasonUnknownCase covers ids outside the board, including the zero id
	// drivers send for input they could not parse.
	ReasonUnknownCase SubstitutionReason = iota + 1
	ReasonOpened
	ReasonHeld
)

func (r SubstitutionReason) String() string {
	switch r {
	case ReasonUnknownCase:
		return "unknown_case"
	case ReasonOpened:
		return "opened"
	case ReasonHeld:
		return "held"
	default:
		return "unknown"
	}
}

// Substitution reports a requested case id that was replaced by a random
// available case.
type Substitution struct {
	Requested int
	CaseID    int
	Reason    SubstitutionReason
}

// pick resolves a requested id to an index into g.cases, drawing a uniformly
// random available case when the request cannot be honored.
func (g *Game) pick(id int) (int, *Substitution) {
	var reason SubstitutionReason
	switch {
	case id < 1 || id > len(g.cases):
		reason = ReasonUnknownCase
	case id == g.held:
		reason = ReasonHeld
	case !g.cases[id-1].Available:
		reason = ReasonOpened
	default:
		return id - 1, nil
	}

	ids := g.AvailableCaseIDs()
	chosen := ids[g.rng.Intn(len(ids))]
	return chosen - 1, &Substitution{Requested: id, CaseID: chosen, Reason: reason}
}
