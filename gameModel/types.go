package gameModel

import "github.com/shopspring/decimal"

// Case is a case as a player may see it. Value is only set once the case is
// opened, or for every case after the game ends.
type Case struct {
	ID     int              `json:"id"`
	Opened bool             `json:"opened"`
	Held   bool             `json:"held"`
	Value  *decimal.Decimal `json:"value,omitempty"`
}

// BoardValue is one entry of the prize board.
type BoardValue struct {
	Value     decimal.Decimal `json:"value"`
	Remaining bool            `json:"remaining"`
}

type Substitution struct {
	Requested int    `json:"requested"`
	CaseID    int    `json:"caseId"`
	Reason    string `json:"reason"`
}

type GameState struct {
	ID             string            `json:"id"`
	Phase          string            `json:"phase"`
	Round          int               `json:"round"`
	MaxRounds      int               `json:"maxRounds"`
	RoundSize      int               `json:"roundSize"`
	PendingReveals int               `json:"pendingReveals"`
	Cases          []Case            `json:"cases"`
	Board          []BoardValue      `json:"board"`
	PlayerCase     int               `json:"playerCase,omitempty"`
	Offers         []decimal.Decimal `json:"offers"`
	CurrentOffer   *decimal.Decimal  `json:"currentOffer,omitempty"`
	Payout         *decimal.Decimal  `json:"payout,omitempty"`
	FinalCase      int               `json:"finalCase,omitempty"`
	BetterOffers   int               `json:"betterOffers,omitempty"`
	GameOver       bool              `json:"gameOver"`
	Seed           int64             `json:"seed,omitempty"`
	CreatedAt      string            `json:"createdAt,omitempty"`
	LastActivity   string            `json:"lastActivity,omitempty"`
}

type NewGameRequest struct {
	Seed *int64 `json:"seed,omitempty"`
}

type ChooseCaseRequest struct {
	CaseID int `json:"caseId"`
}

type RevealRequest struct {
	CaseIDs []int `json:"caseIds"`
}

type DecisionRequest struct {
	Deal bool `json:"deal"`
}

type FinalRequest struct {
	KeepOwn bool `json:"keepOwn"`
}

type MoveResponse struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	Substitutions []Substitution   `json:"substitutions,omitempty"`
	Revealed      []Case           `json:"revealed,omitempty"`
	Offer         *decimal.Decimal `json:"offer,omitempty"`
	Final         *Case            `json:"final,omitempty"`
	GameState     *GameState       `json:"gameState,omitempty"`
	GameOver      bool             `json:"gameOver"`
}

type NewGameResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	GameState GameState `json:"gameState"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
