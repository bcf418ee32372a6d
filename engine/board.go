package engine

import "github.com/shopspring/decimal"

var defaultPrizes = []string{
	"0.01", "1", "5", "10",
	"25", "50", "75", "100",
	"200", "300", "400", "500",
	"750", "1000", "5000", "10000",
	"25000", "50000", "75000", "100000",
	"200000", "300000", "400000", "500000",
	"750000", "1000000",
}

var defaultRounds = []int{5, 5, 5, 5, 3, 1}

const (
	DefaultOfferMinPercent = 75
	DefaultOfferMaxPercent = 85
	// MaxOfferPercent caps the offer range: ten times the mean.
	MaxOfferPercent = 1000
)

// DefaultPrizes returns the 26 amounts of the televised board.
func DefaultPrizes() []decimal.Decimal {
	prizes := make([]decimal.Decimal, len(defaultPrizes))
	for i, s := range defaultPrizes {
		prizes[i] = decimal.RequireFromString(s)
	}
	return prizes
}

// DefaultRounds returns the reveal schedule for the default board.
func DefaultRounds() []int {
	rounds := make([]int, len(defaultRounds))
	copy(rounds, defaultRounds)
	return rounds
}
