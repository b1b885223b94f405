package tracker

import (
	"github.com/shopspring/decimal"

	"pricewatcher/internal/models"
)

// Baseline returns the arithmetic mean over the full retained history, or nil
// when there is no history yet. The mean is intentionally computed over all
// observations rather than a sliding window; sparse early histories simply
// produce a noisy baseline until enough cycles have run.
func Baseline(history []models.Observation) *decimal.Decimal {
	if len(history) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, obs := range history {
		sum = sum.Add(obs.Price)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(history))))
	return &mean
}
