package tracker

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is one configured entry to watch. TargetPrice and MinDiscount are
// independently optional; a product with neither set is recorded but never
// alerts.
type Product struct {
	Name string
	URL  string

	// TargetPrice fires when the observed price drops strictly below it.
	TargetPrice *decimal.Decimal
	// MinDiscount is a percentage in (0, 100]; fires when the observed price
	// is at or below baseline * (1 - MinDiscount/100).
	MinDiscount *decimal.Decimal
}

type Kind string

const (
	KindNoAlert     Kind = "no_alert"
	KindTargetMet   Kind = "target_met"
	KindDiscountMet Kind = "discount_met"
	KindBothMet     Kind = "both_met"
)

// Decision is the outcome of evaluating one observation. It carries enough
// detail to render the notification message without re-querying history.
type Decision struct {
	Kind         Kind             `json:"kind"`
	CurrentPrice decimal.Decimal  `json:"current_price"`
	TargetPrice  *decimal.Decimal `json:"target_price,omitempty"`
	Baseline     *decimal.Decimal `json:"baseline,omitempty"`
	// DiscountPct is the actual percentage below baseline, present whenever
	// a positive baseline exists.
	DiscountPct *decimal.Decimal `json:"discount_pct,omitempty"`
	ObservedAt  time.Time        `json:"observed_at"`
}

func (d Decision) Alert() bool {
	return d.Kind != KindNoAlert
}
