package tracker

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluator applies a product's alert rules to a fresh observation.
type Evaluator struct {
	// MinDiscountSamples suppresses the discount rule until the product has
	// at least this many prior observations, so a one-sample baseline cannot
	// fire a spurious discount alert. 0 disables the gate.
	MinDiscountSamples int
}

// Evaluate decides whether the current price satisfies the product's rules.
// baseline is the mean of the prior history (nil on first observation) and
// priorSamples its size. An unset rule field never contributes; a nil
// baseline silently skips the discount rule.
//
// The target rule is strict less-than (the user wants the ceiling undercut),
// the discount rule is at-or-below (reaching the percentage is enough).
func (e Evaluator) Evaluate(p Product, current decimal.Decimal, baseline *decimal.Decimal, priorSamples int, observedAt time.Time) Decision {
	d := Decision{
		Kind:         KindNoAlert,
		CurrentPrice: current,
		TargetPrice:  p.TargetPrice,
		Baseline:     baseline,
		ObservedAt:   observedAt,
	}

	if baseline != nil && baseline.Sign() > 0 {
		pct := baseline.Sub(current).Div(*baseline).Mul(hundred)
		d.DiscountPct = &pct
	}

	targetMet := p.TargetPrice != nil && current.LessThan(*p.TargetPrice)

	discountMet := false
	if p.MinDiscount != nil && baseline != nil && baseline.Sign() > 0 && priorSamples >= e.MinDiscountSamples {
		threshold := baseline.Mul(decimal.NewFromInt(1).Sub(p.MinDiscount.Div(hundred)))
		discountMet = current.LessThanOrEqual(threshold)
	}

	switch {
	case targetMet && discountMet:
		d.Kind = KindBothMet
	case targetMet:
		d.Kind = KindTargetMet
	case discountMet:
		d.Kind = KindDiscountMet
	}
	return d
}
