package policy

import (
	"time"

	"github.com/shopspring/decimal"
)

// Refund is the outcome of a refund computation.
type Refund struct {
	Percent     int
	AmountCents int64
}

// Calculator computes refund amounts from a policy table. It is pure:
// identical inputs always produce identical outputs, so recomputation for
// audit or replay is safe.
type Calculator struct {
	table *Table
}

func NewCalculator(table *Table) *Calculator {
	return &Calculator{table: table}
}

// ComputeRefund resolves the refund percentage for a cancellation and
// applies it to the original amount.
//
// Force majeure short-circuits to a full refund regardless of tier or
// timing. Otherwise the rule with the largest satisfied hours threshold
// wins; cancelling after the event counts as zero hours of lead time.
// The amount is rounded half-up to the smallest currency unit.
func (c *Calculator) ComputeRefund(tier Tier, amountCents int64, eventTime, cancelTime time.Time, forceMajeure bool) (Refund, error) {
	if forceMajeure {
		return Refund{Percent: 100, AmountCents: amountCents}, nil
	}

	rules, err := c.table.Rules(tier)
	if err != nil {
		return Refund{}, err
	}

	hoursUntilEvent := eventTime.Sub(cancelTime).Hours()
	if hoursUntilEvent < 0 {
		hoursUntilEvent = 0
	}

	percent := 0
	for _, r := range rules {
		if hoursUntilEvent >= float64(r.MinHoursBefore) {
			percent = r.Percent
			break
		}
	}

	return Refund{Percent: percent, AmountCents: applyPercent(amountCents, percent)}, nil
}

// applyPercent computes amount × percent / 100 in cents. decimal.Round
// rounds half away from zero, which is round-half-up for the non-negative
// amounts handled here.
func applyPercent(amountCents int64, percent int) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
