package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeTotal computes the payable amount in the smallest currency unit.
// The discount factor is applied before the tax factor, and the result is
// truncated toward zero. A nil percent means the reference is absent; a zero
// percent is present and applied as a no-op. The ordering is fixed so the
// algorithm stays unambiguous if stacked discounts or taxes are ever added.
func ComputeTotal(priceCents []int64, discountPercent, taxPercent *decimal.Decimal) int64 {
	var sum int64
	for _, price := range priceCents {
		sum += price
	}

	total := decimal.NewFromInt(sum)

	if discountPercent != nil {
		factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
		total = total.Mul(factor)
	}

	if taxPercent != nil {
		factor := decimal.NewFromInt(1).Add(taxPercent.Div(hundred))
		total = total.Mul(factor)
	}

	return total.IntPart()
}
