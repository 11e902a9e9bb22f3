package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func pct(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestComputeTotalSumsWithoutRates(t *testing.T) {
	tests := []struct {
		name   string
		prices []int64
		want   int64
	}{
		{name: "empty basket", prices: nil, want: 0},
		{name: "single item", prices: []int64{1000}, want: 1000},
		{name: "several items", prices: []int64{500, 1500, 250}, want: 2250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeTotal(tt.prices, nil, nil); got != tt.want {
				t.Fatalf("ComputeTotal(%v) = %d, want %d", tt.prices, got, tt.want)
			}
		})
	}
}

func TestComputeTotalDiscountThenTax(t *testing.T) {
	tests := []struct {
		name     string
		prices   []int64
		discount *decimal.Decimal
		tax      *decimal.Decimal
		want     int64
	}{
		{name: "ten off twenty on", prices: []int64{500, 1500}, discount: pct("10"), tax: pct("20"), want: 2160},
		{name: "discount only", prices: []int64{1000}, discount: pct("25"), want: 750},
		{name: "tax only", prices: []int64{1000}, tax: pct("7.25"), want: 1072},
		{name: "fractional discount truncates", prices: []int64{999}, discount: pct("10.5"), want: 894},
		{name: "full discount", prices: []int64{1000}, discount: pct("100"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeTotal(tt.prices, tt.discount, tt.tax); got != tt.want {
				t.Fatalf("ComputeTotal(%v, %v, %v) = %d, want %d", tt.prices, tt.discount, tt.tax, got, tt.want)
			}
		})
	}
}

func TestComputeTotalZeroRateEqualsAbsentRate(t *testing.T) {
	prices := []int64{500, 1500, 333}

	withZeroes := ComputeTotal(prices, pct("0"), pct("0"))
	withNils := ComputeTotal(prices, nil, nil)
	if withZeroes != withNils {
		t.Fatalf("zero-rate total %d differs from absent-rate total %d", withZeroes, withNils)
	}
}

func TestComputeTotalTruncatesTowardZero(t *testing.T) {
	// 100 * 0.995 = 99.5; the half cent is dropped, not rounded up.
	if got := ComputeTotal([]int64{100}, pct("0.5"), nil); got != 99 {
		t.Fatalf("expected truncated total 99, got %d", got)
	}
}
