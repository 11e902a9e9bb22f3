package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/mercaline/storefront-backend/internal/pricing"
	"github.com/mercaline/storefront-backend/pkg/db/models"
	"github.com/mercaline/storefront-backend/pkg/enums"
)

// LineItem is one provider-shaped line. Quantity is always 1: the order model
// has no quantity field, an item appears at most once per order.
type LineItem struct {
	Name        string
	Description string
	AmountCents int64
	Currency    enums.Currency
	Quantity    int64
}

// DiscountSpec describes a percentage reduction to be realized as a provider
// coupon before the session references it.
type DiscountSpec struct {
	Name    string
	Percent decimal.Decimal
}

// TaxSpec describes an exclusive percentage charge to be realized as a
// provider tax rate and attached to every line item.
type TaxSpec struct {
	Name    string
	Percent decimal.Decimal
}

// Plan is the provider-shaped checkout request for one basket. TotalCents is
// the client-side display total only; the provider recomputes the charge from
// the line items plus coupon and tax rate.
type Plan struct {
	Currency   enums.Currency
	LineItems  []LineItem
	Discount   *DiscountSpec
	Tax        *TaxSpec
	TotalCents int64
}

// BuildItemPlan shapes a single-item purchase: one line, no discount, no tax.
func BuildItemPlan(item models.Item) Plan {
	return Plan{
		Currency:   item.Currency,
		LineItems:  []LineItem{lineItemFrom(item)},
		TotalCents: item.PriceCents,
	}
}

// BuildOrderPlan shapes an order checkout. The order must be non-empty and
// priced in a single currency.
func BuildOrderPlan(order models.Order) (Plan, error) {
	currency, err := pricing.UniformCurrency(order.Items)
	if err != nil {
		return Plan{}, err
	}

	lines := make([]LineItem, 0, len(order.Items))
	prices := make([]int64, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, lineItemFrom(item))
		prices = append(prices, item.PriceCents)
	}

	plan := Plan{Currency: currency, LineItems: lines}

	var discountPercent, taxPercent *decimal.Decimal
	if order.Discount != nil {
		plan.Discount = &DiscountSpec{Name: order.Discount.Name, Percent: order.Discount.Percent}
		discountPercent = &order.Discount.Percent
	}
	if order.Tax != nil {
		plan.Tax = &TaxSpec{Name: order.Tax.Name, Percent: order.Tax.Percent}
		taxPercent = &order.Tax.Percent
	}

	plan.TotalCents = pricing.ComputeTotal(prices, discountPercent, taxPercent)
	return plan, nil
}

func lineItemFrom(item models.Item) LineItem {
	return LineItem{
		Name:        item.Name,
		Description: item.Description,
		AmountCents: item.PriceCents,
		Currency:    item.Currency,
		Quantity:    1,
	}
}
