package pricing

import (
	"fmt"

	"github.com/mercaline/storefront-backend/pkg/db/models"
	"github.com/mercaline/storefront-backend/pkg/enums"
	pkgerrors "github.com/mercaline/storefront-backend/pkg/errors"
)

// UniformCurrency returns the single currency shared by all items in the
// basket. An empty basket fails before any currency is inspected; the scan
// stops at the first item that deviates from the first item's currency.
func UniformCurrency(items []models.Item) (enums.Currency, error) {
	if len(items) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeEmptyOrder, "order has no items")
	}

	currency := items[0].Currency
	for _, item := range items[1:] {
		if item.Currency != currency {
			return "", pkgerrors.New(
				pkgerrors.CodeMixedCurrency,
				fmt.Sprintf("item %q is priced in %s, expected %s", item.Name, item.Currency, currency),
			).WithDetails(map[string]any{
				"expected": currency.String(),
				"got":      item.Currency.String(),
				"item_id":  item.ID.String(),
			})
		}
	}
	return currency, nil
}
