package billing

import (
	"github.com/shopspring/decimal"

	"warungpos/backend/internal/domain"
)

// ComputeTotals sums the lines and their tax. Tax is zero when the shop has
// tax disabled; otherwise each line uses its own rate, falling back to the
// shop default. Figures are rounded to cents; GrandTotal is the unrounded
// line sum plus the rounded tax, rounded once.
func ComputeTotals(items []domain.CartItem, shop domain.ShopDetails) domain.Totals {
	subTotal := decimal.Zero
	taxTotal := decimal.Zero
	taxEnabled := shop.IsTaxEnabled()
	defaultRate := shop.TaxRate()

	for _, item := range items {
		line := item.LineTotal()
		subTotal = subTotal.Add(line)
		if !taxEnabled {
			continue
		}
		rate := defaultRate
		if item.TaxRate != nil {
			rate = *item.TaxRate
		}
		taxTotal = taxTotal.Add(domain.TaxOn(line, rate))
	}

	taxTotal = domain.RoundMoney(taxTotal)
	return domain.Totals{
		SubTotal:   domain.RoundMoney(subTotal),
		TaxTotal:   taxTotal,
		GrandTotal: domain.RoundMoney(subTotal.Add(taxTotal)),
	}
}
