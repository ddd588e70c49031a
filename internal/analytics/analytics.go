// Package analytics projects committed orders into per-day figures.
package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/ledger"
)

// DailyBreakdown aggregates the orders whose date falls on localDate
// (YYYY-MM-DD) in loc. Item revenue is price*qty without tax; items are
// grouped by CartItem.GroupKey and listed by revenue, highest first.
func DailyBreakdown(orders []domain.Order, localDate string, loc *time.Location) domain.DailyBreakdown {
	if loc == nil {
		loc = time.Local
	}

	out := domain.DailyBreakdown{
		Date:       localDate,
		TotalSales: decimal.Zero,
		AvgTicket:  decimal.Zero,
		Items:      []domain.ItemBreakdown{},
	}
	groups := map[string]int{}

	for _, order := range orders {
		if ledger.LocalDay(order.Date, loc) != localDate {
			continue
		}
		out.OrderCount++
		out.TotalSales = out.TotalSales.Add(order.Total)

		for _, item := range order.Items {
			key := item.GroupKey()
			idx, ok := groups[key]
			if !ok {
				idx = len(out.Items)
				groups[key] = idx
				out.Items = append(out.Items, domain.ItemBreakdown{Name: key, Revenue: decimal.Zero})
			}
			out.Items[idx].Qty += item.Qty
			out.Items[idx].Revenue = out.Items[idx].Revenue.Add(item.LineTotal())
		}
	}

	if out.OrderCount > 0 {
		out.AvgTicket = domain.RoundMoney(out.TotalSales.Div(decimal.NewFromInt(int64(out.OrderCount))))
	}
	out.TotalSales = domain.RoundMoney(out.TotalSales)
	for i := range out.Items {
		out.Items[i].Revenue = domain.RoundMoney(out.Items[i].Revenue)
	}
	slices.SortStableFunc(out.Items, func(a, b domain.ItemBreakdown) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return ledger.LocalDay(time.Now(), loc)
}
