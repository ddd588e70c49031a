package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warungpos/backend/internal/domain"
)

func item(name string, price int64, qty int, duration string) domain.CartItem {
	return domain.CartItem{
		Product: domain.Product{ID: name + duration, Name: name, Price: decimal.NewFromInt(price), RentalDuration: duration},
		Qty:     qty,
	}
}

func TestDailyBreakdownGroupsRentalDurationSeparately(t *testing.T) {
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		{ID: "1", Date: day, Total: decimal.RequireFromString("157.50"), Items: []domain.CartItem{
			item("Kayak", 50, 1, "2hr"),
			item("Kayak", 50, 1, ""),
		}},
		{ID: "2", Date: day.Add(time.Hour), Total: decimal.RequireFromString("52.50"), Items: []domain.CartItem{
			item("Kayak", 50, 1, "2hr"),
		}},
	}

	got := DailyBreakdown(orders, "2024-05-01", time.UTC)

	require.Len(t, got.Items, 2)
	assert.Equal(t, "Kayak (2hr)", got.Items[0].Name)
	assert.Equal(t, 2, got.Items[0].Qty)
	assert.Equal(t, "Kayak", got.Items[1].Name)
	assert.Equal(t, 1, got.Items[1].Qty)
	assert.Equal(t, "100.00", got.Items[0].Revenue.StringFixed(2))
}

func TestDailyBreakdownTotalsAndRevenueExcludeTax(t *testing.T) {
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		{ID: "1", Date: day, Total: decimal.RequireFromString("210"), TaxTotal: decimal.RequireFromString("10"), Items: []domain.CartItem{item("Latte", 100, 2, "")}},
		{ID: "2", Date: day, Total: decimal.RequireFromString("105"), TaxTotal: decimal.RequireFromString("5"), Items: []domain.CartItem{item("Bun", 50, 2, "")}},
		{ID: "3", Date: day, Total: decimal.RequireFromString("100"), Items: []domain.CartItem{item("Latte", 100, 1, "")}},
	}

	got := DailyBreakdown(orders, "2024-05-01", time.UTC)

	assert.Equal(t, 3, got.OrderCount)
	assert.Equal(t, "415.00", got.TotalSales.StringFixed(2))
	assert.Equal(t, "138.33", got.AvgTicket.StringFixed(2))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Latte", got.Items[0].Name)
	assert.Equal(t, "300.00", got.Items[0].Revenue.StringFixed(2))
	assert.Equal(t, "Bun", got.Items[1].Name)
}

func TestDailyBreakdownUsesLocalCalendarDay(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	orders := []domain.Order{
		// 2024-05-01 20:00 UTC is 2024-05-02 03:00 WIB.
		{ID: "1", Date: time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(10), Items: []domain.CartItem{item("Tea", 10, 1, "")}},
	}

	assert.Equal(t, 0, DailyBreakdown(orders, "2024-05-01", wib).OrderCount)
	assert.Equal(t, 1, DailyBreakdown(orders, "2024-05-02", wib).OrderCount)
}

func TestDailyBreakdownEmptyDay(t *testing.T) {
	got := DailyBreakdown(nil, "2024-05-01", time.UTC)

	assert.Zero(t, got.OrderCount)
	assert.True(t, got.AvgTicket.IsZero())
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
}
