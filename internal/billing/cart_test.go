package billing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warungpos/backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rate(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func shopWithTax(enabled bool, defaultRate string) domain.ShopDetails {
	shop := domain.DefaultShopDetails()
	shop.TaxEnabled = &enabled
	shop.DefaultTaxRate = rate(defaultRate)
	return shop
}

func TestAddItemScenarioTotals(t *testing.T) {
	shop := shopWithTax(true, "5")
	product := domain.Product{ID: "1", Name: "Latte", Price: dec("100"), Stock: 10, TaxRate: rate("5")}

	cart, err := Cart{}.AddItem(product, 2, shop)
	require.NoError(t, err)

	totals := cart.Totals(shop)
	assert.Equal(t, "200.00", totals.SubTotal.StringFixed(2))
	assert.Equal(t, "10.00", totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "210.00", totals.GrandTotal.StringFixed(2))
	assert.Equal(t, PhaseBuilding, cart.Phase())
}

func TestAddItemRefusesOverReservation(t *testing.T) {
	shop := shopWithTax(true, "5")
	product := domain.Product{ID: "1", Name: "Latte", Price: dec("100"), Stock: 3}

	cart, err := Cart{}.AddItem(product, 2, shop)
	require.NoError(t, err)

	after, err := cart.AddItem(product, 2, shop)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 2, stockErr.InCart)
	assert.Equal(t, cart, after)
	assert.Equal(t, 2, after.QtyOf("1"))
}

func TestAddItemAccumulatesAndKeepsInsertionOrder(t *testing.T) {
	shop := shopWithTax(true, "5")
	a := domain.Product{ID: "a", Name: "Tea", Price: dec("10"), Stock: 10}
	b := domain.Product{ID: "b", Name: "Bun", Price: dec("15"), Stock: 10}

	cart, err := Cart{}.AddItem(a, 1, shop)
	require.NoError(t, err)
	cart, err = cart.AddItem(b, 1, shop)
	require.NoError(t, err)
	cart, err = cart.AddItem(a, 2, shop)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, "a", cart.Items[0].ID)
	assert.Equal(t, 3, cart.Items[0].Qty)
	assert.Equal(t, "b", cart.Items[1].ID)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	product := domain.Product{ID: "1", Stock: 10}

	_, err := Cart{}.AddItem(product, 0, shopWithTax(true, "5"))

	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddItemResolvesTaxRateAtInsertion(t *testing.T) {
	shop := shopWithTax(true, "8")
	product := domain.Product{ID: "1", Name: "Cake", Price: dec("50"), Stock: 5}

	cart, err := Cart{}.AddItem(product, 1, shop)
	require.NoError(t, err)

	require.NotNil(t, cart.Items[0].TaxRate)
	assert.True(t, cart.Items[0].TaxRate.Equal(dec("8")))

	// A later change of the shop default does not move an item already in the cart.
	totals := cart.Totals(shopWithTax(true, "20"))
	assert.Equal(t, "4.00", totals.TaxTotal.StringFixed(2))
}

func TestTotalsWithTaxDisabled(t *testing.T) {
	shop := shopWithTax(false, "5")
	product := domain.Product{ID: "1", Name: "Latte", Price: dec("99.99"), Stock: 10, TaxRate: rate("12")}

	cart, err := Cart{}.AddItem(product, 3, shop)
	require.NoError(t, err)

	totals := cart.Totals(shop)
	assert.True(t, totals.TaxTotal.IsZero())
	assert.Equal(t, "299.97", totals.GrandTotal.StringFixed(2))
}

func TestTotalsRoundToCents(t *testing.T) {
	shop := shopWithTax(true, "5")
	items := []domain.CartItem{
		{Product: domain.Product{ID: "a", Price: dec("0.35"), TaxRate: rate("7")}, Qty: 3},
		{Product: domain.Product{ID: "b", Price: dec("1.99"), TaxRate: rate("12.5")}, Qty: 1},
	}

	totals := ComputeTotals(items, shop)

	// sub 1.05 + 1.99 = 3.04; tax 0.0735 + 0.24875 = 0.32225 -> 0.32
	assert.Equal(t, "3.04", totals.SubTotal.StringFixed(2))
	assert.Equal(t, "0.32", totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "3.36", totals.GrandTotal.StringFixed(2))
}

func TestSetItemQuantityUsesLiveCatalogStock(t *testing.T) {
	shop := shopWithTax(true, "5")
	product := domain.Product{ID: "1", Name: "Latte", Price: dec("100"), Stock: 5}
	cart, err := Cart{}.AddItem(product, 2, shop)
	require.NoError(t, err)

	tests := []struct {
		name    string
		qty     int
		wantErr error
		wantQty int
	}{
		{name: "within stock", qty: 5, wantQty: 5},
		{name: "above stock", qty: 6, wantErr: ErrInsufficientStock, wantQty: 2},
		{name: "zero", qty: 0, wantErr: ErrInvalidQuantity, wantQty: 2},
		{name: "negative", qty: -1, wantErr: ErrInvalidQuantity, wantQty: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cart.SetItemQuantity("1", tt.qty, Catalog{product})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantQty, got.Items[0].Qty)
		})
	}
}

func TestSetItemQuantityWithoutCatalogEntry(t *testing.T) {
	cart := Cart{Items: []domain.CartItem{{Product: domain.Product{ID: "gone"}, Qty: 1}}}

	got, err := cart.SetItemQuantity("gone", 40, Catalog{})

	require.NoError(t, err)
	assert.Equal(t, 40, got.Items[0].Qty)
}

func TestOverridesStayInCart(t *testing.T) {
	shop := shopWithTax(true, "5")
	product := domain.Product{ID: "1", Name: "Latte", Price: dec("100"), Stock: 5}
	catalog := Catalog{product}
	cart, err := Cart{}.AddItem(product, 1, shop)
	require.NoError(t, err)

	cart, err = cart.SetItemName("1", "Latte (oat)")
	require.NoError(t, err)
	cart, err = cart.SetItemPrice("1", dec("110"))
	require.NoError(t, err)

	_, err = cart.SetItemPrice("1", dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	assert.Equal(t, "Latte (oat)", cart.Items[0].Name)
	assert.True(t, cart.Items[0].Price.Equal(dec("110")))
	assert.Equal(t, "Latte", catalog[0].Name)
	assert.True(t, catalog[0].Price.Equal(dec("100")))
}

func TestRemoveItem(t *testing.T) {
	cart := Cart{Items: []domain.CartItem{
		{Product: domain.Product{ID: "a"}, Qty: 1},
		{Product: domain.Product{ID: "b"}, Qty: 1},
	}}

	got, err := cart.RemoveItem("a")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "b", got.Items[0].ID)
	assert.Len(t, cart.Items, 2)

	_, err = got.RemoveItem("a")
	assert.ErrorIs(t, err, ErrItemNotInCart)

	empty, err := got.RemoveItem("b")
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, empty.Phase())
}

func TestSetItemNameIgnoresBlank(t *testing.T) {
	cart := Cart{Items: []domain.CartItem{{Product: domain.Product{ID: "a", Name: "Tea"}, Qty: 1}}}

	got, err := cart.SetItemName("a", "   ")

	require.NoError(t, err)
	assert.Equal(t, "Tea", got.Items[0].Name)
}
