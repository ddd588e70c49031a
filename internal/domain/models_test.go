package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopDetailsWithDefaultsFillsAbsentFields(t *testing.T) {
	loaded := ShopDetails{Name: "Kopi Senja", FooterMessage: "See you"}

	filled := loaded.WithDefaults()

	assert.Equal(t, "Kopi Senja", filled.Name)
	assert.Equal(t, "See you", filled.FooterMessage)
	assert.True(t, filled.IsTaxEnabled())
	assert.True(t, filled.TaxRate().Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "Powered by SmartPOS", filled.PoweredBy())
	assert.Equal(t, DefaultAIDescriptionPrompt, filled.DescriptionPrompt())
}

func TestShopDetailsWithDefaultsKeepsExplicitFalse(t *testing.T) {
	off := false
	filled := ShopDetails{Name: "x", TaxEnabled: &off}.WithDefaults()

	assert.False(t, filled.IsTaxEnabled())
}

func TestShopDetailsWithDefaultsOnEmptyRecord(t *testing.T) {
	filled := ShopDetails{}.WithDefaults()

	assert.Equal(t, DefaultShopDetails().Name, filled.Name)
	assert.Equal(t, DefaultShopDetails().Address, filled.Address)
}

func TestCartItemGroupKey(t *testing.T) {
	plain := CartItem{Product: Product{Name: "Kayak"}}
	rental := CartItem{Product: Product{Name: "Kayak", RentalDuration: "2hr"}}

	assert.Equal(t, "Kayak", plain.GroupKey())
	assert.Equal(t, "Kayak (2hr)", rental.GroupKey())
}

func TestCartItemJSONIsFlat(t *testing.T) {
	item := CartItem{Product: Product{ID: "1", Name: "Latte", Price: decimal.RequireFromString("12.50")}, Qty: 2}

	raw, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "1", decoded["id"])
	assert.Equal(t, 12.5, decoded["price"])
	assert.Equal(t, float64(2), decoded["qty"])
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "10.01", RoundMoney(decimal.RequireFromString("10.005")).StringFixed(2))
	assert.Equal(t, "-10.01", RoundMoney(decimal.RequireFromString("-10.005")).StringFixed(2))
}
