package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

func init() {
	// Money travels as JSON numbers, matching what POS clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// TaxOn returns amount * rate / 100.
func TaxOn(amount decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// FormatMoney renders a value with two decimals for documents.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
