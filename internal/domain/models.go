package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultMinStockLevel = 5
	DefaultCategory      = "General"
	ShopDetailsKey       = "main_details"
)

// Categories offered by the catalog forms and the AI assist.
var Categories = []string{"Beverages", "Food", "Snacks", "Dessert"}

type Product struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Price          decimal.Decimal  `json:"price"`
	Stock          int              `json:"stock"`
	Category       string           `json:"category"`
	Description    string           `json:"description,omitempty"`
	Image          string           `json:"image,omitempty"`
	TaxRate        *decimal.Decimal `json:"taxRate,omitempty"`
	MinStockLevel  int              `json:"minStockLevel"`
	RentalDuration string           `json:"rentalDuration,omitempty"`
}

// LowStock reports whether the product is at or below its alert threshold.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStockLevel
}

// CartItem is a snapshot of a product taken when it entered the cart.
type CartItem struct {
	Product
	Qty int `json:"qty"`
}

// LineTotal is price * qty, tax excluded.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// GroupKey is the label analytics aggregates by.
func (i CartItem) GroupKey() string {
	if d := strings.TrimSpace(i.RentalDuration); d != "" {
		return i.Name + " (" + d + ")"
	}
	return i.Name
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Place string `json:"place,omitempty"`
}

func (c CustomerInfo) Normalize() CustomerInfo {
	return CustomerInfo{
		Name:  strings.TrimSpace(c.Name),
		Phone: strings.TrimSpace(c.Phone),
		Place: strings.TrimSpace(c.Place),
	}
}

// IsZero is true when neither name nor phone is set.
func (c CustomerInfo) IsZero() bool {
	return strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Phone) == ""
}

type Order struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Items    []CartItem      `json:"items"`
	Total    decimal.Decimal `json:"total"`
	TaxTotal decimal.Decimal `json:"taxTotal"`
	Customer *CustomerInfo   `json:"customer,omitempty"`
}

// SubTotal recomputes the tax-exclusive sum of the order lines.
func (o Order) SubTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Place string `json:"place,omitempty"`
}

type Totals struct {
	SubTotal   decimal.Decimal `json:"subTotal"`
	TaxTotal   decimal.Decimal `json:"taxTotal"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// Collection names a persisted collection.
type Collection string

const (
	CollectionProducts  Collection = "products"
	CollectionOrders    Collection = "orders"
	CollectionCustomers Collection = "customers"
	CollectionSettings  Collection = "settings"
)

func ParseCollection(raw string) (Collection, bool) {
	switch c := Collection(strings.ToLower(strings.TrimSpace(raw))); c {
	case CollectionProducts, CollectionOrders, CollectionCustomers, CollectionSettings:
		return c, true
	default:
		return "", false
	}
}

// ChangeEvent tells subscribers that a collection changed remotely.
type ChangeEvent struct {
	Collection Collection `json:"collection"`
	At         time.Time  `json:"at"`
}

type ItemBreakdown struct {
	Name    string          `json:"name"`
	Qty     int             `json:"qty"`
	Revenue decimal.Decimal `json:"revenue"`
}

type DailyBreakdown struct {
	Date       string          `json:"date"`
	OrderCount int             `json:"orderCount"`
	TotalSales decimal.Decimal `json:"totalSales"`
	AvgTicket  decimal.Decimal `json:"avgTicket"`
	Items      []ItemBreakdown `json:"items"`
}

type ProductSuggestion struct {
	Description    string          `json:"description"`
	SuggestedPrice decimal.Decimal `json:"suggestedPrice"`
	Category       string          `json:"category"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
