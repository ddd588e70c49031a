// Package receipt builds the printable receipt of an order. A single Layout
// feeds every output format so print, PDF and thermal copies carry the same
// content.
package receipt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"warungpos/backend/internal/domain"
)

const dateLayout = "2006-01-02 15:04:05"

type Line struct {
	No     int
	Name   string
	Qty    int
	Amount string
}

type Layout struct {
	ShopName      string
	Address       string
	Phone         string
	Logo          string
	OrderID       string
	Date          string
	CustomerName  string
	CustomerPhone string
	Lines         []Line
	SubTotal      string
	TaxEnabled    bool
	TaxTotal      string
	Total         string
	PaymentQR     string
	Footer        string
	PoweredBy     string
}

// HasCustomer reports whether the customer block is printed.
func (l Layout) HasCustomer() bool {
	return l.CustomerName != "" || l.CustomerPhone != ""
}

// Build lays out order for shop. Dates are shown in loc. The subtotal is the
// order total less its tax, so the printed figures always add up.
func Build(order domain.Order, shop domain.ShopDetails, loc *time.Location) Layout {
	if loc == nil {
		loc = time.Local
	}
	shop = shop.WithDefaults()

	layout := Layout{
		ShopName:   shop.Name,
		Address:    shop.Address,
		Phone:      shop.Phone,
		OrderID:    order.ID,
		Date:       order.Date.In(loc).Format(dateLayout),
		Lines:      make([]Line, 0, len(order.Items)),
		SubTotal:   domain.FormatMoney(order.Total.Sub(order.TaxTotal)),
		TaxEnabled: shop.IsTaxEnabled(),
		TaxTotal:   domain.FormatMoney(order.TaxTotal),
		Total:      domain.FormatMoney(order.Total),
		Footer:     shop.FooterMessage,
		PoweredBy:  shop.PoweredBy(),
	}
	if !layout.TaxEnabled {
		layout.TaxTotal = domain.FormatMoney(decimal.Zero)
	}
	if shop.LogoVisible() {
		layout.Logo = shop.Logo
	}
	if shop.PaymentQRVisible() {
		layout.PaymentQR = shop.PaymentQRCode
	}
	if order.Customer != nil {
		layout.CustomerName = strings.TrimSpace(order.Customer.Name)
		layout.CustomerPhone = strings.TrimSpace(order.Customer.Phone)
	}
	for i, item := range order.Items {
		layout.Lines = append(layout.Lines, Line{
			No:     i + 1,
			Name:   item.Name,
			Qty:    item.Qty,
			Amount: domain.FormatMoney(item.LineTotal()),
		})
	}
	return layout
}
