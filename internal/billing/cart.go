package billing

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"warungpos/backend/internal/domain"
)

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseBuilding Phase = "building"
	PhaseEditing  Phase = "editing"
)

// Cart is the in-flight transaction. Every operation returns a new Cart and
// leaves the receiver untouched, so a failed call never changes state.
type Cart struct {
	Items          []domain.CartItem   `json:"items"`
	Customer       domain.CustomerInfo `json:"customer"`
	EditingOrderID string              `json:"editingOrderId,omitempty"`
}

func (c Cart) Phase() Phase {
	switch {
	case c.EditingOrderID != "":
		return PhaseEditing
	case len(c.Items) > 0:
		return PhaseBuilding
	default:
		return PhaseIdle
	}
}

// QtyOf is the quantity of productID currently reserved by the cart.
func (c Cart) QtyOf(productID string) int {
	for _, item := range c.Items {
		if item.ID == productID {
			return item.Qty
		}
	}
	return 0
}

// AddItem reserves qty of product. The item's tax rate is resolved once,
// here, from the product or the shop default.
func (c Cart) AddItem(product domain.Product, qty int, shop domain.ShopDetails) (Cart, error) {
	if qty < 1 {
		return c, ErrInvalidQuantity
	}

	inCart := c.QtyOf(product.ID)
	if inCart+qty > product.Stock {
		return c, &InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Available: product.Stock,
			InCart:    inCart,
			Requested: qty,
		}
	}

	next := c.clone()
	if idx := next.indexOf(product.ID); idx >= 0 {
		next.Items[idx].Qty += qty
		return next, nil
	}

	snapshot := product
	rate := shop.TaxRate()
	if product.TaxRate != nil {
		rate = *product.TaxRate
	}
	snapshot.TaxRate = &rate
	next.Items = append(next.Items, domain.CartItem{Product: snapshot, Qty: qty})
	return next, nil
}

// SetItemQuantity checks newQty against live catalog stock, not against what
// the cart already holds. Products missing from the catalog are not limited.
func (c Cart) SetItemQuantity(itemID string, newQty int, catalog Catalog) (Cart, error) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return c, ErrItemNotInCart
	}
	if newQty < 1 {
		return c, ErrInvalidQuantity
	}
	if product, ok := catalog.Find(itemID); ok && newQty > product.Stock {
		return c, &InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Available: product.Stock,
			InCart:    c.Items[idx].Qty,
			Requested: newQty,
		}
	}

	next := c.clone()
	next.Items[idx].Qty = newQty
	return next, nil
}

// SetItemName overrides the display name for this cart only. A blank name
// leaves the item as it is.
func (c Cart) SetItemName(itemID string, name string) (Cart, error) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return c, ErrItemNotInCart
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return c, nil
	}
	next := c.clone()
	next.Items[idx].Name = name
	return next, nil
}

// SetItemPrice overrides the unit price for this cart only.
func (c Cart) SetItemPrice(itemID string, price decimal.Decimal) (Cart, error) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return c, ErrItemNotInCart
	}
	if price.IsNegative() {
		return c, ErrInvalidPrice
	}
	next := c.clone()
	next.Items[idx].Price = price
	return next, nil
}

func (c Cart) RemoveItem(itemID string) (Cart, error) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return c, ErrItemNotInCart
	}
	next := c.clone()
	next.Items = slices.Delete(next.Items, idx, idx+1)
	return next, nil
}

func (c Cart) SetCustomer(info domain.CustomerInfo) Cart {
	next := c.clone()
	next.Customer = info
	return next
}

func (c Cart) Totals(shop domain.ShopDetails) domain.Totals {
	return ComputeTotals(c.Items, shop)
}

func (c Cart) indexOf(itemID string) int {
	return slices.IndexFunc(c.Items, func(item domain.CartItem) bool {
		return item.ID == itemID
	})
}

func (c Cart) clone() Cart {
	c.Items = slices.Clone(c.Items)
	return c
}

// Catalog is a read view of the live product list.
type Catalog []domain.Product

func (c Catalog) Find(id string) (domain.Product, bool) {
	idx := c.index(id)
	if idx < 0 {
		return domain.Product{}, false
	}
	return c[idx], true
}

func (c Catalog) index(id string) int {
	return slices.IndexFunc(c, func(p domain.Product) bool {
		return p.ID == id
	})
}

// FindCustomerByPhone matches on the trimmed phone number.
func FindCustomerByPhone(customers []domain.Customer, phone string) (domain.Customer, bool) {
	phone = strings.TrimSpace(phone)
	for _, c := range customers {
		if strings.TrimSpace(c.Phone) == phone {
			return c, true
		}
	}
	return domain.Customer{}, false
}
