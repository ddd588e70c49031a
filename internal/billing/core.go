package billing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/xid"
)

// Ledger is the order side the billing core commits to.
type Ledger interface {
	NextOrderID(ctx context.Context) (string, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	Commit(ctx context.Context, order domain.Order, products []domain.Product) error
	Remove(ctx context.Context, id string, products []domain.Product) error
}

// Inventory persists product stock changes made outside a commit.
type Inventory interface {
	SaveProducts(ctx context.Context, products []domain.Product) error
}

type CustomerWriter interface {
	SaveCustomer(ctx context.Context, customer domain.Customer) error
}

// State is everything the billing operations read and produce. Operations
// take a State and return the next one; the caller decides when to adopt it.
type State struct {
	Cart      Cart
	Catalog   Catalog
	Customers []domain.Customer
	Shop      domain.ShopDetails
}

type Core struct {
	ledger    Ledger
	inventory Inventory
	customers CustomerWriter
	log       *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewCore(ledger Ledger, inventory Inventory, customers CustomerWriter, log *zap.Logger) *Core {
	if log == nil {
		log = zap.NewNop()
	}
	return &Core{
		ledger:    ledger,
		inventory: inventory,
		customers: customers,
		log:       log.Named("billing"),
		now:       time.Now,
		newID:     func() string { return xid.New("cus") },
	}
}

// Checkout turns the cart into an order, commits it together with the stock
// decrements and returns the cleared state. info overrides the customer bound
// to the cart when given.
//
// If the order cannot be persisted the returned error is a
// *CheckoutPersistError and the cart in the returned state is unchanged.
func (c *Core) Checkout(ctx context.Context, state State, info *domain.CustomerInfo) (State, domain.Order, error) {
	if len(state.Cart.Items) == 0 {
		return state, domain.Order{}, ErrEmptyCart
	}

	next := state
	customer := state.Cart.Customer
	if info != nil {
		customer = *info
	}
	customer = customer.Normalize()
	next.Customers = c.upsertCustomer(ctx, state.Customers, customer)

	orderID := state.Cart.EditingOrderID
	if orderID == "" {
		id, err := c.ledger.NextOrderID(ctx)
		if err != nil {
			return next, domain.Order{}, &CheckoutPersistError{Err: fmt.Errorf("allocate order id: %w", err)}
		}
		orderID = id
	}

	totals := ComputeTotals(state.Cart.Items, state.Shop)
	order := domain.Order{
		ID:       orderID,
		Date:     c.now().UTC(),
		Items:    slices.Clone(state.Cart.Items),
		Total:    totals.GrandTotal,
		TaxTotal: totals.TaxTotal,
	}
	if !customer.IsZero() {
		order.Customer = &customer
	}

	catalog, changed := adjustStock(state.Catalog, order.Items, -1)
	if err := c.ledger.Commit(ctx, order, changed); err != nil {
		c.log.Error("order commit failed", zap.String("order_id", orderID), zap.Error(err))
		return next, domain.Order{}, &CheckoutPersistError{OrderID: orderID, Err: err}
	}

	next.Catalog = catalog
	next.Cart = Cart{}
	c.log.Info("order committed",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Bool("edited", state.Cart.EditingOrderID != ""),
	)
	return next, order, nil
}

// BeginEdit puts the stock of a committed order back on the shelf and loads
// the order into the cart, bound to its id. A cart that is being built is
// replaced; a cart bound to a different order is refused.
func (c *Core) BeginEdit(ctx context.Context, state State, orderID string) (State, error) {
	if bound := state.Cart.EditingOrderID; bound != "" {
		if bound == orderID {
			return state, nil
		}
		return state, fmt.Errorf("%w: order %s", ErrEditInProgress, bound)
	}

	order, err := c.ledger.Get(ctx, orderID)
	if err != nil {
		return state, err
	}

	catalog, changed := adjustStock(state.Catalog, order.Items, +1)
	if err := c.inventory.SaveProducts(ctx, changed); err != nil {
		return state, fmt.Errorf("restore stock for order %s: %w", order.ID, err)
	}

	next := state
	next.Catalog = catalog
	next.Cart = Cart{
		Items:          slices.Clone(order.Items),
		EditingOrderID: order.ID,
	}
	if order.Customer != nil {
		next.Cart.Customer = *order.Customer
	}
	return next, nil
}

// CancelEdit empties the cart and drops any bound order. Stock restored by
// BeginEdit stays restored unless reapplyStock is set, in which case the
// stored order's quantities are deducted again.
func (c *Core) CancelEdit(ctx context.Context, state State, reapplyStock bool) (State, error) {
	next := state
	bound := state.Cart.EditingOrderID
	next.Cart = Cart{}
	if bound == "" || !reapplyStock {
		if bound != "" {
			c.log.Warn("edit cancelled; restored stock left on shelf", zap.String("order_id", bound))
		}
		return next, nil
	}

	order, err := c.ledger.Get(ctx, bound)
	if err != nil {
		return state, err
	}
	catalog, changed := adjustStock(state.Catalog, order.Items, -1)
	if err := c.inventory.SaveProducts(ctx, changed); err != nil {
		return state, fmt.Errorf("re-deduct stock for order %s: %w", bound, err)
	}
	next.Catalog = catalog
	return next, nil
}

// DeleteOrder removes the order from the ledger and restores its stock in
// the same write. An order that is open for editing has already been restored
// and must be cancelled first.
func (c *Core) DeleteOrder(ctx context.Context, state State, orderID string) (State, error) {
	if state.Cart.EditingOrderID == orderID {
		return state, fmt.Errorf("%w: cancel the edit of order %s first", ErrEditInProgress, orderID)
	}

	order, err := c.ledger.Get(ctx, orderID)
	if err != nil {
		return state, err
	}

	catalog, changed := adjustStock(state.Catalog, order.Items, +1)
	if err := c.ledger.Remove(ctx, orderID, changed); err != nil {
		return state, fmt.Errorf("delete order %s: %w", orderID, err)
	}

	next := state
	next.Catalog = catalog
	return next, nil
}

func (c *Core) upsertCustomer(ctx context.Context, customers []domain.Customer, info domain.CustomerInfo) []domain.Customer {
	if info.Name == "" || info.Phone == "" {
		return customers
	}
	if _, exists := FindCustomerByPhone(customers, info.Phone); exists {
		return customers
	}

	customer := domain.Customer{ID: c.newID(), Name: info.Name, Phone: info.Phone, Place: info.Place}
	if err := c.customers.SaveCustomer(ctx, customer); err != nil {
		// Checkout proceeds without the contact record.
		c.log.Warn("customer auto-save failed", zap.String("phone", info.Phone), zap.Error(err))
		return customers
	}
	return append(slices.Clone(customers), customer)
}

// adjustStock applies sign*qty for every item to a copy of the catalog and
// returns the copy plus the products that changed. Stock never drops below
// zero. Items whose product is gone from the catalog are skipped.
func adjustStock(catalog Catalog, items []domain.CartItem, sign int) (Catalog, []domain.Product) {
	next := slices.Clone(catalog)
	touched := make([]int, 0, len(items))
	for _, item := range items {
		idx := next.index(item.ID)
		if idx < 0 {
			continue
		}
		next[idx].Stock = max(0, next[idx].Stock+sign*item.Qty)
		if !slices.Contains(touched, idx) {
			touched = append(touched, idx)
		}
	}

	changed := make([]domain.Product, 0, len(touched))
	for _, idx := range touched {
		changed = append(changed, next[idx])
	}
	return next, changed
}

// IsUserError reports whether err is an operator-actionable validation
// outcome rather than a storage failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrItemNotInCart) ||
		errors.Is(err, ErrInsufficientStock)
}
