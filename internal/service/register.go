package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"warungpos/backend/internal/billing"
	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/ledger"
	"warungpos/backend/internal/store"
)

// CartView is the cart as the register screen shows it.
type CartView struct {
	billing.Cart
	Phase  billing.Phase `json:"phase"`
	Totals domain.Totals `json:"totals"`
}

func (s *Service) viewLocked() CartView {
	return CartView{
		Cart:   s.state.Cart,
		Phase:  s.state.Cart.Phase(),
		Totals: s.state.Cart.Totals(s.state.Shop),
	}
}

func (s *Service) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Service) AddItem(productID string, qty int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.state.Catalog.Find(productID)
	if !ok {
		return s.viewLocked(), fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	cart, err := s.state.Cart.AddItem(product, qty, s.state.Shop)
	if err != nil {
		return s.viewLocked(), err
	}
	s.state.Cart = cart
	return s.viewLocked(), nil
}

// SetItemQuantity changes a line's quantity. A refused change leaves the
// cart as it was and is reported as a warning.
func (s *Service) SetItemQuantity(itemID string, qty int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.state.Cart.SetItemQuantity(itemID, qty, s.state.Catalog)
	if err != nil {
		s.log.Warn("quantity change refused", zap.String("item_id", itemID), zap.Int("qty", qty), zap.Error(err))
		return s.viewLocked(), err
	}
	s.state.Cart = cart
	return s.viewLocked(), nil
}

func (s *Service) SetItemName(itemID string, name string) (CartView, error) {
	return s.updateCart(func(c billing.Cart) (billing.Cart, error) {
		return c.SetItemName(itemID, name)
	})
}

func (s *Service) SetItemPrice(itemID string, price decimal.Decimal) (CartView, error) {
	return s.updateCart(func(c billing.Cart) (billing.Cart, error) {
		return c.SetItemPrice(itemID, price)
	})
}

func (s *Service) RemoveItem(itemID string) (CartView, error) {
	return s.updateCart(func(c billing.Cart) (billing.Cart, error) {
		return c.RemoveItem(itemID)
	})
}

func (s *Service) SetCustomer(info domain.CustomerInfo) CartView {
	view, _ := s.updateCart(func(c billing.Cart) (billing.Cart, error) {
		return c.SetCustomer(info), nil
	})
	return view
}

func (s *Service) updateCart(op func(billing.Cart) (billing.Cart, error)) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := op(s.state.Cart)
	if err != nil {
		return s.viewLocked(), err
	}
	s.state.Cart = cart
	return s.viewLocked(), nil
}

// Checkout commits the cart. On a persist failure the cart survives so the
// operator can retry.
func (s *Service) Checkout(ctx context.Context, info *domain.CustomerInfo) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, order, err := s.core.Checkout(ctx, s.state, info)
	s.state = next
	if err != nil {
		var persistErr *billing.CheckoutPersistError
		if errors.As(err, &persistErr) {
			s.metrics.Checkout("persist_error", 0)
		} else {
			s.metrics.Checkout("rejected", 0)
		}
		return domain.Order{}, err
	}

	s.orders = slices.DeleteFunc(slices.Clone(s.orders), func(o domain.Order) bool { return o.ID == order.ID })
	s.orders = sortOrders(append(s.orders, order))
	s.metrics.Checkout("ok", order.Total.InexactFloat64())
	return order, nil
}

// BeginEdit loads a committed order into the cart for changes.
func (s *Service) BeginEdit(ctx context.Context, orderID string) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.core.BeginEdit(ctx, s.state, orderID)
	if err != nil {
		return s.viewLocked(), err
	}
	s.state = next
	return s.viewLocked(), nil
}

// CancelCart empties the cart. When an order was being edited its stock is
// handled as configured by ReapplyStockOnCancel.
func (s *Service) CancelCart(ctx context.Context) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.core.CancelEdit(ctx, s.state, s.opts.ReapplyStockOnCancel)
	if err != nil {
		return s.viewLocked(), err
	}
	s.state = next
	return s.viewLocked(), nil
}

func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.core.DeleteOrder(ctx, s.state, orderID)
	if err != nil {
		return err
	}
	s.state = next
	s.orders = slices.DeleteFunc(slices.Clone(s.orders), func(o domain.Order) bool { return o.ID == orderID })
	return nil
}

func (s *Service) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Clear(ctx); err != nil {
		return err
	}
	s.orders = nil
	return nil
}

// Orders lists the history newest first, narrowed by q.
func (s *Service) Orders(q ledger.Query) []domain.Order {
	if q.Loc == nil {
		q.Loc = s.opts.Location
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Filter(s.orders, q)
}

func (s *Service) Order(ctx context.Context, id string) (domain.Order, error) {
	s.mu.Lock()
	for _, o := range s.orders {
		if o.ID == id {
			s.mu.Unlock()
			return o, nil
		}
	}
	s.mu.Unlock()
	return s.ledger.Get(ctx, id)
}
