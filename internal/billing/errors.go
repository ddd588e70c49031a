package billing

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrItemNotInCart     = errors.New("item not in cart")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEditInProgress    = errors.New("another order is being edited")
)

// InsufficientStockError reports a reservation that would exceed stock. It
// matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int
	InCart    int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d of %s available in stock (requested %d, %d already in cart)", e.Available, e.Name, e.Requested, e.InCart)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// CheckoutPersistError means the order could not be written locally. The
// cart is left intact so the operator can retry.
type CheckoutPersistError struct {
	OrderID string
	Err     error
}

func (e *CheckoutPersistError) Error() string {
	return fmt.Sprintf("failed to save order %s: %v", e.OrderID, e.Err)
}

func (e *CheckoutPersistError) Unwrap() error {
	return e.Err
}
