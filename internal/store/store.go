package store

import (
	"context"
	"errors"

	"warungpos/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)

// Collections is the shape shared by the local and remote stores. Saves are
// upserts keyed by id; GetShopDetails returns ErrNotFound until the first save.
type Collections interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetShopDetails(ctx context.Context) (*domain.ShopDetails, error)

	SaveProduct(ctx context.Context, product domain.Product) error
	SaveProducts(ctx context.Context, products []domain.Product) error
	SaveOrder(ctx context.Context, order domain.Order) error
	SaveCustomer(ctx context.Context, customer domain.Customer) error
	SaveShopDetails(ctx context.Context, details domain.ShopDetails) error

	DeleteProduct(ctx context.Context, id string) error
	DeleteCustomer(ctx context.Context, id string) error

	ClearProducts(ctx context.Context) error
	ClearOrders(ctx context.Context) error
	ClearCustomers(ctx context.Context) error
	ClearShopDetails(ctx context.Context) error

	// CommitOrder writes the order and the adjusted products as one unit.
	CommitOrder(ctx context.Context, order domain.Order, products []domain.Product) error
	// RemoveOrder deletes the order and writes the products whose stock it
	// gave back, as one unit.
	RemoveOrder(ctx context.Context, id string, products []domain.Product) error
}

// Local is the durable on-device store. Its writes must succeed for an
// operation to count as done.
type Local interface {
	Collections
}

// Remote is the optional shared store. Everything it does is best-effort.
type Remote interface {
	Collections
	// MaxOrderID returns the largest numeric order id, 0 when none exist.
	MaxOrderID(ctx context.Context) (int64, error)
	// Listen streams change events until ctx is cancelled.
	Listen(ctx context.Context) (<-chan domain.ChangeEvent, error)
}
