// Package datastore dual-writes every collection to the local store and,
// when configured, to the remote store. Local writes decide success; remote
// writes and reads degrade to local-only and are logged.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/imaging"
	"warungpos/backend/internal/metrics"
	"warungpos/backend/internal/store"
)

const DefaultRemoteTimeout = 5 * time.Second

type Adapter struct {
	local         store.Local
	remote        store.Remote
	images        imaging.Compressor
	metrics       *metrics.Metrics
	log           *zap.Logger
	remoteTimeout time.Duration
}

// New builds an adapter. remote may be nil for local-only operation.
func New(local store.Local, remote store.Remote, images imaging.Compressor, m *metrics.Metrics, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		local:         local,
		remote:        remote,
		images:        images,
		metrics:       m,
		log:           log.Named("datastore"),
		remoteTimeout: DefaultRemoteTimeout,
	}
}

func (a *Adapter) IsRemoteConfigured() bool {
	return a.remote != nil
}

func (a *Adapter) Products(ctx context.Context) ([]domain.Product, error) {
	return readPreferRemote(ctx, a, domain.CollectionProducts, func(ctx context.Context, s store.Collections) ([]domain.Product, error) {
		return s.ListProducts(ctx)
	})
}

func (a *Adapter) Orders(ctx context.Context) ([]domain.Order, error) {
	return readPreferRemote(ctx, a, domain.CollectionOrders, func(ctx context.Context, s store.Collections) ([]domain.Order, error) {
		return s.ListOrders(ctx)
	})
}

func (a *Adapter) Customers(ctx context.Context) ([]domain.Customer, error) {
	return readPreferRemote(ctx, a, domain.CollectionCustomers, func(ctx context.Context, s store.Collections) ([]domain.Customer, error) {
		return s.ListCustomers(ctx)
	})
}

// ShopDetails returns store.ErrNotFound when neither store has a record.
func (a *Adapter) ShopDetails(ctx context.Context) (*domain.ShopDetails, error) {
	return readPreferRemote(ctx, a, domain.CollectionSettings, func(ctx context.Context, s store.Collections) (*domain.ShopDetails, error) {
		return s.GetShopDetails(ctx)
	})
}

// LocalOrders reads the local ledger only.
func (a *Adapter) LocalOrders(ctx context.Context) ([]domain.Order, error) {
	return a.local.ListOrders(ctx)
}

// RemoteMaxOrderID returns an error wrapping store.ErrRemoteUnavailable when
// there is no remote or it cannot answer.
func (a *Adapter) RemoteMaxOrderID(ctx context.Context) (int64, error) {
	if a.remote == nil {
		return 0, store.ErrRemoteUnavailable
	}
	rctx, cancel := context.WithTimeout(ctx, a.remoteTimeout)
	defer cancel()

	id, err := a.remote.MaxOrderID(rctx)
	if err != nil {
		a.remoteFailed("max_id", domain.CollectionOrders, err)
		return 0, fmt.Errorf("%w: %v", store.ErrRemoteUnavailable, err)
	}
	return id, nil
}

// SaveProduct returns the product as stored, with its image downscaled.
func (a *Adapter) SaveProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	product.Image = a.compress(product.Image, "product", product.ID)
	err := a.writeThrough(ctx, domain.CollectionProducts, "save", func(ctx context.Context, s store.Collections) error {
		return s.SaveProduct(ctx, product)
	})
	return product, err
}

// SaveProducts writes a batch as is. Callers pass products already stored
// once, or run them through PrepareProducts first.
func (a *Adapter) SaveProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	return a.writeThrough(ctx, domain.CollectionProducts, "save_batch", func(ctx context.Context, s store.Collections) error {
		return s.SaveProducts(ctx, products)
	})
}

// PrepareProducts downscales the images of a batch before it is saved.
func (a *Adapter) PrepareProducts(products []domain.Product) []domain.Product {
	prepared := make([]domain.Product, len(products))
	for i, p := range products {
		p.Image = a.compress(p.Image, "product", p.ID)
		prepared[i] = p
	}
	return prepared
}

func (a *Adapter) SaveOrder(ctx context.Context, order domain.Order) error {
	return a.writeThrough(ctx, domain.CollectionOrders, "save", func(ctx context.Context, s store.Collections) error {
		return s.SaveOrder(ctx, order)
	})
}

// CommitOrder writes the order together with its stock changes.
func (a *Adapter) CommitOrder(ctx context.Context, order domain.Order, products []domain.Product) error {
	return a.writeThrough(ctx, domain.CollectionOrders, "commit", func(ctx context.Context, s store.Collections) error {
		return s.CommitOrder(ctx, order, products)
	})
}

func (a *Adapter) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	return a.writeThrough(ctx, domain.CollectionCustomers, "save", func(ctx context.Context, s store.Collections) error {
		return s.SaveCustomer(ctx, customer)
	})
}

// SaveShopDetails returns the details as stored, with logo and payment QR
// downscaled.
func (a *Adapter) SaveShopDetails(ctx context.Context, details domain.ShopDetails) (domain.ShopDetails, error) {
	details.Logo = a.compress(details.Logo, "logo", domain.ShopDetailsKey)
	details.PaymentQRCode = a.compress(details.PaymentQRCode, "payment_qr", domain.ShopDetailsKey)
	err := a.writeThrough(ctx, domain.CollectionSettings, "save", func(ctx context.Context, s store.Collections) error {
		return s.SaveShopDetails(ctx, details)
	})
	return details, err
}

func (a *Adapter) DeleteProduct(ctx context.Context, id string) error {
	return a.writeThrough(ctx, domain.CollectionProducts, "delete", func(ctx context.Context, s store.Collections) error {
		return s.DeleteProduct(ctx, id)
	})
}

// RemoveOrder deletes an order together with its stock restoration.
func (a *Adapter) RemoveOrder(ctx context.Context, id string, products []domain.Product) error {
	return a.writeThrough(ctx, domain.CollectionOrders, "remove", func(ctx context.Context, s store.Collections) error {
		return s.RemoveOrder(ctx, id, products)
	})
}

func (a *Adapter) DeleteCustomer(ctx context.Context, id string) error {
	return a.writeThrough(ctx, domain.CollectionCustomers, "delete", func(ctx context.Context, s store.Collections) error {
		return s.DeleteCustomer(ctx, id)
	})
}

func (a *Adapter) ClearProducts(ctx context.Context) error {
	return a.writeThrough(ctx, domain.CollectionProducts, "clear", func(ctx context.Context, s store.Collections) error {
		return s.ClearProducts(ctx)
	})
}

func (a *Adapter) ClearOrders(ctx context.Context) error {
	return a.writeThrough(ctx, domain.CollectionOrders, "clear", func(ctx context.Context, s store.Collections) error {
		return s.ClearOrders(ctx)
	})
}

func (a *Adapter) ClearCustomers(ctx context.Context) error {
	return a.writeThrough(ctx, domain.CollectionCustomers, "clear", func(ctx context.Context, s store.Collections) error {
		return s.ClearCustomers(ctx)
	})
}

// ResetAll wipes every collection, shop details included. It stops at the
// first local failure.
func (a *Adapter) ResetAll(ctx context.Context) error {
	steps := []func(context.Context) error{
		a.ClearProducts,
		a.ClearOrders,
		a.ClearCustomers,
		func(ctx context.Context) error {
			return a.writeThrough(ctx, domain.CollectionSettings, "clear", func(ctx context.Context, s store.Collections) error {
				return s.ClearShopDetails(ctx)
			})
		},
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	a.log.Info("all collections reset")
	return nil
}

func readPreferRemote[T any](ctx context.Context, a *Adapter, collection domain.Collection, read func(context.Context, store.Collections) (T, error)) (T, error) {
	if a.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, a.remoteTimeout)
		value, err := read(rctx, a.remote)
		cancel()
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			a.remoteFailed("read", collection, err)
		}
	}
	return read(ctx, a.local)
}

func (a *Adapter) writeThrough(ctx context.Context, collection domain.Collection, op string, write func(context.Context, store.Collections) error) error {
	if err := write(ctx, a.local); err != nil {
		a.log.Error("local write failed",
			zap.String("collection", string(collection)),
			zap.String("op", op),
			zap.Error(err),
		)
		return fmt.Errorf("local %s %s: %w", op, collection, err)
	}
	if a.remote == nil {
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, a.remoteTimeout)
	defer cancel()
	if err := write(rctx, a.remote); err != nil {
		a.remoteFailed(op, collection, err)
	}
	return nil
}

func (a *Adapter) remoteFailed(op string, collection domain.Collection, err error) {
	a.metrics.RemoteFailure(op, string(collection))
	a.log.Warn("remote store degraded to local",
		zap.String("collection", string(collection)),
		zap.String("op", op),
		zap.Error(fmt.Errorf("%w: %v", store.ErrRemoteUnavailable, err)),
	)
}

func (a *Adapter) compress(payload string, field string, id string) string {
	out, err := a.images.Compress(payload)
	if err != nil {
		a.metrics.ImageFailure()
		a.log.Warn("image stored uncompressed",
			zap.String("field", field),
			zap.String("id", id),
			zap.Error(err),
		)
	}
	return out
}
