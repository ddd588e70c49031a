package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"warungpos/backend/internal/assist"
	"warungpos/backend/internal/billing"
	"warungpos/backend/internal/datastore"
	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/ledger"
	"warungpos/backend/internal/metrics"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/xid"
)

var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

type Options struct {
	Location             *time.Location
	ReapplyStockOnCancel bool
	SeedDemoProducts     bool
}

// Service holds the register's in-memory state and routes every operator
// action through it. Actions are serialized.
type Service struct {
	mu     sync.Mutex
	state  billing.State
	orders []domain.Order

	data    *datastore.Adapter
	ledger  *ledger.Ledger
	core    *billing.Core
	assist  *assist.Assistant
	metrics *metrics.Metrics
	log     *zap.Logger
	opts    Options
	newID   func(prefix string) string
}

func New(data *datastore.Adapter, assistant *assist.Assistant, m *metrics.Metrics, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	books := ledger.New(data, log)
	return &Service{
		state:   billing.State{Shop: domain.DefaultShopDetails()},
		data:    data,
		ledger:  books,
		core:    billing.NewCore(books, data, data, log),
		assist:  assistant,
		metrics: m,
		log:     log.Named("service"),
		opts:    opts,
		newID:   xid.New,
	}
}

func (s *Service) RemoteConfigured() bool {
	return s.data.IsRemoteConfigured()
}

func (s *Service) Location() *time.Location {
	return s.opts.Location
}

// Init loads every collection, writes default shop details when none are
// stored and seeds the demo catalog on a fresh local-only install.
func (s *Service) Init(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.data.ShopDetails(ctx); errors.Is(err, store.ErrNotFound) {
		stored, err := s.data.SaveShopDetails(ctx, domain.DefaultShopDetails())
		if err != nil {
			return fmt.Errorf("init shop details: %w", err)
		}
		s.state.Shop = stored.WithDefaults()
		s.log.Info("default shop details written")
	}

	if s.opts.SeedDemoProducts && len(s.state.Catalog) == 0 && !s.data.IsRemoteConfigured() {
		demo := s.data.PrepareProducts(store.DemoProducts())
		if err := s.data.SaveProducts(ctx, demo); err != nil {
			return fmt.Errorf("seed demo products: %w", err)
		}
		s.state.Catalog = demo
		s.log.Info("demo catalog seeded", zap.Int("products", len(demo)))
	}
	return nil
}

type snapshot struct {
	products  []domain.Product
	orders    []domain.Order
	customers []domain.Customer
	shop      *domain.ShopDetails
}

// Refresh reloads every collection concurrently and swaps them in at once.
func (s *Service) Refresh(ctx context.Context) error {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.products, err = s.data.Products(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.orders, err = s.data.Orders(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.customers, err = s.data.Customers(gctx)
		return err
	})
	g.Go(func() error {
		shop, err := s.data.ShopDetails(gctx)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		snap.shop = shop
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Catalog = snap.products
	s.state.Customers = snap.customers
	s.orders = sortOrders(snap.orders)
	if snap.shop != nil {
		s.state.Shop = snap.shop.WithDefaults()
	}
	return nil
}

// RefreshCollection reloads one collection after a change notification.
func (s *Service) RefreshCollection(ctx context.Context, c domain.Collection) error {
	switch c {
	case domain.CollectionProducts:
		products, err := s.data.Products(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.state.Catalog = products
		s.mu.Unlock()
	case domain.CollectionOrders:
		orders, err := s.data.Orders(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.orders = sortOrders(orders)
		s.mu.Unlock()
	case domain.CollectionCustomers:
		customers, err := s.data.Customers(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.state.Customers = customers
		s.mu.Unlock()
	case domain.CollectionSettings:
		shop, err := s.data.ShopDetails(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.state.Shop = shop.WithDefaults()
		s.mu.Unlock()
	default:
		return invalid("unknown collection %q", c)
	}
	return nil
}

// Watch applies remote change events until the subscription ends or ctx is
// cancelled. Cart snapshots are never touched by a refresh.
func (s *Service) Watch(ctx context.Context, sub *datastore.Subscription) {
	if sub == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := s.RefreshCollection(ctx, ev.Collection); err != nil {
				s.log.Warn("refresh after change event failed",
					zap.String("collection", string(ev.Collection)),
					zap.Error(err),
				)
			}
		}
	}
}

// ResetAll wipes every collection, restores default shop details and empties
// the cart.
func (s *Service) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.data.ResetAll(ctx); err != nil {
		return err
	}
	stored, err := s.data.SaveShopDetails(ctx, domain.DefaultShopDetails())
	if err != nil {
		return err
	}
	s.state = billing.State{Shop: stored.WithDefaults()}
	s.orders = nil
	s.log.Warn("application data reset")
	return nil
}

func (s *Service) ShopDetails() domain.ShopDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Shop
}

func (s *Service) UpdateShopDetails(ctx context.Context, details domain.ShopDetails) (domain.ShopDetails, error) {
	if details.DefaultTaxRate != nil && details.DefaultTaxRate.IsNegative() {
		return domain.ShopDetails{}, invalid("default tax rate must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.data.SaveShopDetails(ctx, details)
	if err != nil {
		return domain.ShopDetails{}, err
	}
	s.state.Shop = stored.WithDefaults()
	return s.state.Shop, nil
}

// sortOrders returns the orders newest first.
func sortOrders(orders []domain.Order) []domain.Order {
	out := slices.Clone(orders)
	slices.SortStableFunc(out, func(a, b domain.Order) int {
		return b.Date.Compare(a.Date)
	})
	return out
}
