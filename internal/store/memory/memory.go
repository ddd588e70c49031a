package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

// Store keeps every collection in process memory. It backs tests and the
// LOCAL_STORE=memory mode.
type Store struct {
	mu        sync.RWMutex
	products  map[string]domain.Product
	orders    map[string]domain.Order
	customers map[string]domain.Customer
	shop      *domain.ShopDetails
}

func New() *Store {
	return &Store{
		products:  make(map[string]domain.Product),
		orders:    make(map[string]domain.Order),
		customers: make(map[string]domain.Customer),
	}
}

func NewSeeded() *Store {
	s := New()
	for _, p := range store.DemoProducts() {
		s.products[p.ID] = p
	}
	return s
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})
	return out, nil
}

func (s *Store) ListOrders(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, copyOrder(o))
	}
	slices.SortFunc(out, func(a, b domain.Order) int {
		return b.Date.Compare(a.Date)
	})
	return out, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Customer) int {
		return cmpString(a.Name, b.Name)
	})
	return out, nil
}

func (s *Store) GetShopDetails(_ context.Context) (*domain.ShopDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.shop == nil {
		return nil, store.ErrNotFound
	}
	copyShop := *s.shop
	return &copyShop, nil
}

func (s *Store) SaveProduct(_ context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
	return nil
}

func (s *Store) SaveProducts(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		s.products[p.ID] = p
	}
	return nil
}

func (s *Store) SaveOrder(_ context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = copyOrder(order)
	return nil
}

func (s *Store) SaveCustomer(_ context.Context, customer domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[customer.ID] = customer
	return nil
}

func (s *Store) SaveShopDetails(_ context.Context, details domain.ShopDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shop = &details
	return nil
}

func (s *Store) CommitOrder(_ context.Context, order domain.Order, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = copyOrder(order)
	for _, p := range products {
		s.products[p.ID] = p
	}
	return nil
}

func (s *Store) RemoveOrder(_ context.Context, id string, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	for _, p := range products {
		s.products[p.ID] = p
	}
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.customers, id)
	return nil
}

func (s *Store) ClearProducts(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.products)
	return nil
}

func (s *Store) ClearOrders(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.orders)
	return nil
}

func (s *Store) ClearCustomers(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.customers)
	return nil
}

func (s *Store) ClearShopDetails(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shop = nil
	return nil
}

func copyOrder(o domain.Order) domain.Order {
	o.Items = slices.Clone(o.Items)
	if o.Customer != nil {
		customer := *o.Customer
		o.Customer = &customer
	}
	return o
}

func cmpString(a string, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
