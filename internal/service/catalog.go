package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"warungpos/backend/internal/billing"
	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

const customerSearchLimit = 5

type ProductInput struct {
	Name           string           `json:"name"`
	Price          decimal.Decimal  `json:"price"`
	Stock          int              `json:"stock"`
	Category       string           `json:"category"`
	Description    string           `json:"description"`
	Image          string           `json:"image"`
	TaxRate        *decimal.Decimal `json:"taxRate"`
	MinStockLevel  *int             `json:"minStockLevel"`
	RentalDuration string           `json:"rentalDuration"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("product name is required")
	}
	if in.Price.IsNegative() {
		return invalid("price must not be negative")
	}
	if in.Stock < 0 {
		return invalid("stock must not be negative")
	}
	if in.TaxRate != nil && in.TaxRate.IsNegative() {
		return invalid("tax rate must not be negative")
	}
	if in.MinStockLevel != nil && *in.MinStockLevel < 0 {
		return invalid("min stock level must not be negative")
	}
	return nil
}

func (in ProductInput) apply(p domain.Product) domain.Product {
	p.Name = strings.TrimSpace(in.Name)
	p.Price = domain.RoundMoney(in.Price)
	p.Stock = in.Stock
	p.Category = defaultString(strings.TrimSpace(in.Category), domain.DefaultCategory)
	p.Description = strings.TrimSpace(in.Description)
	p.Image = in.Image
	p.TaxRate = in.TaxRate
	p.MinStockLevel = domain.DefaultMinStockLevel
	if in.MinStockLevel != nil {
		p.MinStockLevel = *in.MinStockLevel
	}
	p.RentalDuration = strings.TrimSpace(in.RentalDuration)
	return p
}

func (s *Service) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Catalog)
}

// LowStockProducts lists products at or below their alert threshold.
func (s *Service) LowStockProducts() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Product, 0)
	for _, p := range s.state.Catalog {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) Product(id string) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state.Catalog.Find(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	return p, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.data.SaveProduct(ctx, in.apply(domain.Product{ID: s.newID("prd")}))
	if err != nil {
		return domain.Product{}, err
	}
	s.state.Catalog = append(slices.Clone(s.state.Catalog), stored)
	return stored, nil
}

// UpdateProduct replaces a catalog entry. Items already in the cart keep the
// snapshot taken when they were added.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.state.Catalog, func(p domain.Product) bool { return p.ID == id })
	if idx < 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	stored, err := s.data.SaveProduct(ctx, in.apply(s.state.Catalog[idx]))
	if err != nil {
		return domain.Product{}, err
	}
	catalog := slices.Clone(s.state.Catalog)
	catalog[idx] = stored
	s.state.Catalog = catalog
	return stored, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Catalog.Find(id); !ok {
		return fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	if err := s.data.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.state.Catalog = slices.DeleteFunc(slices.Clone(s.state.Catalog), func(p domain.Product) bool { return p.ID == id })
	return nil
}

func (s *Service) ClearProducts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.data.ClearProducts(ctx); err != nil {
		return err
	}
	s.state.Catalog = nil
	return nil
}

type CustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Place string `json:"place"`
}

func (in CustomerInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Phone) == "" {
		return invalid("customer name and phone are required")
	}
	return nil
}

func (s *Service) Customers() []domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Customers)
}

// SearchCustomers matches name or phone, case-insensitive, and returns at
// most five customers.
func (s *Service) SearchCustomers(query string) []domain.Customer {
	term := strings.ToLower(strings.TrimSpace(query))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Customer, 0, customerSearchLimit)
	if term == "" {
		return out
	}
	for _, c := range s.state.Customers {
		if strings.Contains(strings.ToLower(c.Name), term) || strings.Contains(c.Phone, term) {
			out = append(out, c)
			if len(out) == customerSearchLimit {
				break
			}
		}
	}
	return out
}

func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (domain.Customer, error) {
	if err := in.validate(); err != nil {
		return domain.Customer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	info := domain.CustomerInfo{Name: in.Name, Phone: in.Phone, Place: in.Place}.Normalize()
	if _, exists := billing.FindCustomerByPhone(s.state.Customers, info.Phone); exists {
		return domain.Customer{}, invalid("a customer with phone %s already exists", info.Phone)
	}
	customer := domain.Customer{ID: s.newID("cus"), Name: info.Name, Phone: info.Phone, Place: info.Place}
	if err := s.data.SaveCustomer(ctx, customer); err != nil {
		return domain.Customer{}, err
	}
	s.state.Customers = append(slices.Clone(s.state.Customers), customer)
	return customer, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, in CustomerInput) (domain.Customer, error) {
	if err := in.validate(); err != nil {
		return domain.Customer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.state.Customers, func(c domain.Customer) bool { return c.ID == id })
	if idx < 0 {
		return domain.Customer{}, fmt.Errorf("customer %s: %w", id, store.ErrNotFound)
	}
	info := domain.CustomerInfo{Name: in.Name, Phone: in.Phone, Place: in.Place}.Normalize()
	customer := domain.Customer{ID: id, Name: info.Name, Phone: info.Phone, Place: info.Place}
	if err := s.data.SaveCustomer(ctx, customer); err != nil {
		return domain.Customer{}, err
	}
	customers := slices.Clone(s.state.Customers)
	customers[idx] = customer
	s.state.Customers = customers
	return customer, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.ContainsFunc(s.state.Customers, func(c domain.Customer) bool { return c.ID == id }) {
		return fmt.Errorf("customer %s: %w", id, store.ErrNotFound)
	}
	if err := s.data.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.state.Customers = slices.DeleteFunc(slices.Clone(s.state.Customers), func(c domain.Customer) bool { return c.ID == id })
	return nil
}

func (s *Service) ClearCustomers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.data.ClearCustomers(ctx); err != nil {
		return err
	}
	s.state.Customers = nil
	return nil
}

func defaultString(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
