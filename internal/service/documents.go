package service

import (
	"context"
	"io"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"warungpos/backend/internal/analytics"
	"warungpos/backend/internal/billing"
	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/ledger"
	"warungpos/backend/internal/receipt"
	"warungpos/backend/internal/spreadsheet"
)

func (s *Service) Receipt(ctx context.Context, orderID string) (receipt.Layout, error) {
	order, err := s.Order(ctx, orderID)
	if err != nil {
		return receipt.Layout{}, err
	}
	return receipt.Build(order, s.ShopDetails(), s.opts.Location), nil
}

// Receipts lays out every order of the filtered history, newest first.
func (s *Service) Receipts(q ledger.Query) []receipt.Layout {
	orders := s.Orders(q)
	shop := s.ShopDetails()
	layouts := make([]receipt.Layout, 0, len(orders))
	for _, order := range orders {
		layouts = append(layouts, receipt.Build(order, shop, s.opts.Location))
	}
	return layouts
}

// DailyBreakdown aggregates the sales of one calendar day. An empty date
// means today.
func (s *Service) DailyBreakdown(date string) (domain.DailyBreakdown, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = analytics.Today(s.opts.Location)
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		return domain.DailyBreakdown{}, invalid("date must be YYYY-MM-DD")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.DailyBreakdown(s.orders, date, s.opts.Location), nil
}

// Export writes collection c as a workbook and returns it with its file name.
func (s *Service) Export(c domain.Collection) ([]byte, string, error) {
	s.mu.Lock()
	products := slices.Clone(s.state.Catalog)
	orders := slices.Clone(s.orders)
	customers := slices.Clone(s.state.Customers)
	s.mu.Unlock()

	var (
		data []byte
		err  error
	)
	switch c {
	case domain.CollectionProducts:
		data, err = spreadsheet.ProductsWorkbook(products)
	case domain.CollectionOrders:
		data, err = spreadsheet.OrdersWorkbook(orders, s.opts.Location)
	case domain.CollectionCustomers:
		data, err = spreadsheet.CustomersWorkbook(customers)
	default:
		return nil, "", invalid("collection %q cannot be exported", c)
	}
	if err != nil {
		return nil, "", err
	}
	return data, spreadsheet.ExportFileName(c, analytics.Today(s.opts.Location)), nil
}

// Import appends the rows of an uploaded sheet to products or customers.
// Customers whose phone is already known are skipped.
func (s *Service) Import(ctx context.Context, c domain.Collection, r io.Reader, filename string) (domain.ImportResult, error) {
	rows, err := spreadsheet.ReadRows(r, filename)
	if err != nil {
		return domain.ImportResult{}, invalid("unreadable import file: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch c {
	case domain.CollectionProducts:
		products, skipped := spreadsheet.Products(rows, s.state.Shop, func() string { return s.newID("prd") })
		products = s.data.PrepareProducts(products)
		if err := s.data.SaveProducts(ctx, products); err != nil {
			return domain.ImportResult{}, err
		}
		s.state.Catalog = append(slices.Clone(s.state.Catalog), products...)
		s.log.Info("products imported", zap.Int("imported", len(products)), zap.Int("skipped", skipped))
		return domain.ImportResult{Imported: len(products), Skipped: skipped}, nil

	case domain.CollectionCustomers:
		parsed, skipped := spreadsheet.Customers(rows, func() string { return s.newID("cus") })
		customers := slices.Clone(s.state.Customers)
		imported := 0
		for _, customer := range parsed {
			if _, exists := billing.FindCustomerByPhone(customers, customer.Phone); exists {
				skipped++
				continue
			}
			if err := s.data.SaveCustomer(ctx, customer); err != nil {
				s.state.Customers = customers
				return domain.ImportResult{Imported: imported, Skipped: skipped}, err
			}
			customers = append(customers, customer)
			imported++
		}
		s.state.Customers = customers
		s.log.Info("customers imported", zap.Int("imported", imported), zap.Int("skipped", skipped))
		return domain.ImportResult{Imported: imported, Skipped: skipped}, nil

	default:
		return domain.ImportResult{}, invalid("collection %q cannot be imported", c)
	}
}

// Describe asks the assistant for product copy. An empty instruction uses the
// shop's configured prompt.
func (s *Service) Describe(ctx context.Context, productName string, instruction string) (*domain.ProductSuggestion, bool) {
	if strings.TrimSpace(instruction) == "" {
		instruction = s.ShopDetails().DescriptionPrompt()
	}
	return s.assist.Describe(ctx, productName, instruction)
}

func (s *Service) AssistEnabled() bool {
	return s.assist.Enabled()
}
