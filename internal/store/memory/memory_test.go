package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

func TestListOrdersNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"1", "2", "3"} {
		if err := s.SaveOrder(ctx, domain.Order{ID: id, Date: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("save order: %v", err)
		}
	}

	orders, err := s.ListOrders(ctx)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 3 || orders[0].ID != "3" || orders[2].ID != "1" {
		t.Fatalf("expected newest first, got %+v", orders)
	}
}

func TestSavedOrderIsIsolatedFromCaller(t *testing.T) {
	s := New()
	ctx := context.Background()
	order := domain.Order{ID: "1", Items: []domain.CartItem{{Product: domain.Product{ID: "p", Name: "Tea"}, Qty: 1}}}

	if err := s.SaveOrder(ctx, order); err != nil {
		t.Fatalf("save order: %v", err)
	}
	order.Items[0].Qty = 99

	orders, _ := s.ListOrders(ctx)
	if orders[0].Items[0].Qty != 1 {
		t.Fatalf("stored order mutated through caller slice")
	}
}

func TestShopDetailsNotFoundUntilSaved(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetShopDetails(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.SaveShopDetails(ctx, domain.DefaultShopDetails()); err != nil {
		t.Fatalf("save shop: %v", err)
	}
	shop, err := s.GetShopDetails(ctx)
	if err != nil || shop.Name != domain.DefaultShopDetails().Name {
		t.Fatalf("unexpected shop %+v err=%v", shop, err)
	}
}

func TestCommitOrderWritesOrderAndProducts(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	products, _ := s.ListProducts(ctx)
	p := products[0]
	p.Stock -= 2

	err := s.CommitOrder(ctx, domain.Order{ID: "1", Total: decimal.NewFromInt(10)}, []domain.Product{p})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	orders, _ := s.ListOrders(ctx)
	after, _ := s.ListProducts(ctx)
	if len(orders) != 1 || after[0].Stock != p.Stock {
		t.Fatalf("commit not applied: orders=%d stock=%d", len(orders), after[0].Stock)
	}
}

func TestRemoveOrderRestoresProducts(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	products, _ := s.ListProducts(ctx)
	p := products[0]

	if err := s.CommitOrder(ctx, domain.Order{ID: "1"}, nil); err != nil {
		t.Fatalf("commit: %v", err)
	}
	p.Stock += 3
	if err := s.RemoveOrder(ctx, "1", []domain.Product{p}); err != nil {
		t.Fatalf("remove: %v", err)
	}

	orders, _ := s.ListOrders(ctx)
	after, _ := s.ListProducts(ctx)
	if len(orders) != 0 || after[0].Stock != p.Stock {
		t.Fatalf("remove not applied: orders=%d stock=%d", len(orders), after[0].Stock)
	}
}
