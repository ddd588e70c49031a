package store

import (
	"github.com/shopspring/decimal"

	"warungpos/backend/internal/domain"
)

// DemoProducts is the starter catalog written on first run when nothing is
// stored locally and no remote store is configured.
func DemoProducts() []domain.Product {
	rate := decimal.NewFromInt(5)
	return []domain.Product{
		{ID: "1", Name: "Cappuccino", Price: decimal.NewFromInt(250), Stock: 50, Category: "Beverages", Description: "Rich espresso with frothy milk", TaxRate: &rate, MinStockLevel: domain.DefaultMinStockLevel},
		{ID: "2", Name: "Croissant", Price: decimal.NewFromInt(180), Stock: 30, Category: "Snacks", Description: "Buttery flaky pastry", TaxRate: &rate, MinStockLevel: domain.DefaultMinStockLevel},
		{ID: "3", Name: "Avocado Toast", Price: decimal.NewFromInt(350), Stock: 20, Category: "Food", Description: "Sourdough with fresh avocado", TaxRate: &rate, MinStockLevel: domain.DefaultMinStockLevel},
	}
}
