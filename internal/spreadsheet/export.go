package spreadsheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"warungpos/backend/internal/domain"
)

const walkIn = "Walk-in"

// ExportFileName names an export of collection c made on date.
func ExportFileName(c domain.Collection, date string) string {
	switch c {
	case domain.CollectionProducts:
		return "Inventory_Export_" + date + ".xlsx"
	case domain.CollectionOrders:
		return "History_" + date + ".xlsx"
	case domain.CollectionCustomers:
		return "Customers_Export_" + date + ".xlsx"
	default:
		return string(c) + "_" + date + ".xlsx"
	}
}

func ProductsWorkbook(products []domain.Product) ([]byte, error) {
	rows := [][]any{{"Name", "Price", "Stock", "Category", "Description", "Tax Rate (%)", "Min Stock Level"}}
	for _, p := range products {
		rate := 0.0
		if p.TaxRate != nil {
			rate = p.TaxRate.InexactFloat64()
		}
		minStock := p.MinStockLevel
		if minStock <= 0 {
			minStock = domain.DefaultMinStockLevel
		}
		rows = append(rows, []any{p.Name, p.Price.InexactFloat64(), p.Stock, p.Category, p.Description, rate, minStock})
	}
	return singleSheet("Inventory", rows)
}

// OrdersWorkbook lists orders with their dates shown in loc.
func OrdersWorkbook(orders []domain.Order, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}
	rows := [][]any{{"Order ID", "Date", "Customer", "Phone", "Items", "Tax", "Total"}}
	for _, o := range orders {
		name, phone := walkIn, ""
		if o.Customer != nil {
			if o.Customer.Name != "" {
				name = o.Customer.Name
			}
			phone = o.Customer.Phone
		}
		rows = append(rows, []any{
			o.ID,
			o.Date.In(loc).Format("2006-01-02 15:04:05"),
			name,
			phone,
			itemSummary(o.Items),
			o.TaxTotal.InexactFloat64(),
			o.Total.InexactFloat64(),
		})
	}
	return singleSheet("Orders", rows)
}

func CustomersWorkbook(customers []domain.Customer) ([]byte, error) {
	rows := [][]any{{"Name", "Phone", "Place"}}
	for _, c := range customers {
		rows = append(rows, []any{c.Name, c.Phone, c.Place})
	}
	return singleSheet("Customers", rows)
}

func itemSummary(items []domain.CartItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.GroupKey(), item.Qty))
	}
	return strings.Join(parts, ", ")
}

func singleSheet(name string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return nil, fmt.Errorf("write %s row %d: %w", name, i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
