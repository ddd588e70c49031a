// Package spreadsheet reads bulk imports and writes collection exports.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"warungpos/backend/internal/domain"
)

var ErrNoSheet = errors.New("workbook has no sheets")

// Row maps a lower-cased, trimmed header to its cell value.
type Row map[string]string

// lookup returns the first non-empty value among the header aliases.
func (r Row) lookup(aliases ...string) string {
	for _, alias := range aliases {
		if v := strings.TrimSpace(r[alias]); v != "" {
			return v
		}
	}
	return ""
}

var (
	productName     = []string{"name", "product name"}
	productPrice    = []string{"price", "unit price"}
	productStock    = []string{"stock", "quantity"}
	productCategory = []string{"category"}
	productDesc     = []string{"description"}
	productImage    = []string{"image"}
	productTaxRate  = []string{"taxrate", "tax rate (%)"}
	productMinStock = []string{"minstocklevel", "min stock level"}
	productDuration = []string{"rentalduration", "rental duration"}

	customerName  = []string{"name", "customer name"}
	customerPhone = []string{"phone", "customer phone"}
	customerPlace = []string{"place", "location"}
)

// ReadRows reads the first sheet of an xlsx workbook, or a csv file when the
// name ends in .csv. The first row is the header.
func ReadRows(r io.Reader, filename string) ([]Row, error) {
	var (
		records [][]string
		err     error
	)
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		records, err = readCSV(r)
	} else {
		records, err = readXLSX(r)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, key := range header {
			if key == "" || i >= len(record) {
				continue
			}
			row[key] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return records, nil
}

// Products maps rows to products. Rows without a name are skipped. Bad
// numbers read as zero; a missing tax rate takes the shop default and a
// missing or zero min stock level takes the catalog default.
func Products(rows []Row, shop domain.ShopDetails, newID func() string) ([]domain.Product, int) {
	out := make([]domain.Product, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		name := row.lookup(productName...)
		if name == "" {
			skipped++
			continue
		}

		p := domain.Product{
			ID:             newID(),
			Name:           name,
			Price:          parseDecimal(row.lookup(productPrice...)),
			Stock:          max(0, parseInt(row.lookup(productStock...))),
			Category:       row.lookup(productCategory...),
			Description:    row.lookup(productDesc...),
			Image:          row.lookup(productImage...),
			MinStockLevel:  parseInt(row.lookup(productMinStock...)),
			RentalDuration: row.lookup(productDuration...),
		}
		if p.Category == "" {
			p.Category = domain.DefaultCategory
		}
		if p.MinStockLevel <= 0 {
			p.MinStockLevel = domain.DefaultMinStockLevel
		}
		rate := shop.TaxRate()
		if raw := row.lookup(productTaxRate...); raw != "" {
			if parsed, err := decimal.NewFromString(strings.TrimSuffix(raw, "%")); err == nil {
				rate = parsed
			}
		}
		p.TaxRate = &rate
		out = append(out, p)
	}
	return out, skipped
}

// Customers maps rows to customers. Rows need both a name and a phone.
func Customers(rows []Row, newID func() string) ([]domain.Customer, int) {
	out := make([]domain.Customer, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		name := row.lookup(customerName...)
		phone := row.lookup(customerPhone...)
		if name == "" || phone == "" {
			skipped++
			continue
		}
		out = append(out, domain.Customer{
			ID:    newID(),
			Name:  name,
			Phone: phone,
			Place: row.lookup(customerPlace...),
		})
	}
	return out, skipped
}

func parseDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// parseInt accepts "12" and spreadsheet-style "12.0".
func parseInt(raw string) int {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}
