// Package report renders the day-end (Z) report in the formats operators
// print or archive.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/xuri/excelize/v2"

	"warungpos/backend/internal/domain"
)

const (
	SummarySheet   = "Report Summary"
	BreakdownSheet = "Itemized Breakdown"
)

// FileName is the base name shared by every day-end artifact.
func FileName(date string) string {
	return "Z_Report_" + date
}

// Workbook writes the two-sheet day-end workbook.
func Workbook(b domain.DailyBreakdown) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	summary := [][]any{
		{"Metric", "Value"},
		{"Total Sales (Gross)", b.TotalSales.InexactFloat64()},
		{"Total Orders", b.OrderCount},
		{"Average Ticket Size", b.AvgTicket.InexactFloat64()},
		{"Selected Date", b.Date},
	}
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(BreakdownSheet); err != nil {
		return nil, err
	}
	rows := [][]any{{"Product Name", "Quantity Sold", "Revenue (Excl Tax)"}}
	for _, item := range b.Items {
		rows = append(rows, []any{item.Name, item.Qty, item.Revenue.InexactFloat64()})
	}
	if err := writeRows(f, BreakdownSheet, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

var dailyReportHTMLTmpl = template.Must(template.New("z-report").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Z-Report-{{.Breakdown.Date}}</title>
  <style>
    body { margin: 0; padding: 10px; font-family: 'Courier New', monospace; color: black; background: white; }
    .wrap { max-width: 300px; margin: 0 auto; }
    .center { text-align: center; }
    .row { display: flex; justify-content: space-between; }
    .dash { border-top: 1px dashed black; margin: 8px 0; }
    table { width: 100%; border-collapse: collapse; font-size: 12px; }
    th, td { padding: 2px 0; }
    td.num, th.num { text-align: right; }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="center">
      <h1 style="font-size: 18px; margin: 0;">{{.ShopName}}</h1>
      <p style="font-size: 12px;">Z-REPORT (END OF DAY)</p>
      <p style="font-size: 12px;">{{.Breakdown.Date}}</p>
    </div>
    <div class="dash"></div>
    <div class="row"><span>Total Orders</span><span>{{.Breakdown.OrderCount}}</span></div>
    <div class="row"><span>Total Sales (Gross)</span><span>{{.TotalSales}}</span></div>
    <div class="row"><span>Average Ticket Size</span><span>{{.AvgTicket}}</span></div>
    <div class="dash"></div>
    <table>
      <thead><tr><th style="text-align:left;">Product Name</th><th class="num">Qty</th><th class="num">Revenue (Excl Tax)</th></tr></thead>
      <tbody>{{range .Breakdown.Items}}<tr><td>{{.Name}}</td><td class="num">{{.Qty}}</td><td class="num">{{.Revenue.StringFixed 2}}</td></tr>{{else}}<tr><td colspan="3" class="center">No sales</td></tr>{{end}}</tbody>
    </table>
    <div class="dash"></div>
    <p class="center" style="font-size: 10px;">Generated {{.GeneratedAt}}</p>
  </div>
</body>
</html>
`))

type htmlView struct {
	ShopName    string
	Breakdown   domain.DailyBreakdown
	TotalSales  string
	AvgTicket   string
	GeneratedAt string
}

// PrintableHTML renders the thermal-width Z report page.
func PrintableHTML(shopName string, b domain.DailyBreakdown, generatedAt string) (string, error) {
	var buf bytes.Buffer
	err := dailyReportHTMLTmpl.Execute(&buf, htmlView{
		ShopName:    shopName,
		Breakdown:   b,
		TotalSales:  domain.FormatMoney(b.TotalSales),
		AvgTicket:   domain.FormatMoney(b.AvgTicket),
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
