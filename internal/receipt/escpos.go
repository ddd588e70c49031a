package receipt

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const paperColumns = 32

// Printout is a receipt encoded for an ESC/POS thermal printer.
type Printout struct {
	OrderID      string `json:"orderId"`
	EscposBase64 string `json:"escposBase64"`
	PreviewText  string `json:"previewText"`
	FileName     string `json:"fileName"`
}

// ESCPOS renders the layout as plain text lines wrapped in printer init and
// paper cut commands. Images are not sent to the printer.
func ESCPOS(layout Layout) Printout {
	rule := strings.Repeat("=", paperColumns)
	dash := strings.Repeat("-", paperColumns)

	lines := []string{
		center(strings.ToUpper(layout.ShopName)),
	}
	for _, part := range strings.Split(layout.Address, "\n") {
		if part = strings.TrimSpace(part); part != "" {
			lines = append(lines, center(part))
		}
	}
	if layout.Phone != "" {
		lines = append(lines, center("Tel: "+layout.Phone))
	}
	lines = append(lines,
		rule,
		center("# "+layout.OrderID),
		rule,
		"Date: "+layout.Date,
	)
	if layout.CustomerName != "" {
		lines = append(lines, "Cust: "+layout.CustomerName)
	}
	if layout.CustomerPhone != "" {
		lines = append(lines, "Ph: "+layout.CustomerPhone)
	}
	lines = append(lines, dash)
	for _, line := range layout.Lines {
		lines = append(lines, fmt.Sprintf("%d. %s", line.No, line.Name))
		lines = append(lines, columns(fmt.Sprintf("   x%d", line.Qty), line.Amount))
	}
	taxLabel := "Tax"
	if layout.TaxEnabled {
		taxLabel = "Tax Total"
	}
	lines = append(lines,
		dash,
		columns("Subtotal", layout.SubTotal),
		columns(taxLabel, layout.TaxTotal),
		columns("TOTAL", layout.Total),
		rule,
	)
	if layout.Footer != "" {
		lines = append(lines, center(layout.Footer))
	}
	if layout.PoweredBy != "" {
		lines = append(lines, center(layout.PoweredBy))
	}
	lines = append(lines, "")

	escpos := []byte{0x1b, 0x40}
	for _, line := range lines {
		escpos = append(escpos, []byte(line)...)
		escpos = append(escpos, '\n')
	}
	escpos = append(escpos, []byte{0x1d, 0x56, 0x41, 0x10}...)

	return Printout{
		OrderID:      layout.OrderID,
		EscposBase64: base64.StdEncoding.EncodeToString(escpos),
		PreviewText:  strings.Join(lines, "\n"),
		FileName:     fmt.Sprintf("receipt-%s.bin", layout.OrderID),
	}
}

func columns(left string, right string) string {
	gap := paperColumns - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func center(s string) string {
	pad := (paperColumns - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
