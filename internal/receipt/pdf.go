package receipt

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"warungpos/backend/internal/imaging"
)

// PDF renders the same layout as HTML into a PDF document.
func PDF(layout Layout) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(20).
		WithRightMargin(20).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	if logo, ok := imageCol(layout.Logo, 30); ok {
		m.AddRow(20, col.New(4), logo, col.New(4))
	}
	m.AddRow(10, text.NewCol(12, strings.ToUpper(layout.ShopName), props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Center}))
	if layout.Address != "" {
		m.AddRow(6, text.NewCol(12, layout.Address, props.Text{Size: 8, Align: align.Center}))
	}
	if layout.Phone != "" {
		m.AddRow(6, text.NewCol(12, "Tel: "+layout.Phone, props.Text{Size: 8, Align: align.Center}))
	}

	m.AddRow(6, text.NewCol(12, "ORDER TRANSACTION ID", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Top: 2}))
	m.AddRow(10, text.NewCol(12, "# "+layout.OrderID, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Center}))

	m.AddRow(6,
		text.NewCol(6, "Date:", props.Text{Size: 9}),
		text.NewCol(6, layout.Date, props.Text{Size: 9, Align: align.Right}),
	)
	if layout.CustomerName != "" {
		m.AddRow(5, text.NewCol(12, "Cust: "+layout.CustomerName, props.Text{Size: 8}))
	}
	if layout.CustomerPhone != "" {
		m.AddRow(5, text.NewCol(12, "Ph: "+layout.CustomerPhone, props.Text{Size: 8}))
	}

	m.AddRow(8,
		text.NewCol(1, "#", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}),
		text.NewCol(7, "Item", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 2}),
		text.NewCol(2, "Amt", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2}),
	)
	for _, line := range layout.Lines {
		m.AddRow(6,
			text.NewCol(1, fmt.Sprintf("%d", line.No), props.Text{Size: 8}),
			text.NewCol(7, line.Name, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", line.Qty), props.Text{Size: 9, Align: align.Center}),
			text.NewCol(2, line.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	taxLabel := "Tax"
	if layout.TaxEnabled {
		taxLabel = "Tax Total"
	}
	m.AddRow(6,
		text.NewCol(8, "Subtotal", props.Text{Size: 9, Top: 2}),
		text.NewCol(4, layout.SubTotal, props.Text{Size: 9, Align: align.Right, Top: 2}),
	)
	m.AddRow(6,
		text.NewCol(8, taxLabel, props.Text{Size: 9}),
		text.NewCol(4, layout.TaxTotal, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(8, "TOTAL", props.Text{Size: 11, Style: fontstyle.Bold}),
		text.NewCol(4, layout.Total, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)

	if qr, ok := imageCol(layout.PaymentQR, 100); ok {
		m.AddRow(6, text.NewCol(12, "SCAN TO PAY", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Top: 2}))
		m.AddRow(30, col.New(4), qr, col.New(4))
	}
	if layout.Footer != "" {
		m.AddRow(8, text.NewCol(12, layout.Footer, props.Text{Size: 8, Align: align.Center, Top: 2}))
	}
	if layout.PoweredBy != "" {
		m.AddRow(6, text.NewCol(12, strings.ToUpper(layout.PoweredBy), props.Text{Size: 6, Align: align.Center}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate receipt pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// imageCol embeds a data-URL image. Links and undecodable payloads are
// left out of the PDF.
func imageCol(payload string, percent float64) (core.Col, bool) {
	raw, err := imaging.Decode(payload)
	if err != nil {
		return nil, false
	}
	ext := extension.Jpg
	if strings.HasPrefix(payload, "data:image/png") {
		ext = extension.Png
	}
	return image.NewFromBytesCol(4, raw, ext, props.Rect{Center: true, Percent: percent}), true
}
