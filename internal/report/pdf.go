package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"warungpos/backend/internal/domain"
)

// PDF renders the day-end report as a paged document.
func PDF(shopName string, b domain.DailyBreakdown) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12, text.NewCol(12, shopName, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}))
	m.AddRow(8, text.NewCol(12, "Z-Report (End of Day) "+b.Date, props.Text{Size: 11, Align: align.Center}))

	m.AddRow(20,
		col.New(6).Add(
			text.New("Total Sales (Gross)", props.Text{Top: 2, Style: fontstyle.Bold}),
			text.New("Total Orders", props.Text{Top: 8, Style: fontstyle.Bold}),
			text.New("Average Ticket Size", props.Text{Top: 14, Style: fontstyle.Bold}),
		),
		col.New(6).Add(
			text.New(domain.FormatMoney(b.TotalSales), props.Text{Top: 2, Align: align.Right}),
			text.New(itoa(b.OrderCount), props.Text{Top: 8, Align: align.Right}),
			text.New(domain.FormatMoney(b.AvgTicket), props.Text{Top: 14, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Product Name", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3}),
		text.NewCol(3, "Quantity Sold", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 3}),
		text.NewCol(3, "Revenue (Excl Tax)", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 3}),
	)
	for _, item := range b.Items {
		m.AddRow(7,
			text.NewCol(6, item.Name, props.Text{Size: 9}),
			text.NewCol(3, itoa(item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(3, domain.FormatMoney(item.Revenue), props.Text{Size: 9, Align: align.Right}),
		)
	}
	if len(b.Items) == 0 {
		m.AddRow(7, text.NewCol(12, "No sales", props.Text{Size: 9, Align: align.Center}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate report pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
