package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ManifestData is the packing list of one sheet batch.
type ManifestData struct {
	BatchID      string
	Format       string
	GeneratedAt  string
	InvoiceCount int
	PageCount    int
	TotalAmount  string

	Rows []ManifestRow
}

// ManifestRow locates one invoice on the printed sheets. Page and Slot are
// 1-based as printed.
type ManifestRow struct {
	Page           int
	Slot           int
	InvoiceNumber  string
	CustomerName   string
	Carrier        string
	TrackingNumber string
	Total          string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateManifest(ctx context.Context, data ManifestData) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithTitle("Batch manifest "+data.BatchID, true).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Batch manifest", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Batch: "+data.BatchID, props.Text{Top: 0}),
			text.New("Format: "+data.Format, props.Text{Top: 5}),
			text.New("Generated: "+data.GeneratedAt, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Invoices: %d", data.InvoiceCount), props.Text{Top: 0, Align: align.Right}),
			text.New(fmt.Sprintf("Sheets: %d", data.PageCount), props.Text{Top: 5, Align: align.Right}),
			text.New("Total: "+data.TotalAmount, props.Text{Top: 10, Align: align.Right, Style: fontstyle.Bold}),
		),
	)

	// Table Header
	m.AddRow(8,
		text.NewCol(1, "Sheet", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Slot", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Invoice", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Customer", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Shipment", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRows(line.NewRow(1, props.Line{Thickness: 0.3}))

	for _, row := range data.Rows {
		m.AddRow(7,
			text.NewCol(1, fmt.Sprintf("%d", row.Page), props.Text{Size: 8}),
			text.NewCol(1, fmt.Sprintf("%d", row.Slot), props.Text{Size: 8}),
			text.NewCol(3, row.InvoiceNumber, props.Text{Size: 8}),
			text.NewCol(3, row.CustomerName, props.Text{Size: 8}),
			text.NewCol(2, shipment(row), props.Text{Size: 8}),
			text.NewCol(2, row.Total, props.Text{Size: 8, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate manifest: %w", err)
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func shipment(row ManifestRow) string {
	switch {
	case row.Carrier != "" && row.TrackingNumber != "":
		return row.Carrier + " " + row.TrackingNumber
	case row.TrackingNumber != "":
		return row.TrackingNumber
	default:
		return row.Carrier
	}
}
