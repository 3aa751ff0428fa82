// Package render draws paginated invoices into a single PDF sheet document.
package render

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/smallbiznis/invoicesheet/internal/invoice/barcode"
	"github.com/smallbiznis/invoicesheet/internal/invoice/domain"
	"github.com/smallbiznis/invoicesheet/internal/invoice/format"
	"github.com/smallbiznis/invoicesheet/internal/invoice/layout"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Metadata is written into the PDF info dictionary.
type Metadata struct {
	Title   string
	Author  string
	Creator string
	Subject string
}

// Options controls one assembly. CreatedAt is stamped as the document
// creation date; identical input and options give identical bytes.
type Options struct {
	Workers   int
	Metadata  Metadata
	CreatedAt time.Time
	Verify    bool
}

type Assembler struct {
	log  *zap.Logger
	opts Options

	compress bool
}

func NewAssembler(log *zap.Logger, opts Options) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return &Assembler{log: log.Named("invoice.render"), opts: opts, compress: true}
}

// Assemble renders pages of invoices at format f. Any failure aborts the
// whole document; no partial output is returned.
func (a *Assembler) Assemble(ctx context.Context, pages []layout.Page, invoices []domain.InvoiceData, f format.InvoiceFormat) ([]byte, error) {
	if len(pages) == 0 {
		return nil, &domain.RenderError{Page: -1, InvoiceIndex: -1, Op: "assemble", Err: errors.New("no pages to render")}
	}

	codes, err := a.encodeBarcodes(ctx, pages, invoices, f)
	if err != nil {
		return nil, err
	}

	cfg := format.ConfigFor(f)
	guides := layout.CutGuides(f)
	pdf := a.newDocument()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pdf.AddPage()
		drawCutGuides(pdf, guides)

		for _, slot := range page.Slots {
			if !slot.Filled() {
				continue
			}
			w := newSlotWriter(pdf, tr, cfg, layout.PositionOf(f, slot.Index))
			w.drawInvoice(invoices[slot.Invoice], codes[slot.Invoice])
			if err := pdf.Error(); err != nil {
				return nil, &domain.RenderError{Page: page.Number, InvoiceIndex: slot.Invoice, Op: "draw", Err: err}
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &domain.RenderError{Page: -1, InvoiceIndex: -1, Op: "output", Err: err}
	}

	if a.opts.Verify {
		if err := Verify(buf.Bytes(), len(pages)); err != nil {
			return nil, &domain.RenderError{Page: -1, InvoiceIndex: -1, Op: "verify", Err: err}
		}
	}

	a.log.Debug("sheet assembled",
		zap.String("format", f.String()),
		zap.Int("pages", len(pages)),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

// encodeBarcodes renders the barcode of every placed invoice concurrently.
// Results and errors are kept by invoice index so the reported failure is
// always the first failing invoice in batch order.
func (a *Assembler) encodeBarcodes(ctx context.Context, pages []layout.Page, invoices []domain.InvoiceData, f format.InvoiceFormat) ([]barcode.Symbol, error) {
	placements := layout.Placements(pages)
	codes := make([]barcode.Symbol, len(invoices))
	errs := make([]error, len(invoices))

	for _, p := range placements {
		if p.Invoice < 0 || p.Invoice >= len(invoices) {
			return nil, &domain.RenderError{Page: p.Page, InvoiceIndex: p.Invoice, Op: "placement", Err: errors.New("slot references unknown invoice")}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for _, p := range placements {
		idx := p.Invoice
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sym, err := barcode.Encode(invoices[idx].BarcodeValue(), f)
			if err != nil {
				errs[idx] = attributeBarcodeError(err, idx, invoices[idx])
				return nil
			}
			codes[idx] = sym
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return codes, nil
}

func attributeBarcodeError(err error, idx int, inv domain.InvoiceData) error {
	var bErr *domain.BarcodeError
	if errors.As(err, &bErr) {
		bErr.InvoiceIndex = idx
		bErr.InvoiceNumber = inv.InvoiceNumber
		return bErr
	}
	var rErr *domain.RenderError
	if errors.As(err, &rErr) {
		rErr.InvoiceIndex = idx
		return rErr
	}
	return &domain.RenderError{Page: -1, InvoiceIndex: idx, Op: "barcode", Err: err}
}

func (a *Assembler) newDocument() *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: format.Sheet.Width, Ht: format.Sheet.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(a.compress)
	pdf.SetCatalogSort(true)

	meta := a.opts.Metadata
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator(meta.Creator, true)
	pdf.SetSubject(meta.Subject, true)
	if !a.opts.CreatedAt.IsZero() {
		pdf.SetCreationDate(a.opts.CreatedAt)
		pdf.SetModificationDate(a.opts.CreatedAt)
	}
	return pdf
}

func drawCutGuides(pdf *gofpdf.Fpdf, guides []layout.Line) {
	if len(guides) == 0 {
		return
	}
	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.2)
	pdf.SetDashPattern([]float64{3, 2}, 0)
	for _, g := range guides {
		pdf.Line(g.X1, g.Y1, g.X2, g.Y2)
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetDrawColor(0, 0, 0)
}
