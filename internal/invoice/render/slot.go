package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/smallbiznis/invoicesheet/internal/invoice/barcode"
	"github.com/smallbiznis/invoicesheet/internal/invoice/domain"
	"github.com/smallbiznis/invoicesheet/internal/invoice/format"
	"github.com/smallbiznis/invoicesheet/internal/invoice/layout"
)

const (
	fontFamily = "Helvetica"
	ptToMM     = 25.4 / 72
	leading    = 1.3
	ellipsis   = "..."
)

// slotWriter lays text out top-down inside one slot's margin box, stopping
// above the barcode.
type slotWriter struct {
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	fonts format.FontSizes

	left  float64
	width float64
	y     float64
	limit float64

	barcodeX float64
	barcodeY float64
}

func newSlotWriter(pdf *gofpdf.Fpdf, tr func(string) string, cfg format.Config, origin layout.Position) *slotWriter {
	box := cfg.ContentBox()
	barcodeHeight := cfg.BarcodeSize.Height + 2*barcode.MarginMM
	bottom := origin.Y + cfg.PageDimensions.Height - cfg.Margins.Bottom
	return &slotWriter{
		pdf:      pdf,
		tr:       tr,
		fonts:    cfg.FontSizes,
		left:     origin.X + cfg.Margins.Left,
		width:    box.Width,
		y:        origin.Y + cfg.Margins.Top,
		limit:    bottom - barcodeHeight - 1,
		barcodeX: origin.X + cfg.Margins.Left,
		barcodeY: bottom - barcodeHeight,
	}
}

func (w *slotWriter) drawInvoice(inv domain.InvoiceData, code barcode.Symbol) {
	small, normal := w.fonts.Small, w.fonts.Normal

	w.pair("B", w.fonts.Title, "INVOICE", inv.InvoiceNumber)
	if !inv.CreatedAt.IsZero() {
		w.text("", small, "Date: "+inv.CreatedAt.Format("2006-01-02"))
	}
	w.gap(small)

	if b := inv.Business; b != nil {
		w.text("B", small, "FROM")
		w.textIf("B", normal, b.Name)
		w.textIf("", small, b.Address)
		w.textIf("", small, b.Phone)
		w.textIf("", small, b.Email)
		w.gap(small)
	}

	w.text("B", small, "BILL TO")
	w.text("B", normal, inv.CustomerName)
	w.text("", small, inv.CustomerAddress)
	w.text("", small, "Phone: "+inv.CustomerPhone)
	w.gap(small)

	product := strings.TrimSpace(inv.ProductName)
	if product == "" {
		product = "Item"
	}
	w.text("B", normal, product)
	w.pair("", normal, "Quantity", strconv.Itoa(inv.Quantity))
	w.pair("", normal, "Amount", money(inv.Amount))
	w.pair("", normal, "Discount", money(inv.Discount))
	w.pair("B", normal, "Total", money(inv.Total()))

	if inv.HasShipment() {
		w.gap(small)
		w.textIf("", small, labelled("Carrier", inv.Carrier))
		w.textIf("", small, labelled("Tracking", inv.TrackingNumber))
	}

	if notes := strings.TrimSpace(inv.Notes); notes != "" {
		w.gap(small)
		w.text("B", small, "Notes")
		w.paragraph("", small, notes)
	}

	w.drawBarcode(code)
}

// drawBarcode paints the quiet zone white and fills every bar as a vector
// rectangle anchored at the barcode origin.
func (w *slotWriter) drawBarcode(code barcode.Symbol) {
	bg := code.Background
	w.pdf.SetFillColor(255, 255, 255)
	w.pdf.Rect(w.barcodeX+bg.X, w.barcodeY+bg.Y, bg.W, bg.H, "F")

	w.pdf.SetFillColor(0, 0, 0)
	for _, bar := range code.Bars {
		w.pdf.Rect(w.barcodeX+bar.X, w.barcodeY+bar.Y, bar.W, bar.H, "F")
	}
}

func lineHeight(size float64) float64 {
	return size * ptToMM * leading
}

// reserve advances the cursor by one line of size and reports whether the
// line still fits above the barcode.
func (w *slotWriter) reserve(size float64) (float64, bool) {
	h := lineHeight(size)
	if w.y+h > w.limit {
		return 0, false
	}
	y := w.y
	w.y += h
	return y, true
}

func (w *slotWriter) text(style string, size float64, s string) {
	y, ok := w.reserve(size)
	if !ok {
		return
	}
	w.pdf.SetFont(fontFamily, style, size)
	w.pdf.SetXY(w.left, y)
	w.pdf.CellFormat(w.width, lineHeight(size), w.fit(w.tr(s), w.width), "", 0, "L", false, 0, "")
}

func (w *slotWriter) textIf(style string, size float64, s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	w.text(style, size, s)
}

// pair draws label flush left and value flush right on the same line.
func (w *slotWriter) pair(style string, size float64, label, value string) {
	y, ok := w.reserve(size)
	if !ok {
		return
	}
	h := lineHeight(size)
	w.pdf.SetFont(fontFamily, style, size)

	value = w.tr(value)
	label = w.tr(label)
	valueWidth := w.pdf.GetStringWidth(value)
	labelWidth := w.pdf.GetStringWidth(label)
	if valueWidth > w.width-labelWidth-2 {
		value = w.fit(value, w.width-labelWidth-2)
	}

	w.pdf.SetXY(w.left, y)
	w.pdf.CellFormat(w.width, h, label, "", 0, "L", false, 0, "")
	w.pdf.SetXY(w.left, y)
	w.pdf.CellFormat(w.width, h, value, "", 0, "R", false, 0, "")
}

// paragraph wraps s to the slot width; lines that do not fit above the
// barcode are dropped.
func (w *slotWriter) paragraph(style string, size float64, s string) {
	w.pdf.SetFont(fontFamily, style, size)
	for _, line := range w.wrap(w.tr(s), w.width) {
		y, ok := w.reserve(size)
		if !ok {
			return
		}
		w.pdf.SetXY(w.left, y)
		w.pdf.CellFormat(w.width, lineHeight(size), line, "", 0, "L", false, 0, "")
	}
}

func (w *slotWriter) gap(size float64) {
	w.y += lineHeight(size) / 2
}

// fit shortens s with an ellipsis until it is no wider than width in the
// current font. s is already translated to the single-byte font encoding.
func (w *slotWriter) fit(s string, width float64) string {
	if w.pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && w.pdf.GetStringWidth(s+ellipsis) > width {
		s = s[:len(s)-1]
	}
	return s + ellipsis
}

// wrap breaks s into lines no wider than width, on spaces where possible.
func (w *slotWriter) wrap(s string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		current := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if w.pdf.GetStringWidth(candidate) <= width {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
			}
			for w.pdf.GetStringWidth(word) > width && len(word) > 1 {
				cut := len(word) - 1
				for cut > 1 && w.pdf.GetStringWidth(word[:cut]) > width {
					cut--
				}
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			current = word
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

func labelled(label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return label + ": " + value
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
