// Package layout places invoices onto sheets: which slot of which page an
// invoice lands in, and where that slot sits physically.
package layout

import (
	"fmt"

	"github.com/smallbiznis/invoicesheet/internal/invoice/format"
)

// Position is the top-left corner of a slot relative to the page origin,
// in millimeters.
type Position struct {
	X float64
	Y float64
}

// Slot origins are spelled out rather than derived from page dimensions so
// every format shares the exact same boundaries.
var (
	fullPagePositions    = []Position{{0, 0}}
	halfPagePositions    = []Position{{0, 0}, {0, 148.5}}
	quarterPagePositions = []Position{{0, 0}, {105, 0}, {0, 148.5}, {105, 148.5}}
)

func positionsFor(f format.InvoiceFormat) []Position {
	switch f {
	case format.FullPage:
		return fullPagePositions
	case format.HalfPage:
		return halfPagePositions
	case format.QuarterPage:
		return quarterPagePositions
	default:
		panic("layout: no positions for " + f.String())
	}
}

// PositionOf returns the origin of slot on a page of format f. slot must be
// below the format's invoices per page; anything else is a programming
// error and panics.
func PositionOf(f format.InvoiceFormat, slot int) Position {
	positions := positionsFor(f)
	if slot < 0 || slot >= len(positions) {
		panic(fmt.Sprintf("layout: slot %d out of range for %s", slot, f))
	}
	return positions[slot]
}

// Line is a straight segment in page millimeters.
type Line struct {
	X1, Y1 float64
	X2, Y2 float64
}

// CutGuides returns the lines separating adjacent slots of f, spanning the
// whole sheet. FullPage has none.
func CutGuides(f format.InvoiceFormat) []Line {
	positions := positionsFor(f)
	if len(positions) <= 1 {
		return nil
	}

	var (
		guides []Line
		seenX  = map[float64]bool{}
		seenY  = map[float64]bool{}
	)
	// Horizontal guides first, then vertical, each in slot order.
	for _, p := range positions {
		if p.Y > 0 && !seenY[p.Y] {
			seenY[p.Y] = true
			guides = append(guides, Line{X1: 0, Y1: p.Y, X2: format.Sheet.Width, Y2: p.Y})
		}
	}
	for _, p := range positions {
		if p.X > 0 && !seenX[p.X] {
			seenX[p.X] = true
			guides = append(guides, Line{X1: p.X, Y1: 0, X2: p.X, Y2: format.Sheet.Height})
		}
	}
	return guides
}
