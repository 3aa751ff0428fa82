// Package barcode sizes and lays out the Code 128 symbol printed in every
// invoice slot. Symbols are returned as vector bars in millimetres so they
// land on the page at exact offsets whatever the output resolution.
package barcode

import (
	"fmt"
	"image/color"
	"regexp"
	"strings"

	gobarcode "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/smallbiznis/invoicesheet/internal/invoice/domain"
	"github.com/smallbiznis/invoicesheet/internal/invoice/format"
)

const (
	// MarginMM is the quiet zone kept clear on every side of the symbol.
	MarginMM = 2.0
	// DPI is the lowest printer resolution the symbol must survive. A module
	// narrower than one dot at this resolution is rejected.
	DPI = 300

	mmPerInch = 25.4
)

// MinModuleWidth is one printer dot at DPI, in millimetres.
const MinModuleWidth = mmPerInch / DPI

var allowedValue = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Spec is the physical size of a barcode: the symbol area plus the fixed
// quiet zone around it.
type Spec struct {
	Value   string
	Content format.Size
	Margin  float64
}

// Total is the content size grown by the margin on each side.
func (s Spec) Total() format.Size {
	return format.Size{
		Width:  s.Content.Width + 2*s.Margin,
		Height: s.Content.Height + 2*s.Margin,
	}
}

// SpecFor sizes a barcode for value printed at format f.
func SpecFor(value string, f format.InvoiceFormat) Spec {
	return Spec{
		Value:   value,
		Content: format.ConfigFor(f).BarcodeSize,
		Margin:  MarginMM,
	}
}

// ValidateValue accepts non-blank values made of ASCII letters, digits,
// hyphens and underscores.
func ValidateValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return &domain.BarcodeError{Code: domain.BarcodeEmptyValue, Value: value, InvoiceIndex: -1}
	}
	if !allowedValue.MatchString(value) {
		return &domain.BarcodeError{Code: domain.BarcodeInvalidCharacters, Value: value, InvoiceIndex: -1}
	}
	return nil
}

// Rect is an axis-aligned box in millimetres, relative to the top-left
// corner of the barcode's total area.
type Rect struct {
	X, Y, W, H float64
}

// Symbol is an encoded barcode ready to draw: an opaque white background
// covering Spec.Total() and the dark bars on top of it.
type Symbol struct {
	Spec        Spec
	Modules     int
	ModuleWidth float64
	Background  Rect
	Bars        []Rect
}

// Size is the physical size the symbol occupies, quiet zone included.
func (s Symbol) Size() format.Size {
	return s.Spec.Total()
}

// Encode validates value and lays it out for format f. The first module
// starts exactly one margin in from the left edge and the last one ends
// exactly one margin in from the right edge.
func Encode(value string, f format.InvoiceFormat) (Symbol, error) {
	if err := ValidateValue(value); err != nil {
		return Symbol{}, err
	}

	code, err := code128.Encode(value)
	if err != nil {
		return Symbol{}, unencodable(value, err)
	}

	spec := SpecFor(value, f)
	modules := moduleRow(code)
	if len(modules) == 0 {
		return Symbol{}, unencodable(value, fmt.Errorf("symbol has no modules"))
	}
	moduleWidth := spec.Content.Width / float64(len(modules))
	if moduleWidth < MinModuleWidth {
		return Symbol{}, unencodable(value, fmt.Errorf("%d modules need %.2fmm, have %.2fmm",
			len(modules), float64(len(modules))*MinModuleWidth, spec.Content.Width))
	}

	total := spec.Total()
	return Symbol{
		Spec:        spec,
		Modules:     len(modules),
		ModuleWidth: moduleWidth,
		Background:  Rect{X: 0, Y: 0, W: total.Width, H: total.Height},
		Bars:        bars(modules, spec, moduleWidth),
	}, nil
}

// moduleRow reads the dark/light pattern of a linear symbol, one entry per
// module.
func moduleRow(code gobarcode.Barcode) []bool {
	b := code.Bounds()
	row := make([]bool, 0, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		g := color.GrayModel.Convert(code.At(x, b.Min.Y)).(color.Gray)
		row = append(row, g.Y < 0x80)
	}
	return row
}

// bars merges runs of dark modules into one rectangle each.
func bars(modules []bool, spec Spec, moduleWidth float64) []Rect {
	var out []Rect
	for i := 0; i < len(modules); {
		if !modules[i] {
			i++
			continue
		}
		start := i
		for i < len(modules) && modules[i] {
			i++
		}
		out = append(out, Rect{
			X: spec.Margin + float64(start)*moduleWidth,
			Y: spec.Margin,
			W: float64(i-start) * moduleWidth,
			H: spec.Content.Height,
		})
	}
	return out
}

func unencodable(value string, err error) error {
	return &domain.BarcodeError{Code: domain.BarcodeUnencodable, Value: value, InvoiceIndex: -1, Err: err}
}
