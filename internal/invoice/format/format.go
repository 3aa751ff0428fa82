// Package format holds the fixed layout densities an invoice sheet can be
// printed in, and the per-density geometry every other stage reads from.
package format

import (
	"errors"
	"strings"
)

// InvoiceFormat is the layout density of a sheet. The set is closed; the
// zero value is not a valid format.
type InvoiceFormat int

const (
	FullPage InvoiceFormat = iota + 1
	HalfPage
	QuarterPage
)

var ErrInvalidFormat = errors.New("invalid_format")

// All lists every supported format in ascending density.
func All() []InvoiceFormat {
	return []InvoiceFormat{FullPage, HalfPage, QuarterPage}
}

// Valid reports whether f is one of the supported formats.
func (f InvoiceFormat) Valid() bool {
	switch f {
	case FullPage, HalfPage, QuarterPage:
		return true
	default:
		return false
	}
}

// String returns the wire tag of the format.
func (f InvoiceFormat) String() string {
	switch f {
	case FullPage:
		return "FULL_PAGE"
	case HalfPage:
		return "HALF_PAGE"
	case QuarterPage:
		return "QUARTER_PAGE"
	default:
		return "UNKNOWN"
	}
}

// ParseInvoiceFormat resolves a wire tag. Matching ignores case and
// surrounding whitespace, and accepts "-" in place of "_".
func ParseInvoiceFormat(tag string) (InvoiceFormat, error) {
	normalized := strings.ToUpper(strings.TrimSpace(tag))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for _, f := range All() {
		if f.String() == normalized {
			return f, nil
		}
	}
	return 0, ErrInvalidFormat
}

func (f InvoiceFormat) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, ErrInvalidFormat
	}
	return []byte(f.String()), nil
}

func (f *InvoiceFormat) UnmarshalText(text []byte) error {
	parsed, err := ParseInvoiceFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
