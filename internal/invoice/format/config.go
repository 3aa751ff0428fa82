package format

// Size is a physical width and height in millimeters.
type Size struct {
	Width  float64
	Height float64
}

// Margins are the inner padding of a slot in millimeters.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// FontSizes are point sizes used when drawing a slot.
type FontSizes struct {
	Title  float64
	Normal float64
	Small  float64
}

// Config is the geometry of one format. PageDimensions is the area a single
// invoice occupies; for FullPage that is the whole sheet.
type Config struct {
	InvoicesPerPage int
	PageDimensions  Size
	Margins         Margins
	BarcodeSize     Size
	FontSizes       FontSizes
}

// Sheet is the physical page every format is printed on (A4 portrait).
var Sheet = Size{Width: 210, Height: 297}

var (
	fullPageConfig = Config{
		InvoicesPerPage: 1,
		PageDimensions:  Size{Width: 210, Height: 297},
		Margins:         Margins{Top: 15, Right: 15, Bottom: 15, Left: 15},
		BarcodeSize:     Size{Width: 80, Height: 20},
		FontSizes:       FontSizes{Title: 18, Normal: 11, Small: 9},
	}
	halfPageConfig = Config{
		InvoicesPerPage: 2,
		PageDimensions:  Size{Width: 210, Height: 148.5},
		Margins:         Margins{Top: 10, Right: 10, Bottom: 10, Left: 10},
		BarcodeSize:     Size{Width: 60, Height: 15},
		FontSizes:       FontSizes{Title: 14, Normal: 10, Small: 8},
	}
	quarterPageConfig = Config{
		InvoicesPerPage: 4,
		PageDimensions:  Size{Width: 105, Height: 148.5},
		Margins:         Margins{Top: 6, Right: 6, Bottom: 6, Left: 6},
		BarcodeSize:     Size{Width: 45, Height: 12},
		FontSizes:       FontSizes{Title: 11, Normal: 8, Small: 6.5},
	}
)

// ConfigFor returns the geometry of f. It panics on an invalid format;
// batches are validated before any geometry is looked up.
func ConfigFor(f InvoiceFormat) Config {
	switch f {
	case FullPage:
		return fullPageConfig
	case HalfPage:
		return halfPageConfig
	case QuarterPage:
		return quarterPageConfig
	default:
		panic("format: no configuration for " + f.String())
	}
}

// InvoicesPerPage is shorthand for ConfigFor(f).InvoicesPerPage.
func InvoicesPerPage(f InvoiceFormat) int {
	return ConfigFor(f).InvoicesPerPage
}

// ContentBox returns the usable width and height of a slot once margins are
// removed.
func (c Config) ContentBox() Size {
	return Size{
		Width:  c.PageDimensions.Width - c.Margins.Left - c.Margins.Right,
		Height: c.PageDimensions.Height - c.Margins.Top - c.Margins.Bottom,
	}
}
