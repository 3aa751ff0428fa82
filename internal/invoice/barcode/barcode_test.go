package barcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/smallbiznis/invoicesheet/internal/invoice/domain"
	"github.com/smallbiznis/invoicesheet/internal/invoice/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func barcodeCode(t *testing.T, err error) string {
	t.Helper()
	var bErr *domain.BarcodeError
	require.True(t, errors.As(err, &bErr), "expected BarcodeError, got %v", err)
	return bErr.Code
}

func TestSpecFor_TotalAddsQuietZone(t *testing.T) {
	for _, f := range format.All() {
		spec := SpecFor("RA02361192", f)
		content := format.ConfigFor(f).BarcodeSize

		assert.Equal(t, content, spec.Content, f.String())
		assert.Equal(t, content.Width+4, spec.Total().Width, f.String())
		assert.Equal(t, content.Height+4, spec.Total().Height, f.String())
	}
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue("RA02361192"))
	assert.NoError(t, ValidateValue("INV_2026-0001"))

	assert.Equal(t, domain.BarcodeEmptyValue, barcodeCode(t, ValidateValue("")))
	assert.Equal(t, domain.BarcodeEmptyValue, barcodeCode(t, ValidateValue("   ")))
	assert.Equal(t, domain.BarcodeInvalidCharacters, barcodeCode(t, ValidateValue("RA 023-61192!")))
	assert.Equal(t, domain.BarcodeInvalidCharacters, barcodeCode(t, ValidateValue("RA023!")))
	assert.Equal(t, domain.BarcodeInvalidCharacters, barcodeCode(t, ValidateValue("ÄB12")))
}

func TestEncode_LaysBarsOutInsideQuietZone(t *testing.T) {
	for _, f := range format.All() {
		sym, err := Encode("RA02361192", f)
		require.NoError(t, err, f.String())

		spec := SpecFor("RA02361192", f)
		total := spec.Total()
		assert.Equal(t, total, sym.Size(), f.String())
		assert.Equal(t, Rect{W: total.Width, H: total.Height}, sym.Background, f.String())

		require.NotEmpty(t, sym.Bars, f.String())
		assert.InDelta(t, spec.Content.Width, float64(sym.Modules)*sym.ModuleWidth, 1e-9, f.String())
		assert.GreaterOrEqual(t, sym.ModuleWidth, MinModuleWidth, f.String())

		first, last := sym.Bars[0], sym.Bars[len(sym.Bars)-1]
		assert.InDelta(t, MarginMM, first.X, 1e-9, "%s: first bar must start one margin in", f)
		assert.InDelta(t, MarginMM+spec.Content.Width, last.X+last.W, 1e-9, "%s: last bar must end one margin in", f)

		prevEnd := 0.0
		for i, bar := range sym.Bars {
			assert.Equal(t, MarginMM, bar.Y, "%s bar %d", f, i)
			assert.Equal(t, spec.Content.Height, bar.H, "%s bar %d", f, i)
			assert.Greater(t, bar.W, 0.0, "%s bar %d", f, i)
			assert.GreaterOrEqual(t, bar.X, MarginMM-1e-9, "%s bar %d", f, i)
			assert.LessOrEqual(t, bar.X+bar.W, MarginMM+spec.Content.Width+1e-9, "%s bar %d", f, i)
			if i > 0 {
				assert.Greater(t, bar.X, prevEnd, "%s bar %d overlaps or touches its neighbour", f, i)
			}
			prevEnd = bar.X + bar.W
		}
	}
}

func TestEncode_SameValueSameBars(t *testing.T) {
	a, err := Encode("RA02361192", format.HalfPage)
	require.NoError(t, err)
	b, err := Encode("RA02361192", format.HalfPage)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Encode("RA02361193", format.HalfPage)
	require.NoError(t, err)
	assert.NotEqual(t, a.Bars, c.Bars)
}

func TestEncode_RejectsInvalidValues(t *testing.T) {
	_, err := Encode("", format.FullPage)
	assert.Equal(t, domain.BarcodeEmptyValue, barcodeCode(t, err))
	assert.ErrorIs(t, err, domain.ErrBarcode)

	_, err = Encode("RA 023-61192!", format.HalfPage)
	assert.Equal(t, domain.BarcodeInvalidCharacters, barcodeCode(t, err))
}

func TestEncode_TooLongForSymbolWidth(t *testing.T) {
	_, err := Encode(strings.Repeat("AB", 120), format.QuarterPage)
	assert.Equal(t, domain.BarcodeUnencodable, barcodeCode(t, err))
}
