package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/invoicesheet/internal/invoice/format"
)

type Service interface {
	// Generate renders every invoice of the batch into one paginated sheet
	// document. It returns either a complete document or an error.
	Generate(ctx context.Context, req BatchRequest) (*Document, error)
	// Manifest renders a packing list of the batch showing where each
	// invoice lands on the generated sheets.
	Manifest(ctx context.Context, req BatchRequest) (*Document, error)
}

// Filename suggests `invoices-{format}-{count}-{timestamp}.pdf`, with the
// format tag lower-cased and hyphenated and the timestamp in unix millis.
func Filename(f format.InvoiceFormat, count int, at time.Time) string {
	return buildFilename("invoices", f, count, at)
}

// ManifestFilename suggests `manifest-{format}-{count}-{timestamp}.pdf`.
func ManifestFilename(f format.InvoiceFormat, count int, at time.Time) string {
	return buildFilename("manifest", f, count, at)
}

func buildFilename(prefix string, f format.InvoiceFormat, count int, at time.Time) string {
	name := slug.Make(strings.ReplaceAll(f.String(), "_", "-"))
	return fmt.Sprintf("%s-%s-%d-%d.pdf", prefix, name, count, at.UnixMilli())
}
