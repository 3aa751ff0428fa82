package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

// Provider renders auxiliary batch documents.
type Provider interface {
	GenerateManifest(ctx context.Context, data ManifestData) (io.Reader, error)
}
