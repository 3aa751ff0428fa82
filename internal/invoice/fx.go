package invoice

import (
	"github.com/smallbiznis/invoicesheet/internal/invoice/service"
	"github.com/smallbiznis/invoicesheet/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	pdf.Module,
	fx.Provide(service.NewService),
)
