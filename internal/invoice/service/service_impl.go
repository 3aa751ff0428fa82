package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicesheet/internal/clock"
	"github.com/smallbiznis/invoicesheet/internal/config"
	invoicedomain "github.com/smallbiznis/invoicesheet/internal/invoice/domain"
	"github.com/smallbiznis/invoicesheet/internal/invoice/format"
	"github.com/smallbiznis/invoicesheet/internal/invoice/layout"
	"github.com/smallbiznis/invoicesheet/internal/invoice/render"
	"github.com/smallbiznis/invoicesheet/internal/invoice/validation"
	obscontext "github.com/smallbiznis/invoicesheet/internal/observability/context"
	"github.com/smallbiznis/invoicesheet/internal/observability/logger"
	"github.com/smallbiznis/invoicesheet/internal/observability/metrics"
	"github.com/smallbiznis/invoicesheet/internal/observability/tracing"
	"github.com/smallbiznis/invoicesheet/internal/providers/pdf"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Manifest pdf.Provider

	Metrics  *metrics.Metrics             `optional:"true"`
	Settings *config.RenderSettingsHolder `optional:"true"`
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	manifest pdf.Provider
	metrics  *metrics.Metrics
	settings *config.RenderSettingsHolder
	tracer   trace.Tracer
}

func NewService(p ServiceParam) invoicedomain.Service {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	return &Service{
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: c,

		manifest: p.Manifest,
		metrics:  p.Metrics,
		settings: p.Settings,
		tracer:   otel.Tracer("invoicesheet/invoice"),
	}
}

// batch is a validated request laid out onto pages and stamped with an id.
type batch struct {
	id    string
	at    time.Time
	req   invoicedomain.BatchRequest
	pages []layout.Page
}

func (s *Service) Generate(ctx context.Context, req invoicedomain.BatchRequest) (*invoicedomain.Document, error) {
	ctx, span := s.tracer.Start(ctx, "invoicesheet.generate", trace.WithAttributes(requestAttributes(req)...))
	defer span.End()

	start := time.Now()
	doc, err := s.generate(ctx, req)
	s.observe(ctx, span, "generate", req, doc, err, time.Since(start))
	return doc, err
}

func (s *Service) generate(ctx context.Context, req invoicedomain.BatchRequest) (*invoicedomain.Document, error) {
	b, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	ctx = obscontext.WithBatchID(ctx, b.id)

	settings := s.settings.Get()
	assembler := render.NewAssembler(logger.WithContext(ctx, s.log), render.Options{
		Workers: settings.Workers,
		Metadata: render.Metadata{
			Title:   settings.Title,
			Author:  settings.Author,
			Creator: settings.Creator,
			Subject: fmt.Sprintf("%d invoices, %s", len(req.Invoices), req.Format),
		},
		CreatedAt: b.at,
		Verify:    settings.VerifyOutput,
	})

	out, err := assembler.Assemble(ctx, b.pages, req.Invoices, req.Format)
	if err != nil {
		return nil, err
	}

	return &invoicedomain.Document{
		BatchID:      b.id,
		Filename:     invoicedomain.Filename(req.Format, len(req.Invoices), b.at),
		ContentType:  invoicedomain.ContentTypePDF,
		Format:       req.Format,
		InvoiceCount: len(req.Invoices),
		PageCount:    len(b.pages),
		GeneratedAt:  b.at,
		Bytes:        out,
	}, nil
}

func (s *Service) Manifest(ctx context.Context, req invoicedomain.BatchRequest) (*invoicedomain.Document, error) {
	ctx, span := s.tracer.Start(ctx, "invoicesheet.manifest", trace.WithAttributes(requestAttributes(req)...))
	defer span.End()

	start := time.Now()
	doc, err := s.buildManifest(ctx, req)
	s.observe(ctx, span, "manifest", req, doc, err, time.Since(start))
	return doc, err
}

func (s *Service) buildManifest(ctx context.Context, req invoicedomain.BatchRequest) (*invoicedomain.Document, error) {
	b, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	ctx = obscontext.WithBatchID(ctx, b.id)

	reader, err := s.manifest.GenerateManifest(ctx, manifestData(b))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &invoicedomain.RenderError{Page: -1, InvoiceIndex: -1, Op: "manifest", Err: err}
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, &invoicedomain.RenderError{Page: -1, InvoiceIndex: -1, Op: "manifest", Err: err}
	}
	pages, err := render.PageCount(out)
	if err != nil {
		return nil, &invoicedomain.RenderError{Page: -1, InvoiceIndex: -1, Op: "verify", Err: err}
	}

	return &invoicedomain.Document{
		BatchID:      b.id,
		Filename:     invoicedomain.ManifestFilename(req.Format, len(req.Invoices), b.at),
		ContentType:  invoicedomain.ContentTypePDF,
		Format:       req.Format,
		InvoiceCount: len(req.Invoices),
		PageCount:    pages,
		GeneratedAt:  b.at,
		Bytes:        out,
	}, nil
}

func (s *Service) prepare(req invoicedomain.BatchRequest) (batch, error) {
	if err := validation.Validate(req); err != nil {
		return batch{}, err
	}
	capacity := format.InvoicesPerPage(req.Format)
	return batch{
		id:    s.genID.Generate().String(),
		at:    s.clock.Now(),
		req:   req,
		pages: layout.Paginate(len(req.Invoices), capacity),
	}, nil
}

func manifestData(b batch) pdf.ManifestData {
	placements := layout.Placements(b.pages)
	rows := make([]pdf.ManifestRow, 0, len(placements))
	var total float64
	for _, p := range placements {
		inv := b.req.Invoices[p.Invoice]
		total += inv.Total()
		rows = append(rows, pdf.ManifestRow{
			Page:           p.Page,
			Slot:           p.Slot + 1,
			InvoiceNumber:  inv.InvoiceNumber,
			CustomerName:   inv.CustomerName,
			Carrier:        inv.Carrier,
			TrackingNumber: inv.TrackingNumber,
			Total:          fmt.Sprintf("%.2f", inv.Total()),
		})
	}
	return pdf.ManifestData{
		BatchID:      b.id,
		Format:       b.req.Format.String(),
		GeneratedAt:  b.at.Format(time.RFC3339),
		InvoiceCount: len(b.req.Invoices),
		PageCount:    len(b.pages),
		TotalAmount:  fmt.Sprintf("%.2f", total),
		Rows:         rows,
	}
}

func (s *Service) observe(ctx context.Context, span trace.Span, op string, req invoicedomain.BatchRequest, doc *invoicedomain.Document, err error, elapsed time.Duration) {
	outcome := Outcome(err)
	pages := 0
	if doc != nil {
		pages = doc.PageCount
		ctx = obscontext.WithBatchID(ctx, doc.BatchID)
		span.SetAttributes(
			attribute.String("batch_id", doc.BatchID),
			attribute.Int("invoice.pages", doc.PageCount),
		)
	}
	s.metrics.RecordGeneration(req.Format.String(), outcome, len(req.Invoices), pages, elapsed)

	log := logger.ForBatch(ctx, s.log, logger.Batch{
		Op:       op,
		Format:   req.Format.String(),
		Invoices: len(req.Invoices),
	}).With(zap.Duration("elapsed", elapsed))
	if err == nil {
		log.Info("invoice sheet generated",
			zap.Int("page_count", pages),
			zap.Int("bytes", len(doc.Bytes)),
		)
		return
	}

	span.SetAttributes(attribute.String("outcome", outcome))
	if safeErr := tracing.SafeError(err); safeErr != nil {
		span.RecordError(safeErr)
	}
	span.SetStatus(codes.Error, outcome)

	switch outcome {
	case metrics.OutcomeRenderError:
		log.Error("invoice sheet generation failed", zap.String("outcome", outcome), zap.Error(err))
	default:
		log.Warn("invoice sheet generation rejected", zap.String("outcome", outcome), zap.Error(err))
	}
}

// Outcome classifies a Generate or Manifest error into a metric outcome.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, invoicedomain.ErrValidation):
		return metrics.OutcomeValidationError
	case errors.Is(err, invoicedomain.ErrBarcode):
		return metrics.OutcomeBarcodeError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeRenderError
	}
}

func requestAttributes(req invoicedomain.BatchRequest) []attribute.KeyValue {
	return tracing.SafeAttributes(
		attribute.String("invoice.format", req.Format.String()),
		attribute.Int("invoice.count", len(req.Invoices)),
	)
}
