package logger

import (
	"context"
	"fmt"
	"strings"
	"time"

	obscontext "github.com/smallbiznis/invoicesheet/internal/observability/context"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the zap logger. Zero sampling values fall back to 100
// identical entries per second, then every 100th.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	Level       string
	Format      string

	SamplingInitial     int
	SamplingThereafter  int
	IncludeCaller       bool
	IncludeStackOnError bool
}

// New builds the process logger, installs it as the zap global and flushes
// it on shutdown.
func New(lc fx.Lifecycle, cfg Config) (*zap.Logger, error) {
	zapCfg, err := cfg.zapConfig()
	if err != nil {
		return nil, err
	}

	log, err := zapCfg.Build(cfg.options()...)
	if err != nil {
		return nil, err
	}
	log = log.With(cfg.identity()...)
	zap.ReplaceGlobals(log)

	if lc != nil {
		lc.Append(fx.StopHook(func() {
			_ = log.Sync()
		}))
	}
	return log, nil
}

func (cfg Config) zapConfig() (zap.Config, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = normalizeFormat(cfg.Format)
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stdout"}
	zc.ErrorOutputPaths = []string{"stderr"}
	// Sampling is wired through options so the window is fixed.
	zc.Sampling = nil

	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	if err := zc.Level.UnmarshalText([]byte(level)); err != nil {
		return zap.Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zc, nil
}

func (cfg Config) options() []zap.Option {
	var opts []zap.Option
	if cfg.IncludeCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.IncludeStackOnError {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	initial, thereafter := orDefault(cfg.SamplingInitial, 100), orDefault(cfg.SamplingThereafter, 100)
	opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewSamplerWithOptions(core, time.Second, initial, thereafter)
	}))
	return opts
}

func (cfg Config) identity() []zap.Field {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "invoicesheet"
	}
	return []zap.Field{
		zap.String("service", name),
		zap.String("env", strings.TrimSpace(cfg.Environment)),
		zap.String("version", strings.TrimSpace(cfg.Version)),
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func normalizeFormat(format string) string {
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		return "console"
	}
	return "json"
}

// FromContext returns the global logger enriched with request-scoped fields.
func FromContext(ctx context.Context) *zap.Logger {
	return WithContext(ctx, zap.L())
}

// WithContext adds request id, batch id and trace ids found in ctx. Ids
// that are not set are left out.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil || base == nil {
		return base
	}

	var fields []zap.Field
	if id := obscontext.RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := obscontext.BatchIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("batch_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return base.With(fields...)
}

// Batch names the generation call a log line belongs to.
type Batch struct {
	Op       string
	Format   string
	Invoices int
}

// ForBatch is WithContext plus the operation, format and invoice count of
// one generation call.
func ForBatch(ctx context.Context, base *zap.Logger, b Batch) *zap.Logger {
	log := WithContext(ctx, base)
	if log == nil {
		return nil
	}
	return log.With(
		zap.String("op", b.Op),
		zap.String("format", b.Format),
		zap.Int("invoice_count", b.Invoices),
	)
}
