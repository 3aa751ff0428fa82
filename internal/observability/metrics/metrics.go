package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeBarcodeError    = "barcode_error"
	OutcomeRenderError     = "render_error"
	OutcomeCanceled        = "canceled"
)

// Config configures metric labels.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics exposes invoice sheet generation instruments.
type Metrics struct {
	generations      *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	invoicesRendered *prometheus.CounterVec
	pagesRendered    *prometheus.CounterVec
}

// New registers the generation instruments on registerer.
func New(cfg Config, registerer prometheus.Registerer) (*Metrics, error) {
	constLabels := constLabels(cfg)

	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicesheet_generations_total",
			Help:        "Invoice sheet generation requests by format and outcome.",
			ConstLabels: constLabels,
		}, []string{"format", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "invoicesheet_generation_duration_seconds",
			Help:        "Time to turn a batch into a finished document.",
			Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		}, []string{"format"}),
		invoicesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicesheet_invoices_rendered_total",
			Help:        "Invoices placed on generated sheets.",
			ConstLabels: constLabels,
		}, []string{"format"}),
		pagesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicesheet_pages_rendered_total",
			Help:        "Physical pages emitted in generated sheets.",
			ConstLabels: constLabels,
		}, []string{"format"}),
	}

	for _, c := range []prometheus.Collector{m.generations, m.duration, m.invoicesRendered, m.pagesRendered} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordGeneration records one Generate or Manifest call. Invoice and page
// counts only move on success.
func (m *Metrics) RecordGeneration(format, outcome string, invoices, pages int, elapsed time.Duration) {
	if m == nil {
		return
	}
	format = label(format)
	m.generations.WithLabelValues(format, label(outcome)).Inc()
	m.duration.WithLabelValues(format).Observe(elapsed.Seconds())
	if outcome != OutcomeSuccess {
		return
	}
	m.invoicesRendered.WithLabelValues(format).Add(float64(invoices))
	m.pagesRendered.WithLabelValues(format).Add(float64(pages))
}

// GenerationCounter exposes one generation series for assertions.
func (m *Metrics) GenerationCounter(format, outcome string) prometheus.Counter {
	return m.generations.WithLabelValues(label(format), label(outcome))
}

// HTTPMetrics tracks inbound request volume and latency.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(cfg Config, registerer prometheus.Registerer) (*HTTPMetrics, error) {
	constLabels := constLabels(cfg)

	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicesheet_http_requests_total",
			Help:        "HTTP requests by route, method and status code.",
			ConstLabels: constLabels,
		}, []string{"route", "method", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "invoicesheet_http_request_duration_seconds",
			Help:        "HTTP request latency by route.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"route", "method"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GinMiddleware records every request under its route template so unmatched
// paths collapse into a single series.
func (m *HTTPMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "invoicesheet"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}

func label(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
