package tracing

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/invoicesheet/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// GinMiddleware opens a server span per request. The span is renamed after
// the matched route and tagged with the batch the handler produced, if any.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("invoicesheet/http")
	return func(c *gin.Context) {
		method := strings.ToUpper(c.Request.Method)
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if id := obscontext.RequestIDFromContext(ctx); id != "" {
			ctx = withRequestBaggage(ctx, id)
			span.SetAttributes(attribute.String("request_id", id))
		}
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		span.SetName("HTTP " + method + " " + route)
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", c.Writer.Status()),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		)...)
		span.SetAttributes(batchAttributes(c)...)

		if c.Writer.Status() >= http.StatusInternalServerError {
			if last := c.Errors.Last(); last != nil {
				if safe := SafeError(last.Err); safe != nil {
					span.RecordError(safe)
				}
			}
			span.SetStatus(codes.Error, "request error")
		}
	}
}

// withRequestBaggage forwards the request id to downstream calls. An id
// that is not a valid baggage value is dropped silently.
func withRequestBaggage(ctx context.Context, id string) context.Context {
	member, err := baggage.NewMember("request_id", id)
	if err != nil {
		return ctx
	}
	bag, err := baggage.FromContext(ctx).SetMember(member)
	if err != nil {
		return ctx
	}
	return baggage.ContextWithBaggage(ctx, bag)
}

func batchAttributes(c *gin.Context) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if v := c.GetString(obscontext.GinFormatKey); v != "" {
		attrs = append(attrs, attribute.String("invoice.format", v))
	}
	if v := c.GetString(obscontext.GinBatchIDKey); v != "" {
		attrs = append(attrs, attribute.String("invoice.batch_id", v))
	}
	if v := c.GetInt(obscontext.GinInvoiceCountKey); v > 0 {
		attrs = append(attrs, attribute.Int("invoice.count", v))
	}
	return attrs
}
