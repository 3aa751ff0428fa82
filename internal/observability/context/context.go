package context

import (
	"context"
	"strings"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	batchIDKey   ctxKey = "batch_id"
)

// WithRequestID stores the inbound request identifier.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithBatchID stores the identifier of the batch being generated.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, batchID)
}

func BatchIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(batchIDKey).(string)
	return value
}

// Keys handlers set on the gin context so the request log and the server
// span can report which batch a request produced.
const (
	GinFormatKey       = "invoice_format"
	GinBatchIDKey      = "invoice_batch_id"
	GinInvoiceCountKey = "invoice_count"
)
