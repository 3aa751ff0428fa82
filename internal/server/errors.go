package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicesheet/internal/invoice/domain"
)

type errorPayload struct {
	Type    string                          `json:"type"`
	Message string                          `json:"message"`
	Errors  []invoicedomain.ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal = errors.New("internal_error")
	// ErrRequestTooLarge is returned when the body exceeds the configured limit.
	ErrRequestTooLarge = errors.New("request_too_large")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// bindError maps a failed body decode. A body cut short by MaxBodySize is
// reported as too large, anything else as an undecodable request.
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit %d bytes", ErrRequestTooLarge, tooLarge.Limit)
	}
	return invalidRequestError()
}

// invalidRequestError reports a body that could not be decoded at all.
func invalidRequestError() error {
	return &invoicedomain.ValidationErrors{
		Errors: []invoicedomain.ValidationError{
			{
				Field:   "request",
				Code:    "invalid_request",
				Message: "invalid request",
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		if isInvalidRequest(vErr) {
			return http.StatusBadRequest, errorPayload{
				Type:    "invalid_request",
				Message: "invalid request",
				Errors:  vErr.Errors,
			}
		}
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var bErr *invoicedomain.BarcodeError
	switch {
	case errors.As(err, &bErr):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "barcode_error",
			Message: bErr.Error(),
		}
	case errors.Is(err, ErrRequestTooLarge):
		return http.StatusRequestEntityTooLarge, errorPayload{
			Type:    "request_too_large",
			Message: "request body too large",
		}
	case errors.Is(err, invoicedomain.ErrRender):
		return http.StatusInternalServerError, errorPayload{
			Type:    "render_error",
			Message: "document could not be rendered",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *invoicedomain.ValidationErrors {
	var vErr *invoicedomain.ValidationErrors
	if errors.As(err, &vErr) {
		return vErr
	}
	return nil
}

func isInvalidRequest(vErr *invoicedomain.ValidationErrors) bool {
	return len(vErr.Errors) == 1 && vErr.Errors[0].Code == "invalid_request"
}

// classifyErrorForLog returns the error type and code written to request logs.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if vErr := asValidationErrors(err); vErr != nil {
		code := ""
		if len(vErr.Errors) > 0 {
			code = vErr.Errors[0].Code
		}
		if isInvalidRequest(vErr) {
			return "invalid_request", code
		}
		return "validation_error", code
	}

	var bErr *invoicedomain.BarcodeError
	if errors.As(err, &bErr) {
		return "barcode_error", bErr.Code
	}

	var rErr *invoicedomain.RenderError
	if errors.As(err, &rErr) {
		return "render_error", rErr.Op
	}

	status, payload := mapError(err)
	return payload.Type, http.StatusText(status)
}
