package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation_error")
	ErrBarcode    = errors.New("barcode_error")
	ErrRender     = errors.New("render_error")
)

// Validation codes.
const (
	CodeEmptyBatch        = "empty_batch"
	CodeBatchTooLarge     = "batch_too_large"
	CodeRequired          = "required"
	CodeMustBePositive    = "must_be_positive"
	CodeMustBeNonNegative = "must_be_non_negative"
	CodeInvalidFormat     = "invalid_format"
)

// ValidationError is one rule violation on one field path such as
// "invoices[3].amount".
type ValidationError struct {
	Field   string         `json:"field"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// ValidationErrors collects every violation found in a batch.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation error"
	}
	parts := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		parts = append(parts, e.Field+": "+e.Code)
	}
	return "validation error: " + strings.Join(parts, ", ")
}

func (v *ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

func (v *ValidationErrors) Add(field, code, message string) {
	v.Errors = append(v.Errors, ValidationError{Field: field, Code: code, Message: message})
}

// HasCode reports whether any violation carries code.
func (v *ValidationErrors) HasCode(code string) bool {
	for _, e := range v.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// ForField returns the violations recorded against field.
func (v *ValidationErrors) ForField(field string) []ValidationError {
	var out []ValidationError
	for _, e := range v.Errors {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// Barcode error codes.
const (
	BarcodeEmptyValue        = "empty_value"
	BarcodeInvalidCharacters = "invalid_characters"
	BarcodeUnencodable       = "unencodable"
)

// BarcodeError reports a value that cannot be printed as a slot barcode.
// InvoiceIndex is -1 until the failing invoice is known.
type BarcodeError struct {
	Code          string
	Value         string
	InvoiceIndex  int
	InvoiceNumber string
	Err           error
}

func (e *BarcodeError) Error() string {
	msg := fmt.Sprintf("barcode %s: %q", e.Code, e.Value)
	if e.InvoiceIndex >= 0 {
		msg = fmt.Sprintf("invoice %d (%s): %s", e.InvoiceIndex, e.InvoiceNumber, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BarcodeError) Is(target error) bool {
	return target == ErrBarcode
}

func (e *BarcodeError) Unwrap() error {
	return e.Err
}

// RenderError is an unexpected failure while drawing or encoding the
// document. Page and InvoiceIndex are -1 when the failure is not tied to one.
type RenderError struct {
	Page         int
	InvoiceIndex int
	Op           string
	Err          error
}

func (e *RenderError) Error() string {
	msg := "render " + e.Op
	if e.Page >= 0 {
		msg += fmt.Sprintf(" page %d", e.Page)
	}
	if e.InvoiceIndex >= 0 {
		msg += fmt.Sprintf(" invoice %d", e.InvoiceIndex)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
