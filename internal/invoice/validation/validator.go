// Package validation checks a sheet batch before any rendering starts.
package validation

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/invoicesheet/internal/invoice/domain"
)

// Validate evaluates every batch and field rule and returns all violations
// at once as *domain.ValidationErrors, or nil when the batch is printable.
func Validate(req domain.BatchRequest) error {
	errs := &domain.ValidationErrors{}

	switch count := len(req.Invoices); {
	case count == 0:
		errs.Add("invoices", domain.CodeEmptyBatch, "batch must contain at least one invoice")
	case count > domain.MaxBatchSize:
		errs.Errors = append(errs.Errors, domain.ValidationError{
			Field:   "invoices",
			Code:    domain.CodeBatchTooLarge,
			Message: fmt.Sprintf("batch contains %d invoices, limit is %d", count, domain.MaxBatchSize),
			Params: map[string]any{
				"requested": count,
				"limit":     domain.MaxBatchSize,
			},
		})
	}

	if !req.Format.Valid() {
		errs.Add("format", domain.CodeInvalidFormat, "format must be one of FULL_PAGE, HALF_PAGE, QUARTER_PAGE")
	}

	for i, inv := range req.Invoices {
		validateInvoice(errs, fmt.Sprintf("invoices[%d]", i), inv)
	}

	if len(errs.Errors) > 0 {
		return errs
	}
	return nil
}

func validateInvoice(errs *domain.ValidationErrors, path string, inv domain.InvoiceData) {
	required := []struct {
		field string
		value string
	}{
		{"invoice_number", inv.InvoiceNumber},
		{"customer_name", inv.CustomerName},
		{"customer_address", inv.CustomerAddress},
		{"customer_phone", inv.CustomerPhone},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs.Add(path+"."+r.field, domain.CodeRequired, r.field+" is required")
		}
	}

	// Negated comparisons so NaN is rejected too.
	if !(inv.Amount > 0) {
		errs.Add(path+".amount", domain.CodeMustBePositive, "amount must be greater than zero")
	}
	if inv.Quantity <= 0 {
		errs.Add(path+".quantity", domain.CodeMustBePositive, "quantity must be a positive integer")
	}
	if !(inv.Discount >= 0) {
		errs.Add(path+".discount", domain.CodeMustBeNonNegative, "discount must not be negative")
	}
}
