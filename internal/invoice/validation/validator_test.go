package validation

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/smallbiznis/invoicesheet/internal/invoice/domain"
	"github.com/smallbiznis/invoicesheet/internal/invoice/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInvoice(n int) domain.InvoiceData {
	return domain.InvoiceData{
		InvoiceNumber:   fmt.Sprintf("INV-%03d", n),
		CustomerName:    "Budi Santoso",
		CustomerAddress: "Jl. Merdeka 10, Bandung",
		CustomerPhone:   "+62 812 0000 0000",
		Quantity:        1,
		Amount:          150000,
		CreatedAt:       time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
}

func batchOf(n int, f format.InvoiceFormat) domain.BatchRequest {
	invoices := make([]domain.InvoiceData, n)
	for i := range invoices {
		invoices[i] = validInvoice(i)
	}
	return domain.BatchRequest{Invoices: invoices, Format: f}
}

func asValidationErrors(t *testing.T, err error) *domain.ValidationErrors {
	t.Helper()
	var vErr *domain.ValidationErrors
	require.True(t, errors.As(err, &vErr), "expected ValidationErrors, got %v", err)
	return vErr
}

func TestValidate_AcceptsValidBatch(t *testing.T) {
	assert.NoError(t, Validate(batchOf(1, format.FullPage)))
	assert.NoError(t, Validate(batchOf(7, format.QuarterPage)))
}

func TestValidate_BatchSize(t *testing.T) {
	vErr := asValidationErrors(t, Validate(batchOf(0, format.HalfPage)))
	assert.True(t, vErr.HasCode(domain.CodeEmptyBatch))

	assert.NoError(t, Validate(batchOf(domain.MaxBatchSize, format.HalfPage)))

	vErr = asValidationErrors(t, Validate(batchOf(101, format.HalfPage)))
	require.Len(t, vErr.Errors, 1)
	assert.Equal(t, domain.CodeBatchTooLarge, vErr.Errors[0].Code)
	assert.Equal(t, 101, vErr.Errors[0].Params["requested"])
	assert.Equal(t, 100, vErr.Errors[0].Params["limit"])
}

func TestValidate_NegativeMoneyFieldsOnly(t *testing.T) {
	req := batchOf(2, format.FullPage)
	req.Invoices[1].Amount = -10.0
	req.Invoices[1].Discount = -5.0

	vErr := asValidationErrors(t, Validate(req))
	require.Len(t, vErr.Errors, 2)
	assert.Equal(t, domain.CodeMustBePositive, vErr.ForField("invoices[1].amount")[0].Code)
	assert.Equal(t, domain.CodeMustBeNonNegative, vErr.ForField("invoices[1].discount")[0].Code)
	assert.Empty(t, vErr.ForField("invoices[1].quantity"))
	assert.Empty(t, vErr.ForField("invoices[0].amount"))
}

func TestValidate_ReportsEverythingInOnePass(t *testing.T) {
	req := batchOf(3, format.InvoiceFormat(0))
	req.Invoices[0].InvoiceNumber = ""
	req.Invoices[0].CustomerName = "   "
	req.Invoices[1].CustomerAddress = ""
	req.Invoices[1].CustomerPhone = ""
	req.Invoices[2].Quantity = 0
	req.Invoices[2].Amount = math.NaN()

	vErr := asValidationErrors(t, Validate(req))
	assert.ErrorIs(t, vErr, domain.ErrValidation)

	fields := make([]string, 0, len(vErr.Errors))
	for _, e := range vErr.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"format",
		"invoices[0].invoice_number",
		"invoices[0].customer_name",
		"invoices[1].customer_address",
		"invoices[1].customer_phone",
		"invoices[2].quantity",
		"invoices[2].amount",
	}, fields)
}

func TestValidate_OptionalFieldsMayBeEmpty(t *testing.T) {
	req := batchOf(1, format.QuarterPage)
	req.Invoices[0].Business = nil
	req.Invoices[0].TrackingNumber = ""
	req.Invoices[0].Notes = ""
	req.Invoices[0].Discount = 0

	assert.NoError(t, Validate(req))
}
