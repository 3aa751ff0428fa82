package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	invoicedomain "github.com/smallbiznis/invoicesheet/internal/invoice/domain"
	"github.com/smallbiznis/invoicesheet/internal/invoice/format"
	"github.com/smallbiznis/invoicesheet/internal/observability"
	obsmetrics "github.com/smallbiznis/invoicesheet/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) Generate(ctx context.Context, req invoicedomain.BatchRequest) (*invoicedomain.Document, error) {
	args := m.Called(ctx, req)
	doc, _ := args.Get(0).(*invoicedomain.Document)
	return doc, args.Error(1)
}

func (m *mockInvoiceService) Manifest(ctx context.Context, req invoicedomain.BatchRequest) (*invoicedomain.Document, error) {
	args := m.Called(ctx, req)
	doc, _ := args.Get(0).(*invoicedomain.Document)
	return doc, args.Error(1)
}

func newTestServer(t *testing.T, svc invoicedomain.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	httpMetrics, err := obsmetrics.NewHTTPMetrics(obsmetrics.Config{}, reg)
	require.NoError(t, err)

	engine := NewEngine(EngineParams{
		ObsCfg:      observability.Config{Environment: "test"},
		HTTPMetrics: httpMetrics,
		Gatherer:    reg,
	})
	NewServer(ServerParams{Gin: engine, InvoiceSvc: svc})
	return engine
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func sampleBody(formatTag string, n int) gin.H {
	invoices := make([]gin.H, n)
	for i := range invoices {
		invoices[i] = gin.H{
			"invoice_number":   fmt.Sprintf("INV-%d", i+1),
			"customer_name":    "Dewi",
			"customer_address": "Jl. Sudirman 1",
			"customer_phone":   "0811",
			"quantity":         1,
			"amount":           1000,
			"discount":         0,
			"created_at":       "2026-10-14T08:00:00Z",
		}
	}
	return gin.H{"format": formatTag, "invoices": invoices}
}

func TestGenerateInvoiceSheet_ReturnsPDF(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("Generate", mock.Anything, mock.MatchedBy(func(req invoicedomain.BatchRequest) bool {
		return req.Format == format.QuarterPage && len(req.Invoices) == 3 && req.Invoices[2].InvoiceNumber == "INV-3"
	})).Return(&invoicedomain.Document{
		BatchID:      "1234567890",
		Filename:     "invoices-quarter-page-3-1791969300123.pdf",
		ContentType:  invoicedomain.ContentTypePDF,
		Format:       format.QuarterPage,
		InvoiceCount: 3,
		PageCount:    1,
		GeneratedAt:  time.Now(),
		Bytes:        []byte("%PDF-1.3 test"),
	}, nil).Once()

	w := postJSON(t, newTestServer(t, svc), "/api/invoice-sheets", sampleBody("quarter-page", 3))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, invoicedomain.ContentTypePDF, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoices-quarter-page-3-1791969300123.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "1234567890", w.Header().Get(headerBatchID))
	assert.Equal(t, "1", w.Header().Get(headerPageCount))
	assert.Equal(t, "3", w.Header().Get(headerInvoiceCount))
	assert.Equal(t, "%PDF-1.3 test", w.Body.String())
	svc.AssertExpectations(t)
}

func TestGenerateInvoiceSheet_ValidationErrors(t *testing.T) {
	verrs := &invoicedomain.ValidationErrors{}
	verrs.Add("format", invoicedomain.CodeInvalidFormat, "format is not supported")
	verrs.Add("invoices[0].amount", invoicedomain.CodeMustBePositive, "amount must be greater than zero")

	svc := &mockInvoiceService{}
	svc.On("Generate", mock.Anything, mock.MatchedBy(func(req invoicedomain.BatchRequest) bool {
		return req.Format == 0
	})).Return(nil, verrs).Once()

	w := postJSON(t, newTestServer(t, svc), "/api/invoice-sheets", sampleBody("A5", 1))

	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeError(t, w)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 2)
	assert.Equal(t, "format", payload.Errors[0].Field)
	assert.Equal(t, invoicedomain.CodeMustBePositive, payload.Errors[1].Code)
}

func TestGenerateInvoiceSheet_MalformedJSON(t *testing.T) {
	svc := &mockInvoiceService{}
	r := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/invoice-sheets", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decodeError(t, w).Type)
	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateInvoiceSheet_BodyTooLarge(t *testing.T) {
	svc := &mockInvoiceService{}
	r := newTestServer(t, svc)

	body := `{"format":"FULL_PAGE","invoices":[],"note":"` + strings.Repeat("x", maxRequestBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/invoice-sheets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "request_too_large", decodeError(t, w).Type)
	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateInvoiceSheet_BarcodeError(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("Generate", mock.Anything, mock.Anything).Return(nil, &invoicedomain.BarcodeError{
		Code:          invoicedomain.BarcodeInvalidCharacters,
		Value:         "JNE 1",
		InvoiceIndex:  0,
		InvoiceNumber: "INV-1",
	}).Once()

	w := postJSON(t, newTestServer(t, svc), "/api/invoice-sheets", sampleBody("FULL_PAGE", 1))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "barcode_error", decodeError(t, w).Type)
}

func TestGenerateInvoiceSheet_RenderError(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("Generate", mock.Anything, mock.Anything).Return(nil, &invoicedomain.RenderError{
		Page: 1, InvoiceIndex: 0, Op: "draw",
	}).Once()

	w := postJSON(t, newTestServer(t, svc), "/api/invoice-sheets", sampleBody("HALF_PAGE", 1))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "render_error", decodeError(t, w).Type)
}

func TestGenerateManifest_UsesManifestService(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("Manifest", mock.Anything, mock.Anything).Return(&invoicedomain.Document{
		BatchID:      "42",
		Filename:     "manifest-full-page-1-1.pdf",
		ContentType:  invoicedomain.ContentTypePDF,
		InvoiceCount: 1,
		PageCount:    1,
		Bytes:        []byte("%PDF-"),
	}, nil).Once()

	w := postJSON(t, newTestServer(t, svc), "/api/invoice-sheets/manifest", sampleBody("FULL_PAGE", 1))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "manifest-full-page-1-1.pdf")
	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	svc.AssertExpectations(t)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestServer(t, &mockInvoiceService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invoicesheet_http_requests_total")
}

func TestClassifyErrorForLog(t *testing.T) {
	verrs := &invoicedomain.ValidationErrors{}
	verrs.Add("invoices", invoicedomain.CodeEmptyBatch, "at least one invoice is required")

	cases := []struct {
		name     string
		err      error
		wantType string
		wantCode string
	}{
		{name: "validation", err: verrs, wantType: "validation_error", wantCode: invoicedomain.CodeEmptyBatch},
		{name: "invalid_request", err: invalidRequestError(), wantType: "invalid_request", wantCode: "invalid_request"},
		{name: "barcode", err: &invoicedomain.BarcodeError{Code: invoicedomain.BarcodeUnencodable}, wantType: "barcode_error", wantCode: invoicedomain.BarcodeUnencodable},
		{name: "render", err: &invoicedomain.RenderError{Page: -1, InvoiceIndex: -1, Op: "output"}, wantType: "render_error", wantCode: "output"},
		{name: "too_large", err: bindError(&http.MaxBytesError{Limit: 16}), wantType: "request_too_large", wantCode: "Request Entity Too Large"},
		{name: "undecodable", err: bindError(fmt.Errorf("unexpected EOF")), wantType: "invalid_request", wantCode: "invalid_request"},
		{name: "unknown", err: ErrInternal, wantType: "internal_error", wantCode: "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotType, gotCode := classifyErrorForLog(tc.err)
			assert.Equal(t, tc.wantType, gotType)
			assert.Equal(t, tc.wantCode, gotCode)
		})
	}
}
