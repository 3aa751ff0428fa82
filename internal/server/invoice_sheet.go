package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicesheet/internal/invoice/domain"
	"github.com/smallbiznis/invoicesheet/internal/invoice/format"
	obscontext "github.com/smallbiznis/invoicesheet/internal/observability/context"
)

const (
	headerBatchID      = "X-Batch-Id"
	headerPageCount    = "X-Page-Count"
	headerInvoiceCount = "X-Invoice-Count"
)

type invoiceSheetRequest struct {
	Format   string                      `json:"format"`
	Invoices []invoicedomain.InvoiceData `json:"invoices"`
}

func (s *Server) GenerateInvoiceSheet(c *gin.Context) {
	s.serveDocument(c, s.invoiceSvc.Generate)
}

func (s *Server) GenerateManifest(c *gin.Context) {
	s.serveDocument(c, s.invoiceSvc.Manifest)
}

type documentFunc func(ctx context.Context, req invoicedomain.BatchRequest) (*invoicedomain.Document, error)

func (s *Server) serveDocument(c *gin.Context, build documentFunc) {
	var req invoiceSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	// An unknown tag stays at the zero format so it is reported together
	// with every other validation failure.
	f, _ := format.ParseInvoiceFormat(req.Format)
	c.Set(obscontext.GinFormatKey, f.String())

	doc, err := build(c.Request.Context(), invoicedomain.BatchRequest{
		Invoices: req.Invoices,
		Format:   f,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(obscontext.GinBatchIDKey, doc.BatchID)
	c.Set(obscontext.GinInvoiceCountKey, doc.InvoiceCount)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Header(headerBatchID, doc.BatchID)
	c.Header(headerPageCount, strconv.Itoa(doc.PageCount))
	c.Header(headerInvoiceCount, strconv.Itoa(doc.InvoiceCount))
	c.Data(http.StatusOK, doc.ContentType, doc.Bytes)
}
