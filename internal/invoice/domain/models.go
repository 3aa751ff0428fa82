// Package domain contains the value objects of an invoice sheet batch.
package domain

import (
	"strings"
	"time"

	"github.com/smallbiznis/invoicesheet/internal/invoice/format"
)

// MaxBatchSize is the largest number of invoices one sheet batch may carry.
const MaxBatchSize = 100

// BusinessInfo identifies the seller printed on an invoice.
type BusinessInfo struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// InvoiceData is one billable record placed into a slot.
type InvoiceData struct {
	InvoiceNumber string        `json:"invoice_number"`
	Business      *BusinessInfo `json:"business,omitempty"`

	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	CustomerPhone   string `json:"customer_phone"`

	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	Amount      float64 `json:"amount"`
	Discount    float64 `json:"discount"`

	TrackingNumber string `json:"tracking_number,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
	Notes          string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Total is the amount due after discount. Discounts larger than the amount
// are not rejected here and yield a negative total.
func (i InvoiceData) Total() float64 {
	return i.Amount - i.Discount
}

// HasShipment reports whether any shipment metadata is present.
func (i InvoiceData) HasShipment() bool {
	return strings.TrimSpace(i.TrackingNumber) != "" || strings.TrimSpace(i.Carrier) != ""
}

// BarcodeValue is the value printed as the slot barcode: the tracking number
// when present, the invoice number otherwise.
func (i InvoiceData) BarcodeValue() string {
	if tracking := strings.TrimSpace(i.TrackingNumber); tracking != "" {
		return tracking
	}
	return strings.TrimSpace(i.InvoiceNumber)
}

// BatchRequest is an ordered list of invoices and the density to print them
// at. Invoices are placed in list order, slot 0 first.
type BatchRequest struct {
	Invoices []InvoiceData       `json:"invoices"`
	Format   format.InvoiceFormat `json:"format"`
}

// Document is a rendered, directly deliverable file.
type Document struct {
	BatchID      string
	Filename     string
	ContentType  string
	Format       format.InvoiceFormat
	InvoiceCount int
	PageCount    int
	GeneratedAt  time.Time
	Bytes        []byte
}

const ContentTypePDF = "application/pdf"
