// Package invoice renders printable PDF invoices from Shopify orders.
package invoice

import "fmt"

// CompanyProfile holds the merchant display fields printed on every invoice.
// It is supplied once at startup and reused for each document.
type CompanyProfile struct {
	Name    string
	Address string
	Phone   string
	Email   string
	TaxID   string
}

// RenderedInvoice is a persisted invoice document on the local filesystem.
// The orchestrator owns it until it is uploaded and/or deleted.
type RenderedInvoice struct {
	Path        string
	OrderNumber string
}

// UploadResult describes an invoice document stored in the cloud drive.
type UploadResult struct {
	DocumentID  string
	WebURL      string
	DownloadURL string
}

// RenderError indicates the order data is insufficient or malformed for the
// invoice layout.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render invoice: %s: %v", e.Reason, e.Err)
	}
	return "render invoice: " + e.Reason
}

func (e *RenderError) Unwrap() error { return e.Err }
