package adapter

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/greenobird/service-booking/internal/domain/booking"
)

// InvoiceRenderer turns a booking into a downloadable document.
type InvoiceRenderer interface {
	Render(b *booking.Booking) ([]byte, error)
	ContentType() string
}

// PDFInvoiceRenderer draws a one-page A4 invoice.
type PDFInvoiceRenderer struct {
	businessName string
}

// NewPDFInvoiceRenderer creates a renderer headed with businessName.
func NewPDFInvoiceRenderer(businessName string) *PDFInvoiceRenderer {
	return &PDFInvoiceRenderer{businessName: businessName}
}

// ContentType is the MIME type of Render's output.
func (r *PDFInvoiceRenderer) ContentType() string { return "application/pdf" }

// Render draws the invoice. Content streams are left uncompressed so the
// invoice text can be searched in the raw file.
func (r *PDFInvoiceRenderer) Render(b *booking.Booking) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(false)
	pdf.SetTitle(r.businessName+" - Booking Invoice", false)
	pdf.SetCreator(r.businessName, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)

	orderID := b.PaymentOrderID()
	if orderID == "" {
		orderID = "N/A"
	}
	paymentID := b.PaymentID()
	if paymentID == "" {
		paymentID = "N/A"
	}

	lines := []string{
		r.businessName + " - Booking Invoice",
		"Name: " + b.Name(),
		"Email: " + b.Email(),
		"Check-In: " + b.CheckIn(),
		"Check-Out: " + b.CheckOut(),
		fmt.Sprintf("Guests: %d", b.Guests()),
		fmt.Sprintf("Amount Paid: INR %d", b.Amount()),
		"Order ID: " + orderID,
		"Payment ID: " + paymentID,
	}
	y := 42.0
	for _, line := range lines {
		pdf.Text(100, y, line)
		y += 20
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}
