package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"travelgateway/internal/domain/models"
	"travelgateway/internal/gateway"
	"travelgateway/internal/utils"
)

// DocsService renders the booking receipt PDF.
type DocsService struct {
	Bookings  BookingService
	RequestID string
	Now       func() time.Time
	Loader    func(ctx context.Context, id string) (models.Booking, error)
}

func (s DocsService) GenerateReceipt(ctx context.Context, p gateway.Principal, id string) ([]byte, string, error) {
	b, err := s.loadBooking(ctx, p, id)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_receipt", "booking_id="+b.ID)
	return buildReceiptPDF(b, s.now())
}

func (s DocsService) loadBooking(ctx context.Context, p gateway.Principal, id string) (models.Booking, error) {
	if s.Loader != nil {
		return s.Loader(ctx, id)
	}
	return s.Bookings.GetBooking(ctx, p, id)
}

func (s DocsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func buildReceiptPDF(b models.Booking, now time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Reference : "+safe(b.BookingReference, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued    : "+utils.FormatDateTime(now))
	pdf.Ln(10)

	travel := "to be scheduled"
	if b.TravelDate != nil {
		travel = utils.FormatDate(*b.TravelDate)
	}
	lines := []string{
		fmt.Sprintf("%-16s: %s", itemLabel(b.ItemKind), safe(b.Item.Name, "-")),
		fmt.Sprintf("%-16s: %s", "Location", safe(b.Item.Location, "-")),
		fmt.Sprintf("%-16s: %s", "Travel date", travel),
		fmt.Sprintf("%-16s: %d", "Seats", b.Seats),
		fmt.Sprintf("%-16s: %s", "Price per person", pdfAmount(b.Item.Price)),
		fmt.Sprintf("%-16s: %s", "Booking status", safe(b.BookingStatus.String(), "-")),
		fmt.Sprintf("%-16s: %s", "Payment status", safe(b.PaymentStatus.String(), "-")),
	}
	if pd := b.PaymentDetails; pd != nil {
		lines = append(lines,
			fmt.Sprintf("%-16s: %s", "Payment method", safe(pd.Method, "-")),
			fmt.Sprintf("%-16s: %s", "Transaction", safe(pd.TransactionID, "-")),
		)
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Total: "+pdfAmount(b.TotalAmount))
	pdf.Ln(12)

	est := EstimateRefund(b, now)
	pdf.SetFont("Helvetica", "I", 10)
	note := "This booking can no longer be cancelled."
	if est.Cancellable {
		note = fmt.Sprintf("Cancelling now refunds %d%% (%s). Cancellation closes 48 hours before travel.",
			est.RefundPercent, pdfAmount(est.RefundAmount))
	}
	if !est.TravelDateKnown && est.Cancellable {
		note += " No travel date is set; the estimate assumes travel in 7 days."
	}
	pdf.MultiCell(0, 6, note, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECEIPT_%s.pdf", safeFilenamePart(b.BookingReference))
	return buf.Bytes(), filename, nil
}

func itemLabel(k models.ItemKind) string {
	if k == models.ItemEvent {
		return "Event"
	}
	return "Destination"
}

// pdfAmount spells the rupee sign out; the core PDF fonts lack the glyph.
func pdfAmount(v float64) string {
	return strings.Replace(utils.FormatRupee(v), "₹", "Rs. ", 1)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
