package services

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"travelgateway/internal/domain"
	"travelgateway/internal/domain/models"
	"travelgateway/internal/gateway"
	"travelgateway/internal/utils"
)

type wireItem struct {
	ID       gateway.Stringish `json:"id"`
	Name     gateway.Stringish `json:"name"`
	Title    gateway.Stringish `json:"title"`
	Location gateway.Stringish `json:"location"`
	Venue    gateway.Stringish `json:"venue"`
	Price    gateway.Numberish `json:"price"`
	ImageURL gateway.Stringish `json:"image_url"`
	Image    gateway.Stringish `json:"image"`
}

type wireContact struct {
	Phone            gateway.Stringish `json:"phone"`
	EmergencyContact gateway.Stringish `json:"emergency_contact"`
}

type wirePayment struct {
	Method        gateway.Stringish `json:"method"`
	PaymentMethod gateway.Stringish `json:"payment_method"`
	TransactionID gateway.Stringish `json:"transaction_id"`
	QRCode        gateway.Stringish `json:"qr_code"`
}

// wireBooking accepts the current shape, the legacy event shape and the
// canonical encoding of models.Booking.
type wireBooking struct {
	ID                gateway.Stringish `json:"id"`
	MongoID           gateway.Stringish `json:"_id"`
	BookingReference  gateway.Stringish `json:"booking_reference"`
	BookingRefCamel   gateway.Stringish `json:"bookingReference"`
	DestinationID     gateway.Stringish `json:"destination_id"`
	Destination       *wireItem         `json:"destination"`
	EventID           gateway.Stringish `json:"event_id"`
	Event             *wireItem         `json:"event"`
	ItemKind          gateway.Stringish `json:"item_kind"`
	Seats             gateway.Numberish `json:"seats"`
	TotalAmount       gateway.Numberish `json:"total_amount"`
	TotalAmountCamel  gateway.Numberish `json:"totalAmount"`
	BookingStatus     gateway.Stringish `json:"booking_status"`
	Status            gateway.Stringish `json:"status"`
	PaymentStatus     gateway.Stringish `json:"payment_status"`
	TravelDate        gateway.Stringish `json:"travel_date"`
	CreatedAt         gateway.Stringish `json:"created_at"`
	ContactInfo       *wireContact      `json:"contact_info"`
	SpecialRequests   gateway.Stringish `json:"special_requests"`
	PaymentDetails    *wirePayment      `json:"payment_details"`
}

// Normalizer maps heterogeneous booking payloads to models.Booking. It is
// deterministic for a fixed clock.
type Normalizer struct {
	Now func() time.Time
}

func (n Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return utils.NowUTC()
}

func malformed(what string) error {
	return domain.APIError{Status: http.StatusOK, Kind: domain.KindUnexpected, Message: "malformed " + what}
}

func (n Normalizer) Booking(raw json.RawMessage) (models.Booking, error) {
	var w wireBooking
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.Booking{}, malformed("booking payload")
	}
	return n.fromWire(w), nil
}

func (n Normalizer) Bookings(raws []json.RawMessage) ([]models.Booking, error) {
	out := make([]models.Booking, 0, len(raws))
	for _, raw := range raws {
		b, err := n.Booking(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (n Normalizer) fromWire(w wireBooking) models.Booking {
	id := firstString(w.ID, w.MongoID)

	b := models.Booking{
		ID:               id,
		BookingReference: firstString(w.BookingReference, w.BookingRefCamel),
		Seats:            int(math.Round(w.Seats.Value)),
		BookingStatus:    domain.ParseBookingStatus(firstString(w.BookingStatus, w.Status)),
		PaymentStatus:    domain.ParsePaymentStatus(w.PaymentStatus.String()),
		SpecialRequests:  w.SpecialRequests.String(),
	}
	if w.TotalAmount.Valid {
		b.TotalAmount = w.TotalAmount.Value
	} else {
		b.TotalAmount = w.TotalAmountCamel.Value
	}
	if b.BookingStatus == "" {
		b.BookingStatus = domain.BookingPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = domain.PaymentUnpaid
	}

	b.ItemKind, b.DestinationID, b.Item = resolveItem(w)

	if b.BookingReference == "" && id != "" {
		b.BookingReference = utils.BookingReference(id, n.now())
	}
	if t, err := utils.ParseTravelDate(w.TravelDate.String()); err == nil {
		b.TravelDate = t
	}
	if t, err := utils.ParseTravelDate(w.CreatedAt.String()); err == nil && t != nil {
		b.CreatedAt = *t
	}
	if w.ContactInfo != nil {
		b.ContactInfo = models.ContactInfo{
			Phone:            w.ContactInfo.Phone.String(),
			EmergencyContact: w.ContactInfo.EmergencyContact.String(),
		}
	}
	if pd := w.PaymentDetails; pd != nil {
		details := models.PaymentDetails{
			Method:        firstString(pd.Method, pd.PaymentMethod),
			TransactionID: pd.TransactionID.String(),
			QRCode:        pd.QRCode.String(),
		}
		if details != (models.PaymentDetails{}) {
			b.PaymentDetails = &details
		}
	}
	return b
}

// resolveItem picks the booked item once. An explicit item_kind wins; then a
// destination reference; then the legacy event fields.
func resolveItem(w wireBooking) (models.ItemKind, string, models.BookedItem) {
	kind := models.ItemKind(strings.ToLower(w.ItemKind.String()))
	switch kind {
	case models.ItemDestination, models.ItemEvent:
	default:
		switch {
		case w.DestinationID.String() != "" || w.Destination != nil:
			kind = models.ItemDestination
		case w.EventID.String() != "" || w.Event != nil:
			kind = models.ItemEvent
		default:
			kind = models.ItemDestination
		}
	}

	refID := w.DestinationID.String()
	src := w.Destination
	if kind == models.ItemEvent {
		if src == nil {
			src = w.Event
		}
		if refID == "" {
			refID = w.EventID.String()
		}
	}

	item := models.BookedItem{Kind: kind}
	if src != nil {
		item.ID = src.ID.String()
		item.Name = firstString(src.Name, src.Title)
		item.Location = firstString(src.Location, src.Venue)
		item.Price = src.Price.Value
		item.ImageURL = firstString(src.ImageURL, src.Image)
	}
	if item.ID == "" {
		item.ID = refID
	}
	if refID == "" {
		refID = item.ID
	}
	return kind, refID, item
}

type wireStats struct {
	TotalBookings        gateway.Numberish `json:"total_bookings"`
	UpcomingTrips        gateway.Numberish `json:"upcoming_trips"`
	CompletedTrips       gateway.Numberish `json:"completed_trips"`
	TotalSpent           gateway.Numberish `json:"total_spent"`
	PendingBookings      gateway.Numberish `json:"pending_bookings"`
	CancelledBookings    gateway.Numberish `json:"cancelled_bookings"`
	AverageBookingAmount gateway.Numberish `json:"average_booking_amount"`
	MostRecentBooking    json.RawMessage   `json:"most_recent_booking"`
}

// Stats decodes the server aggregate. No counting happens here.
func (n Normalizer) Stats(raw json.RawMessage) (models.BookingStats, error) {
	var w wireStats
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.BookingStats{}, malformed("booking stats")
	}
	out := models.BookingStats{
		TotalBookings:        w.TotalBookings.Int(),
		UpcomingTrips:        w.UpcomingTrips.Int(),
		CompletedTrips:       w.CompletedTrips.Int(),
		TotalSpent:           w.TotalSpent.Value,
		PendingBookings:      w.PendingBookings.Int(),
		CancelledBookings:    w.CancelledBookings.Int(),
		AverageBookingAmount: w.AverageBookingAmount.Value,
	}
	if gateway.Present(w.MostRecentBooking) {
		b, err := n.Booking(w.MostRecentBooking)
		if err != nil {
			return models.BookingStats{}, err
		}
		out.MostRecentBooking = &b
	}
	return out, nil
}

type wirePaymentInfo struct {
	BookingID     gateway.Stringish `json:"booking_id"`
	PaymentMethod gateway.Stringish `json:"payment_method"`
	TransactionID gateway.Stringish `json:"transaction_id"`
	Amount        gateway.Numberish `json:"amount"`
	TotalAmount   gateway.Numberish `json:"total_amount"`
	PaymentStatus gateway.Stringish `json:"payment_status"`
	PaidAt        gateway.Stringish `json:"paid_at"`
	QRCode        gateway.Stringish `json:"qr_code"`
	ProofURL      gateway.Stringish `json:"proof_url"`
}

func (n Normalizer) PaymentInfo(raw json.RawMessage) (models.PaymentInfo, error) {
	var w wirePaymentInfo
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.PaymentInfo{}, malformed("payment info")
	}
	out := models.PaymentInfo{
		BookingID:     w.BookingID.String(),
		PaymentMethod: w.PaymentMethod.String(),
		TransactionID: w.TransactionID.String(),
		Amount:        w.Amount.Value,
		PaymentStatus: domain.ParsePaymentStatus(w.PaymentStatus.String()).String(),
		QRCode:        w.QRCode.String(),
		ProofURL:      w.ProofURL.String(),
	}
	if !w.Amount.Valid {
		out.Amount = w.TotalAmount.Value
	}
	if t, err := utils.ParseTravelDate(w.PaidAt.String()); err == nil {
		out.PaidAt = t
	}
	return out, nil
}

func firstString(vals ...gateway.Stringish) string {
	for _, v := range vals {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}
