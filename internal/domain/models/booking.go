package models

import (
	"time"

	"travelgateway/internal/domain"
)

// ItemKind tags which upstream shape a booked item was resolved from.
type ItemKind string

const (
	ItemDestination ItemKind = "destination"
	ItemEvent       ItemKind = "event"
)

// BookedItem is the denormalized snapshot of what was booked. It is resolved
// once at the API boundary; callers never look at the raw shape again.
type BookedItem struct {
	Kind     ItemKind `json:"-"`
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Price    float64  `json:"price"`
	ImageURL string   `json:"image_url,omitempty"`
}

type ContactInfo struct {
	Phone            string `json:"phone"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
}

// PaymentDetails is populated only after payment confirmation.
type PaymentDetails struct {
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id,omitempty"`
	QRCode        string `json:"qr_code,omitempty"`
}

// Booking is the canonical booking record. Its JSON encoding is itself a
// valid normalizer input.
type Booking struct {
	ID               string               `json:"id"`
	BookingReference string               `json:"booking_reference"`
	DestinationID    string               `json:"destination_id"`
	Item             BookedItem           `json:"destination"`
	ItemKind         ItemKind             `json:"item_kind"`
	Seats            int                  `json:"seats"`
	TotalAmount      float64              `json:"total_amount"`
	BookingStatus    domain.BookingStatus `json:"booking_status"`
	PaymentStatus    domain.PaymentStatus `json:"payment_status"`
	TravelDate       *time.Time           `json:"travel_date"`
	CreatedAt        time.Time            `json:"created_at"`
	ContactInfo      ContactInfo          `json:"contact_info"`
	SpecialRequests  string               `json:"special_requests,omitempty"`
	PaymentDetails   *PaymentDetails      `json:"payment_details,omitempty"`
}

func (b Booking) IsCancelled() bool {
	return b.BookingStatus.IsTerminal()
}

// CreateBookingRequest is the body of POST /api/bookings.
type CreateBookingRequest struct {
	DestinationID   string      `json:"destination_id"`
	Seats           int         `json:"seats"`
	TotalAmount     float64     `json:"total_amount"`
	TravelDate      *string     `json:"travel_date"`
	ContactInfo     ContactInfo `json:"contact_info"`
	SpecialRequests string      `json:"special_requests"`
}

// BookingForm is raw user input before validation.
type BookingForm struct {
	DestinationID    string  `json:"destination_id" validate:"required"`
	PricePerPerson   float64 `json:"price_per_person" validate:"gt=0"`
	Seats            int     `json:"seats"`
	Children         int     `json:"children" validate:"gte=0"`
	TravelDate       string  `json:"travel_date"`
	SpecialRequests  string  `json:"special_requests" validate:"max=1000"`
	Phone            string  `json:"phone" validate:"required,phone"`
	EmergencyContact string  `json:"emergency_contact" validate:"omitempty,phone"`
}

// PaymentRequest is the body of POST /api/bookings/{id}/confirm-payment.
type PaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
	TransactionID string `json:"transaction_id"`
}

// RejectRequest is the body of POST /api/bookings/{id}/reject-payment.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// LoginRequest is the body of POST /api/session.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
