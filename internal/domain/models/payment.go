package models

import "time"

// PaymentInfo is the payment evidence an operator reviews before approving.
type PaymentInfo struct {
	BookingID     string     `json:"booking_id"`
	PaymentMethod string     `json:"payment_method"`
	TransactionID string     `json:"transaction_id"`
	Amount        float64    `json:"amount"`
	PaymentStatus string     `json:"payment_status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	QRCode        string     `json:"qr_code,omitempty"`
	ProofURL      string     `json:"proof_url,omitempty"`
}

// BookingStats is precomputed by the server; the gateway never aggregates.
type BookingStats struct {
	TotalBookings        int      `json:"total_bookings"`
	UpcomingTrips        int      `json:"upcoming_trips"`
	CompletedTrips       int      `json:"completed_trips"`
	TotalSpent           float64  `json:"total_spent"`
	PendingBookings      int      `json:"pending_bookings"`
	CancelledBookings    int      `json:"cancelled_bookings"`
	AverageBookingAmount float64  `json:"average_booking_amount"`
	MostRecentBooking    *Booking `json:"most_recent_booking"`
}

// BookingPage is one page of an admin listing.
type BookingPage struct {
	Items    []Booking `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
