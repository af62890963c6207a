package domain

import "strings"

// BookingStatus is the lifecycle axis of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentStatus is independent of BookingStatus.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// ParseBookingStatus lowercases and trims; unknown values are kept verbatim.
func ParseBookingStatus(s string) BookingStatus {
	return BookingStatus(strings.ToLower(strings.TrimSpace(s)))
}

func ParsePaymentStatus(s string) PaymentStatus {
	return PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
}

func (s BookingStatus) String() string { return string(s) }

func (s PaymentStatus) String() string { return string(s) }

// IsTerminal reports whether no client transition may start from s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	default:
		return false
	}
}

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total,omitempty"`
}

// Offset is the zero-based index of the first item on Page (pages start at 1).
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Role of the authenticated principal as carried in the token claims.
type Role string

const (
	RoleCustomer Role = "user"
	RoleAdmin    Role = "admin"
)
