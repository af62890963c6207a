package services

import (
	"math"
	"time"

	"travelgateway/internal/domain"
	"travelgateway/internal/domain/models"
	"travelgateway/internal/utils"
)

// Color is a badge category; presentation maps it to actual colors.
type Color string

const (
	ColorSuccess Color = "success"
	ColorWarning Color = "warning"
	ColorDanger  Color = "danger"
	ColorInfo    Color = "info"
	ColorNeutral Color = "neutral"
)

const (
	CancelCutoffHours = 48
	// DefaultTravelHorizon stands in for a missing travel date.
	DefaultTravelHorizon = 7 * 24 * time.Hour
)

func StatusColor(s domain.BookingStatus) Color {
	switch domain.ParseBookingStatus(string(s)) {
	case domain.BookingConfirmed:
		return ColorSuccess
	case domain.BookingPending:
		return ColorWarning
	case domain.BookingCancelled:
		return ColorDanger
	default:
		return ColorNeutral
	}
}

func PaymentStatusColor(s domain.PaymentStatus) Color {
	switch domain.ParsePaymentStatus(string(s)) {
	case domain.PaymentPaid:
		return ColorSuccess
	case domain.PaymentUnpaid:
		return ColorWarning
	case domain.PaymentRefunded:
		return ColorInfo
	default:
		return ColorNeutral
	}
}

// HoursUntilTravel uses now+7 days when the booking has no travel date.
func HoursUntilTravel(b models.Booking, now time.Time) float64 {
	travel := now.Add(DefaultTravelHorizon)
	if b.TravelDate != nil {
		travel = *b.TravelDate
	}
	return utils.HoursBetween(now, travel)
}

func CanCancelBooking(b models.Booking, now time.Time) bool {
	if b.IsCancelled() {
		return false
	}
	return HoursUntilTravel(b, now) >= CancelCutoffHours
}

// RefundPercent is the cancellation tier for the given lead time.
func RefundPercent(hours float64) int {
	switch {
	case hours >= 168:
		return 90
	case hours >= 72:
		return 70
	case hours >= 48:
		return 50
	default:
		return 0
	}
}

// CalculateRefund is zero unless the booking is paid.
func CalculateRefund(b models.Booking, now time.Time) float64 {
	if b.PaymentStatus != domain.PaymentPaid {
		return 0
	}
	pct := RefundPercent(HoursUntilTravel(b, now))
	return math.Round(b.TotalAmount*float64(pct)) / 100
}

// RefundEstimate is the derived view shown next to a booking.
type RefundEstimate struct {
	BookingID        string  `json:"booking_id"`
	Cancellable      bool    `json:"cancellable"`
	HoursUntilTravel float64 `json:"hours_until_travel"`
	TravelDateKnown  bool    `json:"travel_date_known"`
	RefundPercent    int     `json:"refund_percent"`
	RefundAmount     float64 `json:"refund_amount"`
	RefundDisplay    string  `json:"refund_display"`
	StatusColor      Color   `json:"status_color"`
	PaymentColor     Color   `json:"payment_color"`
}

func EstimateRefund(b models.Booking, now time.Time) RefundEstimate {
	hours := HoursUntilTravel(b, now)
	pct := 0
	if b.PaymentStatus == domain.PaymentPaid {
		pct = RefundPercent(hours)
	}
	amount := CalculateRefund(b, now)
	return RefundEstimate{
		BookingID:        b.ID,
		Cancellable:      CanCancelBooking(b, now),
		HoursUntilTravel: math.Round(hours*10) / 10,
		TravelDateKnown:  b.TravelDate != nil,
		RefundPercent:    pct,
		RefundAmount:     amount,
		RefundDisplay:    utils.FormatRupee(amount),
		StatusColor:      StatusColor(b.BookingStatus),
		PaymentColor:     PaymentStatusColor(b.PaymentStatus),
	}
}
