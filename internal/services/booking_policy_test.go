package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"travelgateway/internal/domain"
	"travelgateway/internal/domain/models"
)

func bookingIn(hours float64, bs domain.BookingStatus, ps domain.PaymentStatus) models.Booking {
	travel := fixedNow.Add(time.Duration(hours * float64(time.Hour)))
	return models.Booking{ID: "b1", TotalAmount: 10000, BookingStatus: bs, PaymentStatus: ps, TravelDate: &travel}
}

func TestCalculateRefund_Tiers(t *testing.T) {
	cases := []struct {
		hours float64
		want  float64
	}{
		{200, 9000},
		{168, 9000},
		{167.9, 7000},
		{100, 7000},
		{72, 7000},
		{60, 5000},
		{48, 5000},
		{47.9, 0},
		{40, 0},
		{-5, 0},
	}
	for _, tc := range cases {
		b := bookingIn(tc.hours, domain.BookingConfirmed, domain.PaymentPaid)
		assert.Equal(t, tc.want, CalculateRefund(b, fixedNow), "hours=%v", tc.hours)
	}
}

func TestCalculateRefund_UnpaidIsZero(t *testing.T) {
	for _, ps := range []domain.PaymentStatus{domain.PaymentUnpaid, domain.PaymentRefunded, "mystery"} {
		b := bookingIn(200, domain.BookingPending, ps)
		assert.Zero(t, CalculateRefund(b, fixedNow), ps)
	}
}

func TestCanCancelBooking(t *testing.T) {
	assert.False(t, CanCancelBooking(bookingIn(500, domain.BookingCancelled, domain.PaymentPaid), fixedNow))
	assert.True(t, CanCancelBooking(bookingIn(50, domain.BookingConfirmed, domain.PaymentPaid), fixedNow))
	assert.False(t, CanCancelBooking(bookingIn(47, domain.BookingConfirmed, domain.PaymentPaid), fixedNow))
	assert.True(t, CanCancelBooking(bookingIn(48, domain.BookingPending, domain.PaymentUnpaid), fixedNow))
}

func TestMissingTravelDateUsesSevenDayHorizon(t *testing.T) {
	b := models.Booking{TotalAmount: 10000, BookingStatus: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid}
	assert.Equal(t, 168.0, HoursUntilTravel(b, fixedNow))
	assert.True(t, CanCancelBooking(b, fixedNow))
	assert.Equal(t, 9000.0, CalculateRefund(b, fixedNow))

	est := EstimateRefund(b, fixedNow)
	assert.False(t, est.TravelDateKnown)
	assert.Equal(t, 90, est.RefundPercent)
	assert.Equal(t, "₹9,000", est.RefundDisplay)
}

func TestStatusColors(t *testing.T) {
	assert.Equal(t, ColorSuccess, StatusColor(domain.BookingConfirmed))
	assert.Equal(t, ColorWarning, StatusColor("PENDING"))
	assert.Equal(t, ColorDanger, StatusColor(domain.BookingCancelled))
	assert.Equal(t, ColorNeutral, StatusColor("on_hold"))
	assert.Equal(t, ColorNeutral, StatusColor(""))

	assert.Equal(t, ColorSuccess, PaymentStatusColor(domain.PaymentPaid))
	assert.Equal(t, ColorWarning, PaymentStatusColor(domain.PaymentUnpaid))
	assert.Equal(t, ColorInfo, PaymentStatusColor(domain.PaymentRefunded))
	assert.Equal(t, ColorNeutral, PaymentStatusColor("chargeback"))
}
