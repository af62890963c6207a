package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"travelgateway/internal/domain"
	"travelgateway/internal/domain/models"
	"travelgateway/internal/gateway"
)

// DashboardRow is a booking with its derived badges and refund view.
type DashboardRow struct {
	models.Booking
	Refund RefundEstimate `json:"refund"`
}

type Dashboard struct {
	Bookings []DashboardRow      `json:"bookings"`
	Stats    models.BookingStats `json:"stats"`
}

// Dashboard loads bookings and server stats concurrently. The first failure
// cancels the other request.
func (s BookingService) Dashboard(ctx context.Context, p gateway.Principal) (Dashboard, error) {
	var (
		bookings []models.Booking
		stats    models.BookingStats
		listErr  error
		statsErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bookings, listErr = s.GetUserBookings(gctx, p)
		return listErr
	})
	g.Go(func() error {
		stats, statsErr = s.GetUserBookingStats(gctx, p)
		return statsErr
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, redirectFirst(err, listErr, statsErr)
	}

	now := s.Normalizer.now()
	rows := make([]DashboardRow, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, DashboardRow{Booking: b, Refund: EstimateRefund(b, now)})
	}
	return Dashboard{Bookings: rows, Stats: stats}, nil
}

// redirectFirst prefers the error of the call that tore the session down.
// Both requests can see the same 401 and the loser may finish first.
func redirectFirst(first error, errs ...error) error {
	for _, err := range errs {
		var expired domain.SessionExpiredError
		if errors.As(err, &expired) && expired.Redirect {
			return err
		}
	}
	return first
}
