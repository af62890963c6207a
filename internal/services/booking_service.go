package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"travelgateway/internal/domain"
	"travelgateway/internal/domain/models"
	"travelgateway/internal/gateway"
	"travelgateway/internal/utils"
)

// BookingClient is the remote booking API as seen by the services.
type BookingClient interface {
	CreateBooking(ctx context.Context, p gateway.Principal, req models.CreateBookingRequest) (json.RawMessage, error)
	ConfirmPayment(ctx context.Context, p gateway.Principal, id string, req models.PaymentRequest) (json.RawMessage, error)
	RejectPayment(ctx context.Context, p gateway.Principal, id string, req models.RejectRequest) (json.RawMessage, error)
	CancelBooking(ctx context.Context, p gateway.Principal, id string) error
	GetBooking(ctx context.Context, p gateway.Principal, id string) (json.RawMessage, error)
	ListBookings(ctx context.Context, p gateway.Principal) ([]json.RawMessage, error)
	Stats(ctx context.Context, p gateway.Principal) (json.RawMessage, error)
	AdminList(ctx context.Context, p gateway.Principal, params gateway.AdminListParams) ([]json.RawMessage, int, error)
	PaymentInfo(ctx context.Context, p gateway.Principal, id string) (json.RawMessage, error)
}

// BookingService drives the customer side of the booking lifecycle. Every
// mutation is followed by a re-fetch; the server's answer is authoritative.
type BookingService struct {
	API        BookingClient
	Builder    BookingRequestBuilder
	Normalizer Normalizer
	InFlight   *InFlight
	RequestID  string
}

// CreateResult pairs the stored booking with the quote the user confirmed.
type CreateResult struct {
	Booking       models.Booking `json:"booking"`
	Quote         utils.Quote    `json:"quote"`
	AmountMatches bool           `json:"amount_matches"`
	TotalDisplay  string         `json:"total_display"`
}

func (s BookingService) CreateBooking(ctx context.Context, p gateway.Principal, flow Flow, form models.BookingForm) (CreateResult, error) {
	req, quote, err := s.Builder.Build(flow, form)
	if err != nil {
		return CreateResult{}, err
	}

	raw, err := s.API.CreateBooking(ctx, p, req)
	if err != nil {
		utils.LogError(s.RequestID, "booking", "create", err)
		return CreateResult{}, bookingFailed(err)
	}
	b, err := s.Normalizer.Booking(raw)
	if err != nil {
		return CreateResult{}, err
	}

	res := CreateResult{
		Booking:       b,
		Quote:         quote,
		AmountMatches: utils.RoundCents(b.TotalAmount) == utils.RoundCents(quote.Total),
		TotalDisplay:  utils.FormatRupee(b.TotalAmount),
	}
	if !res.AmountMatches {
		utils.LogEvent(s.RequestID, "booking", "create", fmt.Sprintf("booking_id=%s server total differs from quote", b.ID))
	}
	utils.LogEvent(s.RequestID, "booking", "create", "booking_id="+b.ID)
	return res, nil
}

// bookingFailed keeps the server message and falls back to "Booking failed".
func bookingFailed(err error) error {
	var api domain.APIError
	if errors.As(err, &api) && api.Message == "" {
		api.Message = "Booking failed"
		return api
	}
	return err
}

// PaymentResult carries the re-fetched booking and the transaction id sent.
type PaymentResult struct {
	Booking       models.Booking `json:"booking"`
	TransactionID string         `json:"transaction_id"`
}

func (s BookingService) ProcessPayment(ctx context.Context, p gateway.Principal, id, method, transactionID string) (PaymentResult, error) {
	id = strings.TrimSpace(id)
	method = strings.TrimSpace(method)
	if id == "" {
		return PaymentResult{}, domain.ValidationError{Field: "booking_id", Msg: "is required"}
	}
	if method == "" {
		return PaymentResult{}, domain.ValidationError{Field: "payment_method", Msg: "is required"}
	}

	release, err := s.InFlight.Acquire(id)
	if err != nil {
		return PaymentResult{}, err
	}
	defer release()

	current, err := s.GetBooking(ctx, p, id)
	if err != nil {
		return PaymentResult{}, err
	}
	if current.IsCancelled() {
		return PaymentResult{}, domain.ConflictError{Resource: "booking", Msg: "booking is cancelled"}
	}

	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		transactionID = utils.TransactionID(s.Normalizer.now())
	}
	if _, err := s.API.ConfirmPayment(ctx, p, id, models.PaymentRequest{PaymentMethod: method, TransactionID: transactionID}); err != nil {
		utils.LogError(s.RequestID, "booking", "payment", err)
		return PaymentResult{}, err
	}
	utils.LogEvent(s.RequestID, "booking", "payment", "booking_id="+id+" txn="+transactionID)

	b, err := s.GetBooking(ctx, p, id)
	if err != nil {
		return PaymentResult{}, err
	}
	return PaymentResult{Booking: b, TransactionID: transactionID}, nil
}

// CancelBooking refuses cancelled bookings and bookings inside the 48 hour
// cutoff before calling the server, then returns the re-fetched record.
func (s BookingService) CancelBooking(ctx context.Context, p gateway.Principal, id string) (models.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "is required"}
	}

	release, err := s.InFlight.Acquire(id)
	if err != nil {
		return models.Booking{}, err
	}
	defer release()

	current, err := s.GetBooking(ctx, p, id)
	if err != nil {
		return models.Booking{}, err
	}
	if current.IsCancelled() {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking is already cancelled"}
	}
	if !CanCancelBooking(current, s.Normalizer.now()) {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "bookings can only be cancelled at least 48 hours before travel"}
	}

	if err := s.API.CancelBooking(ctx, p, id); err != nil {
		utils.LogError(s.RequestID, "booking", "cancel", err)
		return models.Booking{}, err
	}
	utils.LogEvent(s.RequestID, "booking", "cancel", "booking_id="+id)
	return s.GetBooking(ctx, p, id)
}

func (s BookingService) GetUserBookings(ctx context.Context, p gateway.Principal) ([]models.Booking, error) {
	raws, err := s.API.ListBookings(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.Normalizer.Bookings(raws)
}

func (s BookingService) GetBooking(ctx context.Context, p gateway.Principal, id string) (models.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "is required"}
	}
	raw, err := s.API.GetBooking(ctx, p, id)
	if err != nil {
		return models.Booking{}, err
	}
	return s.Normalizer.Booking(raw)
}

func (s BookingService) GetUserBookingStats(ctx context.Context, p gateway.Principal) (models.BookingStats, error) {
	raw, err := s.API.Stats(ctx, p)
	if err != nil {
		return models.BookingStats{}, err
	}
	return s.Normalizer.Stats(raw)
}

// RefundEstimate fetches the booking and evaluates the refund policy on it.
func (s BookingService) RefundEstimate(ctx context.Context, p gateway.Principal, id string) (RefundEstimate, error) {
	b, err := s.GetBooking(ctx, p, id)
	if err != nil {
		return RefundEstimate{}, err
	}
	return EstimateRefund(b, s.Normalizer.now()), nil
}
