package services

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"

	"travelgateway/internal/domain"
	"travelgateway/internal/domain/models"
	"travelgateway/internal/gateway"
	"travelgateway/internal/utils"
)

// AdminListQuery filters the admin listing. Only PaymentStatus and Page reach
// the server; the rest applies to the fetched page only.
type AdminListQuery struct {
	PaymentStatus string `form:"payment_status"`
	Page          int    `form:"page"`
	Search        string `form:"q"`
	BookingStatus string `form:"booking_status"`
	SortBy        string `form:"sort"`
	Desc          bool   `form:"desc"`
}

// AdminRow is one booking with the actions an operator may offer on it.
type AdminRow struct {
	models.Booking
	CanApprove   bool  `json:"can_approve"`
	CanReject    bool  `json:"can_reject"`
	StatusColor  Color `json:"status_color"`
	PaymentColor Color `json:"payment_color"`
}

type AdminPage struct {
	Items      []AdminRow        `json:"items"`
	Pagination domain.Pagination `json:"pagination"`
}

type AdminReviewService struct {
	API        BookingClient
	Normalizer Normalizer
	InFlight   *InFlight
	RequestID  string
}

func (s AdminReviewService) ListBookings(ctx context.Context, p gateway.Principal, q AdminListQuery) (AdminPage, error) {
	page := domain.Pagination{Page: q.Page, PageSize: gateway.AdminPageSize}
	if page.Page < 1 {
		page.Page = 1
	}
	raws, total, err := s.API.AdminList(ctx, p, gateway.AdminListParams{
		PaymentStatus: q.PaymentStatus,
		Skip:          page.Offset(),
	})
	if err != nil {
		return AdminPage{}, err
	}
	bookings, err := s.Normalizer.Bookings(raws)
	if err != nil {
		return AdminPage{}, err
	}
	page.Total = total

	bookings = filterPage(bookings, q)
	sortPage(bookings, q.SortBy, q.Desc)

	rows := lo.Map(bookings, func(b models.Booking, _ int) AdminRow {
		return AdminRow{
			Booking:      b,
			CanApprove:   canApprove(b),
			CanReject:    canReject(b),
			StatusColor:  StatusColor(b.BookingStatus),
			PaymentColor: PaymentStatusColor(b.PaymentStatus),
		}
	})
	return AdminPage{Items: rows, Pagination: page}, nil
}

func filterPage(in []models.Booking, q AdminListQuery) []models.Booking {
	status := domain.ParseBookingStatus(q.BookingStatus)
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	return lo.Filter(in, func(b models.Booking, _ int) bool {
		if status != "" && b.BookingStatus != status {
			return false
		}
		if needle == "" {
			return true
		}
		hay := strings.ToLower(strings.Join([]string{b.ID, b.BookingReference, b.Item.Name, b.Item.Location}, " "))
		return strings.Contains(hay, needle)
	})
}

func sortPage(in []models.Booking, by string, desc bool) {
	var less func(a, b models.Booking) bool
	switch strings.ToLower(strings.TrimSpace(by)) {
	case "total_amount":
		less = func(a, b models.Booking) bool { return a.TotalAmount < b.TotalAmount }
	case "travel_date":
		less = func(a, b models.Booking) bool {
			switch {
			case a.TravelDate == nil:
				return false
			case b.TravelDate == nil:
				return true
			default:
				return a.TravelDate.Before(*b.TravelDate)
			}
		}
	case "created_at":
		less = func(a, b models.Booking) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(in, func(i, j int) bool {
		if desc {
			return less(in[j], in[i])
		}
		return less(in[i], in[j])
	})
}

// canApprove: pending and not yet confirmed. The server still decides.
func canApprove(b models.Booking) bool {
	return b.BookingStatus == domain.BookingPending
}

func canReject(b models.Booking) bool {
	return !b.IsCancelled()
}

func (s AdminReviewService) PaymentInfo(ctx context.Context, p gateway.Principal, id string) (models.PaymentInfo, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.PaymentInfo{}, domain.ValidationError{Field: "booking_id", Msg: "is required"}
	}
	raw, err := s.API.PaymentInfo(ctx, p, id)
	if err != nil {
		return models.PaymentInfo{}, err
	}
	info, err := s.Normalizer.PaymentInfo(raw)
	if err != nil {
		return models.PaymentInfo{}, err
	}
	if info.BookingID == "" {
		info.BookingID = id
	}
	return info, nil
}

// Approve confirms payment for a pending booking and returns the re-fetched record.
func (s AdminReviewService) Approve(ctx context.Context, p gateway.Principal, id string) (models.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "is required"}
	}
	release, err := s.InFlight.Acquire(id)
	if err != nil {
		return models.Booking{}, err
	}
	defer release()

	current, err := s.fetch(ctx, p, id)
	if err != nil {
		return models.Booking{}, err
	}
	if current.IsCancelled() {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking is cancelled"}
	}
	if !canApprove(current) {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking is already " + current.BookingStatus.String()}
	}

	req := models.PaymentRequest{PaymentMethod: "manual"}
	if pd := current.PaymentDetails; pd != nil {
		req.PaymentMethod = lo.Ternary(pd.Method != "", pd.Method, req.PaymentMethod)
		req.TransactionID = pd.TransactionID
	}
	if req.TransactionID == "" {
		req.TransactionID = utils.TransactionID(s.Normalizer.now())
	}
	if _, err := s.API.ConfirmPayment(ctx, p, id, req); err != nil {
		utils.LogError(s.RequestID, "admin", "approve", err)
		return models.Booking{}, err
	}
	utils.LogEvent(s.RequestID, "admin", "approve", "booking_id="+id)
	return s.fetch(ctx, p, id)
}

// Reject requires a non-blank reason; a blank one never reaches the network.
func (s AdminReviewService) Reject(ctx context.Context, p gateway.Principal, id, reason string) (models.Booking, error) {
	id = strings.TrimSpace(id)
	reason = strings.TrimSpace(reason)
	if id == "" {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "is required"}
	}
	if reason == "" {
		return models.Booking{}, domain.ValidationError{Field: "reason", Msg: "a rejection reason is required"}
	}
	release, err := s.InFlight.Acquire(id)
	if err != nil {
		return models.Booking{}, err
	}
	defer release()

	current, err := s.fetch(ctx, p, id)
	if err != nil {
		return models.Booking{}, err
	}
	if current.IsCancelled() {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking is cancelled"}
	}

	if _, err := s.API.RejectPayment(ctx, p, id, models.RejectRequest{Reason: reason}); err != nil {
		utils.LogError(s.RequestID, "admin", "reject", err)
		return models.Booking{}, err
	}
	utils.LogEvent(s.RequestID, "admin", "reject", "booking_id="+id)
	return s.fetch(ctx, p, id)
}

func (s AdminReviewService) fetch(ctx context.Context, p gateway.Principal, id string) (models.Booking, error) {
	raw, err := s.API.GetBooking(ctx, p, id)
	if err != nil {
		return models.Booking{}, err
	}
	return s.Normalizer.Booking(raw)
}
