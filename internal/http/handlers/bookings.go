package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelgateway/internal/domain"
	"travelgateway/internal/domain/models"
	"travelgateway/internal/services"
)

type quoteRequest struct {
	PricePerPerson float64 `json:"price_per_person"`
	Seats          int     `json:"seats"`
	Children       int     `json:"children"`
}

// POST /api/bookings/quote
func (h *Handler) Quote(c *gin.Context) {
	var req quoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	q, err := h.Pricing.Quote(req.PricePerPerson, req.Seats, req.Children)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "quote", Msg: err.Error(), Err: err})
		return
	}
	c.JSON(http.StatusOK, q)
}

// POST /api/bookings?flow=modal|simple
func (h *Handler) CreateBooking(c *gin.Context) {
	flow, err := services.ParseFlow(c.Query("flow"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	var form models.BookingForm
	if !BindJSONOrError(c, &form) {
		return
	}
	res, err := h.bookingService(c).CreateBooking(c.Request.Context(), principal(c), flow, form)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/bookings
func (h *Handler) ListBookings(c *gin.Context) {
	list, err := h.bookingService(c).GetUserBookings(c.Request.Context(), principal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list, "total": len(list)})
}

// GET /api/bookings/stats
func (h *Handler) BookingStats(c *gin.Context) {
	stats, err := h.bookingService(c).GetUserBookingStats(c.Request.Context(), principal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	dash, err := h.bookingService(c).Dashboard(c.Request.Context(), principal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// GET /api/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.bookingService(c).GetBooking(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/bookings/:id/refund-estimate
func (h *Handler) RefundEstimate(c *gin.Context) {
	est, err := h.bookingService(c).RefundEstimate(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

// POST /api/bookings/:id/payment
func (h *Handler) ProcessPayment(c *gin.Context) {
	var req models.PaymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.bookingService(c).ProcessPayment(c.Request.Context(), principal(c), c.Param("id"), req.PaymentMethod, req.TransactionID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DELETE /api/bookings/:id
func (h *Handler) CancelBooking(c *gin.Context) {
	b, err := h.bookingService(c).CancelBooking(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
