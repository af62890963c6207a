package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelgateway/internal/domain/models"
	"travelgateway/internal/services"
)

// GET /api/admin/bookings
func (h *Handler) AdminListBookings(c *gin.Context) {
	var q services.AdminListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid query", err)
		return
	}
	page, err := h.adminService(c).ListBookings(c.Request.Context(), principal(c), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/admin/bookings/:id/payment-info
func (h *Handler) AdminPaymentInfo(c *gin.Context) {
	info, err := h.adminService(c).PaymentInfo(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// POST /api/admin/bookings/:id/approve
func (h *Handler) AdminApprove(c *gin.Context) {
	b, err := h.adminService(c).Approve(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/admin/bookings/:id/reject
func (h *Handler) AdminReject(c *gin.Context) {
	var req models.RejectRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.adminService(c).Reject(c.Request.Context(), principal(c), c.Param("id"), req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
