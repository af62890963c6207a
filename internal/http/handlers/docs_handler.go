package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelgateway/internal/http/middleware"
	"travelgateway/internal/services"
)

// GET /api/bookings/:id/receipt returns the receipt PDF inline.
func (h *Handler) GetBookingReceipt(c *gin.Context) {
	svc := services.DocsService{
		Bookings:  h.bookingService(c),
		RequestID: middleware.GetRequestID(c),
		Now:       h.Now,
	}
	pdfBytes, filename, err := svc.GenerateReceipt(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
