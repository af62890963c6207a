package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"travelgateway/internal/gateway"
	"travelgateway/internal/http/middleware"
	"travelgateway/internal/services"
	"travelgateway/internal/session"
	"travelgateway/internal/utils"
)

// RemoteAPI is the remote travel API as used by the handlers.
type RemoteAPI interface {
	services.BookingClient
	services.Authenticator
}

// Handler carries the process-wide dependencies; services are built per
// request so they log with the request id.
type Handler struct {
	API          RemoteAPI
	Sessions     *session.Manager
	Pricing      utils.PricingPolicy
	Validator    *validator.Validate
	InFlight     *services.InFlight
	CookieName   string
	SecureCookie bool
	Now          func() time.Time
}

func (h *Handler) normalizer() services.Normalizer {
	return services.Normalizer{Now: h.Now}
}

func (h *Handler) bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{
		API:        h.API,
		Builder:    services.NewBookingRequestBuilder(h.Pricing, h.Validator),
		Normalizer: h.normalizer(),
		InFlight:   h.InFlight,
		RequestID:  middleware.GetRequestID(c),
	}
}

func (h *Handler) adminService(c *gin.Context) services.AdminReviewService {
	return services.AdminReviewService{
		API:        h.API,
		Normalizer: h.normalizer(),
		InFlight:   h.InFlight,
		RequestID:  middleware.GetRequestID(c),
	}
}

// principal returns the session RequireSession resolved. A nil session
// makes every remote call fail with ErrAuthRequired.
func principal(c *gin.Context) gateway.Principal {
	if s := middleware.CurrentSession(c); s != nil {
		return s
	}
	return nil
}

// RespondError sends standard error payload with request_id included.
// Keeps backward compatibility by always providing "message".
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}
