package api

import (
	"context"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "travelgateway/internal/config"
	h "travelgateway/internal/http/handlers"
	"travelgateway/internal/http/middleware"
	"travelgateway/internal/session"
	"travelgateway/internal/utils"
)

// NewRouter mounts the gateway routes and registers the router as the
// session manager's teardown subscriber.
func NewRouter(env intconfig.Env, hd *h.Handler) (*gin.Engine, error) {
	if err := hd.Sessions.Subscribe(onTeardown); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.LogError("", "router", "trusted_proxies", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	auth := middleware.RequireSession(middleware.SessionConfig{Manager: hd.Sessions, CookieName: hd.CookieName})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/routes", h.Routes)

		api.POST("/session", hd.Login)
		api.DELETE("/session", hd.Logout)
		api.GET("/session", auth, hd.Me)

		api.POST("/bookings/quote", hd.Quote)

		bookings := api.Group("/bookings", auth)
		bookings.POST("", hd.CreateBooking)
		bookings.GET("", hd.ListBookings)
		bookings.GET("/stats", hd.BookingStats)
		bookings.GET("/:id", hd.GetBooking)
		bookings.GET("/:id/refund-estimate", hd.RefundEstimate)
		bookings.GET("/:id/receipt", hd.GetBookingReceipt)
		bookings.POST("/:id/payment", hd.ProcessPayment)
		bookings.DELETE("/:id", hd.CancelBooking)

		api.GET("/dashboard", auth, hd.Dashboard)

		admin := api.Group("/admin", auth, middleware.RequireRoles("admin"))
		admin.GET("/bookings", hd.AdminListBookings)
		admin.GET("/bookings/:id/payment-info", hd.AdminPaymentInfo)
		admin.POST("/bookings/:id/approve", hd.AdminApprove)
		admin.POST("/bookings/:id/reject", hd.AdminReject)
	}

	h.SetRouter(r)
	return r, nil
}

func onTeardown(_ context.Context, ev session.TeardownEvent) {
	utils.LogEvent("", "session", "teardown", "session="+utils.SessionTag(ev.SessionID)+" reason="+string(ev.Reason)+" redirect="+ev.Redirect)
}
