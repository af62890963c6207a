package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelgateway/internal/domain/models"
	"travelgateway/internal/http/middleware"
	"travelgateway/internal/services"
)

func (h *Handler) authService(c *gin.Context) services.AuthService {
	return services.AuthService{
		API:       h.API,
		Sessions:  h.Sessions,
		Validator: h.Validator,
		RequestID: middleware.GetRequestID(c),
	}
}

// POST /api/session
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	sess, claims, err := h.authService(c).Login(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	middleware.SetSessionCookie(c, h.CookieName, sess.ID(), h.SecureCookie)

	out := gin.H{"session_id": sess.ID(), "user_id": claims.Subject, "role": claims.Role}
	if claims.ExpiresAt != nil {
		out["expires_at"] = claims.ExpiresAt
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/session
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": middleware.CurrentUserID(c),
		"role":    middleware.CurrentRole(c),
	})
}

// DELETE /api/session
func (h *Handler) Logout(c *gin.Context) {
	cfg := middleware.SessionConfig{Manager: h.Sessions, CookieName: h.CookieName}
	ended := false
	if id := cfg.SessionID(c); id != "" {
		ended = h.authService(c).Logout(c.Request.Context(), h.Sessions.Get(id))
	}
	middleware.ClearSessionCookie(c, h.CookieName)
	c.JSON(http.StatusOK, gin.H{"logged_out": ended})
}
