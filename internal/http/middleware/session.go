package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travelgateway/internal/domain"
	"travelgateway/internal/session"
)

const (
	sessionKey  = "session"
	userRoleKey = "userRole"
	userIDKey   = "userID"
	cookieKey   = "sessionCookie"
)

// SessionConfig names where the session id is read from.
type SessionConfig struct {
	Manager    *session.Manager
	CookieName string
}

// SessionID returns the id from the cookie, falling back to X-Session-ID.
func (cfg SessionConfig) SessionID(c *gin.Context) string {
	if v, err := c.Cookie(cfg.CookieName); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(c.GetHeader("X-Session-ID"))
}

// RequireSession resolves the caller's session and its claims. Requests
// without a live token stop here with 401 and the login route.
func RequireSession(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cookieKey, cfg.CookieName)
		id := cfg.SessionID(c)
		if id == "" {
			abortLogin(c, cfg)
			return
		}
		s := cfg.Manager.Get(id)
		claims, err := s.Claims(c.Request.Context())
		if err != nil {
			if domain.IsAuthRequired(err) {
				abortLogin(c, cfg)
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "session unavailable",
				"request_id": GetRequestID(c),
			})
			return
		}

		role := claims.Role
		if role == "" {
			role = domain.RoleCustomer
		}
		c.Set(sessionKey, s)
		c.Set(userRoleKey, string(role))
		c.Set(userIDKey, claims.Subject)
		c.Next()
	}
}

func abortLogin(c *gin.Context, cfg SessionConfig) {
	ClearSessionCookie(c, cfg.CookieName)
	route := cfg.Manager.LoginRoute()
	c.Header("Location", route)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      "authentication required",
		"code":       "auth_required",
		"redirect":   route,
		"request_id": GetRequestID(c),
	})
}

// CurrentSession returns the session set by RequireSession.
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

// CurrentUserID is the token subject set by RequireSession.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// CurrentRole is the caller's role set by RequireSession, "" when unset.
func CurrentRole(c *gin.Context) string {
	return c.GetString(userRoleKey)
}

// SessionCookieName is the cookie RequireSession read, or "".
func SessionCookieName(c *gin.Context) string {
	return c.GetString(cookieKey)
}

func SetSessionCookie(c *gin.Context, name, id string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, id, 0, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", false, true)
}
