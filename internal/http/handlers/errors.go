package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travelgateway/internal/domain"
	"travelgateway/internal/http/middleware"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. The body's error
// text is what the user should see.
func RespondDomainError(c *gin.Context, err error) {
	msg := domain.UserMessage(err)

	var (
		validation domain.ValidationError
		api        domain.APIError
	)
	switch {
	case errors.As(err, &validation):
		respondError(c, http.StatusBadRequest, "validation_error", msg, gin.H{"field": validation.Field})
	case domain.IsAuthRequired(err):
		respondAuth(c, err)
	case domain.IsTransport(err):
		respondError(c, http.StatusBadGateway, "upstream_unreachable", msg, nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", msg, nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", msg, nil)
	case errors.As(err, &api):
		switch api.Kind {
		case domain.KindForbidden:
			respondError(c, http.StatusForbidden, "forbidden", msg, nil)
		case domain.KindValidation:
			respondError(c, http.StatusUnprocessableEntity, "upstream_validation", msg, nil)
		case domain.KindServer:
			respondError(c, http.StatusBadGateway, "upstream_error", msg, nil)
		default:
			respondError(c, http.StatusBadGateway, "upstream_unexpected", msg, nil)
		}
	case domain.IsInternal(err):
		respondError(c, http.StatusInternalServerError, "internal_error", msg, nil)
	default:
		respondError(c, http.StatusInternalServerError, "unexpected_error", msg, nil)
	}
}

// respondAuth answers 401. Only the request that tore the session down gets
// the redirect; concurrent losers get a plain 401.
func respondAuth(c *gin.Context, err error) {
	resp := ErrorResponse{
		Error:     domain.UserMessage(err),
		Code:      "auth_required",
		RequestID: middleware.GetRequestID(c),
	}
	if name := middleware.SessionCookieName(c); name != "" {
		middleware.ClearSessionCookie(c, name)
	}
	var expired domain.SessionExpiredError
	if errors.As(err, &expired) {
		resp.Code = "session_expired"
		if expired.Redirect {
			resp.Redirect = expired.Route
			c.Header("Location", expired.Route)
		}
	}
	c.JSON(http.StatusUnauthorized, resp)
}
