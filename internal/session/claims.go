package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"travelgateway/internal/domain"
)

// Claims are read from the bearer token without verifying its signature;
// the remote API stays the authority.
type Claims struct {
	Subject   string
	Role      domain.Role
	ExpiresAt *time.Time
}

func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

func (c Claims) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}

// ParseClaims extracts subject, role and expiry. Opaque (non-JWT) tokens
// yield empty claims.
func ParseClaims(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, domain.ErrAuthRequired
	}
	if strings.Count(token, ".") != 2 {
		return Claims{}, nil
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("parse token claims: %w", err)
	}

	var out Claims
	if sub, err := mc.GetSubject(); err == nil && sub != "" {
		out.Subject = sub
	} else if v, ok := mc["user_id"]; ok {
		out.Subject = strings.TrimSpace(fmt.Sprint(v))
	}
	if role, ok := mc["role"].(string); ok {
		out.Role = domain.Role(strings.ToLower(strings.TrimSpace(role)))
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time.UTC()
		out.ExpiresAt = &t
	}
	return out, nil
}
