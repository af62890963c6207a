package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"travelgateway/internal/domain/models"
	"travelgateway/internal/session"
	"travelgateway/internal/utils"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthService opens and closes gateway sessions.
type AuthService struct {
	API       Authenticator
	Sessions  *session.Manager
	Validator *validator.Validate
	RequestID string
}

func (s AuthService) Login(ctx context.Context, in models.LoginRequest) (*session.Session, session.Claims, error) {
	in.Email = strings.TrimSpace(in.Email)
	v := s.Validator
	if v == nil {
		v = NewFormValidator()
	}
	if err := v.Struct(in); err != nil {
		return nil, session.Claims{}, fieldError(err)
	}

	token, err := s.API.Login(ctx, in.Email, in.Password)
	if err != nil {
		utils.LogError(s.RequestID, "auth", "login", err)
		return nil, session.Claims{}, err
	}
	sess, err := s.Sessions.Start(ctx, token)
	if err != nil {
		return nil, session.Claims{}, err
	}
	claims, err := sess.Claims(ctx)
	if err != nil {
		return nil, session.Claims{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "login", "session="+utils.SessionTag(sess.ID())+" role="+string(claims.Role))
	return sess, claims, nil
}

// Logout tears the session down. It reports false when nothing was live.
func (s AuthService) Logout(ctx context.Context, sess *session.Session) bool {
	if sess == nil {
		return false
	}
	return sess.Teardown(ctx, session.ReasonLogout)
}
