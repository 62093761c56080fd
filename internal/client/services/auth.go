// Package services contains application services for the priceopt client.
// This file defines the authentication service: register, login, email
// verification, logout and the liveness probe.
package services

import (
	"context"
	"fmt"

	"github.com/pricetool/priceopt/internal/client/client"
	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/client/session"
	"github.com/pricetool/priceopt/internal/common"
	"github.com/pricetool/priceopt/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register, Login: validate the form, call the server, persist the
//     returned credential and profile. The form's password is wiped.
//   - VerifyEmail: redeem a verification token, returning the server message.
//   - Logout: forget the local credential. The server keeps no session.
//   - CurrentUser: the cached profile, fetched from /me when missing.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Register(ctx context.Context, form models.RegisterForm) (*models.User, error)
	Login(ctx context.Context, form models.LoginForm) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session *session.Session
	log     logging.Logger
}

// NewAuthService constructs an AuthService bound to the API client and the
// local session.
func NewAuthService(c client.Client, s *session.Session, log logging.Logger) AuthService {
	return &authService{client: c, session: s, log: log.With("service", "auth")}
}

func (a *authService) Register(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	defer common.WipeByteArray(form.Password)

	if err := form.Validate(); err != nil {
		return nil, err
	}
	res, err := a.client.Register(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := a.session.Save(ctx, res.AccessToken, res.User); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	a.log.Info(ctx, "registered", "user_id", res.User.ID)
	return &res.User, nil
}

func (a *authService) Login(ctx context.Context, form models.LoginForm) (*models.User, error) {
	defer common.WipeByteArray(form.Password)

	if err := form.Validate(); err != nil {
		return nil, err
	}
	res, err := a.client.Login(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := a.session.Save(ctx, res.AccessToken, res.User); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	a.log.Info(ctx, "logged in", "user_id", res.User.ID)
	return &res.User, nil
}

func (a *authService) VerifyEmail(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", models.NewValidationError(models.FieldError{Field: "token", Message: "Invalid verification link"})
	}
	msg, err := a.client.VerifyEmail(ctx, token)
	if err != nil {
		return "", fmt.Errorf("verify email: %w", err)
	}
	return msg, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	a.log.Info(ctx, "logged out")
	return nil
}

func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	u, err := a.session.User(ctx)
	if err != nil || u != nil {
		return u, err
	}
	u, err = a.client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return u, nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
