package cli

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/pricetool/priceopt/internal/client/client"
	"github.com/pricetool/priceopt/internal/client/models"
	"github.com/pricetool/priceopt/internal/client/session"
	"github.com/pricetool/priceopt/internal/common"
)

// getSimpleText, getPassword, getMultiline and getConfirm are indirections
// used to facilitate testing. They point to interactive input helpers and can
// be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline
var getConfirm = GetConfirm

// errPasswordMismatch is returned by Register when the confirmation differs.
var errPasswordMismatch = models.NewValidationError(models.FieldError{
	Field:   "confirm_password",
	Tag:     "eqfield",
	Message: "Passwords do not match",
})

// Register prompts for a username, email and password (twice) and creates
// the account. On success the returned credential is stored, so the user is
// logged in right away.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		common.WipeByteArray(password)
		return err
	}
	defer common.WipeByteArray(confirm)
	if string(password) != string(confirm) {
		common.WipeByteArray(password)
		return errPasswordMismatch
	}

	u, err := a.authService.Register(ctx, models.RegisterForm{Username: username, Email: email, Password: password})
	if err != nil {
		a.noteUnavailable(err)
		return failed("Registration failed", err)
	}

	a.setUser(u.Username)
	fmt.Fprintln(a.out, "Registration successful!")
	if !u.IsVerified {
		fmt.Fprintln(a.out, "Check your email for a verification link, then run: verify <token>")
	}
	return nil
}

// Login prompts for an email and password and authenticates. The password
// is wiped by the auth service once sent.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}

	u, err := a.authService.Login(ctx, models.LoginForm{Email: email, Password: password})
	if err != nil {
		a.noteUnavailable(err)
		log.Printf("Login unsuccessful")
		return failed("Login failed", err)
	}

	a.setUser(u.Username)
	a.setMode(ModeOnline)
	log.Printf("Login successful, welcome %s", u.Username)
	return nil
}

// Verify redeems an email verification token and prints the server's reply.
func (a *App) Verify(ctx context.Context, token string) error {
	msg, err := a.authService.VerifyEmail(ctx, token)
	if err != nil {
		a.noteUnavailable(err)
		return failed("Verification failed", err)
	}
	if msg == "" {
		msg = "Email verified successfully"
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Logout forgets the stored credential and the cached profile.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setUser("")
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the profile of the logged in user.
func (a *App) WhoAmI(ctx context.Context) error {
	return a.guarded(ctx, func(ctx context.Context) error {
		u, err := a.authService.CurrentUser(ctx)
		if err != nil {
			return failed("Failed to load profile", err)
		}
		if u == nil {
			return errors.New("no user profile stored")
		}
		verified := "no"
		if u.IsVerified {
			verified = "yes"
		}
		fmt.Fprintf(a.out, "Username: %s\nEmail:    %s\nRole:     %s\nVerified: %s\n", u.Username, u.Email, u.Role, verified)
		return nil
	})
}

// isLoggedIn runs the session guard; an expired credential is cleared as a
// side effect.
func (a *App) isLoggedIn(ctx context.Context) bool {
	d, err := a.guard.Check(ctx)
	return err == nil && d == session.Allow
}

// guarded runs fn behind the session guard. When the guard redirects, the
// user is taken to the login prompt and fn runs only if that login succeeds.
// A credential the server rejects is cleared the same way.
func (a *App) guarded(ctx context.Context, fn func(ctx context.Context) error) error {
	d, err := a.guard.Check(ctx)
	if err != nil {
		printlnFn(renderError(err))
	}
	if d != session.Allow {
		a.setUser("")
		if err := a.Login(ctx); err != nil {
			return err
		}
	}

	err = fn(ctx)
	if errors.Is(err, client.ErrUnauthorized) {
		if lerr := a.authService.Logout(ctx); lerr != nil {
			a.log.Warn(ctx, "clear rejected credential", "error", lerr)
		}
		a.setUser("")
		log.Printf("Session expired, please login again")
		return nil
	}
	return err
}

// noteUnavailable switches to offline mode when err says the server could
// not be reached.
func (a *App) noteUnavailable(err error) {
	if errors.Is(err, client.ErrUnavailable) {
		a.setMode(ModeOffline)
	}
}
