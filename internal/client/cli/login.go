package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/client/ratelimit"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// Login prompts for credentials and runs the controller login sequence,
// translating the outcome into user-facing messages.
func (a *App) Login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		printlnFn("error:", err)
		return
	}

	password, err := GetPassword(a.out)
	if err != nil {
		printlnFn("error:", err)
		return
	}
	defer common.WipeByteArray(password)

	err = a.ctrl.Login(ctx, email, string(password))
	if err == nil {
		user := a.ctrl.CurrentUser()
		printlnFn("Logged in as", user.Email)
		return
	}

	var verr *session.ValidationError
	var lerr *ratelimit.LimitError
	switch {
	case errors.As(err, &verr):
		printlnFn("Please fix the following:")
		printlnFn(strings.Join(verr.Violations, "\n"))
	case errors.As(err, &lerr):
		printlnFn(fmt.Sprintf("Too many login attempts. Try again in %d minute(s).", lerr.WaitMinutes))
	case errors.Is(err, common.ErrInvalidCredentials):
		printlnFn("Invalid email or password.")
	case errors.Is(err, common.ErrUnavailable):
		printlnFn("Server unavailable, try again later.")
	default:
		printlnFn("Login failed:", err.Error())
	}
}

// Logout ends the session. Always succeeds locally.
func (a *App) Logout(ctx context.Context) {
	a.ctrl.Logout(ctx)
	printlnFn("Logged out.")
}

// Status prints the controller state.
func (a *App) Status(ctx context.Context) {
	printlnFn("Status:", a.ctrl.State().String())
}

// Whoami prints the authenticated user, if any.
func (a *App) Whoami(ctx context.Context) {
	user := a.ctrl.CurrentUser()
	if user == nil {
		printlnFn("Not logged in.")
		return
	}
	printlnFn(fmt.Sprintf("%s <%s> role=%s", user.Name, user.Email, user.Role))
}
