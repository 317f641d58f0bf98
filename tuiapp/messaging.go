package tuiapp

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/micutio/neospottr/internal"
)

// loadedMsg carries the outcome of a paginator load.
type loadedMsg struct {
	result  internal.LoadResult
	initial bool
	err     error
}

// authChangedMsg is sent by the auth provider whenever a user signs in or out.
type authChangedMsg struct {
	user *internal.Identity
}

// authResultMsg is the outcome of a sign-in, sign-up or sign-out request.
type authResultMsg struct {
	action string
	err    error
}

func loadCmd(ctx context.Context, dash *internal.Dashboard, initial bool) tea.Cmd {
	return func() tea.Msg {
		var (
			res internal.LoadResult
			err error
		)
		if initial {
			res, err = dash.LoadInitial(ctx)
		} else {
			res, err = dash.LoadMore(ctx)
		}

		return loadedMsg{result: res, initial: initial, err: err}
	}
}

func signInCmd(ctx context.Context, auth internal.Authenticator, email, password string, register bool) tea.Cmd {
	return func() tea.Msg {
		if register {
			_, err := auth.SignUp(ctx, email, password)
			return authResultMsg{action: "sign up", err: err}
		}

		_, err := auth.SignIn(ctx, email, password)
		return authResultMsg{action: "sign in", err: err}
	}
}

func signOutCmd(ctx context.Context, auth internal.Authenticator) tea.Cmd {
	return func() tea.Msg {
		err := auth.SignOut(ctx)
		if errors.Is(err, internal.ErrNotSignedIn) {
			err = nil
		}

		return authResultMsg{action: "sign out", err: err}
	}
}
