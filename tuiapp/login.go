package tuiapp

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/micutio/neospottr/internal"
)

// loginForm asks for e-mail and password. It either signs in or, with register set, signs up.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focused  int // 0 = email, 1 = password
	register bool
	busy     bool
	err      string
	info     string
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "you@example.org"
	email.Prompt = "E-mail:    "
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password:  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	return loginForm{email: email, password: password}
}

func (lf *loginForm) focus() tea.Cmd {
	if lf.focused == 1 {
		lf.email.Blur()
		return lf.password.Focus()
	}

	lf.password.Blur()
	return lf.email.Focus()
}

func (lf *loginForm) blur() {
	lf.email.Blur()
	lf.password.Blur()
	lf.busy = false
}

func (lf *loginForm) reset() {
	lf.password.SetValue("")
	lf.focused = 0
	lf.busy = false
	lf.err = ""
	lf.info = ""
}

func (m *model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	form := &m.login

	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		form.focused = 1 - form.focused
		return form.focus()
	case "ctrl+r":
		form.register = !form.register
		return nil
	case "enter":
		if form.focused == 0 {
			form.focused = 1
			return form.focus()
		}
		if form.busy {
			return nil
		}
		email := strings.TrimSpace(form.email.Value())
		if email == "" {
			form.err = "Please enter an e-mail address."
			return nil
		}
		form.busy = true
		form.err = ""
		form.info = ""
		return signInCmd(m.ctx, m.auth, email, form.password.Value(), form.register)
	}

	var cmd tea.Cmd
	if form.focused == 0 {
		form.email, cmd = form.email.Update(msg)
	} else {
		form.password, cmd = form.password.Update(msg)
	}

	return cmd
}

func (lf *loginForm) view(appName string, auth internal.SessionProvider) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(Color.Highlight).Render(appName)

	action := "Sign in"
	if lf.register {
		action = "Sign up"
	}

	hint := ""
	if _, local := auth.(*internal.LocalSession); local {
		hint = "No auth service configured, any e-mail address signs in locally."
	}

	lines := []string{
		title,
		"",
		lipgloss.NewStyle().Bold(true).Render(action),
		lf.email.View(),
		lf.password.View(),
		"",
	}
	if hint != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(Color.Secondary).Render(hint))
	}
	if lf.busy {
		lines = append(lines, "Contacting auth service...")
	}
	if lf.info != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(Color.Green).Render(lf.info))
	}
	if lf.err != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(Color.Red).Render(lf.err))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n")) //nolint: mnd // padding
}
