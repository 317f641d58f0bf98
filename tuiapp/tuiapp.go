// Package tuiapp provides the TUI app which lists upcoming asteroid close approaches, lets the
// user filter, sort and select them and compares the selection.
// Layout idea:
// +-------------------------------------------------+
// | window: 2024-01-01 to 2024-01-08   sort: date   |
// |                                                 |
// | Closest            Fastest           Largest    |
// | DST: ... NAME: ... SPD: ... NAME: ... DIA: ...  |
// |  _____________________________________________  |
// | | asteroid table                              | |
// | | entry 0                                     | |
// | | ...                                         | |
// | | entry N                                     | |
// |  ---------------------------------------------  |
// | status line                                     |
// | key help                                        |
// +-------------------------------------------------+
// .
package tuiapp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/micutio/neospottr/internal"
)

// Params are the collaborators of the TUI, all created by main.
type Params struct {
	Dashboard *internal.Dashboard
	Store     internal.Store
	Auth      internal.Authenticator
	Notify    *internal.Notify
	Logger    *slog.Logger
}

func Run(appName string, params Params) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tableStyle := table.DefaultStyles()
	tableStyle.Selected = tableStyle.Selected.Background(Color.Highlight)

	m := newModel(ctx, appName, params, tableStyle, lipgloss.HasDarkBackground())

	// Create a new Bubble Tea program with the model and enable alternate screen
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Sign-in and sign-out always run inside a tea.Cmd, so Send never blocks the event loop.
	unsubscribe := params.Auth.Subscribe(func(user *internal.Identity) {
		p.Send(authChangedMsg{user: user})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tuiapp: %w", err)
	}

	return nil
}

type Theme struct {
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Green     lipgloss.AdaptiveColor
	Red       lipgloss.AdaptiveColor
}

var Color = Theme{ //nolint: gochecknoglobals // read-only palette
	Primary:   lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"},
	Secondary: lipgloss.AdaptiveColor{Light: "#969B86", Dark: "#696969"},
	Highlight: lipgloss.AdaptiveColor{Light: "#8b2def", Dark: "#8b2def"},
	Border:    lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"},
	Green:     lipgloss.AdaptiveColor{Light: "#008000", Dark: "#00FF00"},
	Red:       lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF0000"},
}
