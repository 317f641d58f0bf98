package tuiapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/micutio/neospottr/internal"
)

const (
	headerHeight = 7
	footerHeight = 3
)

// Model implements the bubbletea.Model interface, which requires three methods:
// - Init() Cmd
// - Update(Msg) (Model, Cmd)
// - View() string
// This forms the base for the TUI app.
type model struct {
	ctx       context.Context
	appName   string
	page      uiState
	width     int
	height    int
	darkTheme bool
	baseStyle lipgloss.Style
	viewStyle lipgloss.Style
	theme     Theme
	keys      keyMap
	help      help.Model
	spinner   spinner.Model

	asteroidTbl autoFormatTable
	tableStyle  table.Styles
	visible     []internal.NearEarthObject

	login      loginForm
	detail     viewport.Model
	detailNeo  *internal.NearEarthObject
	compare    viewport.Model
	comparison *internal.Comparison

	pendingLoads int
	deferInitial bool // an initial load waits for the pending ones to finish
	lastFailed   *loadedMsg
	status       string
	statusIsErr  bool

	dashboard *internal.Dashboard
	store     internal.Store
	auth      internal.Authenticator
	notify    *internal.Notify
	logger    *slog.Logger
	user      *internal.Identity
}

func newModel(
	ctx context.Context,
	appName string,
	params Params,
	tableStyle table.Styles,
	darkTheme bool,
) *model {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Color.Highlight)

	m := &model{
		ctx:         ctx,
		appName:     appName,
		page:        loginPage,
		darkTheme:   darkTheme,
		baseStyle:   lipgloss.NewStyle(),
		viewStyle:   lipgloss.NewStyle(),
		theme:       Color,
		keys:        defaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		asteroidTbl: newAsteroidTable(tableStyle),
		tableStyle:  tableStyle,
		login:       newLoginForm(),
		detail:      viewport.New(0, 0),
		compare:     viewport.New(0, 0),
		dashboard:   params.Dashboard,
		store:       params.Store,
		auth:        params.Auth,
		notify:      params.Notify,
		logger:      logger,
	}

	m.dashboard.Selection().Subscribe(func(ev internal.SelectionEvent) {
		m.toast(internal.SelectionMessage(ev), false)
	})

	if user := params.Auth.CurrentUser(); user != nil {
		m.user = user
		m.page = mainPage
	}

	return m
}

// Init starts the spinner and, if a user is already signed in, the initial load.
func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.page == mainPage {
		cmds = append(cmds, m.startLoad(true))
	} else {
		cmds = append(cmds, m.login.focus())
	}

	return tea.Batch(cmds...)
}

// Update takes a tea.Msg as input and uses a type switch to handle different types of messages.
// Each case in the switch statement corresponds to a specific message type.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn // required by interface
	switch thisMsg := msg.(type) {
	// message is sent when the window size changes
	// save to reflect the new dimensions of the terminal window.
	case tea.WindowSizeMsg:
		m.resize(thisMsg.Width, thisMsg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(thisMsg)
		return m, cmd

	case loadedMsg:
		return m, m.handleLoaded(thisMsg)

	case authChangedMsg:
		return m, m.handleAuthChanged(thisMsg.user)

	case authResultMsg:
		m.handleAuthResult(thisMsg)
		return m, nil

	// message is sent when a key is pressed.
	case tea.KeyMsg:
		if thisMsg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.page {
		case loginPage:
			return m, m.updateLogin(thisMsg)
		case mainPage:
			return m, m.updateMain(thisMsg)
		case detailsPage:
			return m, m.updateScrollPage(thisMsg, &m.detail)
		case comparePage:
			return m, m.updateScrollPage(thisMsg, &m.compare)
		}
	}

	// If the message type does not match any of the handled cases, the model is returned unchanged,
	// and no new command is issued.
	return m, nil
}

func (m *model) updateMain(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
	case key.Matches(msg, m.keys.Hazardous):
		if m.dashboard.ToggleHazardousOnly() {
			m.toast("Showing potentially hazardous asteroids only", false)
		} else {
			m.toast("Showing all asteroids", false)
		}
		m.refreshTable()
	case key.Matches(msg, m.keys.Sort):
		sortKey := m.dashboard.CycleSort()
		m.toast(fmt.Sprintf("Sorted by %s", sortKey), false)
		m.refreshTable()
	case key.Matches(msg, m.keys.Select):
		if neo := m.cursorNeo(); neo != nil {
			m.dashboard.Toggle(*neo, !m.dashboard.Selection().Contains(neo.ID))
			m.refreshTable()
		}
	case key.Matches(msg, m.keys.Clear):
		if err := m.dashboard.ClearSelection(); err != nil {
			m.toast(err.Error(), true)
		} else {
			m.toast("Selection cleared", false)
		}
		m.refreshTable()
	case key.Matches(msg, m.keys.Compare):
		m.openCompare()
	case key.Matches(msg, m.keys.Details):
		if neo := m.cursorNeo(); neo != nil {
			m.openDetail(neo.ID)
		}
	case key.Matches(msg, m.keys.More):
		return m.startLoad(false)
	case key.Matches(msg, m.keys.Retry):
		return m.startLoad(!m.dashboard.Loaded())
	case key.Matches(msg, m.keys.SignOut):
		return signOutCmd(m.ctx, m.auth)
	default:
		var cmd tea.Cmd
		m.asteroidTbl.table, cmd = m.asteroidTbl.table.Update(msg)
		return cmd
	}

	return nil
}

func (m *model) updateScrollPage(msg tea.KeyMsg, vp *viewport.Model) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.page = mainPage
		m.refreshTable()
		return nil
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	}

	var cmd tea.Cmd
	*vp, cmd = vp.Update(msg)
	return cmd
}

// startLoad dispatches a load unless one is already running.
func (m *model) startLoad(initial bool) tea.Cmd {
	if m.pendingLoads > 0 {
		m.toast(internal.LoadFailedMessage(internal.ErrLoadInProgress, initial), false)
		return nil
	}

	m.pendingLoads++
	return loadCmd(m.ctx, m.dashboard, initial)
}

func (m *model) handleLoaded(msg loadedMsg) tea.Cmd {
	m.pendingLoads = max(m.pendingLoads-1, 0)

	switch {
	case errors.Is(msg.err, internal.ErrStaleResult):
		return m.resumeInitialLoad()
	case m.deferInitial:
		// Started before the last sign-out, the dashboard has been reset since.
		m.logger.Debug("dropping load result of a previous session", slog.Any("error", msg.err))
		return m.resumeInitialLoad()
	case msg.err != nil:
		m.logger.Error("load failed", slog.Bool("initial", msg.initial), slog.Any("error", msg.err))
		m.lastFailed = &msg
		m.toast(internal.LoadFailedMessage(msg.err, msg.initial), true)
	default:
		m.lastFailed = nil
		m.toast(internal.LoadedMessage(msg.result, msg.initial), false)
	}

	m.refreshTable()
	return nil
}

// resumeInitialLoad starts the initial load that was held back while older loads were pending.
func (m *model) resumeInitialLoad() tea.Cmd {
	if !m.deferInitial || m.pendingLoads > 0 {
		return nil
	}

	m.deferInitial = false
	if m.page != mainPage || m.dashboard.Loaded() {
		return nil
	}

	return m.startLoad(true)
}

func (m *model) handleAuthChanged(user *internal.Identity) tea.Cmd {
	m.user = user
	if user == nil {
		m.dashboard.Reset()
		m.visible = nil
		m.asteroidTbl.table.SetRows([]table.Row{})
		m.comparison = nil
		m.detailNeo = nil
		m.lastFailed = nil
		m.deferInitial = false
		m.page = loginPage
		m.login.reset()
		m.toast("Signed out", false)
		return m.login.focus()
	}

	if m.page != loginPage {
		return nil
	}

	m.page = mainPage
	m.login.blur()
	m.toast(fmt.Sprintf("Signed in as %s", user.Email), false)
	if m.pendingLoads > 0 {
		m.deferInitial = true
		return nil
	}

	return m.startLoad(true)
}

func (m *model) handleAuthResult(msg authResultMsg) {
	m.login.busy = false

	switch {
	case msg.err == nil:
		m.login.err = ""
	case errors.Is(msg.err, internal.ErrEmailConfirmation):
		m.login.err = ""
		m.login.info = msg.err.Error()
	case m.page == loginPage:
		m.login.err = msg.err.Error()
	default:
		m.logger.Warn(msg.action+" failed", slog.Any("error", msg.err))
		m.toast(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true)
	}
}

func (m *model) openCompare() {
	if err := m.dashboard.Compare(); err != nil {
		var valErr *internal.ValidationError
		if errors.As(err, &valErr) {
			m.toast(valErr.Error(), true)
			return
		}
		m.toast(err.Error(), true)
		return
	}

	comparison, err := internal.LoadComparison(m.store)
	if err != nil {
		// Unreadable hand-over: start from a clean selection on the main page.
		m.logger.Error("comparison unavailable", slog.Any("error", err))
		if clearErr := m.dashboard.ClearSelection(); clearErr != nil {
			m.logger.Warn("clearing selection failed", slog.Any("error", clearErr))
		}
		m.toast("No asteroids selected for comparison", true)
		m.page = mainPage
		m.refreshTable()
		return
	}

	m.comparison = comparison
	m.compare.SetContent(renderComparison(comparison, m.contentWidth()))
	m.compare.GotoTop()
	m.page = comparePage
}

func (m *model) openDetail(id string) {
	neo, err := m.dashboard.OpenDetail(id)
	if err != nil {
		m.logger.Error("detail unavailable", slog.String("id", id), slog.Any("error", err))
		m.toast(fmt.Sprintf("Asteroid %s not found", id), true)
		return
	}

	m.detailNeo = &neo
	m.detail.SetContent(renderDetail(&neo, m.contentWidth(), m.darkTheme, m.logger))
	m.detail.GotoTop()
	m.page = detailsPage
}

// refreshTable recomputes the visible list and rebuilds the table rows.
func (m *model) refreshTable() {
	m.visible = m.dashboard.Visible()
	selection := m.dashboard.Selection()

	rows := make([]table.Row, 0, len(m.visible))
	for i := range m.visible {
		rows = append(rows, neoToRow(&m.visible[i], selection.Contains(m.visible[i].ID)))
	}
	m.asteroidTbl.table.SetRows(rows)

	if cursor := m.asteroidTbl.table.Cursor(); cursor >= len(rows) {
		m.asteroidTbl.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *model) cursorNeo() *internal.NearEarthObject {
	idx := m.asteroidTbl.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return nil
	}

	return &m.visible[idx]
}

func (m *model) toast(msg string, isErr bool) {
	m.status = msg
	m.statusIsErr = isErr
	if m.notify != nil {
		m.notify.Toast(m.appName, msg)
	}
}

func (m *model) contentWidth() int {
	return max(m.width-2, 40) //nolint: mnd // minimum readable width
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	if err := m.asteroidTbl.resize(width); err != nil {
		m.logger.Error("resizing table failed", slog.Any("error", err))
	}

	helpLines := 1
	if m.help.ShowAll {
		helpLines = 4
	}
	bodyHeight := max(height-headerHeight-footerHeight-helpLines, 3) //nolint: mnd // header plus two rows
	m.asteroidTbl.SetHeight(bodyHeight)

	m.detail.Width = width
	m.detail.Height = max(height-footerHeight, 1)
	m.compare.Width = width
	m.compare.Height = max(height-footerHeight, 1)

	if m.comparison != nil {
		m.compare.SetContent(renderComparison(m.comparison, m.contentWidth()))
	}
	if m.detailNeo != nil {
		m.detail.SetContent(renderDetail(m.detailNeo, m.contentWidth(), m.darkTheme, m.logger))
	}
}

func (m *model) View() string {
	var body string
	switch m.page {
	case loginPage:
		body = m.login.view(m.appName, m.auth)
	case detailsPage:
		body = m.detail.View()
	case comparePage:
		body = m.compare.View()
	case mainPage:
		column := m.baseStyle.Width(m.width).Render
		body = lipgloss.JoinVertical(lipgloss.Left,
			column(m.viewHeader()),
			column(m.viewAsteroids()),
		)
	}

	return m.baseStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, body, m.viewFooter()))
}

// Uses lipgloss.JoinVertical and lipgloss.JoinHorizontal to arrange the header content.
// It displays the date window, list state and the closest, fastest and largest asteroid.
func (m *model) viewHeader() string {
	list := m.baseStyle.
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(m.theme.Border).
		Height(3). //nolint: mnd // title plus two lines
		Padding(0, 1)

	listHeader := m.baseStyle.Bold(true).Render

	listItem := func(key string, value string) string {
		listItemValue := m.baseStyle.Align(lipgloss.Right).Render(value)
		return fmt.Sprintf("%s %s", m.baseStyle.Render(key+":"), listItemValue)
	}

	stats := m.dashboard.Stats(m.visible)
	query := m.dashboard.QueryOptions()

	filter := "all"
	if query.HazardousOnly {
		filter = "hazardous only"
	}

	loading := ""
	if m.pendingLoads > 0 || m.dashboard.Loading() {
		loading = m.spinner.View() + " loading"
	}

	who := ""
	if m.user != nil {
		who = "signed in as " + m.user.Email
	}

	summary := fmt.Sprintf("%s  window: %s  shown: %d  hazardous: %d  selected: %d  sort: %s  filter: %s  %s",
		m.appName, stats.Window, stats.Total, stats.Hazardous, stats.Selected, query.SortBy, filter, loading)

	pick := func(title string, neo *internal.NearEarthObject, label string, value func(*internal.NearEarthObject) string) string {
		if neo == nil {
			return list.Render(lipgloss.JoinVertical(lipgloss.Left, listHeader(title), "-"))
		}
		return list.Render(lipgloss.JoinVertical(lipgloss.Left,
			listHeader(title),
			listItem(label, value(neo)),
			listItem("NAME", neo.Name),
		))
	}

	return m.viewStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			summary,
			m.baseStyle.Foreground(m.theme.Secondary).Render(who),
			lipgloss.JoinHorizontal(lipgloss.Top,
				pick("Closest", stats.Closest, "DST", func(n *internal.NearEarthObject) string {
					return internal.FormatThousands(n.MissDistanceKm()) + " km"
				}),
				pick("Fastest", stats.Fastest, "SPD", func(n *internal.NearEarthObject) string {
					return internal.FormatNumber(n.VelocityKmh()) + " km/h"
				}),
				pick("Largest", stats.Largest, "DIA", func(n *internal.NearEarthObject) string {
					return fmt.Sprintf("%.3f km", n.Diameter.MeanKm())
				}),
			),
		),
	)
}

func (m *model) viewAsteroids() string {
	if len(m.visible) == 0 && m.pendingLoads == 0 {
		if !m.dashboard.Loaded() {
			return m.viewStyle.Render("No data loaded. Press r to retry.")
		}
		return m.viewStyle.Render("No asteroids match the current filter.")
	}

	return m.viewStyle.Render(m.asteroidTbl.table.View())
}

func (m *model) viewFooter() string {
	statusStyle := m.baseStyle.Foreground(m.theme.Green)
	if m.statusIsErr {
		statusStyle = m.baseStyle.Foreground(m.theme.Red)
	}

	lines := []string{statusStyle.Render(m.status)}
	switch m.page {
	case mainPage:
		lines = append(lines, m.help.View(m.keys))
	case detailsPage, comparePage:
		lines = append(lines, m.help.ShortHelpView([]key.Binding{m.keys.Up, m.keys.Down, m.keys.Back, m.keys.Quit}))
	case loginPage:
		lines = append(lines, m.baseStyle.Foreground(m.theme.Secondary).Render("tab: switch field • ctrl+r: toggle sign up • enter: submit • ctrl+c: quit"))
	}

	return strings.Join(lines, "\n")
}
