package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/memorybox/notification-center/internal/credential"
	"github.com/memorybox/notification-center/internal/keys"
	"github.com/memorybox/notification-center/internal/model"
	"github.com/memorybox/notification-center/internal/notify"
	"github.com/memorybox/notification-center/internal/store"
	appsync "github.com/memorybox/notification-center/internal/sync"
	"github.com/memorybox/notification-center/internal/theme"
	"github.com/memorybox/notification-center/internal/ui"
	"github.com/memorybox/notification-center/internal/ui/command"
	helpview "github.com/memorybox/notification-center/internal/ui/help"
	"github.com/memorybox/notification-center/internal/ui/notilist"
	"github.com/memorybox/notification-center/internal/ui/setup"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewMain ViewState = iota
	ViewHelp
	ViewCommand
	ViewHistory
	ViewSetup
)

// navPaneHeight is the number of rows reserved below the dropdown for
// the navigation pane.
const navPaneHeight = 4

// Subscriber opens an extra listener on the live channel.
type Subscriber interface {
	Open(ctx context.Context, onMessage func(model.Notification)) (func(), error)
}

// Deps are the collaborators the root model drives.
type Deps struct {
	Config     model.AppConfig
	ConfigPath string
	Tokens     *credential.TokenSource
	Hook       *notify.Hook
	Watcher    *appsync.Watcher
	Live       Subscriber
	Journal    store.Journal
	Validator  setup.Validator
	Logger     *zap.Logger
}

// viewerResolvedMsg carries the identity read from the stored token.
type viewerResolvedMsg struct {
	viewer string
	err    error
}

// journalSubscribedMsg is sent once the journal listens to the live channel.
type journalSubscribedMsg struct {
	err error
}

// Model is the root Bubble Tea model. It owns the layout, the
// notification dropdown and the overlays around it.
type Model struct {
	deps Deps

	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	dropdown     notilist.Model
	helpView     helpview.Model
	commandView  command.Model
	setupView    setup.Model
	spinner      spinner.Model
	spinning     bool
	ready        bool

	viewer  string
	items   []model.Notification
	phase   notify.Phase
	unread  int
	live    bool
	lastNav *appsync.NavigatedMsg

	history    []store.Entry
	historyErr error

	statusMsg string
}

// New creates the root application model.
func New(d Deps) Model {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	k := keys.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorYellow)

	return Model{
		deps:        d,
		currentView: ViewMain,
		keys:        k,
		dropdown:    notilist.New(k, 80, 24-navPaneHeight),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		setupView:   setup.New(d.Config, d.ConfigPath, d.Tokens, d.Validator, 80, 24),
		spinner:     sp,
		phase:       notify.PhaseIdle,
	}
}

// Init resolves the viewer from the stored token and starts listening
// for list changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.resolveViewer(),
		m.deps.Watcher.Start(),
	)
}

func (m Model) resolveViewer() tea.Cmd {
	tokens := m.deps.Tokens
	return func() tea.Msg {
		token, err := tokens.Token()
		if err != nil || token == "" {
			return viewerResolvedMsg{err: err}
		}
		viewer, err := credential.ViewerFromToken(token)
		return viewerResolvedMsg{viewer: viewer, err: err}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.dropdown.SetSize(contentWidth, max(contentHeight-navPaneHeight, 0))
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.setupView.SetSize(contentWidth, contentHeight)
		if m.currentView == ViewSetup {
			return m.updateActiveView(msg)
		}
		return m, nil

	case viewerResolvedMsg:
		if msg.viewer == "" {
			if msg.err != nil {
				m.deps.Logger.Warn("stored token unusable", zap.Error(msg.err))
			}
			m.previousView = ViewMain
			m.currentView = ViewSetup
			return m, m.setupView.Init()
		}
		return m, m.mount(msg.viewer)

	case journalSubscribedMsg:
		if msg.err != nil {
			m.deps.Logger.Warn("journal could not follow the live channel", zap.Error(msg.err))
		}
		return m, nil

	case appsync.ItemsChangedMsg:
		m.items = msg.Items
		m.phase = msg.Phase
		m.unread = msg.Unread
		m.live = msg.Live
		cmds := []tea.Cmd{
			m.dropdown.SetNotifications(msg.Items),
			m.deps.Watcher.WaitForNextChange(),
		}
		if m.phase == notify.PhaseLoading && !m.spinning {
			m.spinning = true
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case appsync.NavigatedMsg:
		nav := msg
		m.lastNav = &nav
		return m, m.deps.Watcher.WaitForNextNavigation()

	case spinner.TickMsg:
		if m.currentView == ViewSetup {
			return m.updateActiveView(msg)
		}
		if m.phase != notify.PhaseLoading {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case notilist.ClickMsg:
		m.deps.Hook.OnClickNotification(msg.Notification)
		return m, m.recordRead(msg.Notification.ID)

	case notilist.AcceptMsg:
		m.deps.Hook.AcceptFriendRequest(msg.Notification)
		return m, nil

	case notilist.RejectMsg:
		m.deps.Hook.RejectFriendRequest(msg.Notification)
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case command.UnknownCommandMsg:
		m.currentView = m.previousView
		m.statusMsg = fmt.Sprintf("unknown command: %s", msg.Input)
		return m, nil

	case historyLoadedMsg:
		m.history = msg.entries
		m.historyErr = msg.err
		if m.currentView != ViewHistory {
			m.previousView = m.currentView
			m.currentView = ViewHistory
		}
		return m, nil

	case setup.DoneMsg:
		m.currentView = ViewMain
		if msg.BaseURL != m.deps.Config.API.BaseURL {
			m.statusMsg = "API URL saved; restart to connect to it"
		} else {
			m.statusMsg = ""
		}
		return m, m.mount(msg.Viewer)

	case setup.CancelMsg:
		m.currentView = ViewMain
		if m.viewer == "" {
			m.statusMsg = "not signed in: run :quit then memorybox setup"
		}
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work regardless of the active view.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}

	// Text input owns every other key.
	if m.currentView == ViewCommand || m.currentView == ViewSetup {
		if m.currentView == ViewCommand && msg.String() == "esc" {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Back) && (m.currentView == ViewHelp || m.currentView == ViewHistory):
		m.currentView = ViewMain
		return m, nil, true

	case key.Matches(msg, m.keys.Refresh):
		m.statusMsg = ""
		m.deps.Hook.Refresh()
		return m, nil, true

	case key.Matches(msg, m.keys.History):
		return m, m.loadHistory(), true
	}

	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewMain:
		m.dropdown, cmd = m.dropdown.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("memorybox 알림", m.unread, m.connectionStatus())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewMain:
		return m.renderMain()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewHistory:
		return m.renderHistory()
	case ViewSetup:
		return m.setupView.View()
	default:
		return ""
	}
}

func (m Model) renderMain() string {
	nav := m.renderNavigation()
	if m.dropdown.Visible() {
		return lipgloss.JoinVertical(lipgloss.Left, m.dropdown.View(), nav)
	}

	hint := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Padding(1, 2).
		Render("t 를 눌러 알림을 여세요.")
	return lipgloss.JoinVertical(lipgloss.Left, hint, nav)
}

// renderNavigation shows which view the last click routed to.
func (m Model) renderNavigation() string {
	style := lipgloss.NewStyle().Padding(0, 2).Foreground(theme.ColorGray)
	if m.lastNav == nil {
		return style.Render("")
	}

	c := notify.SplitContent(m.lastNav.Notification)
	label := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).
		Render("→ " + m.lastNav.Route.String())
	return style.Render(label + "  " + c.Title + " " + c.Body)
}

// connectionStatus returns the label shown on the right of the header.
func (m Model) connectionStatus() string {
	style := theme.PhaseStyle(m.phase, m.live)
	switch {
	case m.viewer == "":
		return style.Render("signed out")
	case m.phase == notify.PhaseLoading:
		return style.Render(m.spinner.View() + " 불러오는 중")
	case m.phase == notify.PhaseLive && m.live:
		return style.Render("● live")
	case m.phase == notify.PhaseLive:
		return style.Render("○ offline")
	}
	return style.Render(m.phase.String())
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMsg != "" && m.currentView == ViewMain {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewHistory:
		return "esc back | : command"
	case ViewSetup:
		return "enter next | esc cancel"
	default:
		return m.helpView.ShortView()
	}
}
