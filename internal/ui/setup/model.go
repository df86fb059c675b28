package setup

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/memorybox/notification-center/internal/api"
	"github.com/memorybox/notification-center/internal/credential"
	"github.com/memorybox/notification-center/internal/model"
	"github.com/memorybox/notification-center/internal/theme"
)

const validateTimeout = 10 * time.Second

// Mode is the current stage of the setup view.
type Mode int

const (
	ModeForm Mode = iota
	ModeValidating
	ModeFailed
)

// DoneMsg is sent once the settings were validated and saved.
type DoneMsg struct {
	BaseURL string
	Viewer  string
}

// CancelMsg is sent when the user leaves setup without saving.
type CancelMsg struct{}

type savedMsg struct {
	baseURL string
	viewer  string
	err     error
}

// Validator checks that token is accepted by the API at baseURL.
type Validator func(ctx context.Context, baseURL, token string) error

// ProbeAPI fetches a single notification to prove the credentials work.
func ProbeAPI(ctx context.Context, baseURL, token string) error {
	client := api.NewClient(baseURL, api.StaticToken(token))
	_, err := client.ListNotifications(ctx, 0, 1)
	return err
}

type formValues struct {
	baseURL string
	token   string
}

// Model collects the API URL and access token.
type Model struct {
	mode     Mode
	form     *huh.Form
	spinner  spinner.Model
	validate Validator

	cfg     model.AppConfig
	cfgPath string
	tokens  *credential.TokenSource

	// values outlives copies of Model so the form's bindings stay valid.
	values *formValues

	err           error
	width, height int
}

// New creates the setup view prefilled from cfg.
func New(cfg model.AppConfig, cfgPath string, tokens *credential.TokenSource, validate Validator, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if validate == nil {
		validate = ProbeAPI
	}

	m := Model{
		spinner:     sp,
		validate:    validate,
		cfg:         cfg,
		cfgPath:     cfgPath,
		tokens:      tokens,
		values:      &formValues{baseURL: cfg.API.BaseURL},
		width:       width,
		height:      height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API URL").
				Description("memorybox API root (e.g., https://api.memorybox.app/api)").
				Placeholder("http://localhost:8080/api").
				Value(&m.values.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Access Token").
				Description("Bearer token from your memorybox session").
				EchoMode(huh.EchoModePassword).
				Value(&m.values.token).
				Validate(validateToken),
		),
	).WithWidth(m.formWidth())
}

// Update handles messages for the setup view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		if msg.err != nil {
			m.mode = ModeFailed
			m.err = msg.err
			return m, nil
		}
		return m, func() tea.Msg {
			return DoneMsg{BaseURL: msg.baseURL, Viewer: msg.viewer}
		}

	case spinner.TickMsg:
		if m.mode != ModeValidating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode == ModeFailed {
			switch msg.String() {
			case "r", "enter":
				m.mode = ModeForm
				m.err = nil
				m.form = m.buildForm()
				return m, m.form.Init()
			case "esc":
				return m, func() tea.Msg { return CancelMsg{} }
			}
			return m, nil
		}
		if m.mode == ModeValidating {
			return m, nil
		}
	}

	if m.mode != ModeForm {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.mode = ModeValidating
		return m, tea.Batch(m.spinner.Tick, m.validateAndSave())
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

func (m Model) validateAndSave() tea.Cmd {
	baseURL := strings.TrimRight(strings.TrimSpace(m.values.baseURL), "/")
	token := strings.TrimSpace(m.values.token)
	cfg := m.cfg
	path := m.cfgPath
	tokens := m.tokens
	validate := m.validate

	return func() tea.Msg {
		viewer, err := credential.ViewerFromToken(token)
		if err != nil {
			return savedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
		defer cancel()
		if err := validate(ctx, baseURL, token); err != nil {
			return savedMsg{err: err}
		}

		if err := tokens.Save(token); err != nil {
			return savedMsg{err: fmt.Errorf("token accepted but save failed: %w", err)}
		}
		cfg.API.BaseURL = baseURL
		if err := model.SaveConfig(path, &cfg); err != nil {
			return savedMsg{err: fmt.Errorf("token accepted but save failed: %w", err)}
		}
		return savedMsg{baseURL: baseURL, viewer: viewer}
	}
}

// View renders the setup view.
func (m Model) View() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	title := titleStyle.Render("memorybox 연결 설정")

	switch m.mode {
	case ModeValidating:
		return style.Render(title + "\n" +
			fmt.Sprintf("%s Checking credentials...", m.spinner.View()))

	case ModeFailed:
		errStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)
		return style.Render(title + "\n" +
			errStyle.Render("Setup failed") + "\n\n" +
			describe(m.err) + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.ColorGray).Render("r retry | esc cancel"))
	}

	return style.Render(title + "\n" + m.form.View())
}

// SetSize updates the setup view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func describe(err error) string {
	switch {
	case err == nil:
		return ""
	case api.IsAuthError(err):
		return "The server rejected the token. Sign in again and copy a fresh one."
	case api.IsNetworkError(err):
		return "Could not reach the server: " + err.Error()
	}
	return err.Error()
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("URL must be http(s) and include a host (e.g., https://api.memorybox.app/api)")
	}
	return nil
}

func validateToken(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("token is required")
	}
	if _, err := credential.ViewerFromToken(strings.TrimSpace(s)); err != nil {
		return err
	}
	return nil
}
