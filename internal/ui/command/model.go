package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/memorybox/notification-center/internal/theme"
)

// Name identifies a palette command.
type Name string

const (
	Refresh Name = "refresh"
	History Name = "history"
	ReadAll Name = "read-all"
	Help    Name = "help"
	Quit    Name = "quit"
)

// aliases maps accepted spellings to commands.
var aliases = map[string]Name{
	"refresh":  Refresh,
	"r":        Refresh,
	"history":  History,
	"h":        History,
	"read-all": ReadAll,
	"readall":  ReadAll,
	"help":     Help,
	"quit":     Quit,
	"q":        Quit,
}

// CommandMsg is emitted when the user executes a known command.
type CommandMsg struct {
	Name Name
	Args []string
}

// UnknownCommandMsg is emitted for input that names no command.
type UnknownCommandMsg struct {
	Input string
}

// Parse resolves a line of palette input.
func Parse(line string) (CommandMsg, error) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if len(fields) == 0 {
		return CommandMsg{}, fmt.Errorf("empty command")
	}
	name, ok := aliases[strings.ToLower(fields[0])]
	if !ok {
		return CommandMsg{}, fmt.Errorf("unknown command %q", fields[0])
	}
	return CommandMsg{Name: name, Args: fields[1:]}, nil
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "refresh · history · read-all · help · quit"
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				return m, nil
			}
			parsed, err := Parse(line)
			if err != nil {
				return m, func() tea.Msg {
					return UnknownCommandMsg{Input: line}
				}
			}
			return m, func() tea.Msg {
				return parsed
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	content := lipgloss.JoinVertical(lipgloss.Left, title, input)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
