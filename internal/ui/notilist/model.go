package notilist

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/memorybox/notification-center/internal/keys"
	"github.com/memorybox/notification-center/internal/model"
	"github.com/memorybox/notification-center/internal/notify"
	"github.com/memorybox/notification-center/internal/theme"
)

// EmptyText is shown when there is nothing to list.
const EmptyText = "알림이 없습니다."

// ClickMsg is sent when the user opens a notification.
type ClickMsg struct {
	Notification model.Notification
}

// AcceptMsg is sent when the user accepts a friend request.
type AcceptMsg struct {
	Notification model.Notification
}

// RejectMsg is sent when the user rejects a friend request.
type RejectMsg struct {
	Notification model.Notification
}

// Model is the notification dropdown. Apart from the cursor its only
// state is whether it is shown.
type Model struct {
	list    list.Model
	keys    *keys.KeyMap
	visible bool
	width   int
	height  int
}

// New creates a hidden dropdown.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "알림"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetClock replaces the time source used for relative timestamps.
func (m *Model) SetClock(now func() time.Time) {
	m.list.SetDelegate(ItemDelegate{now: now})
}

// SetNotifications replaces the rendered list.
func (m *Model) SetNotifications(ns []model.Notification) tea.Cmd {
	items := make([]list.Item, len(ns))
	for i, n := range ns {
		items[i] = Item{Notification: n}
	}
	return m.list.SetItems(items)
}

// Visible reports whether the dropdown is shown.
func (m Model) Visible() bool { return m.visible }

// SetVisible shows or hides the dropdown.
func (m *Model) SetVisible(v bool) { m.visible = v }

// Selected returns the notification under the cursor.
func (m Model) Selected() (model.Notification, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Notification{}, false
	}
	return it.Notification, true
}

// Update handles messages for the dropdown.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if key.Matches(keyMsg, m.keys.Toggle) {
		m.visible = !m.visible
		return m, nil
	}
	if !m.visible {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Back):
		m.visible = false
		return m, nil

	case key.Matches(keyMsg, m.keys.Open):
		n, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return ClickMsg{Notification: n} }

	// Friend actions stop here and never fall through to a click.
	case key.Matches(keyMsg, m.keys.Accept):
		n, ok := m.Selected()
		if !ok || !notify.IsFriendRequest(n) {
			return m, nil
		}
		return m, func() tea.Msg { return AcceptMsg{Notification: n} }

	case key.Matches(keyMsg, m.keys.Reject):
		n, ok := m.Selected()
		if !ok || !notify.IsFriendRequest(n) {
			return m, nil
		}
		return m, func() tea.Msg { return RejectMsg{Notification: n} }
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the dropdown, or nothing when hidden.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	if len(m.list.Items()) == 0 {
		empty := lipgloss.NewStyle().
			Width(m.width-4).
			Align(lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(EmptyText)
		return theme.DropdownStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left, theme.HeaderStyle.Render(m.list.Title), "", empty),
		)
	}

	return theme.DropdownStyle.Render(m.list.View())
}

// SetSize updates the dropdown dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width-4, height-2)
}
