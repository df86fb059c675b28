package notilist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/memorybox/notification-center/internal/model"
	"github.com/memorybox/notification-center/internal/notify"
	"github.com/memorybox/notification-center/internal/theme"
)

const (
	acceptLabel = "[y] 수락"
	rejectLabel = "[n] 거절"
	unreadDot   = "●"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Content }

// ItemDelegate implements list.ItemDelegate for notification rows. Each
// row is two lines: the headline with its time, then the sub line and,
// for friend requests, the accept/reject affordances.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single notification.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderRow(it.Notification, index == m.Index(), m.Width()))
}

func (d ItemDelegate) renderRow(n model.Notification, isSelected bool, width int) string {
	now := time.Now
	if d.now != nil {
		now = d.now
	}

	c := notify.SplitContent(n)
	kind := notify.Icon(n.Type)

	dot := " "
	titleStyle := theme.ReadTitleStyle
	if !n.IsRead {
		dot = theme.UnreadDotStyle.Render(unreadDot)
		titleStyle = theme.UnreadTitleStyle
	}

	icon := theme.IconStyle(kind).Render(theme.IconGlyph(kind))
	headline := titleStyle.Render(c.Title)
	if c.Body != "" {
		headline += " " + titleStyle.UnsetBold().Render(c.Body)
	}
	stamp := theme.TimeStyle.Render(notify.FormatTime(n.CreatedAt, now()))

	first := fmt.Sprintf("%s %s %s", dot, icon, headline)
	if gap := width - lipgloss.Width(first) - lipgloss.Width(stamp) - 4; gap > 0 {
		first += strings.Repeat(" ", gap)
	} else {
		first += "  "
	}
	first += stamp

	var second []string
	if c.Sub != nil {
		second = append(second, theme.SubStyle.Render(*c.Sub))
	}
	if notify.IsFriendRequest(n) {
		second = append(second,
			theme.AcceptStyle.Render(acceptLabel)+"  "+theme.RejectStyle.Render(rejectLabel))
	}

	row := lipgloss.JoinVertical(lipgloss.Left, first, "    "+strings.Join(second, "  "))

	if isSelected {
		return theme.SelectedItemStyle.Render(row)
	}
	return theme.ListItemStyle.Render(row)
}
