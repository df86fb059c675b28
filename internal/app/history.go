package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/memorybox/notification-center/internal/notify"
	"github.com/memorybox/notification-center/internal/store"
	"github.com/memorybox/notification-center/internal/theme"
)

// HistoryLine renders one journal entry as plain text.
func HistoryLine(e store.Entry) string {
	read := "●"
	if e.IsRead {
		read = " "
	}
	c := notify.SplitContent(e.Notification())
	text := strings.TrimSpace(c.Title + " " + c.Body)
	return fmt.Sprintf("%s %s  %-4s  %-18s %s",
		read,
		e.RecordedAt().Format("2006.01.02 15:04"),
		e.Origin,
		e.Type,
		text,
	)
}

func (m Model) renderHistory() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Notification History"))
	b.WriteString("\n")

	switch {
	case m.historyErr != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.historyErr.Error()))
	case len(m.history) == 0:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render("No history yet."))
	default:
		rows := m.history
		if limit := m.layout.ContentHeight() - 6; limit > 0 && len(rows) > limit {
			rows = rows[:limit]
		}
		for _, e := range rows {
			b.WriteString(HistoryLine(e))
			b.WriteString("\n")
		}
	}

	return theme.PanelStyle.
		Width(max(m.layout.ContentWidth()-4, 0)).
		Render(b.String())
}
