package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/memorybox/notification-center/internal/store"
	"github.com/memorybox/notification-center/internal/ui/command"
)

const (
	historyLimit     = 50
	subscribeTimeout = 15 * time.Second
)

// historyLoadedMsg carries journal entries for the history view.
type historyLoadedMsg struct {
	entries []store.Entry
	err     error
}

// mount starts the notification session for viewer and attaches the
// journal to the live channel.
func (m *Model) mount(viewer string) tea.Cmd {
	m.viewer = viewer
	m.deps.Watcher.SetViewer(viewer)
	m.deps.Hook.Mount(viewer)
	m.deps.Logger.Info("notification center started", zap.String("viewer", viewer))

	return m.subscribeJournal()
}

// subscribeJournal registers the journal as a second live listener. The
// hook's unmount closes the channel for every listener, so this runs on
// each mount.
func (m Model) subscribeJournal() tea.Cmd {
	if m.deps.Journal == nil || m.deps.Live == nil {
		return nil
	}
	live := m.deps.Live
	w := m.deps.Watcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), subscribeTimeout)
		defer cancel()
		_, err := live.Open(ctx, w.RecordPush)
		return journalSubscribedMsg{err: err}
	}
}

// recordRead marks ids read in the journal.
func (m Model) recordRead(ids ...int64) tea.Cmd {
	if m.deps.Journal == nil || len(ids) == 0 {
		return nil
	}
	w := m.deps.Watcher
	return func() tea.Msg {
		w.RecordRead(ids...)
		return nil
	}
}

// loadHistory reads the viewer's recent journal entries.
func (m Model) loadHistory() tea.Cmd {
	j := m.deps.Journal
	viewer := m.viewer
	return func() tea.Msg {
		if j == nil {
			return historyLoadedMsg{err: fmt.Errorf("history is disabled (journal.enabled=false)")}
		}
		if viewer == "" {
			return historyLoadedMsg{err: fmt.Errorf("not signed in")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entries, err := j.Recent(ctx, viewer, historyLimit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	switch cmd.Name {
	case command.Refresh:
		m.statusMsg = ""
		m.deps.Hook.Refresh()
		return nil
	case command.History:
		return m.loadHistory()
	case command.ReadAll:
		var unread []int64
		for _, n := range m.deps.Hook.Items() {
			if !n.IsRead {
				unread = append(unread, n.ID)
			}
		}
		n := m.deps.Hook.MarkAllRead()
		m.statusMsg = fmt.Sprintf("%d개의 알림을 읽음으로 표시했습니다.", n)
		return m.recordRead(unread...)
	case command.Help:
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case command.Quit:
		return tea.Quit
	default:
		return nil
	}
}
