package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/memorybox/notification-center/internal/model"
	"github.com/memorybox/notification-center/internal/notify"
	"github.com/memorybox/notification-center/internal/store"
)

// ItemsChangedMsg is a tea.Msg carrying a snapshot of the notification list.
type ItemsChangedMsg struct {
	Items  []model.Notification
	Phase  notify.Phase
	Unread int
	Live   bool
}

// NavigatedMsg is a tea.Msg sent when a click routes to another view.
type NavigatedMsg struct {
	Route        notify.Route
	Notification model.Notification
}

// Source is the observable notification list.
type Source interface {
	Items() []model.Notification
	Phase() notify.Phase
	Updates() <-chan struct{}
}

// journalTimeout bounds a single journal write.
const journalTimeout = 5 * time.Second

// Watcher turns list changes and navigation into tea messages and keeps
// the journal in step with what the viewer has seen.
type Watcher struct {
	source  Source
	journal store.Journal
	live    func() bool
	logger  *zap.Logger

	navCh  chan NavigatedMsg
	stopCh chan struct{}

	mu      gosync.Mutex
	viewer  string
	running bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithJournal records every observed notification in j.
func WithJournal(j store.Journal) Option {
	return func(w *Watcher) { w.journal = j }
}

// WithLiveProbe reports whether the live channel is connected.
func WithLiveProbe(probe func() bool) Option {
	return func(w *Watcher) { w.live = probe }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a Watcher over source.
func New(source Source, opts ...Option) *Watcher {
	w := &Watcher{
		source: source,
		logger: zap.NewNop(),
		navCh:  make(chan NavigatedMsg, 16),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetViewer sets whose journal entries are written.
func (w *Watcher) SetViewer(viewer string) {
	w.mu.Lock()
	w.viewer = viewer
	w.mu.Unlock()
}

func (w *Watcher) currentViewer() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewer
}

func (w *Watcher) stopped() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopCh
}

// Start returns the commands that listen for list changes and
// navigation. It returns nil if already started. A stopped watcher can
// be started again.
func (w *Watcher) Start() tea.Cmd {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	select {
	case <-w.stopCh:
		w.stopCh = make(chan struct{})
	default:
	}
	w.running = true
	w.mu.Unlock()

	return tea.Batch(w.waitForChange(), w.waitForNavigation())
}

// Stop releases every pending wait command.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
}

// Snapshot builds an ItemsChangedMsg from the current list.
func (w *Watcher) Snapshot() ItemsChangedMsg {
	items := w.source.Items()
	msg := ItemsChangedMsg{
		Items:  items,
		Phase:  w.source.Phase(),
		Unread: notify.UnreadCount(items),
	}
	if w.live != nil {
		msg.Live = w.live()
	}
	return msg
}

// Navigate implements notify.Navigator. It never blocks the caller; a
// navigation is dropped if the UI is far behind.
func (w *Watcher) Navigate(route notify.Route, n model.Notification) {
	select {
	case w.navCh <- NavigatedMsg{Route: route, Notification: n}:
	default:
		w.logger.Warn("navigation dropped", zap.String("route", route.String()), zap.Int64("id", n.ID))
	}
}

// RecordPush journals a live notification. It is meant to be registered
// as a transport subscriber next to the hook.
func (w *Watcher) RecordPush(n model.Notification) {
	w.record(store.OriginPush, n)
}

// RecordRead marks notifications read in the journal.
func (w *Watcher) RecordRead(ids ...int64) {
	if w.journal == nil || len(ids) == 0 {
		return
	}
	viewer := w.currentViewer()
	if viewer == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	for _, id := range ids {
		if err := w.journal.MarkRead(ctx, viewer, id); err != nil {
			w.logger.Warn("journal read mark failed", zap.Int64("id", id), zap.Error(err))
		}
	}
}

func (w *Watcher) record(origin store.Origin, items ...model.Notification) {
	if w.journal == nil || len(items) == 0 {
		return
	}
	viewer := w.currentViewer()
	if viewer == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if err := w.journal.Record(ctx, viewer, origin, items...); err != nil {
		w.logger.Warn("journal write failed", zap.String("origin", string(origin)), zap.Error(err))
	}
}

// waitForChange returns a tea.Cmd that blocks until the list changes.
func (w *Watcher) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.source.Updates():
		case <-w.stopped():
			return nil
		}
		msg := w.Snapshot()
		w.record(store.OriginFetch, msg.Items...)
		return msg
	}
}

// WaitForNextChange returns a tea.Cmd that waits for the next list change.
// Call it after handling an ItemsChangedMsg to keep listening.
func (w *Watcher) WaitForNextChange() tea.Cmd {
	return w.waitForChange()
}

func (w *Watcher) waitForNavigation() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-w.navCh:
			return msg
		case <-w.stopped():
			return nil
		}
	}
}

// WaitForNextNavigation returns a tea.Cmd that waits for the next click
// navigation. Call it after handling a NavigatedMsg.
func (w *Watcher) WaitForNextNavigation() tea.Cmd {
	return w.waitForNavigation()
}

var _ notify.Navigator = (*Watcher)(nil)
