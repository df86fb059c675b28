package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/memorybox/notification-center/internal/api"
	"github.com/memorybox/notification-center/internal/model"
)

const (
	defaultPageSize      = 20
	defaultActionTimeout = 15 * time.Second
)

// Transport is what the hook needs from the notification transport.
type Transport interface {
	List(ctx context.Context, page, size int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	UpdateFriendStatus(ctx context.Context, friendID int64, status model.FriendStatus) error
	Open(ctx context.Context, onMessage func(model.Notification)) (func(), error)
	Close()
}

// Hook owns the notification list the viewer sees. It merges the first
// fetched page with live pushes and applies read and friend actions.
//
// Every asynchronous result is applied only if the mount scope it was
// started under is still current, so nothing lands after Unmount.
type Hook struct {
	tr            Transport
	nav           Navigator
	logger        *zap.Logger
	pageSize      int
	actionTimeout time.Duration

	mu          sync.Mutex
	state       State
	viewer      string
	scope       context.Context
	cancel      context.CancelFunc
	unsubscribe func()

	updates chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Hook.
type Option func(*Hook)

// WithLogger sets the logger that receives swallowed errors.
func WithLogger(l *zap.Logger) Option {
	return func(h *Hook) { h.logger = l }
}

// WithPageSize sets the size of the initial fetch.
func WithPageSize(n int) Option {
	return func(h *Hook) {
		if n > 0 {
			h.pageSize = n
		}
	}
}

// WithActionTimeout bounds mark-read and friend status requests.
func WithActionTimeout(d time.Duration) Option {
	return func(h *Hook) {
		if d > 0 {
			h.actionTimeout = d
		}
	}
}

// New creates an idle hook. nav may be nil.
func New(tr Transport, nav Navigator, opts ...Option) *Hook {
	h := &Hook{
		tr:            tr,
		nav:           nav,
		logger:        zap.NewNop(),
		pageSize:      defaultPageSize,
		actionTimeout: defaultActionTimeout,
		state:         State{Phase: PhaseIdle, Items: []model.Notification{}},
		updates:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mount starts a session for viewer: the first page is fetched and the
// live channel opened concurrently. An empty viewer leaves the hook idle.
// Mounting for a different viewer tears the previous session down first.
func (h *Hook) Mount(viewer string) {
	if viewer == "" {
		return
	}

	h.mu.Lock()
	if h.cancel != nil {
		if h.viewer == viewer {
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()
		h.Unmount()
		h.mu.Lock()
	}

	scope, cancel := context.WithCancel(context.Background())
	h.scope = scope
	h.cancel = cancel
	h.viewer = viewer
	h.state = Reduce(h.state, Mounted{})
	h.mu.Unlock()
	h.signal()

	h.logger.Debug("notifications mounted", zap.String("viewer", viewer))

	h.wg.Add(2)
	go h.load(scope)
	go h.open(scope)
}

// Unmount ends the session. In-flight results are discarded and the
// transport is closed.
func (h *Hook) Unmount() {
	h.mu.Lock()
	if h.cancel == nil && h.state.Phase == PhaseClosed {
		h.mu.Unlock()
		return
	}
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	unsubscribe := h.unsubscribe
	h.unsubscribe = nil
	h.viewer = ""
	h.state = Reduce(h.state, Closed{})
	h.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	h.tr.Close()
	h.signal()
	h.logger.Debug("notifications unmounted")
}

// Refresh re-fetches the first page and replaces the list.
func (h *Hook) Refresh() {
	scope, ok := h.current()
	if !ok {
		return
	}
	h.wg.Add(1)
	go h.load(scope)
}

// Items returns a copy of the current list, newest first.
func (h *Hook) Items() []model.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	items := make([]model.Notification, len(h.state.Items))
	copy(items, h.state.Items)
	return items
}

// Phase returns the current lifecycle phase.
func (h *Hook) Phase() Phase {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Phase
}

// Updates signals after every change to the list or phase. Signals are
// coalesced; read Items after receiving one.
func (h *Hook) Updates() <-chan struct{} {
	return h.updates
}

// Wait blocks until every in-flight fetch and action has finished.
func (h *Hook) Wait() {
	h.wg.Wait()
}

// OnClickNotification marks n read locally before returning. When n was
// unread the server is told asynchronously; a failure there is logged and
// the local flag stays set. The click then navigates by type.
func (h *Hook) OnClickNotification(n model.Notification) {
	h.mu.Lock()
	h.state = Reduce(h.state, MarkedRead{ID: n.ID})
	h.mu.Unlock()
	h.signal()

	if !n.IsRead {
		h.markReadRemote(n.ID)
	}

	if route := RouteFor(n.Type); route != RouteNone && h.nav != nil {
		h.nav.Navigate(route, n)
	}
}

// MarkAllRead marks every unread entry read locally and tells the server
// about each one. It does not navigate. It returns how many were unread.
func (h *Hook) MarkAllRead() int {
	h.mu.Lock()
	var unread []int64
	for _, n := range h.state.Items {
		if !n.IsRead {
			unread = append(unread, n.ID)
			h.state = Reduce(h.state, MarkedRead{ID: n.ID})
		}
	}
	h.mu.Unlock()
	if len(unread) == 0 {
		return 0
	}
	h.signal()

	for _, id := range unread {
		h.markReadRemote(id)
	}
	return len(unread)
}

func (h *Hook) markReadRemote(id int64) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.actionTimeout)
		defer cancel()
		if err := h.tr.MarkRead(ctx, id); err != nil {
			h.logger.Warn("marking notification read failed",
				zap.Int64("id", id), zap.Error(err))
		}
	}()
}

// AcceptFriendRequest accepts the request behind n and removes n on success.
func (h *Hook) AcceptFriendRequest(n model.Notification) {
	h.answerFriendRequest(n, model.FriendAccepted)
}

// RejectFriendRequest rejects the request behind n and removes n on success.
func (h *Hook) RejectFriendRequest(n model.Notification) {
	h.answerFriendRequest(n, model.FriendRejected)
}

func (h *Hook) answerFriendRequest(n model.Notification, status model.FriendStatus) {
	if n.TargetID == nil {
		h.logger.Warn("friend request action skipped",
			zap.String("status", string(status)),
			zap.Error(&api.MissingTargetError{NotificationID: n.ID}))
		return
	}
	scope, ok := h.current()
	if !ok {
		h.logger.Debug("friend request action ignored while not mounted", zap.Int64("id", n.ID))
		return
	}

	target := *n.TargetID
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.actionTimeout)
		defer cancel()
		if err := h.tr.UpdateFriendStatus(ctx, target, status); err != nil {
			h.logger.Warn("friend request action failed",
				zap.Int64("id", n.ID),
				zap.Int64("target", target),
				zap.String("status", string(status)),
				zap.Error(err))
			return
		}
		h.dispatch(scope, Removed{ID: n.ID})
	}()
}

func (h *Hook) load(scope context.Context) {
	defer h.wg.Done()

	items, err := h.tr.List(scope, 0, h.pageSize)
	if err != nil {
		if scope.Err() == nil {
			h.logger.Warn("loading notifications failed", zap.Error(err))
		}
		h.dispatch(scope, LoadFailed{})
		return
	}
	h.dispatch(scope, Loaded{Items: items})
}

func (h *Hook) open(scope context.Context) {
	defer h.wg.Done()

	unsubscribe, err := h.tr.Open(scope, func(n model.Notification) {
		h.dispatch(scope, Pushed{Item: n})
	})
	if err != nil {
		if scope.Err() == nil {
			h.logger.Warn("opening live channel failed", zap.Error(err))
		}
		return
	}

	h.mu.Lock()
	if h.scope != scope || scope.Err() != nil {
		h.mu.Unlock()
		unsubscribe()
		return
	}
	h.unsubscribe = unsubscribe
	h.mu.Unlock()
}

// dispatch applies a to the state if scope is still the live mount.
func (h *Hook) dispatch(scope context.Context, a Action) bool {
	h.mu.Lock()
	if h.scope != scope || scope.Err() != nil {
		h.mu.Unlock()
		return false
	}
	h.state = Reduce(h.state, a)
	h.mu.Unlock()
	h.signal()
	return true
}

func (h *Hook) current() (context.Context, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.scope == nil || h.scope.Err() != nil {
		return nil, false
	}
	return h.scope, true
}

func (h *Hook) signal() {
	select {
	case h.updates <- struct{}{}:
	default:
	}
}
