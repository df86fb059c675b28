package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/memorybox/notification-center/internal/api"
	"github.com/memorybox/notification-center/internal/model"
)

// ErrClosed is returned by Open when Close ran while the dial was in flight.
var ErrClosed = errors.New("transport closed")

const notificationsPath = "/ws/notifications"

// dialAttempt is one in-flight dial. done closes once err is final.
type dialAttempt struct {
	done chan struct{}
	err  error
}

type subscriber struct {
	id        uint64
	onMessage func(model.Notification)
	active    atomic.Bool
}

// Transport owns the HTTP client and the single live channel of a
// session. Create one at the application root and share it.
type Transport struct {
	client *api.Client
	dialer Dialer
	wsBase string
	logger *zap.Logger

	mu      sync.Mutex
	conn    Conn
	pending *dialAttempt
	epoch   uint64
	subs    []*subscriber
	nextSub uint64
}

// Option configures a Transport.
type Option func(*Transport)

// WithDialer replaces the websocket dialer.
func WithDialer(d Dialer) Option {
	return func(t *Transport) { t.dialer = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// New creates a Transport. wsBase is the websocket origin, e.g.
// ws://localhost:8080.
func New(client *api.Client, wsBase string, opts ...Option) *Transport {
	t := &Transport{
		client: client,
		dialer: NewWebSocketDialer(10 * time.Second),
		wsBase: strings.TrimRight(wsBase, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// List fetches one page of notifications.
func (t *Transport) List(ctx context.Context, page, size int) ([]model.Notification, error) {
	p, err := t.client.ListNotifications(ctx, page, size)
	if err != nil {
		return nil, err
	}
	return p.Items, nil
}

// MarkRead durably marks a notification as read.
func (t *Transport) MarkRead(ctx context.Context, id int64) error {
	return t.client.MarkNotificationRead(ctx, id)
}

// UpdateFriendStatus accepts or rejects a friend request.
func (t *Transport) UpdateFriendStatus(ctx context.Context, friendID int64, status model.FriendStatus) error {
	return t.client.UpdateFriendStatus(ctx, friendID, status)
}

// Open subscribes onMessage to live notifications. The first Open dials
// the channel; while a channel is open, later calls only add a subscriber.
// A call made during a dial waits for it and shares its outcome. On error
// the subscriber is removed. The returned func removes the subscriber and
// is safe to call more than once.
func (t *Transport) Open(ctx context.Context, onMessage func(model.Notification)) (func(), error) {
	t.mu.Lock()
	sub := &subscriber{id: t.nextSub, onMessage: onMessage}
	sub.active.Store(true)
	t.nextSub++
	t.subs = append(t.subs, sub)
	cancel := func() { t.unsubscribe(sub) }

	if t.conn != nil {
		t.mu.Unlock()
		return cancel, nil
	}
	if attempt := t.pending; attempt != nil {
		t.mu.Unlock()
		return t.join(ctx, attempt, cancel)
	}

	attempt := &dialAttempt{done: make(chan struct{})}
	t.pending = attempt
	epoch := t.epoch
	t.mu.Unlock()

	conn, err := t.dial(ctx)

	t.mu.Lock()
	if t.epoch != epoch {
		t.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		sub.active.Store(false)
		t.finish(attempt, ErrClosed)
		return func() {}, ErrClosed
	}
	t.pending = nil
	if err != nil {
		t.mu.Unlock()
		cancel()
		t.finish(attempt, err)
		return func() {}, err
	}
	t.conn = conn
	t.mu.Unlock()
	t.finish(attempt, nil)

	t.logger.Info("live channel open")
	go t.readLoop(conn)
	return cancel, nil
}

// join waits for a dial started by another caller.
func (t *Transport) join(ctx context.Context, attempt *dialAttempt, cancel func()) (func(), error) {
	select {
	case <-attempt.done:
	case <-ctx.Done():
		cancel()
		return func() {}, ctx.Err()
	}
	if attempt.err != nil {
		cancel()
		return func() {}, attempt.err
	}
	return cancel, nil
}

func (t *Transport) finish(attempt *dialAttempt, err error) {
	attempt.err = err
	close(attempt.done)
}

func (t *Transport) dial(ctx context.Context) (Conn, error) {
	token, err := t.client.Token()
	if err != nil {
		return nil, err
	}
	target := t.wsBase + notificationsPath + "?token=" + url.QueryEscape(token)
	return t.dialer.Dial(ctx, target)
}

// IsOpen reports whether a live channel is currently connected.
func (t *Transport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Close closes the live channel if open and drops every subscriber.
func (t *Transport) Close() {
	t.mu.Lock()
	conn := t.conn
	subs := t.subs
	t.conn = nil
	t.subs = nil
	t.pending = nil
	t.epoch++
	t.mu.Unlock()

	for _, s := range subs {
		s.active.Store(false)
	}
	if conn != nil {
		conn.Close()
		t.logger.Info("live channel closed")
	}
}

func (t *Transport) unsubscribe(sub *subscriber) {
	sub.active.Store(false)
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s == sub {
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			return
		}
	}
}

// readLoop decodes frames until the connection fails. There is no
// reconnect; a later Open dials again.
func (t *Transport) readLoop(conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			current := t.conn == conn
			if current {
				t.conn = nil
			}
			t.mu.Unlock()
			if current {
				t.logger.Warn("live channel lost", zap.Error(err))
			}
			conn.Close()
			return
		}

		n, err := decode(data)
		if err != nil {
			t.logger.Warn("dropping live message", zap.Error(err))
			continue
		}
		t.deliver(conn, n)
	}
}

func (t *Transport) deliver(conn Conn, n model.Notification) {
	t.mu.Lock()
	if t.conn != conn {
		t.mu.Unlock()
		return
	}
	subs := make([]*subscriber, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	for _, s := range subs {
		if s.active.Load() {
			s.onMessage(n)
		}
	}
}

func decode(data []byte) (model.Notification, error) {
	var n model.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return model.Notification{}, &api.MalformedPayloadError{Payload: data, Err: err}
	}
	return n, nil
}
