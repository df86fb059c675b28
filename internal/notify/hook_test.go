package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/memorybox/notification-center/internal/api"
	"github.com/memorybox/notification-center/internal/model"
)

const waitFor = 2 * time.Second

type friendCall struct {
	target int64
	status model.FriendStatus
}

type fakeTransport struct {
	mu sync.Mutex

	listItems []model.Notification
	listErr   error
	listGate  chan struct{}
	listCalls int

	markReadGate  chan struct{}
	markReadErr   error
	markReadCalls []int64

	friendGate  chan struct{}
	friendErr   error
	friendCalls []friendCall

	openErr      error
	handlers     []func(model.Notification)
	opens        int
	unsubscribes int
	closes       int
}

func (f *fakeTransport) List(ctx context.Context, page, size int) ([]model.Notification, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Notification(nil), f.listItems...), nil
}

func (f *fakeTransport) MarkRead(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.markReadCalls = append(f.markReadCalls, id)
	gate := f.markReadGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markReadErr
}

func (f *fakeTransport) UpdateFriendStatus(ctx context.Context, friendID int64, status model.FriendStatus) error {
	f.mu.Lock()
	f.friendCalls = append(f.friendCalls, friendCall{target: friendID, status: status})
	gate := f.friendGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.friendErr
}

func (f *fakeTransport) Open(ctx context.Context, onMessage func(model.Notification)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.handlers = append(f.handlers, onMessage)
	return func() {
		f.mu.Lock()
		f.unsubscribes++
		f.mu.Unlock()
	}, nil
}

func (f *fakeTransport) Close() {
	f.mu.Lock()
	f.closes++
	f.mu.Unlock()
}

// push delivers n to every handler ever registered, including ones that
// were unsubscribed, to simulate a stale channel.
func (f *fakeTransport) push(n model.Notification) {
	f.mu.Lock()
	handlers := append(([]func(model.Notification))(nil), f.handlers...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(n)
	}
}

type calls struct {
	listCalls     int
	markReadCalls []int64
	friendCalls   []friendCall
	opens         int
	unsubscribes  int
	closes        int
}

func (f *fakeTransport) snapshot() calls {
	f.mu.Lock()
	defer f.mu.Unlock()
	return calls{
		listCalls:     f.listCalls,
		markReadCalls: append([]int64(nil), f.markReadCalls...),
		friendCalls:   append([]friendCall(nil), f.friendCalls...),
		opens:         f.opens,
		unsubscribes:  f.unsubscribes,
		closes:        f.closes,
	}
}

type recordingNavigator struct {
	mu     sync.Mutex
	routes []Route
}

func (r *recordingNavigator) Navigate(route Route, _ model.Notification) {
	r.mu.Lock()
	r.routes = append(r.routes, route)
	r.mu.Unlock()
}

func (r *recordingNavigator) got() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.routes...)
}

func friendRequest(id, target int64) model.Notification {
	return model.Notification{
		ID:             id,
		Type:           model.NotificationFriendRequest,
		SenderNickname: "준호",
		Content:        "준호님이 친구 요청을 보냈습니다.",
		TargetID:       model.Int64Ptr(target),
	}
}

func mounted(t *testing.T, tr *fakeTransport, opts ...Option) (*Hook, *recordingNavigator) {
	t.Helper()
	nav := &recordingNavigator{}
	h := New(tr, nav, opts...)
	h.Mount("viewer-1")
	h.Wait()
	require.Equal(t, PhaseLive, h.Phase())
	return h, nav
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestMountWithoutViewerStaysIdle(t *testing.T) {
	tr := &fakeTransport{}
	h := New(tr, nil)

	h.Mount("")
	h.Wait()

	assert.Equal(t, PhaseIdle, h.Phase())
	assert.Empty(t, h.Items())
	s := tr.snapshot()
	assert.Equal(t, 0, s.listCalls)
	assert.Equal(t, 0, s.opens)
}

func TestLoadPreservesOrder(t *testing.T) {
	page := []model.Notification{
		noti(30, model.NotificationLetterReceived, false),
		noti(10, model.NotificationCapsuleOpened, true),
		noti(20, model.NotificationFriendAccept, false),
	}
	tr := &fakeTransport{listItems: page}

	h, _ := mounted(t, tr)

	assert.Equal(t, page, h.Items())
	s := tr.snapshot()
	assert.Equal(t, 1, s.listCalls)
	assert.Equal(t, 1, s.opens)
}

func TestMountTwiceForSameViewerIsNoop(t *testing.T) {
	tr := &fakeTransport{}
	h, _ := mounted(t, tr)

	h.Mount("viewer-1")
	h.Wait()

	s := tr.snapshot()
	assert.Equal(t, 1, s.listCalls)
	assert.Equal(t, 1, s.opens)
}

func TestLoadFailureIsLoggedAndListStaysEmpty(t *testing.T) {
	logger, logs := observed()
	tr := &fakeTransport{listErr: &api.RequestError{Method: "GET", Path: "/notifications", StatusCode: 500}}

	h, _ := mounted(t, tr, WithLogger(logger))

	assert.Empty(t, h.Items())
	assert.Equal(t, 1, logs.FilterMessage("loading notifications failed").Len())
}

func TestOpenFailureIsLogged(t *testing.T) {
	logger, logs := observed()
	tr := &fakeTransport{openErr: &api.NetworkError{Op: "dial", Err: errors.New("offline")}}

	h, _ := mounted(t, tr, WithLogger(logger))

	assert.Empty(t, h.Items())
	assert.Equal(t, 1, logs.FilterMessage("opening live channel failed").Len())
}

func TestPushPrepends(t *testing.T) {
	tr := &fakeTransport{listItems: []model.Notification{
		noti(2, model.NotificationLetterReceived, false),
		noti(1, model.NotificationLetterReceived, true),
	}}
	h, _ := mounted(t, tr)

	tr.push(noti(3, model.NotificationCapsuleReceived, false))

	items := h.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []int64{3, 2, 1}, ids(items))
}

func TestPushDuplicateIDIsNotDeduplicated(t *testing.T) {
	tr := &fakeTransport{listItems: []model.Notification{noti(1, model.NotificationLetterReceived, false)}}
	h, _ := mounted(t, tr)

	tr.push(noti(1, model.NotificationLetterReceived, false))

	assert.Equal(t, []int64{1, 1}, ids(h.Items()))
}

func TestOptimisticReadIsSynchronous(t *testing.T) {
	gate := make(chan struct{})
	n := noti(5, model.NotificationLetterReceived, false)
	tr := &fakeTransport{listItems: []model.Notification{n}, markReadGate: gate}
	h, nav := mounted(t, tr)

	h.OnClickNotification(n)

	items := h.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].IsRead, "read flag must flip before the server answers")
	assert.Equal(t, []Route{RouteMailbox}, nav.got())

	require.Eventually(t, func() bool {
		return len(tr.snapshot().markReadCalls) == 1
	}, waitFor, 5*time.Millisecond)

	close(gate)
	h.Wait()
	assert.Equal(t, []int64{5}, tr.snapshot().markReadCalls)
}

func TestClickOnReadItemSkipsServer(t *testing.T) {
	n := noti(5, model.NotificationCapsuleOpened, true)
	tr := &fakeTransport{listItems: []model.Notification{n}}
	h, nav := mounted(t, tr)

	h.OnClickNotification(n)
	h.Wait()

	assert.Empty(t, tr.snapshot().markReadCalls)
	assert.Equal(t, []Route{RouteCapsule}, nav.got())
}

func TestMarkReadFailureDoesNotRollBack(t *testing.T) {
	logger, logs := observed()
	n := noti(5, model.NotificationLetterReceived, false)
	tr := &fakeTransport{
		listItems:   []model.Notification{n},
		markReadErr: &api.RequestError{Method: "PATCH", Path: "/notifications/5/read", StatusCode: 500},
	}
	h, _ := mounted(t, tr, WithLogger(logger))

	h.OnClickNotification(n)
	h.Wait()

	assert.True(t, h.Items()[0].IsRead)
	assert.Equal(t, 1, logs.FilterMessage("marking notification read failed").Len())
}

func TestClickUnknownTypeDoesNotNavigate(t *testing.T) {
	n := noti(5, model.NotificationType("ALBUM_SHARED"), true)
	tr := &fakeTransport{listItems: []model.Notification{n}}
	h, nav := mounted(t, tr)

	h.OnClickNotification(n)
	h.Wait()

	assert.Empty(t, nav.got())
	assert.True(t, h.Items()[0].IsRead)
}

func TestFriendActionWithoutTargetIsNoop(t *testing.T) {
	logger, logs := observed()
	n := friendRequest(7, 0)
	n.TargetID = nil
	other := noti(8, model.NotificationLetterReceived, false)
	tr := &fakeTransport{listItems: []model.Notification{n, other}}
	h, _ := mounted(t, tr, WithLogger(logger))

	h.AcceptFriendRequest(n)
	h.RejectFriendRequest(n)
	h.Wait()

	assert.Empty(t, tr.snapshot().friendCalls)
	assert.Equal(t, []model.Notification{n, other}, h.Items())

	skipped := logs.FilterMessage("friend request action skipped").All()
	require.Len(t, skipped, 2)
	for _, entry := range skipped {
		var logged error
		for _, f := range entry.Context {
			if f.Key == "error" {
				logged, _ = f.Interface.(error)
			}
		}
		assert.True(t, api.IsMissingTarget(logged))
		assert.ErrorContains(t, logged, "has no target id")
	}
}

func TestAcceptRemovesExactlyOne(t *testing.T) {
	req := friendRequest(10, 55)
	b := noti(11, model.NotificationLetterReceived, true)
	c := friendRequest(12, 56)
	tr := &fakeTransport{listItems: []model.Notification{req, b, c}}
	h, _ := mounted(t, tr)

	h.AcceptFriendRequest(req)
	h.Wait()

	assert.Equal(t, []model.Notification{b, c}, h.Items())
	assert.Equal(t, []friendCall{{target: 55, status: model.FriendAccepted}}, tr.snapshot().friendCalls)
}

func TestRejectRemovesExactlyOne(t *testing.T) {
	a := noti(9, model.NotificationCapsuleReceived, false)
	req := friendRequest(10, 55)
	tr := &fakeTransport{listItems: []model.Notification{a, req}}
	h, _ := mounted(t, tr)

	h.RejectFriendRequest(req)
	h.Wait()

	assert.Equal(t, []model.Notification{a}, h.Items())
	assert.Equal(t, []friendCall{{target: 55, status: model.FriendRejected}}, tr.snapshot().friendCalls)
}

func TestFriendActionFailureKeepsNotification(t *testing.T) {
	logger, logs := observed()
	req := friendRequest(10, 55)
	tr := &fakeTransport{
		listItems: []model.Notification{req},
		friendErr: &api.RequestError{Method: "PUT", Path: "/friends/55", StatusCode: 409, Message: "이미 친구입니다."},
	}
	h, _ := mounted(t, tr, WithLogger(logger))

	h.AcceptFriendRequest(req)
	h.Wait()

	assert.Equal(t, []model.Notification{req}, h.Items())
	assert.Equal(t, 1, logs.FilterMessage("friend request action failed").Len())
}

func TestUnmountDiscardsLateFetch(t *testing.T) {
	gate := make(chan struct{})
	tr := &fakeTransport{
		listItems: []model.Notification{noti(1, model.NotificationLetterReceived, false)},
		listGate:  gate,
	}
	h := New(tr, nil)
	h.Mount("viewer-1")
	require.Equal(t, PhaseLoading, h.Phase())

	require.Eventually(t, func() bool { return tr.snapshot().listCalls == 1 }, waitFor, 5*time.Millisecond)
	h.Unmount()
	close(gate)
	h.Wait()

	assert.Equal(t, PhaseClosed, h.Phase())
	assert.Empty(t, h.Items())
	assert.Equal(t, 1, tr.snapshot().closes)
}

func TestUnmountDiscardsStalePushes(t *testing.T) {
	tr := &fakeTransport{listItems: []model.Notification{noti(1, model.NotificationLetterReceived, false)}}
	h, _ := mounted(t, tr)

	h.Unmount()
	tr.push(noti(2, model.NotificationLetterReceived, false))

	assert.Equal(t, []int64{1}, ids(h.Items()))
	s := tr.snapshot()
	assert.Equal(t, 1, s.unsubscribes)
	assert.Equal(t, 1, s.closes)
}

func TestUnmountDiscardsLateFriendResult(t *testing.T) {
	gate := make(chan struct{})
	req := friendRequest(10, 55)
	tr := &fakeTransport{listItems: []model.Notification{req}, friendGate: gate}
	h, _ := mounted(t, tr)

	h.AcceptFriendRequest(req)
	require.Eventually(t, func() bool { return len(tr.snapshot().friendCalls) == 1 }, waitFor, 5*time.Millisecond)

	h.Unmount()
	close(gate)
	h.Wait()

	assert.Equal(t, []model.Notification{req}, h.Items())
}

func TestUnmountIsIdempotent(t *testing.T) {
	tr := &fakeTransport{}
	h, _ := mounted(t, tr)

	h.Unmount()
	h.Unmount()

	assert.Equal(t, 1, tr.snapshot().closes)
	assert.Equal(t, PhaseClosed, h.Phase())
}

func TestRemountAfterUnmount(t *testing.T) {
	tr := &fakeTransport{listItems: []model.Notification{noti(1, model.NotificationLetterReceived, false)}}
	h, _ := mounted(t, tr)
	h.Unmount()

	h.Mount("viewer-1")
	h.Wait()

	assert.Equal(t, PhaseLive, h.Phase())
	assert.Equal(t, []int64{1}, ids(h.Items()))
	assert.Equal(t, 2, tr.snapshot().opens)
}

func TestMountForNewViewerTearsDownPrevious(t *testing.T) {
	tr := &fakeTransport{}
	h, _ := mounted(t, tr)

	h.Mount("viewer-2")
	h.Wait()

	s := tr.snapshot()
	assert.Equal(t, 1, s.closes)
	assert.Equal(t, 2, s.opens)
	assert.Equal(t, PhaseLive, h.Phase())
}

func TestRefreshReplacesList(t *testing.T) {
	tr := &fakeTransport{listItems: []model.Notification{noti(1, model.NotificationLetterReceived, false)}}
	h, _ := mounted(t, tr)
	tr.push(noti(2, model.NotificationLetterReceived, false))
	require.Len(t, h.Items(), 2)

	tr.mu.Lock()
	tr.listItems = []model.Notification{noti(3, model.NotificationCapsuleReceived, false)}
	tr.mu.Unlock()

	h.Refresh()
	h.Wait()

	assert.Equal(t, []int64{3}, ids(h.Items()))
}

func TestUpdatesSignalsChanges(t *testing.T) {
	tr := &fakeTransport{}
	h, _ := mounted(t, tr)

	for len(h.Updates()) > 0 {
		<-h.Updates()
	}

	tr.push(noti(1, model.NotificationLetterReceived, false))

	select {
	case <-h.Updates():
	case <-time.After(waitFor):
		t.Fatal("expected an update signal")
	}
}

func TestPageSizeOption(t *testing.T) {
	var gotSize int
	tr := &sizeRecorder{fakeTransport: &fakeTransport{}, size: &gotSize}
	h := New(tr, nil, WithPageSize(50))
	h.Mount("viewer-1")
	h.Wait()

	assert.Equal(t, 50, gotSize)
}

type sizeRecorder struct {
	*fakeTransport
	size *int
}

func (s *sizeRecorder) List(ctx context.Context, page, size int) ([]model.Notification, error) {
	*s.size = size
	return s.fakeTransport.List(ctx, page, size)
}

func TestMarkAllReadSkipsReadItemsAndDoesNotNavigate(t *testing.T) {
	tr := &fakeTransport{listItems: []model.Notification{
		noti(3, model.NotificationLetterReceived, false),
		noti(2, model.NotificationCapsuleOpened, true),
		friendRequest(1, 40),
	}}
	h, nav := mounted(t, tr)

	assert.Equal(t, 2, h.MarkAllRead())
	assert.Equal(t, 0, UnreadCount(h.Items()))
	h.Wait()

	assert.ElementsMatch(t, []int64{3, 1}, tr.snapshot().markReadCalls)
	assert.Empty(t, nav.got())

	assert.Equal(t, 0, h.MarkAllRead())
}
