package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memorybox/notification-center/internal/model"
	"github.com/memorybox/notification-center/internal/notify"
	"github.com/memorybox/notification-center/internal/store"
	"github.com/memorybox/notification-center/tests/testutil"
)

type fakeSource struct {
	items   []model.Notification
	phase   notify.Phase
	updates chan struct{}
}

func newFakeSource(items ...model.Notification) *fakeSource {
	return &fakeSource{items: items, phase: notify.PhaseLive, updates: make(chan struct{}, 1)}
}

func (f *fakeSource) Items() []model.Notification { return f.items }
func (f *fakeSource) Phase() notify.Phase          { return f.phase }
func (f *fakeSource) Updates() <-chan struct{}     { return f.updates }

func runWithTimeout(t *testing.T, fn func() interface{}) interface{} {
	t.Helper()
	done := make(chan interface{}, 1)
	go func() { done <- fn() }()
	select {
	case v := <-done:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("command did not return")
		return nil
	}
}

func TestWaitForChangeSnapshotsAndJournals(t *testing.T) {
	journal := testutil.NewTestStore(t)
	src := newFakeSource(
		model.Notification{ID: 2, Type: model.NotificationLetterReceived, Content: "a"},
		model.Notification{ID: 1, Type: model.NotificationFriendAccept, Content: "b", IsRead: true},
	)
	w := New(src, WithJournal(journal), WithLiveProbe(func() bool { return true }))
	w.SetViewer("viewer")

	src.updates <- struct{}{}
	msg := runWithTimeout(t, func() interface{} { return w.WaitForNextChange()() })

	changed, ok := msg.(ItemsChangedMsg)
	require.True(t, ok)
	assert.Len(t, changed.Items, 2)
	assert.Equal(t, 1, changed.Unread)
	assert.Equal(t, notify.PhaseLive, changed.Phase)
	assert.True(t, changed.Live)

	entries, err := journal.Recent(context.Background(), "viewer", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecordPushWithoutViewerIsSkipped(t *testing.T) {
	journal := testutil.NewTestStore(t)
	w := New(newFakeSource(), WithJournal(journal))

	w.RecordPush(model.Notification{ID: 5, Type: model.NotificationLetterReceived})
	w.SetViewer("viewer")
	w.RecordPush(model.Notification{ID: 6, Type: model.NotificationLetterReceived})

	entries, err := journal.Recent(context.Background(), "viewer", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(6), entries[0].ID)
	assert.Equal(t, string(store.OriginPush), entries[0].Origin)
}

func TestNavigateDeliversMessage(t *testing.T) {
	w := New(newFakeSource())
	n := model.Notification{ID: 3, Type: model.NotificationCapsuleOpened}

	w.Navigate(notify.RouteCapsule, n)
	msg := runWithTimeout(t, func() interface{} { return w.WaitForNextNavigation()() })

	assert.Equal(t, NavigatedMsg{Route: notify.RouteCapsule, Notification: n}, msg)
}

func TestNavigateNeverBlocks(t *testing.T) {
	w := New(newFakeSource())
	for i := 0; i < 100; i++ {
		w.Navigate(notify.RouteFriends, model.Notification{ID: int64(i)})
	}
}

func TestStopReleasesWaiters(t *testing.T) {
	w := New(newFakeSource())
	require.NotNil(t, w.Start())
	assert.Nil(t, w.Start())

	w.Stop()
	w.Stop()

	assert.Nil(t, runWithTimeout(t, func() interface{} { return w.WaitForNextChange()() }))
	assert.Nil(t, runWithTimeout(t, func() interface{} { return w.WaitForNextNavigation()() }))
}

func TestStartAfterStopListensAgain(t *testing.T) {
	src := newFakeSource(model.Notification{ID: 1, Type: model.NotificationLetterReceived})
	w := New(src)
	require.NotNil(t, w.Start())
	w.Stop()
	require.NotNil(t, w.Start())

	src.updates <- struct{}{}
	msg := runWithTimeout(t, func() interface{} { return w.WaitForNextChange()() })
	changed, ok := msg.(ItemsChangedMsg)
	require.True(t, ok)
	assert.Len(t, changed.Items, 1)

	n := model.Notification{ID: 2, Type: model.NotificationFriendRequest}
	w.Navigate(notify.RouteFriends, n)
	nav := runWithTimeout(t, func() interface{} { return w.WaitForNextNavigation()() })
	assert.Equal(t, NavigatedMsg{Route: notify.RouteFriends, Notification: n}, nav)

	w.Stop()
	assert.Nil(t, runWithTimeout(t, func() interface{} { return w.WaitForNextChange()() }))
}

func TestPushedItemKeepsPushOriginAcrossSnapshots(t *testing.T) {
	journal := testutil.NewTestStore(t)
	pushed := model.Notification{ID: 9, Type: model.NotificationCapsuleReceived, Content: "c"}
	src := newFakeSource(pushed)
	w := New(src, WithJournal(journal))
	w.SetViewer("viewer")

	// The list snapshot lands before the push subscriber runs.
	src.updates <- struct{}{}
	runWithTimeout(t, func() interface{} { return w.WaitForNextChange()() })
	w.RecordPush(pushed)

	// And a later snapshot must not demote it.
	src.updates <- struct{}{}
	runWithTimeout(t, func() interface{} { return w.WaitForNextChange()() })

	entries, err := journal.Recent(context.Background(), "viewer", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(store.OriginPush), entries[0].Origin)
}

func TestRecordReadMarksJournalEntries(t *testing.T) {
	journal := testutil.NewTestStore(t)
	w := New(newFakeSource(), WithJournal(journal))
	w.SetViewer("viewer")
	w.RecordPush(model.Notification{ID: 1, Type: model.NotificationLetterReceived})
	w.RecordPush(model.Notification{ID: 2, Type: model.NotificationLetterReceived})
	require.NoError(t, journal.Record(context.Background(), "other", store.OriginPush,
		model.Notification{ID: 1, Type: model.NotificationLetterReceived}))

	w.RecordRead(1, 404)

	count, err := journal.CountUnread(context.Background(), "viewer")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = journal.CountUnread(context.Background(), "other")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
