package notify

import "github.com/memorybox/notification-center/internal/model"

// Phase is the lifecycle stage of the hook.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLive
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLive:
		return "live"
	case PhaseClosed:
		return "closed"
	}
	return "unknown"
}

// State is the hook's view of the notification list.
type State struct {
	Phase Phase
	Items []model.Notification
}

// Action is an event applied by Reduce.
type Action interface {
	action()
}

// Mounted starts a session: the list is cleared and loading begins.
type Mounted struct{}

// Loaded replaces the list with the fetched page.
type Loaded struct{ Items []model.Notification }

// LoadFailed ends loading with whatever the list already holds.
type LoadFailed struct{}

// Pushed prepends a live notification.
type Pushed struct{ Item model.Notification }

// MarkedRead flips isRead on every entry with ID.
type MarkedRead struct{ ID int64 }

// Removed drops every entry with ID.
type Removed struct{ ID int64 }

// Closed ends the session. Nothing but Mounted applies afterwards.
type Closed struct{}

func (Mounted) action()    {}
func (Loaded) action()     {}
func (LoadFailed) action() {}
func (Pushed) action()     {}
func (MarkedRead) action() {}
func (Removed) action()    {}
func (Closed) action()     {}

// Reduce returns the state after applying a. It never mutates s.Items.
func Reduce(s State, a Action) State {
	if s.Phase == PhaseClosed {
		if _, ok := a.(Mounted); !ok {
			return s
		}
	}

	switch a := a.(type) {
	case Mounted:
		return State{Phase: PhaseLoading, Items: []model.Notification{}}

	case Loaded:
		items := make([]model.Notification, len(a.Items))
		copy(items, a.Items)
		return State{Phase: PhaseLive, Items: items}

	case LoadFailed:
		if s.Phase == PhaseLoading {
			s.Phase = PhaseLive
		}
		return s

	case Pushed:
		items := make([]model.Notification, 0, len(s.Items)+1)
		items = append(items, a.Item)
		items = append(items, s.Items...)
		s.Items = items
		return s

	case MarkedRead:
		items := make([]model.Notification, len(s.Items))
		copy(items, s.Items)
		for i := range items {
			if items[i].ID == a.ID {
				items[i].IsRead = true
			}
		}
		s.Items = items
		return s

	case Removed:
		items := make([]model.Notification, 0, len(s.Items))
		for _, n := range s.Items {
			if n.ID != a.ID {
				items = append(items, n)
			}
		}
		s.Items = items
		return s

	case Closed:
		s.Phase = PhaseClosed
		return s
	}
	return s
}

// UnreadCount returns the number of unread entries.
func UnreadCount(items []model.Notification) int {
	count := 0
	for _, n := range items {
		if !n.IsRead {
			count++
		}
	}
	return count
}
