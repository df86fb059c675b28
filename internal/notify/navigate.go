package notify

import "github.com/memorybox/notification-center/internal/model"

// Route names the collaborator view a notification opens.
type Route int

const (
	RouteNone Route = iota
	RouteMailbox
	RouteCapsule
	RouteFriends
)

func (r Route) String() string {
	switch r {
	case RouteMailbox:
		return "mailbox"
	case RouteCapsule:
		return "capsule"
	case RouteFriends:
		return "friends"
	}
	return "none"
}

// RouteFor returns the view a click on a notification of type t opens.
func RouteFor(t model.NotificationType) Route {
	switch t {
	case model.NotificationLetterReceived:
		return RouteMailbox
	case model.NotificationCapsuleReceived, model.NotificationCapsuleOpened:
		return RouteCapsule
	case model.NotificationFriendRequest, model.NotificationFriendAccept:
		return RouteFriends
	}
	return RouteNone
}

// Navigator performs the navigation side effect of a click.
type Navigator interface {
	Navigate(route Route, n model.Notification)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route, model.Notification)

// Navigate calls f.
func (f NavigatorFunc) Navigate(r Route, n model.Notification) { f(r, n) }
