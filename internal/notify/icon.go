package notify

import (
	"strings"

	"github.com/memorybox/notification-center/internal/model"
)

// IconKind is the display icon category of a notification.
type IconKind string

const (
	IconLetter        IconKind = "letter"
	IconCapsule       IconKind = "capsule"
	IconCapsuleOpen   IconKind = "capsule-open"
	IconFriendRequest IconKind = "friend-request"
	IconFriendAccept  IconKind = "friend-accept"
)

// Icon maps a type to its icon. Unknown types get the friend-request icon.
func Icon(t model.NotificationType) IconKind {
	switch t {
	case model.NotificationLetterReceived:
		return IconLetter
	case model.NotificationCapsuleReceived:
		return IconCapsule
	case model.NotificationCapsuleOpened:
		return IconCapsuleOpen
	case model.NotificationFriendAccept:
		return IconFriendAccept
	}
	return IconFriendRequest
}

// IsFriendRequest reports whether n is a pending friend request.
func IsFriendRequest(n model.Notification) bool {
	return strings.EqualFold(string(n.Type), string(model.NotificationFriendRequest))
}
