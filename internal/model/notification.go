package model

import (
	"strings"
	"time"
)

// NotificationType identifies the category of a notification.
type NotificationType string

const (
	NotificationLetterReceived  NotificationType = "LETTER_RECEIVED"
	NotificationCapsuleReceived NotificationType = "CAPSULE_RECEIVED"
	NotificationCapsuleOpened   NotificationType = "CAPSULE_OPENED"
	NotificationFriendRequest   NotificationType = "FRIEND_REQUEST"
	NotificationFriendAccept    NotificationType = "FRIEND_ACCEPT"
)

// Known reports whether t is one of the notification types the client
// understands. Unknown types are still carried and rendered.
func (t NotificationType) Known() bool {
	switch t {
	case NotificationLetterReceived,
		NotificationCapsuleReceived,
		NotificationCapsuleOpened,
		NotificationFriendRequest,
		NotificationFriendAccept:
		return true
	}
	return false
}

// Notification is a server-issued event record shown to the viewer.
// Only IsRead is ever changed on the client.
type Notification struct {
	// ID is the server identifier; it is the dedupe and removal key.
	ID int64 `json:"id"`

	// Type is the notification category.
	Type NotificationType `json:"type"`

	// SenderNickname is the display name of the actor, if any.
	SenderNickname string `json:"senderNickname,omitempty"`

	// ContentTitle is optional secondary text (letter or capsule title).
	ContentTitle *string `json:"contentTitle,omitempty"`

	// Content is the server-rendered line, e.g. "민지님이 편지를 보냈습니다.".
	Content string `json:"content"`

	// TargetID references the related object (friend, letter, capsule).
	TargetID *int64 `json:"targetId,omitempty"`

	// IsRead is server-authoritative but flipped optimistically.
	IsRead bool `json:"isRead"`

	// CreatedAt is the ISO timestamp exactly as sent by the server.
	CreatedAt string `json:"createdAt"`
}

// createdAtLayouts are tried in order when parsing CreatedAt.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// CreatedTime parses CreatedAt. Timestamps without a zone are read in
// the local zone.
func (n Notification) CreatedTime() (time.Time, bool) {
	return ParseTimestamp(n.CreatedAt)
}

// ParseTimestamp parses a server timestamp in any of the accepted layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StringPtr returns a pointer to s. Handy for ContentTitle literals.
func StringPtr(s string) *string { return &s }

// Int64Ptr returns a pointer to v. Handy for TargetID literals.
func Int64Ptr(v int64) *int64 { return &v }
