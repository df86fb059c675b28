package notify

import (
	"regexp"

	"github.com/memorybox/notification-center/internal/model"
)

// Content is the display decomposition of a notification. Kind tells
// which rule produced it.
type Content struct {
	Kind  model.NotificationType
	Title string
	Body  string
	Sub   *string
}

// subjectPattern matches "<actor>님이 <rest>".
var subjectPattern = regexp.MustCompile(`(?s)^(.+?님이)\s*(.*)$`)

const (
	capsuleOpenedTitle  = "타임캡슐이 열렸습니다!"
	capsuleReceivedBody = "새로운 타임캡슐을 보냈습니다."
	letterFallbackBody  = "편지를 보냈습니다."
	subjectSuffix       = "님이"
)

// SplitContent decomposes n into title, body and sub lines by type.
func SplitContent(n model.Notification) Content {
	switch n.Type {
	case model.NotificationLetterReceived:
		return splitLetter(n)
	case model.NotificationCapsuleReceived:
		return Content{
			Kind:  n.Type,
			Title: n.SenderNickname + subjectSuffix,
			Body:  capsuleReceivedBody,
		}
	case model.NotificationCapsuleOpened:
		return splitCapsuleOpened(n)
	}
	return splitSubject(n)
}

func splitLetter(n model.Notification) Content {
	c := Content{Kind: n.Type, Sub: title(n)}
	if m := subjectPattern.FindStringSubmatch(n.Content); m != nil {
		c.Title, c.Body = m[1], m[2]
		return c
	}
	c.Title = n.SenderNickname + subjectSuffix
	c.Body = letterFallbackBody
	return c
}

func splitCapsuleOpened(n model.Notification) Content {
	c := Content{Kind: n.Type, Title: capsuleOpenedTitle}
	switch {
	case title(n) != nil:
		c.Sub = title(n)
	case n.Content != "":
		content := n.Content
		c.Sub = &content
	}
	return c
}

func splitSubject(n model.Notification) Content {
	c := Content{Kind: n.Type}
	if m := subjectPattern.FindStringSubmatch(n.Content); m != nil {
		c.Title, c.Body = m[1], m[2]
		return c
	}
	c.Title = n.Content
	return c
}

// title returns a copy of the non-empty content title, or nil.
func title(n model.Notification) *string {
	if n.ContentTitle == nil || *n.ContentTitle == "" {
		return nil
	}
	t := *n.ContentTitle
	return &t
}
