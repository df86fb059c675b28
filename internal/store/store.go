package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/memorybox/notification-center/internal/model"
)

// Origin records how a notification reached the client.
type Origin string

const (
	OriginFetch Origin = "fetch"
	OriginPush  Origin = "push"
)

// Entry is one journaled notification.
type Entry struct {
	ID             int64          `db:"id"`
	Viewer         string         `db:"viewer"`
	Type           string         `db:"type"`
	SenderNickname string         `db:"sender_nickname"`
	ContentTitle   sql.NullString `db:"content_title"`
	Content        string         `db:"content"`
	TargetID       sql.NullInt64  `db:"target_id"`
	IsRead         bool           `db:"is_read"`
	CreatedAt      string         `db:"created_at"`
	Origin         string         `db:"origin"`
	RecordedAtMs   int64          `db:"recorded_at"`
}

// RecordedAt returns when the client first saw the notification.
func (e Entry) RecordedAt() time.Time {
	return time.UnixMilli(e.RecordedAtMs)
}

// Notification converts the entry back to the wire model.
func (e Entry) Notification() model.Notification {
	n := model.Notification{
		ID:             e.ID,
		Type:           model.NotificationType(e.Type),
		SenderNickname: e.SenderNickname,
		Content:        e.Content,
		IsRead:         e.IsRead,
		CreatedAt:      e.CreatedAt,
	}
	if e.ContentTitle.Valid {
		n.ContentTitle = model.StringPtr(e.ContentTitle.String)
	}
	if e.TargetID.Valid {
		n.TargetID = model.Int64Ptr(e.TargetID.Int64)
	}
	return n
}

// Journal is the local history of notifications the viewer has seen.
// It never feeds the live list; it only remembers.
type Journal interface {
	// Record inserts notifications, keeping the first recorded time and
	// never clearing a read flag. A push upgrades the origin of an entry
	// first seen through a fetch.
	Record(ctx context.Context, viewer string, origin Origin, items ...model.Notification) error

	// MarkRead sets the read flag of one of viewer's notifications.
	MarkRead(ctx context.Context, viewer string, id int64) error

	// Recent returns the latest entries for viewer, newest first.
	Recent(ctx context.Context, viewer string, limit int) ([]Entry, error)

	// CountUnread counts unread entries for viewer.
	CountUnread(ctx context.Context, viewer string) (int, error)

	Close() error
}
