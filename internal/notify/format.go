package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/memorybox/notification-center/internal/model"
)

// FormatTime renders createdAt relative to now: "방금 전" under a minute,
// "N분 전" under an hour, "N시간 전" under a day, and the date as
// YYYY.MM.DD beyond that.
func FormatTime(createdAt string, now time.Time) string {
	t, ok := model.ParseTimestamp(createdAt)
	if !ok {
		return datePortion(createdAt, time.Time{})
	}

	minutes := int(now.Sub(t).Minutes())
	switch {
	case minutes < 1:
		return "방금 전"
	case minutes < 60:
		return fmt.Sprintf("%d분 전", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%d시간 전", minutes/60)
	}
	return datePortion(createdAt, t)
}

// datePortion prefers the literal YYYY-MM-DD prefix of raw so the shown
// date matches the server's, and falls back to formatting t.
func datePortion(raw string, t time.Time) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 10 && raw[4] == '-' && raw[7] == '-' {
		return strings.ReplaceAll(raw[:10], "-", ".")
	}
	if t.IsZero() {
		return raw
	}
	return t.Format("2006.01.02")
}
