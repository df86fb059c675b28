package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/memorybox/notification-center/internal/model"
)

// DefaultPageSize is used when a caller asks for a non-positive page size.
const DefaultPageSize = 20

// ListNotifications retrieves one zero-based page of the viewer's
// notifications, newest first.
func (c *Client) ListNotifications(
	ctx context.Context,
	page int,
	size int,
) (*model.Page, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var result model.Page
	if err := c.do(ctx, http.MethodGet, "/notifications", query, nil, &result); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	if result.Items == nil {
		result.Items = []model.Notification{}
	}
	return &result, nil
}

// MarkNotificationRead durably marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/notifications/%d/read", id)
	if err := c.do(ctx, http.MethodPatch, path, nil, nil, nil); err != nil {
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}
	return nil
}
