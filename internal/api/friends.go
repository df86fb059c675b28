package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/memorybox/notification-center/internal/model"
)

// UpdateFriendStatus answers a friend request. A failed request surfaces
// the server's message through RequestError.
func (c *Client) UpdateFriendStatus(
	ctx context.Context,
	friendID int64,
	status model.FriendStatus,
) error {
	switch status {
	case model.FriendAccepted, model.FriendRejected:
	default:
		return fmt.Errorf("invalid friend status %q", status)
	}

	path := fmt.Sprintf("/friends/%d", friendID)
	body := friendStatusRequest{Status: string(status)}
	if err := c.do(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return fmt.Errorf("updating friend %d to %s: %w", friendID, status, err)
	}
	return nil
}
