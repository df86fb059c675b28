package model

// Page is one page of notifications as returned by the list endpoint.
type Page struct {
	Items         []Notification `json:"content"`
	TotalElements int            `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	Size          int            `json:"size"`
	Number        int            `json:"number"`
	First         bool           `json:"first"`
	Last          bool           `json:"last"`
	Empty         bool           `json:"empty"`
}

// HasMore reports whether pages after this one exist.
func (p Page) HasMore() bool {
	return !p.Last && p.Number+1 < p.TotalPages
}

// FriendStatus is the answer to a friend request.
type FriendStatus string

const (
	FriendAccepted FriendStatus = "accepted"
	FriendRejected FriendStatus = "rejected"
)
