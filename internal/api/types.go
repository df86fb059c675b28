package api

import "encoding/json"

// Envelope is the standard response wrapper used by every endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// friendStatusRequest is the body of PUT /friends/{friendId}.
type friendStatusRequest struct {
	Status string `json:"status"`
}
