package credential

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoViewer means the token does not identify a user.
var ErrNoViewer = errors.New("token carries no viewer identity")

// viewerClaims are checked in order after the standard subject.
var viewerClaims = []string{"userId", "id", "email"}

// ViewerFromToken extracts the viewer identity from a bearer JWT without
// verifying its signature. The server verifies; the client only needs to
// know whose notifications it is showing.
func ViewerFromToken(token string) (string, error) {
	if token == "" {
		return "", ErrNoViewer
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	for _, key := range viewerClaims {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		}
	}
	return "", ErrNoViewer
}
