package credential

import (
	"errors"
	"os"
	"strings"
)

// TokenEnv overrides the stored token when set.
const TokenEnv = "MEMORYBOX_TOKEN"

// TokenSource supplies the bearer token from the environment or the
// keyring. A missing token yields "" and a nil error.
type TokenSource struct {
	store *Store
}

// NewTokenSource returns a TokenSource reading from store.
func NewTokenSource(store *Store) *TokenSource {
	return &TokenSource{store: store}
}

// Token returns the current bearer token.
func (t *TokenSource) Token() (string, error) {
	if v := strings.TrimSpace(os.Getenv(TokenEnv)); v != "" {
		return v, nil
	}
	if t.store == nil {
		return "", nil
	}

	token, err := t.store.Get(AccessTokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// Save stores token in the keyring.
func (t *TokenSource) Save(token string) error {
	return t.store.Set(AccessTokenKey, strings.TrimSpace(token))
}
