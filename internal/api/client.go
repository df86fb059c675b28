package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer token for each request. An empty token
// with a nil error is treated as "no credential".
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource that always returns the same value.
type StaticToken string

// Token returns the static token.
func (t StaticToken) Token() (string, error) { return string(t), nil }

// Client is a thin HTTP client for the memorybox REST API.
// It handles Bearer token authentication, the {success,data,message}
// envelope, and error classification. It never retries.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new API client. The baseURL is the API root
// (e.g., https://api.example.com/api); endpoint paths are appended to it.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current bearer token or an AuthError if none is
// available. The live channel uses it for its query parameter.
func (c *Client) Token() (string, error) {
	return bearerToken(c.tokens)
}

func bearerToken(tokens TokenSource) (string, error) {
	if tokens == nil {
		return "", &AuthError{Message: "no credential available"}
	}
	token, err := tokens.Token()
	if err != nil {
		return "", &AuthError{Message: "no credential available", Err: err}
	}
	if token == "" {
		return "", &AuthError{Message: "no credential available"}
	}
	return token, nil
}

// do is the core HTTP method that builds the request, handles auth,
// unwraps the response envelope, and decodes data into result.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body interface{},
	result interface{},
) error {
	token, err := bearerToken(c.tokens)
	if err != nil {
		return err
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "reading " + method + " " + path, Err: err}
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID),
	)

	var env Envelope
	envErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		msg := env.Message
		if envErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &AuthError{StatusCode: resp.StatusCode, Message: msg}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if envErr != nil || msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		return &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	// No content to parse (e.g. 204).
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if envErr != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, envErr)
	}

	if !env.Success {
		return &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    env.Message,
		}
	}

	if result == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("unmarshaling data from %s %s: %w", method, path, err)
	}

	return nil
}
