// Package chatclient talks to the travel assistant HTTP API.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/travel-assistant/internal/domain"
)

// DefaultBaseURL points at a locally running API.
const DefaultBaseURL = "http://localhost:8080"

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("travel assistant API error: status %d: %s", e.StatusCode, e.Message)
}

// Client calls the chat endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

type resetRequest struct {
	SessionID string `json:"sessionId,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Send posts one message and returns the assistant's turn.
func (c *Client) Send(ctx context.Context, sessionID, message string) (domain.TurnResult, error) {
	var result domain.TurnResult
	err := c.post(ctx, "/chat", chatRequest{Message: message, SessionID: sessionID}, &result)
	return result, err
}

// Reset clears the session's conversation.
func (c *Client) Reset(ctx context.Context, sessionID string) error {
	return c.post(ctx, "/reset", resetRequest{SessionID: sessionID}, nil)
}

// NewSession asks the API for a fresh session id.
func (c *Client) NewSession(ctx context.Context) (string, error) {
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.post(ctx, "/sessions", nil, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("travel assistant request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
