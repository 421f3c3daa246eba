package domain

import (
	"context"
	"errors"
)

// ErrRateLimited marks a model failure caused by upstream rate limiting.
// Adapters wrap it so callers can test with errors.Is.
var ErrRateLimited = errors.New("rate limited")

// ChatModel generates an assistant reply from a system instruction and an
// ordered conversation.
type ChatModel interface {
	Complete(ctx context.Context, system string, messages []Turn) (string, error)
}
