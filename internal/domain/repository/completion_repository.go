package repository

import (
	"context"
	"time"
)

// CompletionRepository defines the interface to the language-model
// completion endpoint. Complete sends the pasted text with the caller's
// current-date context and returns the raw model text. No retries; the
// caller owns retry policy.
type CompletionRepository interface {
	Complete(ctx context.Context, rawText string, now time.Time) (string, error)
}
