package entity

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. Parse-time failures abort before any
// persistence is attempted; persistence failures surface to the caller
// and are never retried automatically.
var (
	ErrUpstreamUnavailable = errors.New("completion endpoint unavailable")
	ErrUpstreamTimeout     = errors.New("completion request timed out")
	ErrEmptyCompletion     = errors.New("completion returned no text")
	ErrNoJSONFound         = errors.New("no JSON object found in model output")
	ErrMalformedJSON       = errors.New("malformed JSON in model output")
	ErrNoFlightsExtracted  = errors.New("itinerary contains no flight legs")
	ErrPersistenceFailure  = errors.New("persistence operation failed")
	ErrRecordNotFound      = errors.New("travel record not found")
)

// ParseError wraps one of the parse-time sentinels with the diagnostic
// detail and the offending input snippet, so failures are loggable
// without re-running the pipeline.
type ParseError struct {
	Kind    error
	Detail  string
	Snippet string
}

const maxSnippet = 160

// NewParseError truncates the snippet to a loggable size.
func NewParseError(kind error, detail, snippet string) *ParseError {
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet] + "..."
	}
	return &ParseError{Kind: kind, Detail: detail, Snippet: snippet}
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Kind }

// UpstreamError carries the completion endpoint's status and body text
// for diagnosis.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion endpoint returned %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstreamUnavailable }
