// Package chat orchestrates the question-answering pipeline: rate limiting,
// input screening, moderation, retrieval, generation, and output moderation.
package chat

import (
	"errors"
	"fmt"
	"strings"
)

// Pipeline failure classes. The HTTP layer maps these to status codes; the
// messages shown to clients come from a fixed catalog, never from the
// underlying error text.
var (
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrInputInvalid        = errors.New("invalid input")
	ErrInputBlocked        = errors.New("input blocked")
	ErrContentBlocked      = errors.New("content blocked")
	ErrUpstreamUnavailable = errors.New("upstream model unavailable")
)

// Blocked wraps a pipeline sentinel with the reasons a request or response
// was rejected. Reasons are category or pattern names, safe to log and to
// return to clients.
type Blocked struct {
	Err     error
	Reasons []string
}

func (b *Blocked) Error() string {
	if len(b.Reasons) == 0 {
		return b.Err.Error()
	}
	return fmt.Sprintf("%s: %s", b.Err.Error(), strings.Join(b.Reasons, ", "))
}

func (b *Blocked) Unwrap() error { return b.Err }
