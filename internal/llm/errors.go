package llm

import (
	"errors"
	"fmt"
)

// MaxEmbeddingTokens is the hard ceiling on embedding input size. The
// upstream service truncates silently near this limit, so oversized input
// is rejected before any network call is made.
const MaxEmbeddingTokens = 8000

var (
	ErrEmbeddingService  = errors.New("embedding service request failed")
	ErrCompletionService = errors.New("completion service request failed")
)

type InputTooLargeError struct {
	Tokens int
	Limit  int
}

func (e *InputTooLargeError) Error() string {
	return fmt.Sprintf("input of %d tokens exceeds embedding limit of %d", e.Tokens, e.Limit)
}
