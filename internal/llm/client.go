package llm

import (
	"context"
	"errors"
)

var (
	// ErrTransport marks a non-success status or network fault from the
	// generation service.
	ErrTransport = errors.New("llm: transport error")
	// ErrMalformedResponse marks a reply that lacks the candidate text.
	ErrMalformedResponse = errors.New("llm: malformed response")
)

// Analyzer sends one prompt to a text-generation service and returns the raw
// reply text. Failures wrap ErrTransport or ErrMalformedResponse; a body the
// provider SDK cannot decode surfaces as ErrTransport. Analyzers do not retry.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Sampling parameters shared by every provider.
const (
	Temperature     = 0.2
	TopK            = 40
	TopP            = 0.95
	MaxOutputTokens = 1024
)
