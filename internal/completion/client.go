// Package completion is the client side of the external LLM completion
// endpoint. The pipeline issues exactly one completion call per source
// entry; all requested languages are resolved from that single reply.
package completion

import (
	"context"
	"fmt"
)

// Request is one chat completion call.
type Request struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Client issues completion requests and returns the raw reply text.
type Client interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// APIError is a non-success response or error envelope from the completion
// endpoint. It is never retried; callers degrade to sentinel values.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API returned status %d", e.Status)
}

// ModelIDs maps the CLI model aliases to provider model identifiers.
var ModelIDs = map[string]string{
	"grok3":             "x-ai/grok-3-beta",
	"gpt-4o":            "openai/gpt-4.1",
	"claude-3-7-sonnet": "anthropic/claude-3.7-sonnet",
	"gemini-1.5-pro":    "google/gemini-flash-1.5-8b",
}

// ResolveModel maps an alias to its provider model ID, defaulting to the
// grok family for unknown aliases.
func ResolveModel(alias string) string {
	if id, ok := ModelIDs[alias]; ok {
		return id
	}
	return "x-ai/grok-3"
}
