// Package generation produces the final natural-language answer from
// retrieved context via a remote OpenAI-compatible chat capability.
package generation

import "context"

// Generator synthesizes an answer from a structured prompt.
// Calls are best-effort; latency bounds belong to the capability provider.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
	Close() error
}

// Prompt is the fixed-structure synthesis request: the retrieved content, the
// original question, and the target answer language.
type Prompt struct {
	Content  string
	Question string
	Language string
}
