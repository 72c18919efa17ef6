package llm

import "context"

// Provider is a single LLM backend that turns a prompt into raw text.
type Provider interface {
	// Name identifies the provider's model, recorded on successful analyses.
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
