// Package advisory asks a hosted text model for commentary on a quote's
// headline figures. Generation runs in the background and never blocks
// pricing.
package advisory

import "context"

// CompletionRequest is a prompt to the model.
type CompletionRequest struct {
	Prompt    string
	System    string
	MaxTokens int
}

// CompletionResponse is the model's answer.
type CompletionResponse struct {
	Text  string
	Model string
}

// Provider is a text-generation backend.
type Provider interface {
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
