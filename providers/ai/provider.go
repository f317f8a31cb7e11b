package ai

import "context"

// Provider is the remote LLM boundary.
type Provider interface {
	// SendMessage sends one chat request and returns the completed response.
	// HTTP failures should be returned as errors exposing HTTPStatus() int.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)
}

// ProviderFunc adapts a function to [Provider].
type ProviderFunc func(ctx context.Context, request ChatRequest) (*ChatResponse, error)

func (f ProviderFunc) SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	return f(ctx, request)
}
