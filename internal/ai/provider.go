// Package ai contains the text-generation clients used to write
// celebration messages, plus the ordered fallback chain that tries them in
// turn. Providers are plain HTTP clients; none of them keep per-request
// state, so a single instance is shared across goroutines.
package ai

import (
	"context"
	"errors"
)

// Roles used in chat messages.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates a completion for the given conversation.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, messages []Message) (string, error)

// Chat calls f.
func (f ProviderFunc) Chat(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

var (
	// ErrNoProviders is returned when a chain has nothing to try.
	ErrNoProviders = errors.New("ai: no providers configured")
	// ErrAllProvidersFailed is returned when every provider failed and no
	// template fallback was supplied.
	ErrAllProvidersFailed = errors.New("ai: all providers failed")
	// ErrEmptyCompletion marks a provider response with no usable text.
	ErrEmptyCompletion = errors.New("ai: empty completion")
	// ErrMissingAPIKey is returned by factories for hosted providers
	// configured without a key.
	ErrMissingAPIKey = errors.New("ai: api key not configured")
)
