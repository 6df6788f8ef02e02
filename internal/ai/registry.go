package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProviderFactory builds a provider for the given model ("" means default).
type ProviderFactory func(ctx context.Context, model string) (Provider, error)

// Registry maps provider tags ("groq", "openai", ...) to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %s", name)
	}
	return f(ctx, model)
}

// Chain builds a Chain from provider tags in priority order. Tags whose
// factory fails (typically a missing API key) are skipped and reported in
// skipped so callers can log them; unknown tags are an error.
func (r *Registry) Chain(ctx context.Context, names []string, timeout time.Duration) (chain *Chain, skipped map[string]error, err error) {
	chain = &Chain{Timeout: timeout}
	skipped = map[string]error{}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		r.mu.RLock()
		_, known := r.factories[n]
		r.mu.RUnlock()
		if !known {
			return nil, nil, fmt.Errorf("unknown ai provider: %s", n)
		}
		p, err := r.Get(ctx, n, "")
		if err != nil {
			skipped[n] = err
			continue
		}
		chain.Providers = append(chain.Providers, Named{Name: n, Provider: p})
	}
	return chain, skipped, nil
}
