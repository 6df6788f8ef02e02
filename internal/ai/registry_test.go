package ai

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry_Chain(t *testing.T) {
	r := NewRegistry()
	r.Register("Groq", func(ctx context.Context, model string) (Provider, error) {
		return nil, errors.New("GROQ_API_KEY not set")
	})
	r.Register("ollama", func(ctx context.Context, model string) (Provider, error) {
		return fixed("hi", nil), nil
	})

	chain, skipped, err := r.Chain(context.Background(), []string{" groq ", "OLLAMA", ""}, 0)
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	if names := chain.Names(); len(names) != 1 || names[0] != "ollama" {
		t.Fatalf("names = %v", names)
	}
	if _, ok := skipped["groq"]; !ok {
		t.Fatalf("skipped = %v", skipped)
	}

	if _, _, err := r.Chain(context.Background(), []string{"nope"}, 0); err == nil {
		t.Fatal("unknown provider should fail")
	}
	if _, err := r.Get(context.Background(), "nope", ""); err == nil {
		t.Fatal("Get unknown should fail")
	}
}
