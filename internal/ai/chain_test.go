package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixed(text string, err error) Provider {
	return ProviderFunc(func(ctx context.Context, _ []Message) (string, error) { return text, err })
}

func TestChain_FirstSuccessWins(t *testing.T) {
	var observed []string
	c := &Chain{
		Providers: []Named{
			{Name: "groq", Provider: fixed("", errors.New("down"))},
			{Name: "openai", Provider: fixed("  Here's a birthday wish for Ann:  Happy   birthday!  ", nil)},
			{Name: "ollama", Provider: fixed("never", nil)},
		},
		Observe: func(p string, err error, _ time.Duration) { observed = append(observed, p) },
	}
	text, svc, err := c.Generate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if svc != "openai" || text != "Happy birthday!" {
		t.Fatalf("got (%q, %q)", text, svc)
	}
	if len(observed) != 2 {
		t.Fatalf("observed = %v", observed)
	}
}

func TestChain_EmptyOutputIsFailure(t *testing.T) {
	c := &Chain{Providers: []Named{
		{Name: "groq", Provider: fixed("   God bless.  ", nil)},
		{Name: "openai", Provider: fixed("Congrats", nil)},
	}}
	text, svc, err := c.Generate(context.Background(), nil, nil)
	if err != nil || svc != "openai" || text != "Congrats" {
		t.Fatalf("got (%q, %q, %v)", text, svc, err)
	}
}

func TestChain_TemplateFallback(t *testing.T) {
	c := &Chain{Providers: []Named{{Name: "groq", Provider: fixed("", errors.New("x"))}}}
	text, svc, err := c.Generate(context.Background(), nil, func() string { return "tmpl" })
	if err != nil || svc != ServiceTemplate || text != "tmpl" {
		t.Fatalf("got (%q, %q, %v)", text, svc, err)
	}

	empty := &Chain{}
	if _, svc, err := empty.Generate(context.Background(), nil, func() string { return "t" }); err != nil || svc != ServiceTemplate {
		t.Fatalf("empty chain with fallback: %q %v", svc, err)
	}
}

func TestChain_AllFailed(t *testing.T) {
	c := &Chain{Providers: []Named{
		{Name: "groq", Provider: fixed("", errors.New("a"))},
		{Name: "openai", Provider: fixed("", errors.New("b"))},
	}}
	_, _, err := c.Generate(context.Background(), nil, nil)
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("err = %v", err)
	}

	if _, _, err := (&Chain{}).Generate(context.Background(), nil, nil); !errors.Is(err, ErrNoProviders) {
		t.Fatalf("err = %v", err)
	}
}

func TestChain_PerProviderTimeout(t *testing.T) {
	slow := ProviderFunc(func(ctx context.Context, _ []Message) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	c := &Chain{
		Timeout: 20 * time.Millisecond,
		Providers: []Named{
			{Name: "groq", Provider: slow},
			{Name: "openai", Provider: fixed("fast", nil)},
		},
	}
	text, svc, err := c.Generate(context.Background(), nil, nil)
	if err != nil || svc != "openai" || text != "fast" {
		t.Fatalf("got (%q, %q, %v)", text, svc, err)
	}
}

func TestChain_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	c := &Chain{Providers: []Named{{Name: "groq", Provider: ProviderFunc(func(context.Context, []Message) (string, error) {
		called = true
		return "x", nil
	})}}}
	if _, _, err := c.Generate(ctx, nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if called {
		t.Fatal("provider should not be called after cancellation")
	}
}

func TestChain_Names(t *testing.T) {
	c := &Chain{Providers: []Named{{Name: "a"}, {Name: "b"}}}
	if got := c.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Names = %v", got)
	}
}
