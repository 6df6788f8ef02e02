package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ServiceTemplate is the service tag reported when the chain fell back to
// a locally rendered template.
const ServiceTemplate = "template"

// Named pairs a provider with the service tag recorded in audit rows.
type Named struct {
	Name     string
	Provider Provider
}

// Chain tries providers in order and returns the first usable completion.
type Chain struct {
	Providers []Named
	// Timeout bounds each provider call; <= 0 leaves only ctx in control.
	Timeout time.Duration
	// Observe, when set, is called after every provider attempt.
	Observe func(provider string, err error, elapsed time.Duration)
}

// Names returns the configured provider tags in order.
func (c *Chain) Names() []string {
	out := make([]string, 0, len(c.Providers))
	for _, p := range c.Providers {
		out = append(out, p.Name)
	}
	return out
}

// Generate runs the chain. Provider output is passed through CleanMessage
// and an empty result counts as a failure. When every provider fails and
// fallback is non-nil, its text is returned tagged ServiceTemplate.
func (c *Chain) Generate(ctx context.Context, messages []Message, fallback func() string) (text, service string, err error) {
	var errs []error
	for _, p := range c.Providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		out, err := c.call(ctx, p, messages)
		if err == nil {
			return out, p.Name, nil
		}
		log.Warn().Err(err).Str("provider", p.Name).Msg("generation provider failed")
		errs = append(errs, err)
	}

	if fallback != nil {
		if len(c.Providers) > 0 {
			log.Warn().Msg("generation providers unavailable, using template")
		}
		return fallback(), ServiceTemplate, nil
	}
	if len(c.Providers) == 0 {
		return "", "", ErrNoProviders
	}
	return "", "", errors.Join(append([]error{ErrAllProvidersFailed}, errs...)...)
}

func (c *Chain) call(ctx context.Context, p Named, messages []Message) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	start := time.Now()
	out, err := p.Provider.Chat(ctx, messages)
	if err == nil {
		out = CleanMessage(out)
		if strings.TrimSpace(out) == "" {
			err = ErrEmptyCompletion
		}
	}
	if c.Observe != nil {
		c.Observe(p.Name, err, time.Since(start))
	}
	return out, err
}
