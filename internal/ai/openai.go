package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Well-known OpenAI-compatible endpoints.
const (
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	OpenAIBaseURL     = "https://api.openai.com/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenAICompatProvider talks to any /chat/completions endpoint that follows
// the OpenAI wire format (OpenAI, Groq, OpenRouter).
type OpenAICompatProvider struct {
	Name        string // used in error messages, e.g. "groq"
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	SiteURL     string // OpenRouter attribution (optional)
	AppName     string // OpenRouter attribution (optional)
	MaxRetries  int    // extra attempts on 429/5xx
	Client      *http.Client
}

type chatCompletionReq struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type chatCompletionResp struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenAICompatProvider returns a provider with sane defaults for the
// generation use case (300 tokens, temperature 0.7).
func NewOpenAICompatProvider(name, baseURL, apiKey, model string, timeout time.Duration) *OpenAICompatProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAICompatProvider{
		Name:        name,
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Model:       model,
		MaxTokens:   300,
		Temperature: 0.7,
		MaxRetries:  1,
		Client:      &http.Client{Timeout: timeout},
	}
}

// sleepCtx is swapped in tests.
var sleepCtx = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return 500 * time.Millisecond << attempt
}

// Chat posts messages to {BaseURL}/chat/completions and returns the first
// choice's content.
func (p *OpenAICompatProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	name := p.Name
	if name == "" {
		name = "openai"
	}
	if p.Client == nil {
		return "", fmt.Errorf("%s: http client is nil", name)
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return "", fmt.Errorf("%s: api key is required", name)
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		return "", fmt.Errorf("%s: model is required", name)
	}

	body, err := json.Marshal(chatCompletionReq{
		Model:       model,
		Messages:    messages,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	})
	if err != nil {
		return "", err
	}
	url := strings.TrimRight(p.BaseURL, "/") + "/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
		if p.SiteURL != "" {
			req.Header.Set("HTTP-Referer", p.SiteURL)
		}
		if p.AppName != "" {
			req.Header.Set("X-Title", p.AppName)
		}

		resp, err := p.Client.Do(req)
		if err != nil {
			// Transport errors after ctx expiry are final.
			if ctx.Err() != nil {
				return "", err
			}
			lastErr = err
			if attempt < p.MaxRetries && sleepCtx(ctx, backoff(attempt)) == nil {
				continue
			}
			return "", lastErr
		}
		data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		if readErr != nil {
			return "", readErr
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("%s: status %d: %s", name, resp.StatusCode, snippet(data))
			if attempt < p.MaxRetries {
				wait := backoff(attempt)
				if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
						wait = time.Duration(secs) * time.Second
					}
				}
				if sleepCtx(ctx, wait) == nil {
					continue
				}
			}
			return "", lastErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", fmt.Errorf("%s: status %d: %s", name, resp.StatusCode, snippet(data))
		}

		var decoded chatCompletionResp
		if err := json.Unmarshal(data, &decoded); err != nil {
			return "", fmt.Errorf("%s: decode: %w", name, err)
		}
		if decoded.Error != nil && decoded.Error.Message != "" {
			return "", fmt.Errorf("%s: %s", name, decoded.Error.Message)
		}
		if len(decoded.Choices) == 0 {
			return "", fmt.Errorf("%s: %w", name, ErrEmptyCompletion)
		}
		return decoded.Choices[0].Message.Content, nil
	}
	if lastErr == nil {
		lastErr = errors.New(name + ": request failed")
	}
	return "", lastErr
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
