package advisory

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// ResilienceConfig bounds how hard a ResilientProvider tries.
type ResilienceConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Timeout      time.Duration
}

// DefaultResilience retries once after a second and gives up after a minute.
func DefaultResilience() ResilienceConfig {
	return ResilienceConfig{MaxAttempts: 2, InitialDelay: time.Second, Timeout: time.Minute}
}

// ResilientProvider wraps a Provider with retry and an overall timeout.
type ResilientProvider struct {
	inner Provider
	cfg   ResilienceConfig
}

func NewResilientProvider(inner Provider, cfg ResilienceConfig) *ResilientProvider {
	return &ResilientProvider{inner: inner, cfg: cfg}
}

func (p *ResilientProvider) ID() string { return p.inner.ID() }

func (p *ResilientProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	// Retrying cannot fix a missing key.
	if op, ok := p.inner.(*OpenAIProvider); ok && op.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	r := retry.New[*CompletionResponse](retry.Config{
		MaxAttempts:   p.cfg.MaxAttempts,
		InitialDelay:  p.cfg.InitialDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[*CompletionResponse](timeout.Config{DefaultTimeout: p.cfg.Timeout})

	return t.Execute(ctx, p.cfg.Timeout, func(ctx context.Context) (*CompletionResponse, error) {
		return r.Do(ctx, func(ctx context.Context) (*CompletionResponse, error) {
			return p.inner.Complete(ctx, req)
		})
	})
}
