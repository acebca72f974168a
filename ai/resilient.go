package ai

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"speclens/ports"
)

// ResilientProvider decorates a provider with bounded retries and a hard
// per-call timeout. One audit makes one logical request; transient
// transport failures retry inside that envelope.
type ResilientProvider struct {
	inner       ports.CompletionProvider
	maxAttempts int
	callTimeout time.Duration
}

// NewResilientProvider wraps inner. maxRetries counts re-sends after the
// first attempt; callTimeout bounds the whole call including retries.
func NewResilientProvider(inner ports.CompletionProvider, maxRetries int, callTimeout time.Duration) *ResilientProvider {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if callTimeout <= 0 {
		callTimeout = 45 * time.Second
	}
	return &ResilientProvider{
		inner:       inner,
		maxAttempts: maxRetries + 1,
		callTimeout: callTimeout,
	}
}

func (p *ResilientProvider) ID() string {
	return p.inner.ID()
}

func (p *ResilientProvider) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	r := retry.New[*ports.CompletionResponse](retry.Config{
		MaxAttempts:   p.maxAttempts,
		InitialDelay:  time.Second,
		BackoffPolicy: retry.BackoffExponential,
	})

	t := timeout.New[*ports.CompletionResponse](timeout.Config{
		DefaultTimeout: p.callTimeout,
	})

	return t.Execute(ctx, p.callTimeout, func(ctx context.Context) (*ports.CompletionResponse, error) {
		return r.Do(ctx, func(ctx context.Context) (*ports.CompletionResponse, error) {
			return p.inner.Complete(ctx, req)
		})
	})
}
