package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"daily-btc/internal/domain"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configure an upstream client. Zero values fall back to defaults.
type Options struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	HTTPClient    *http.Client
	Limiter       *rate.Limiter
	Logger        *zap.Logger
}

// StatusError is a non-2xx answer from an upstream API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return domain.ErrUpstreamUnavailable }

// Retryable reports whether a repeat of the same request could succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type upstream struct {
	name          string
	client        *http.Client
	limiter       *rate.Limiter
	logger        *zap.Logger
	retryAttempts int
	retryDelay    time.Duration
}

func newUpstream(name string, opts Options, defaultLimiter *rate.Limiter) upstream {
	u := upstream{
		name:          name,
		client:        opts.HTTPClient,
		limiter:       opts.Limiter,
		logger:        opts.Logger,
		retryAttempts: opts.RetryAttempts,
		retryDelay:    opts.RetryDelay,
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if u.client == nil {
		u.client = &http.Client{Timeout: timeout}
	}
	if u.limiter == nil {
		u.limiter = defaultLimiter
	}
	if u.logger == nil {
		u.logger = zap.NewNop()
	}
	if u.retryAttempts <= 0 {
		u.retryAttempts = 3
	}
	if u.retryDelay < 0 {
		u.retryDelay = 0
	}
	return u
}

// get performs a GET with rate limiting and fixed-interval retries. Transport
// errors, 429 and 5xx are retried; any other failure stops immediately.
func (u upstream) get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		body, err := u.do(ctx, url, headers)
		if err == nil {
			return body, nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		u.logger.Warn("upstream request failed",
			zap.String("provider", u.name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return nil, err
	}

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(u.retryDelay)),
		backoff.WithMaxTries(uint(u.retryAttempts)),
	)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%s request: %w: %w", u.name, domain.ErrUpstreamUnavailable, err)
	}
	return body, nil
}

func (u upstream) do(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if err := u.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Provider: u.name, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return io.ReadAll(resp.Body)
}
