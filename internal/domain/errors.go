package domain

import "errors"

var (
	// ErrUpstreamUnavailable marks a transport failure or non-2xx response from CoinGecko or NewsAPI.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedPayload marks a response missing a required top-level field.
	ErrMalformedPayload = errors.New("malformed upstream payload")
	// ErrNoSnapshots is returned by aggregation when nothing has been ingested yet.
	ErrNoSnapshots = errors.New("no status snapshots persisted")
)
