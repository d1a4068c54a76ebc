package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"daily-btc/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func testOptions(rt roundTripFunc) Options {
	return Options{
		BaseURL:       "http://example",
		APIKey:        "key",
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		HTTPClient:    &http.Client{Transport: rt},
		Limiter:       NewRateLimiter(10, time.Millisecond),
	}
}

const coinDetailBody = `{
  "id": "bitcoin",
  "block_time_in_minutes": 10,
  "market_data": {
    "current_price": {"usd": 64000.5},
    "ath": {"usd": 73738},
    "ath_date": {"usd": "2024-03-14T07:10:36.635Z"},
    "atl": {"usd": 67.81},
    "atl_date": {"usd": "2013-07-06T00:00:00.000Z"},
    "market_cap": {"usd": 1260000000000},
    "fully_diluted_valuation": {"usd": 1340000000000},
    "market_cap_rank": 1,
    "total_volume": {"usd": 31000000000},
    "max_supply": 21000000,
    "circulating_supply": 19700000,
    "last_updated": "2024-05-01T12:30:00.000Z"
  },
  "community_data": {"twitter_followers": 6500000},
  "developer_data": {
    "total_issues": 7000,
    "closed_issues": 6500,
    "pull_requests_merged": 11000,
    "pull_request_contributors": 840
  }
}`

func TestCoinGeckoProviderFetchStatus(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "bitcoin", false,
		testOptions(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/coins/bitcoin" {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			if req.URL.Query().Get("tickers") != "false" || req.URL.Query().Get("localization") != "false" {
				t.Fatalf("unexpected query: %s", req.URL.RawQuery)
			}
			if req.Header.Get("x-cg-demo-api-key") != "key" {
				t.Fatalf("missing demo api key header")
			}
			return jsonResponse(http.StatusOK, coinDetailBody), nil
		}))

	snap, err := provider.FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.LastUpdatedTimestamp != "2024-05-01T12:30:00.000Z" || snap.LastUpdatedDate != "2024-05-01" {
		t.Fatalf("unexpected last updated: %+v", snap)
	}
	if snap.PriceUSD == nil || *snap.PriceUSD != 64000.5 {
		t.Fatalf("unexpected price: %v", snap.PriceUSD)
	}
	if snap.ATHDate != "2024-03-14" || snap.ATLDate != "2013-07-06" {
		t.Fatalf("unexpected ath/atl dates: %s %s", snap.ATHDate, snap.ATLDate)
	}
	if snap.MarketCapRank == nil || *snap.MarketCapRank != 1 {
		t.Fatalf("unexpected rank: %v", snap.MarketCapRank)
	}
	if snap.TwitterFollowersCount == nil || *snap.TwitterFollowersCount != 6500000 {
		t.Fatalf("unexpected followers: %v", snap.TwitterFollowersCount)
	}
	if snap.GithubPullRequestContributorsCount == nil || *snap.GithubPullRequestContributorsCount != 840 {
		t.Fatalf("unexpected contributors: %v", snap.GithubPullRequestContributorsCount)
	}
}

func TestCoinGeckoProviderUsesProHeader(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "bitcoin", true,
		testOptions(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("x-cg-pro-api-key") != "key" || req.Header.Get("x-cg-demo-api-key") != "" {
				t.Fatalf("expected pro header only, got %v", req.Header)
			}
			return jsonResponse(http.StatusOK, coinDetailBody), nil
		}))

	if _, err := provider.FetchStatus(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCoinGeckoProviderNullableFields(t *testing.T) {
	t.Parallel()

	body := `{"market_data": {"current_price": {"usd": 1}, "max_supply": null, "last_updated": "2024-05-01T00:00:00Z"}}`
	snap, err := parseCoinDetail([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.MaxSupply != nil || snap.TwitterFollowersCount != nil || snap.BlockTimeInMinutes != nil {
		t.Fatalf("expected nil nullable fields, got %+v", snap)
	}
}

func TestCoinGeckoProviderMalformedPayload(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing market data":  `{"id": "bitcoin"}`,
		"missing last updated": `{"market_data": {"current_price": {"usd": 1}}}`,
		"bad last updated":     `{"market_data": {"last_updated": "yesterday"}}`,
		"not json":             `<html>`,
	}
	for name, body := range cases {
		if _, err := parseCoinDetail([]byte(body)); !errors.Is(err, domain.ErrMalformedPayload) {
			t.Fatalf("%s: expected malformed payload, got %v", name, err)
		}
	}
}

func TestCoinGeckoProviderRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "bitcoin", false,
		testOptions(func(req *http.Request) (*http.Response, error) {
			if calls.Add(1) < 3 {
				return jsonResponse(http.StatusServiceUnavailable, "busy"), nil
			}
			return jsonResponse(http.StatusOK, coinDetailBody), nil
		}))

	if _, err := provider.FetchStatus(context.Background()); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestCoinGeckoProviderGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "bitcoin", false,
		testOptions(func(req *http.Request) (*http.Response, error) {
			calls.Add(1)
			return jsonResponse(http.StatusTooManyRequests, "slow down"), nil
		}))

	_, err := provider.FetchStatus(context.Background())
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 status error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestCoinGeckoProviderClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "bitcoin", false,
		testOptions(func(req *http.Request) (*http.Response, error) {
			calls.Add(1)
			return jsonResponse(http.StatusUnauthorized, "bad key"), nil
		}))

	_, err := provider.FetchStatus(context.Background())
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestCoinGeckoProviderTransportErrorIsRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "bitcoin", false,
		testOptions(func(req *http.Request) (*http.Response, error) {
			calls.Add(1)
			return nil, errors.New("connection reset")
		}))

	_, err := provider.FetchStatus(context.Background())
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}
