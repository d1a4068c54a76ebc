package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"daily-btc/internal/domain"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"
)

const (
	coingeckoBaseURL    = "https://api.coingecko.com/api/v3"
	coingeckoProBaseURL = "https://pro-api.coingecko.com/api/v3"
)

var validate = validator.New()

// CoinGeckoProvider fetches the coin detail document for a single coin.
type CoinGeckoProvider struct {
	upstream
	baseURL string
	coinID  string
	apiKey  string
	pro     bool
	tracer  trace.Tracer
}

// NewCoinGeckoProvider creates a provider for coinID. The demo tier is limited
// to 30 calls per minute, so the default limiter refills every 2 seconds.
func NewCoinGeckoProvider(tracer trace.Tracer, coinID string, pro bool, opts Options) *CoinGeckoProvider {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = coingeckoBaseURL
		if pro {
			baseURL = coingeckoProBaseURL
		}
	}
	return &CoinGeckoProvider{
		upstream: newUpstream("coingecko", opts, NewRateLimiter(5, 2*time.Second)),
		baseURL:  baseURL,
		coinID:   coinID,
		apiKey:   opts.APIKey,
		pro:      pro,
		tracer:   tracer,
	}
}

type usdQuote struct {
	USD *float64 `json:"usd"`
}

type usdDate struct {
	USD string `json:"usd"`
}

type coinDetail struct {
	BlockTimeInMinutes *int64 `json:"block_time_in_minutes"`
	MarketData         *struct {
		CurrentPrice          usdQuote `json:"current_price"`
		ATH                   usdQuote `json:"ath"`
		ATHDate               usdDate  `json:"ath_date"`
		ATL                   usdQuote `json:"atl"`
		ATLDate               usdDate  `json:"atl_date"`
		MarketCap             usdQuote `json:"market_cap"`
		FullyDilutedValuation usdQuote `json:"fully_diluted_valuation"`
		MarketCapRank         *int64   `json:"market_cap_rank"`
		TotalVolume           usdQuote `json:"total_volume"`
		MaxSupply             *float64 `json:"max_supply"`
		CirculatingSupply     *float64 `json:"circulating_supply"`
		LastUpdated           string   `json:"last_updated" validate:"required"`
	} `json:"market_data" validate:"required"`
	CommunityData struct {
		TwitterFollowers *int64 `json:"twitter_followers"`
	} `json:"community_data"`
	DeveloperData struct {
		TotalIssues             *int64 `json:"total_issues"`
		ClosedIssues            *int64 `json:"closed_issues"`
		PullRequestsMerged      *int64 `json:"pull_requests_merged"`
		PullRequestContributors *int64 `json:"pull_request_contributors"`
	} `json:"developer_data"`
}

// FetchStatus fetches the current market, community and developer snapshot.
func (p *CoinGeckoProvider) FetchStatus(ctx context.Context) (*domain.StatusSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-status")
	defer span.End()

	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "true")
	params.Set("developer_data", "true")
	params.Set("sparkline", "false")
	endpoint := fmt.Sprintf("%s/coins/%s?%s", p.baseURL, url.PathEscape(p.coinID), params.Encode())

	headerKey := "x-cg-demo-api-key"
	if p.pro {
		headerKey = "x-cg-pro-api-key"
	}
	body, err := p.get(ctx, endpoint, map[string]string{headerKey: p.apiKey})
	if err != nil {
		return nil, fmt.Errorf("fetch status for %s: %w", p.coinID, err)
	}

	return parseCoinDetail(body)
}

func parseCoinDetail(body []byte) (*domain.StatusSnapshot, error) {
	var raw coinDetail
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse coin detail: %w: %w", domain.ErrMalformedPayload, err)
	}
	if err := validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("coin detail: %w: %w", domain.ErrMalformedPayload, err)
	}

	md := raw.MarketData
	lastUpdated := strings.TrimSpace(md.LastUpdated)
	if domain.ParseTimestamp(lastUpdated).IsZero() {
		return nil, fmt.Errorf("coin detail last_updated %q: %w", lastUpdated, domain.ErrMalformedPayload)
	}

	return &domain.StatusSnapshot{
		BlockTimeInMinutes:                 raw.BlockTimeInMinutes,
		MarketCapRank:                      md.MarketCapRank,
		PriceUSD:                           md.CurrentPrice.USD,
		ATHUSD:                             md.ATH.USD,
		ATHDate:                            domain.DateBucket(md.ATHDate.USD),
		ATLUSD:                             md.ATL.USD,
		ATLDate:                            domain.DateBucket(md.ATLDate.USD),
		MarketCapUSD:                       md.MarketCap.USD,
		FullyDilutedValuationUSD:           md.FullyDilutedValuation.USD,
		TotalVolumeUSD:                     md.TotalVolume.USD,
		CirculatingSupply:                  md.CirculatingSupply,
		MaxSupply:                          md.MaxSupply,
		LastUpdatedTimestamp:               lastUpdated,
		LastUpdatedDate:                    domain.DateBucket(lastUpdated),
		TwitterFollowersCount:              raw.CommunityData.TwitterFollowers,
		GithubTotalIssuesCount:             raw.DeveloperData.TotalIssues,
		GithubClosedIssuesCount:            raw.DeveloperData.ClosedIssues,
		GithubPullRequestsMergedCount:      raw.DeveloperData.PullRequestsMerged,
		GithubPullRequestContributorsCount: raw.DeveloperData.PullRequestContributors,
	}, nil
}
