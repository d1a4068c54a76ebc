package domain

import "fmt"

// Metric names a numeric statuses column that can be aggregated per day.
type Metric string

const (
	MetricPriceUSD                      Metric = "price_usd"
	MetricMarketCapUSD                  Metric = "market_cap_usd"
	MetricFullyDilutedValuationUSD      Metric = "fully_diluted_valuation_usd"
	MetricTotalVolumeUSD                Metric = "total_volume_usd"
	MetricCirculatingSupply             Metric = "circulating_supply"
	MetricMaxSupply                     Metric = "max_supply"
	MetricTwitterFollowers              Metric = "twitter_followers_count"
	MetricGithubTotalIssues             Metric = "github_total_issues_count"
	MetricGithubClosedIssues            Metric = "github_closed_issues_count"
	MetricGithubPullRequestsMerged      Metric = "github_pull_requests_merged_count"
	MetricGithubPullRequestContributors Metric = "github_pull_request_contributors_count"
)

// Derived series computed over the daily mean price.
const (
	MetricPriceEMA50  Metric = "price_ema50_usd"
	MetricPriceEMA200 Metric = "price_ema200_usd"
)

// KnownMetrics lists every column StatusSnapshot.Metric understands.
var KnownMetrics = []Metric{
	MetricPriceUSD,
	MetricMarketCapUSD,
	MetricFullyDilutedValuationUSD,
	MetricTotalVolumeUSD,
	MetricCirculatingSupply,
	MetricMaxSupply,
	MetricTwitterFollowers,
	MetricGithubTotalIssues,
	MetricGithubClosedIssues,
	MetricGithubPullRequestsMerged,
	MetricGithubPullRequestContributors,
}

func (m Metric) IsKnown() bool {
	for _, known := range KnownMetrics {
		if m == known {
			return true
		}
	}
	return false
}

// EMAMetric names the EMA series of the daily mean price for span.
func EMAMetric(span int) Metric {
	return Metric(fmt.Sprintf("price_ema%d_usd", span))
}
