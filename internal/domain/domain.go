package domain

import (
	"strings"
	"time"
)

// DateLayout is the layout of every date bucket key (statuses.last_updated_date, news.published_date).
const DateLayout = "2006-01-02"

// StatusSnapshot is one observation of market and social metrics for the tracked coin.
// Nullable upstream values are pointers.
type StatusSnapshot struct {
	ID                                 int64     `json:"id"`
	BlockTimeInMinutes                 *int64    `json:"block_time_in_minutes,omitempty"`
	MarketCapRank                      *int64    `json:"market_cap_rank,omitempty"`
	PriceUSD                           *float64  `json:"price_usd,omitempty"`
	ATHUSD                             *float64  `json:"ath_usd,omitempty"`
	ATHDate                            string    `json:"ath_date"`
	ATLUSD                             *float64  `json:"atl_usd,omitempty"`
	ATLDate                            string    `json:"atl_date"`
	MarketCapUSD                       *float64  `json:"market_cap_usd,omitempty"`
	FullyDilutedValuationUSD           *float64  `json:"fully_diluted_valuation_usd,omitempty"`
	TotalVolumeUSD                     *float64  `json:"total_volume_usd,omitempty"`
	CirculatingSupply                  *float64  `json:"circulating_supply,omitempty"`
	MaxSupply                          *float64  `json:"max_supply,omitempty"`
	LastUpdatedTimestamp               string    `json:"last_updated_timestamp"`
	LastUpdatedDate                    string    `json:"last_updated_date"`
	TwitterFollowersCount              *int64    `json:"twitter_followers_count,omitempty"`
	GithubTotalIssuesCount             *int64    `json:"github_total_issues_count,omitempty"`
	GithubClosedIssuesCount            *int64    `json:"github_closed_issues_count,omitempty"`
	GithubPullRequestsMergedCount      *int64    `json:"github_pull_requests_merged_count,omitempty"`
	GithubPullRequestContributorsCount *int64    `json:"github_pull_request_contributors_count,omitempty"`
	CreatedAt                          time.Time `json:"created_at"`
}

// LastUpdatedAt parses the upstream timestamp. Zero time when unparsable.
func (s StatusSnapshot) LastUpdatedAt() time.Time {
	return ParseTimestamp(s.LastUpdatedTimestamp)
}

// Metric returns the value of a numeric column and whether it was present.
func (s StatusSnapshot) Metric(m Metric) (float64, bool) {
	switch m {
	case MetricPriceUSD:
		return floatValue(s.PriceUSD)
	case MetricMarketCapUSD:
		return floatValue(s.MarketCapUSD)
	case MetricFullyDilutedValuationUSD:
		return floatValue(s.FullyDilutedValuationUSD)
	case MetricTotalVolumeUSD:
		return floatValue(s.TotalVolumeUSD)
	case MetricCirculatingSupply:
		return floatValue(s.CirculatingSupply)
	case MetricMaxSupply:
		return floatValue(s.MaxSupply)
	case MetricTwitterFollowers:
		return intValue(s.TwitterFollowersCount)
	case MetricGithubTotalIssues:
		return intValue(s.GithubTotalIssuesCount)
	case MetricGithubClosedIssues:
		return intValue(s.GithubClosedIssuesCount)
	case MetricGithubPullRequestsMerged:
		return intValue(s.GithubPullRequestsMergedCount)
	case MetricGithubPullRequestContributors:
		return intValue(s.GithubPullRequestContributorsCount)
	default:
		return 0, false
	}
}

// NewsArticle is one distinct article, keyed by URLToPost.
type NewsArticle struct {
	ID                 int64      `json:"id"`
	SourceName         string     `json:"source_name"`
	Author             string     `json:"author"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	URLToPost          string     `json:"url_to_post"`
	URLToImage         string     `json:"url_to_image"`
	PublishedTimestamp string     `json:"published_timestamp"`
	PublishedDate      string     `json:"published_date"`
	Sentiment          *Sentiment `json:"sentiment,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// PublishedAt parses the upstream published timestamp. Zero time when unparsable.
func (a NewsArticle) PublishedAt() time.Time {
	return ParseTimestamp(a.PublishedTimestamp)
}

// ContentPreview is the text fed to the sentiment classifier. ok is false when
// the title or the description is missing.
func (a NewsArticle) ContentPreview() (string, bool) {
	title := strings.TrimSpace(a.Title)
	description := strings.TrimSpace(a.Description)
	if title == "" || description == "" {
		return "", false
	}
	return "Title: " + title + " Description: " + description, true
}

type SentimentLabel string

const (
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
	SentimentPositive SentimentLabel = "POSITIVE"
)

// Sentiment is the cached classification of one article.
type Sentiment struct {
	Label    SentimentLabel `json:"label"`
	Score    float64        `json:"score"`
	Model    string         `json:"model"`
	ScoredAt time.Time      `json:"scored_at"`
}

// Dataset is everything currently persisted, stamped with the version the
// ingestion side published when it was read.
type Dataset struct {
	Statuses []StatusSnapshot
	News     []NewsArticle
	Version  uint64
	AsOf     time.Time
}

// IngestionResult summarises one ingestion cycle.
type IngestionResult struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	StatusInserted  bool      `json:"status_inserted"`
	StatusDuplicate bool      `json:"status_duplicate"`
	NewsFetched     int       `json:"news_fetched"`
	NewsInserted    int       `json:"news_inserted"`
	NewsDuplicates  int       `json:"news_duplicates"`
	NewsSkipped     int       `json:"news_skipped"`
	Version         uint64    `json:"version"`
}

// ParseTimestamp accepts the RFC3339 variants CoinGecko and NewsAPI emit.
func ParseTimestamp(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", DateLayout}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// DateBucket returns the YYYY-MM-DD prefix of an upstream timestamp.
func DateBucket(timestamp string) string {
	timestamp = strings.TrimSpace(timestamp)
	if i := strings.IndexByte(timestamp, 'T'); i >= 0 {
		return timestamp[:i]
	}
	if t := ParseTimestamp(timestamp); !t.IsZero() {
		return t.Format(DateLayout)
	}
	return timestamp
}

func floatValue(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

func intValue(v *int64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}
