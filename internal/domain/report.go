package domain

import "time"

// DashboardReport is everything the rendering layers need. It is rebuilt on
// every aggregation pass and never persisted except as a cache entry.
type DashboardReport struct {
	Headline       Headline         `json:"headline"`
	Charts         Charts           `json:"charts"`
	News           NewsPicks        `json:"news"`
	Days           []DailyAggregate `json:"days"`
	DatasetVersion uint64           `json:"dataset_version"`
	AsOf           time.Time        `json:"as_of"`
}

type Headline struct {
	MarketCapRank int64     `json:"market_cap_rank"`
	ATHUSD        float64   `json:"ath_usd"`
	ATHDate       string    `json:"ath_date"`
	ATLUSD        float64   `json:"atl_usd"`
	ATLDate       string    `json:"atl_date"`
	PriceUSD      float64   `json:"price_usd"`
	LastUpdated   time.Time `json:"last_updated"`
}

// DailyAggregate holds the reduced metrics of one date bucket. Metrics with no
// observation that day are absent from Values.
type DailyAggregate struct {
	Date   string             `json:"date"`
	Values map[Metric]float64 `json:"values"`
}

func (d DailyAggregate) Value(m Metric) (float64, bool) {
	v, ok := d.Values[m]
	return v, ok
}

type Charts struct {
	Prices       Chart `json:"prices"`
	MarketCaps   Chart `json:"market_caps"`
	TotalVolumes Chart `json:"total_volumes"`
	Github       Chart `json:"github"`
	Twitter      Chart `json:"twitter"`
}

// All returns the five charts in display order.
func (c Charts) All() []Chart {
	return []Chart{c.Prices, c.MarketCaps, c.TotalVolumes, c.Github, c.Twitter}
}

type ChartKind string

const (
	ChartLine    ChartKind = "line"
	ChartBar     ChartKind = "bar"
	ChartArea    ChartKind = "area"
	ChartScatter ChartKind = "scatter"
)

type Chart struct {
	Key         string            `json:"key"`
	Title       string            `json:"title"`
	Kind        ChartKind         `json:"kind"`
	Series      []ChartSeries     `json:"series"`
	YRange      []float64         `json:"y_range,omitempty"`
	Annotations []ChartAnnotation `json:"annotations,omitempty"`
}

type ChartSeries struct {
	Name   string    `json:"name"`
	Metric Metric    `json:"metric"`
	Color  string    `json:"color"`
	Dash   string    `json:"dash,omitempty"`
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

type ChartAnnotation struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
	Color string  `json:"color"`
}

// NewsPick is the featured article of one recency window. The zero value is
// the empty-post sentinel.
type NewsPick struct {
	ArticleID      int64          `json:"article_id,omitempty"`
	SourceName     string         `json:"source_name"`
	Author         string         `json:"author"`
	Title          string         `json:"title"`
	Subtitle       string         `json:"subtitle"`
	URLToPost      string         `json:"url_to_post"`
	URLToImage     string         `json:"url_to_image"`
	PublishedDate  string         `json:"published_date"`
	SentimentLabel SentimentLabel `json:"sentiment_label"`
	SentimentScore float64        `json:"sentiment_score"`
}

// EmptyNewsPick is shown when no article falls into a window.
var EmptyNewsPick = NewsPick{}

func (p NewsPick) IsEmpty() bool {
	return p == EmptyNewsPick
}

type NewsPicks struct {
	Today     NewsPick `json:"today"`
	ThisWeek  NewsPick `json:"this_week"`
	ThisMonth NewsPick `json:"this_month"`
}
