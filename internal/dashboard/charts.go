package dashboard

import (
	"fmt"

	"daily-btc/internal/domain"
	"daily-btc/internal/ta"

	"github.com/dustin/go-humanize"
)

const (
	colorRed    = "red"
	colorYellow = "yellow"
	colorLime   = "lime"
)

var emaStyles = []struct{ color, dash string }{
	{colorYellow, "dot"},
	{colorLime, "dash"},
	{"orange", "dashdot"},
	{"white", "longdash"},
}

func buildCharts(days []domain.DailyAggregate, emaSpans []int) domain.Charts {
	prices := domain.Chart{
		Key:    "prices",
		Title:  "DAILY AVERAGE PRICE ($)",
		Kind:   domain.ChartLine,
		Series: []domain.ChartSeries{series(days, "SPOT", domain.MetricPriceUSD, colorRed, "")},
	}
	for i, span := range emaSpans {
		style := emaStyles[i%len(emaStyles)]
		prices.Series = append(prices.Series,
			series(days, fmt.Sprintf("EMA %d", span), domain.EMAMetric(span), style.color, style.dash))
	}
	prices.YRange = paddedRange(prices.Series[0].Values, prices.Series[0].Values)

	marketCaps := domain.Chart{
		Key:   "market_caps",
		Title: "DAILY AVERAGE MARKET CAP ($)",
		Kind:  domain.ChartLine,
		Series: []domain.ChartSeries{
			series(days, "IN CIRCULATION", domain.MetricMarketCapUSD, colorRed, ""),
			series(days, "FULLY DILUTED", domain.MetricFullyDilutedValuationUSD, colorYellow, ""),
		},
	}
	upper := marketCaps.Series[1].Values
	if len(upper) == 0 {
		upper = marketCaps.Series[0].Values
	}
	marketCaps.YRange = paddedRange(marketCaps.Series[0].Values, upper)

	volumes := domain.Chart{
		Key:    "total_volumes",
		Title:  "DAILY AVERAGE TOTAL VOLUME ($)",
		Kind:   domain.ChartBar,
		Series: []domain.ChartSeries{series(days, "VOLUME", domain.MetricTotalVolumeUSD, colorLime, "")},
	}
	if _, hi, ok := ta.Bounds(volumes.Series[0].Values); ok {
		volumes.YRange = []float64{0, hi * 1.05}
	}

	github := domain.Chart{
		Key:   "github",
		Title: "DAILY TOTAL NUMBER OF ISSUES",
		Kind:  domain.ChartArea,
		Series: []domain.ChartSeries{
			series(days, "OPENED", domain.MetricGithubTotalIssues, colorRed, ""),
			series(days, "CLOSED", domain.MetricGithubClosedIssues, colorLime, ""),
		},
	}
	for _, s := range github.Series {
		if ann, ok := lastAnnotation(s); ok {
			github.Annotations = append(github.Annotations, ann)
		}
	}

	twitter := domain.Chart{
		Key:    "twitter",
		Title:  "DAILY TOTAL NUMBER OF FOLLOWERS",
		Kind:   domain.ChartScatter,
		Series: []domain.ChartSeries{series(days, "FOLLOWERS", domain.MetricTwitterFollowers, colorYellow, "")},
	}
	followers := twitter.Series[0]
	twitter.YRange = paddedRange(followers.Values, followers.Values)
	if len(followers.Values) > 0 {
		twitter.Annotations = append(twitter.Annotations, annotation(followers, 0))
		if len(followers.Values) > 1 {
			last, _ := lastAnnotation(followers)
			twitter.Annotations = append(twitter.Annotations, last)
		}
	}

	return domain.Charts{
		Prices:       prices,
		MarketCaps:   marketCaps,
		TotalVolumes: volumes,
		Github:       github,
		Twitter:      twitter,
	}
}

func series(days []domain.DailyAggregate, name string, metric domain.Metric, color, dash string) domain.ChartSeries {
	s := domain.ChartSeries{
		Name:   name,
		Metric: metric,
		Color:  color,
		Dash:   dash,
		Dates:  make([]string, 0, len(days)),
		Values: make([]float64, 0, len(days)),
	}
	for _, day := range days {
		if v, ok := day.Value(metric); ok {
			s.Dates = append(s.Dates, day.Date)
			s.Values = append(s.Values, v)
		}
	}
	return s
}

// paddedRange spans [min(lower)*0.95, max(upper)*1.05].
func paddedRange(lower, upper []float64) []float64 {
	lo, _, okLo := ta.Bounds(lower)
	_, hi, okHi := ta.Bounds(upper)
	if !okLo || !okHi {
		return nil
	}
	return []float64{lo * 0.95, hi * 1.05}
}

func lastAnnotation(s domain.ChartSeries) (domain.ChartAnnotation, bool) {
	if len(s.Values) == 0 {
		return domain.ChartAnnotation{}, false
	}
	return annotation(s, len(s.Values)-1), true
}

func annotation(s domain.ChartSeries, i int) domain.ChartAnnotation {
	return domain.ChartAnnotation{
		Date:  s.Dates[i],
		Value: s.Values[i],
		Text:  humanize.Comma(int64(s.Values[i])),
		Color: s.Color,
	}
}
