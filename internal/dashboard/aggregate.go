package dashboard

import (
	"sort"
	"time"

	"daily-btc/internal/domain"
	"daily-btc/internal/ta"
)

// Aggregate builds the report for dataset. It is a pure function of its
// inputs: the pick windows are anchored on dataset.AsOf, never on the wall
// clock, so the same dataset always yields the same report.
func Aggregate(dataset *domain.Dataset, layout Layout) (*domain.DashboardReport, error) {
	if dataset == nil || len(dataset.Statuses) == 0 {
		return nil, domain.ErrNoSnapshots
	}

	days := DailyAggregates(dataset.Statuses, layout)
	applyEMA(days, layout.emaSpans)

	return &domain.DashboardReport{
		Headline:       buildHeadline(dataset),
		Charts:         buildCharts(days, layout.emaSpans),
		News:           PickNews(dataset.News, dataset.AsOf, layout.windows),
		Days:           days,
		DatasetVersion: dataset.Version,
		AsOf:           dataset.AsOf.UTC(),
	}, nil
}

// DailyAggregates groups snapshots by last-updated date and folds each
// configured metric with its reducer. Missing values are skipped, so a day
// where a metric was never observed has no entry for it.
func DailyAggregates(statuses []domain.StatusSnapshot, layout Layout) []domain.DailyAggregate {
	byDate := make(map[string][]domain.StatusSnapshot)
	for _, status := range statuses {
		date := status.LastUpdatedDate
		if date == "" {
			date = domain.DateBucket(status.LastUpdatedTimestamp)
		}
		byDate[date] = append(byDate[date], status)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]domain.DailyAggregate, 0, len(dates))
	for _, date := range dates {
		row := domain.DailyAggregate{Date: date, Values: make(map[domain.Metric]float64, len(layout.reducers))}
		for _, mr := range layout.reducers {
			values := make([]float64, 0, len(byDate[date]))
			for _, status := range byDate[date] {
				if v, ok := status.Metric(mr.metric); ok {
					values = append(values, v)
				}
			}
			if v, ok := mr.reduce(values); ok {
				row.Values[mr.metric] = v
			}
		}
		out = append(out, row)
	}
	return out
}

// applyEMA adds one EMA series per span over the days that carry a price.
func applyEMA(days []domain.DailyAggregate, spans []int) {
	idx := make([]int, 0, len(days))
	prices := make([]float64, 0, len(days))
	for i, day := range days {
		if v, ok := day.Value(domain.MetricPriceUSD); ok {
			idx = append(idx, i)
			prices = append(prices, v)
		}
	}
	for _, span := range spans {
		metric := domain.EMAMetric(span)
		for j, v := range ta.EMASeries(prices, span) {
			days[idx[j]].Values[metric] = v
		}
	}
}

func buildHeadline(dataset *domain.Dataset) domain.Headline {
	latest := dataset.Statuses[0]
	latestAt := latest.LastUpdatedAt()
	for _, status := range dataset.Statuses[1:] {
		if at := status.LastUpdatedAt(); !at.Before(latestAt) {
			latest, latestAt = status, at
		}
	}

	headline := domain.Headline{
		ATHDate:     latest.ATHDate,
		ATLDate:     latest.ATLDate,
		LastUpdated: latestAt,
	}
	if latest.MarketCapRank != nil {
		headline.MarketCapRank = *latest.MarketCapRank
	}
	if latest.ATHUSD != nil {
		headline.ATHUSD = *latest.ATHUSD
	}
	if latest.ATLUSD != nil {
		headline.ATLUSD = *latest.ATLUSD
	}
	if latest.PriceUSD != nil {
		headline.PriceUSD = *latest.PriceUSD
	}

	for _, article := range dataset.News {
		if at := article.PublishedAt(); at.After(headline.LastUpdated) {
			headline.LastUpdated = at
		}
	}
	headline.LastUpdated = headline.LastUpdated.UTC()
	return headline
}

// PickNews selects, per window, the classified article with the highest
// sentiment score. Ties keep the article seen first; an empty window yields
// the empty-post sentinel.
func PickNews(news []domain.NewsArticle, asOf time.Time, windows [3]Window) domain.NewsPicks {
	picks := [3]domain.NewsPick{}
	for w, window := range windows {
		var best *domain.NewsArticle
		for i := range news {
			article := &news[i]
			if article.Sentiment == nil {
				continue
			}
			published := article.PublishedAt()
			if published.IsZero() || !window.Contains(asOf, published) {
				continue
			}
			if best == nil || article.Sentiment.Score > best.Sentiment.Score {
				best = article
			}
		}
		if best == nil {
			picks[w] = domain.EmptyNewsPick
			continue
		}
		picks[w] = newsPick(*best)
	}
	return domain.NewsPicks{Today: picks[0], ThisWeek: picks[1], ThisMonth: picks[2]}
}

func newsPick(article domain.NewsArticle) domain.NewsPick {
	byline := article.Author
	if byline == "" {
		byline = article.SourceName
	}
	if byline == "" {
		byline = "Unknown"
	}
	subtitle := "By " + byline
	if published := article.PublishedAt(); !published.IsZero() {
		subtitle += " on " + published.Format("Jan 02, 2006")
	}

	return domain.NewsPick{
		ArticleID:      article.ID,
		SourceName:     article.SourceName,
		Author:         article.Author,
		Title:          article.Title,
		Subtitle:       subtitle,
		URLToPost:      article.URLToPost,
		URLToImage:     article.URLToImage,
		PublishedDate:  article.PublishedDate,
		SentimentLabel: article.Sentiment.Label,
		SentimentScore: article.Sentiment.Score,
	}
}
