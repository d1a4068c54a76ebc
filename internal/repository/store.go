package repository

import (
	"context"
	"time"

	"daily-btc/internal/domain"
)

// Store persists snapshots and articles. Inserts are idempotent on the
// dedup keys; rows are never updated except for the one-time sentiment
// enrichment of an article.
type Store interface {
	RunMigrations(ctx context.Context) error
	InsertStatusIfAbsent(ctx context.Context, status *domain.StatusSnapshot) (bool, error)
	InsertNewsIfAbsent(ctx context.Context, article *domain.NewsArticle) (bool, error)
	UpdateNewsSentiment(ctx context.Context, articleID int64, sentiment domain.Sentiment) (bool, error)
	ReadDataset(ctx context.Context) (*domain.Dataset, error)
	LatestStatus(ctx context.Context) (*domain.StatusSnapshot, error)
	Close()
}

const statusColumns = `id, block_time_in_minutes, market_cap_rank, price_usd, ath_usd, COALESCE(ath_date, ''),
       atl_usd, COALESCE(atl_date, ''), market_cap_usd, fully_diluted_valuation_usd, total_volume_usd,
       circulating_supply, max_supply, last_updated_timestamp, last_updated_date,
       twitter_followers_count, github_total_issues_count, github_closed_issues_count,
       github_pull_requests_merged_count, github_pull_request_contributors_count, created_at`

const newsColumns = `id, COALESCE(source_name, ''), COALESCE(author, ''), COALESCE(title, ''), COALESCE(description, ''),
       url_to_post, COALESCE(url_to_image, ''), published_timestamp, published_date,
       sentiment_label, sentiment_score, sentiment_model, scored_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanStatus(s scanner) (domain.StatusSnapshot, error) {
	var out domain.StatusSnapshot
	if err := s.Scan(
		&out.ID,
		&out.BlockTimeInMinutes,
		&out.MarketCapRank,
		&out.PriceUSD,
		&out.ATHUSD,
		&out.ATHDate,
		&out.ATLUSD,
		&out.ATLDate,
		&out.MarketCapUSD,
		&out.FullyDilutedValuationUSD,
		&out.TotalVolumeUSD,
		&out.CirculatingSupply,
		&out.MaxSupply,
		&out.LastUpdatedTimestamp,
		&out.LastUpdatedDate,
		&out.TwitterFollowersCount,
		&out.GithubTotalIssuesCount,
		&out.GithubClosedIssuesCount,
		&out.GithubPullRequestsMergedCount,
		&out.GithubPullRequestContributorsCount,
		&out.CreatedAt,
	); err != nil {
		return domain.StatusSnapshot{}, err
	}
	out.CreatedAt = out.CreatedAt.UTC()
	return out, nil
}

func scanNews(s scanner) (domain.NewsArticle, error) {
	var out domain.NewsArticle
	var label *string
	var score *float64
	var model *string
	var scoredAt *time.Time
	if err := s.Scan(
		&out.ID,
		&out.SourceName,
		&out.Author,
		&out.Title,
		&out.Description,
		&out.URLToPost,
		&out.URLToImage,
		&out.PublishedTimestamp,
		&out.PublishedDate,
		&label,
		&score,
		&model,
		&scoredAt,
		&out.CreatedAt,
	); err != nil {
		return domain.NewsArticle{}, err
	}
	out.CreatedAt = out.CreatedAt.UTC()
	if label != nil && score != nil {
		sentiment := &domain.Sentiment{
			Label: domain.SentimentLabel(*label),
			Score: *score,
		}
		if model != nil {
			sentiment.Model = *model
		}
		if scoredAt != nil {
			sentiment.ScoredAt = scoredAt.UTC()
		}
		out.Sentiment = sentiment
	}
	return out, nil
}

func statusArgs(s *domain.StatusSnapshot, createdAt time.Time) []any {
	return []any{
		nullInt(s.BlockTimeInMinutes),
		nullInt(s.MarketCapRank),
		nullFloat(s.PriceUSD),
		nullFloat(s.ATHUSD),
		nullString(s.ATHDate),
		nullFloat(s.ATLUSD),
		nullString(s.ATLDate),
		nullFloat(s.MarketCapUSD),
		nullFloat(s.FullyDilutedValuationUSD),
		nullFloat(s.TotalVolumeUSD),
		nullFloat(s.CirculatingSupply),
		nullFloat(s.MaxSupply),
		s.LastUpdatedTimestamp,
		s.LastUpdatedDate,
		nullInt(s.TwitterFollowersCount),
		nullInt(s.GithubTotalIssuesCount),
		nullInt(s.GithubClosedIssuesCount),
		nullInt(s.GithubPullRequestsMergedCount),
		nullInt(s.GithubPullRequestContributorsCount),
		createdAt,
	}
}

func newsArgs(a *domain.NewsArticle, createdAt time.Time) []any {
	return []any{
		nullString(a.SourceName),
		nullString(a.Author),
		nullString(a.Title),
		nullString(a.Description),
		a.URLToPost,
		nullString(a.URLToImage),
		a.PublishedTimestamp,
		a.PublishedDate,
		createdAt,
	}
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
