package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"daily-btc/internal/db"
	"daily-btc/internal/domain"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	store := NewSQLiteStore(conn, trace.NewNoopTracerProvider().Tracer("test"))
	t.Cleanup(store.Close)
	require.NoError(t, store.RunMigrations(context.Background()))
	return store
}

func ptr[T any](v T) *T { return &v }

func testStatus(ts string) *domain.StatusSnapshot {
	return &domain.StatusSnapshot{
		BlockTimeInMinutes:    ptr(int64(10)),
		MarketCapRank:         ptr(int64(1)),
		PriceUSD:              ptr(64000.5),
		ATHUSD:                ptr(73738.0),
		ATHDate:               "2024-03-14",
		MarketCapUSD:          ptr(1.26e12),
		TotalVolumeUSD:        ptr(3.1e10),
		LastUpdatedTimestamp:  ts,
		LastUpdatedDate:       domain.DateBucket(ts),
		TwitterFollowersCount: ptr(int64(6500000)),
	}
}

func testArticle(url, published string) *domain.NewsArticle {
	return &domain.NewsArticle{
		SourceName:         "CoinDesk",
		Author:             "Jane Doe",
		Title:              "Bitcoin climbs",
		Description:        "Price up",
		URLToPost:          url,
		PublishedTimestamp: published,
		PublishedDate:      domain.DateBucket(published),
	}
}

func TestSQLiteStoreRunMigrationsIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.RunMigrations(context.Background()))
}

func TestSQLiteStoreStatusDedup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inserted, err := store.InsertStatusIfAbsent(ctx, testStatus("2024-05-01T12:30:00.000Z"))
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = store.InsertStatusIfAbsent(ctx, testStatus("2024-05-01T12:30:00.000Z"))
	require.NoError(t, err)
	require.False(t, inserted)

	inserted, err = store.InsertStatusIfAbsent(ctx, testStatus("2024-05-01T13:30:00.000Z"))
	require.NoError(t, err)
	require.True(t, inserted)

	dataset, err := store.ReadDataset(ctx)
	require.NoError(t, err)
	require.Len(t, dataset.Statuses, 2)
	require.Less(t, dataset.Statuses[0].ID, dataset.Statuses[1].ID)
}

func TestSQLiteStoreStatusRoundTripKeepsNulls(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	status := testStatus("2024-05-01T12:30:00.000Z")
	_, err := store.InsertStatusIfAbsent(ctx, status)
	require.NoError(t, err)
	require.NotZero(t, status.ID)

	got, err := store.LatestStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, status.ID, got.ID)
	require.Equal(t, 64000.5, *got.PriceUSD)
	require.Equal(t, int64(6500000), *got.TwitterFollowersCount)
	require.Equal(t, "2024-03-14", got.ATHDate)
	require.Equal(t, "", got.ATLDate)
	require.Nil(t, got.MaxSupply)
	require.Nil(t, got.GithubTotalIssuesCount)
	require.Equal(t, "2024-05-01", got.LastUpdatedDate)
	require.False(t, got.CreatedAt.IsZero())
}

func TestSQLiteStoreLatestStatusEmpty(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LatestStatus(context.Background())
	require.ErrorIs(t, err, domain.ErrNoSnapshots)
}

func TestSQLiteStoreNewsDedupByURL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := testArticle("https://example.com/a", "2024-05-01T10:00:00Z")
	inserted, err := store.InsertNewsIfAbsent(ctx, first)
	require.NoError(t, err)
	require.True(t, inserted)

	again := testArticle("https://example.com/a", "2024-05-01T11:00:00Z")
	again.Title = "Different title, same url"
	inserted, err = store.InsertNewsIfAbsent(ctx, again)
	require.NoError(t, err)
	require.False(t, inserted)

	dataset, err := store.ReadDataset(ctx)
	require.NoError(t, err)
	require.Len(t, dataset.News, 1)
	require.Equal(t, "Bitcoin climbs", dataset.News[0].Title)
	require.Nil(t, dataset.News[0].Sentiment)
}

func TestSQLiteStoreConcurrentInsertsKeepOneRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	insertedCount := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := store.InsertNewsIfAbsent(ctx, testArticle("https://example.com/same", "2024-05-01T10:00:00Z"))
			if err != nil {
				t.Errorf("insert: %v", err)
				return
			}
			if inserted {
				mu.Lock()
				insertedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, insertedCount)
	dataset, err := store.ReadDataset(ctx)
	require.NoError(t, err)
	require.Len(t, dataset.News, 1)
}

func TestSQLiteStoreSentimentWrittenOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	article := testArticle("https://example.com/a", "2024-05-01T10:00:00Z")
	_, err := store.InsertNewsIfAbsent(ctx, article)
	require.NoError(t, err)

	scoredAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	updated, err := store.UpdateNewsSentiment(ctx, article.ID, domain.Sentiment{
		Label: domain.SentimentPositive, Score: 0.91, Model: "heuristic", ScoredAt: scoredAt,
	})
	require.NoError(t, err)
	require.True(t, updated)

	updated, err = store.UpdateNewsSentiment(ctx, article.ID, domain.Sentiment{
		Label: domain.SentimentNegative, Score: 0.99, Model: "other", ScoredAt: scoredAt.Add(time.Hour),
	})
	require.NoError(t, err)
	require.False(t, updated)

	dataset, err := store.ReadDataset(ctx)
	require.NoError(t, err)
	require.Len(t, dataset.News, 1)
	got := dataset.News[0].Sentiment
	require.NotNil(t, got)
	require.Equal(t, domain.SentimentPositive, got.Label)
	require.InDelta(t, 0.91, got.Score, 1e-9)
	require.Equal(t, "heuristic", got.Model)
	require.True(t, got.ScoredAt.Equal(scoredAt))
}

func TestSQLiteStoreReadDatasetOrdersByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.InsertNewsIfAbsent(ctx, testArticle(fmt.Sprintf("https://example.com/%d", i), "2024-05-01T10:00:00Z"))
		require.NoError(t, err)
	}
	dataset, err := store.ReadDataset(ctx)
	require.NoError(t, err)
	require.Len(t, dataset.News, 3)
	for i := 1; i < len(dataset.News); i++ {
		require.Less(t, dataset.News[i-1].ID, dataset.News[i].ID)
	}
}
