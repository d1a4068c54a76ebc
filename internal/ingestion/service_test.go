package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"daily-btc/internal/db"
	"daily-btc/internal/domain"
	"daily-btc/internal/provider"
	"daily-btc/internal/repository"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

type stubStatus struct {
	status *domain.StatusSnapshot
	err    error
}

func (s *stubStatus) FetchStatus(ctx context.Context) (*domain.StatusSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.status
	return &copied, nil
}

type stubNews struct {
	articles []domain.NewsArticle
	skipped  int
	err      error
	from, to time.Time
}

func (s *stubNews) FetchNews(ctx context.Context, from, to time.Time) (*provider.NewsBatch, error) {
	s.from, s.to = from, to
	if s.err != nil {
		return nil, s.err
	}
	return &provider.NewsBatch{Articles: append([]domain.NewsArticle(nil), s.articles...), Skipped: s.skipped}, nil
}

func price(v float64) *float64 { return &v }

func newTestService(t *testing.T, status *stubStatus, news *stubNews) (*Service, *repository.SQLiteStore) {
	t.Helper()
	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	store := repository.NewSQLiteStore(conn, tracer)
	t.Cleanup(store.Close)
	require.NoError(t, store.RunMigrations(context.Background()))

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(tracer, status, news, store, NewVersioner(now), 24*time.Hour, nil)
	svc.now = func() time.Time { return now }
	return svc, store
}

func article(url string) domain.NewsArticle {
	return domain.NewsArticle{
		SourceName:         "Wire",
		Title:              "Bitcoin " + url,
		Description:        "desc",
		URLToPost:          url,
		PublishedTimestamp: "2024-05-01T09:00:00Z",
		PublishedDate:      "2024-05-01",
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	status := &stubStatus{status: &domain.StatusSnapshot{
		PriceUSD:             price(64000),
		LastUpdatedTimestamp: "2024-05-01T11:59:00.000Z",
		LastUpdatedDate:      "2024-05-01",
	}}
	news := &stubNews{articles: []domain.NewsArticle{article("https://x/1"), article("https://x/2")}, skipped: 1}
	svc, _ := newTestService(t, status, news)
	ctx := context.Background()

	first, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.True(t, first.StatusInserted)
	require.Equal(t, 2, first.NewsInserted)
	require.Equal(t, 1, first.NewsSkipped)
	require.Equal(t, uint64(1), first.Version)
	require.NotEmpty(t, first.RunID)

	before, err := svc.Dataset(ctx)
	require.NoError(t, err)

	second, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.True(t, second.StatusDuplicate)
	require.Equal(t, 0, second.NewsInserted)
	require.Equal(t, 2, second.NewsDuplicates)
	require.NotEqual(t, first.RunID, second.RunID)

	after, err := svc.Dataset(ctx)
	require.NoError(t, err)
	require.Equal(t, before.Statuses, after.Statuses)
	require.Equal(t, before.News, after.News)
	require.Equal(t, uint64(1), second.Version)
	require.Equal(t, before.Version, after.Version)
	require.Equal(t, before.AsOf, after.AsOf)
}

func TestRefreshPublishesOnlyWhenRowsChange(t *testing.T) {
	status := &stubStatus{status: &domain.StatusSnapshot{LastUpdatedTimestamp: "2024-05-01T11:59:00Z", LastUpdatedDate: "2024-05-01"}}
	news := &stubNews{articles: []domain.NewsArticle{article("https://x/1")}}
	svc, _ := newTestService(t, status, news)
	ctx := context.Background()
	updates := svc.Versioner().Subscribe()

	first, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), first.Version)
	require.Equal(t, uint64(1), <-updates)

	unchanged, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), unchanged.Version)
	select {
	case v := <-updates:
		t.Fatalf("unexpected version %d for an unchanged dataset", v)
	default:
	}

	news.articles = append(news.articles, article("https://x/2"))
	grown, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, grown.NewsInserted)
	require.Equal(t, uint64(2), grown.Version)
}

func TestRefreshPublishesRowsLeftByAbortedCycle(t *testing.T) {
	status := &stubStatus{status: &domain.StatusSnapshot{LastUpdatedTimestamp: "2024-05-01T11:59:00Z", LastUpdatedDate: "2024-05-01"}}
	news := &stubNews{err: domain.ErrUpstreamUnavailable}
	svc, _ := newTestService(t, status, news)
	ctx := context.Background()

	_, err := svc.Refresh(ctx)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	news.err = nil
	result, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.True(t, result.StatusDuplicate)
	require.Zero(t, result.NewsInserted)
	require.Equal(t, uint64(1), result.Version)
}

func TestRefreshDedupsNewsByURL(t *testing.T) {
	status := &stubStatus{status: &domain.StatusSnapshot{LastUpdatedTimestamp: "2024-05-01T11:59:00Z", LastUpdatedDate: "2024-05-01"}}
	a := article("https://x/same")
	b := article("https://x/same")
	b.Title = "Rewritten headline"
	news := &stubNews{articles: []domain.NewsArticle{a, b}}
	svc, _ := newTestService(t, status, news)

	result, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.NewsInserted)
	require.Equal(t, 1, result.NewsDuplicates)

	dataset, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	require.Len(t, dataset.News, 1)
}

func TestRefreshRequestsLookbackWindow(t *testing.T) {
	status := &stubStatus{status: &domain.StatusSnapshot{LastUpdatedTimestamp: "2024-05-01T11:59:00Z", LastUpdatedDate: "2024-05-01"}}
	news := &stubNews{}
	svc, _ := newTestService(t, status, news)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, news.to.Sub(news.from))
}

func TestRefreshStatusFailureAbortsWithoutVersion(t *testing.T) {
	status := &stubStatus{err: domain.ErrUpstreamUnavailable}
	svc, _ := newTestService(t, status, &stubNews{})

	_, err := svc.Refresh(context.Background())
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	version, _ := svc.Versioner().Current()
	require.Zero(t, version)
}

func TestRefreshNewsFailureKeepsSnapshot(t *testing.T) {
	status := &stubStatus{status: &domain.StatusSnapshot{LastUpdatedTimestamp: "2024-05-01T11:59:00Z", LastUpdatedDate: "2024-05-01"}}
	news := &stubNews{err: errors.Join(domain.ErrMalformedPayload, errors.New("no articles"))}
	svc, store := newTestService(t, status, news)

	result, err := svc.Refresh(context.Background())
	require.ErrorIs(t, err, domain.ErrMalformedPayload)
	require.True(t, result.StatusInserted)

	latest, err := store.LatestStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2024-05-01T11:59:00Z", latest.LastUpdatedTimestamp)

	version, _ := svc.Versioner().Current()
	require.Zero(t, version)
}
