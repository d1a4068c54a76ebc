package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"daily-btc/internal/domain"

	"github.com/stretchr/testify/require"
)

type stubDatasetStore struct {
	dataset *domain.Dataset
	err     error
}

func (s *stubDatasetStore) ReadDataset(ctx context.Context) (*domain.Dataset, error) {
	return s.dataset, s.err
}

func TestReaderPrefersCache(t *testing.T) {
	cached := &domain.DashboardReport{DatasetVersion: 5}
	reader := NewReader(&memoryCache{saved: cached}, &stubDatasetStore{err: errors.New("unused")}, DefaultLayout())

	report, err := reader.Report(context.Background())
	require.NoError(t, err)
	require.Same(t, cached, report)
}

func TestReaderFallsBackToStore(t *testing.T) {
	status := snapshot(1, "2024-05-20T10:00:00Z", 67000, 1)
	status.CreatedAt = asOf
	article := scored(1, "stored", asOf.Add(-time.Hour), 0.7)
	store := &stubDatasetStore{dataset: &domain.Dataset{
		Statuses: []domain.StatusSnapshot{status},
		News:     []domain.NewsArticle{article},
	}}
	reader := NewReader(&memoryCache{loadErr: errors.New("redis down")}, store, DefaultLayout())

	report, err := reader.Report(context.Background())
	require.NoError(t, err)
	require.Equal(t, asOf, report.AsOf)
	require.Equal(t, "stored", report.News.Today.URLToPost)
}

func TestReaderEmptyStore(t *testing.T) {
	reader := NewReader(nil, &stubDatasetStore{dataset: &domain.Dataset{}}, DefaultLayout())

	report, err := reader.Report(context.Background())
	require.NoError(t, err)
	require.Nil(t, report)
}
