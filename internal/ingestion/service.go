package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"daily-btc/internal/domain"
	"daily-btc/internal/provider"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type StatusFetcher interface {
	FetchStatus(ctx context.Context) (*domain.StatusSnapshot, error)
}

type NewsFetcher interface {
	FetchNews(ctx context.Context, from, to time.Time) (*provider.NewsBatch, error)
}

type Store interface {
	InsertStatusIfAbsent(ctx context.Context, status *domain.StatusSnapshot) (bool, error)
	InsertNewsIfAbsent(ctx context.Context, article *domain.NewsArticle) (bool, error)
	ReadDataset(ctx context.Context) (*domain.Dataset, error)
}

// Service pulls one snapshot and the last day's news per cycle and stores
// whatever is new. Cycles never overlap.
type Service struct {
	status    StatusFetcher
	news      NewsFetcher
	store     Store
	versioner *Versioner
	lookback  time.Duration
	tracer    trace.Tracer
	logger    *zap.Logger
	now       func() time.Time

	mu sync.Mutex
	// unpublished is set once a row is stored and cleared when a version
	// covering it is published. Guarded by mu.
	unpublished bool
}

func NewService(tracer trace.Tracer, status StatusFetcher, news NewsFetcher, store Store, versioner *Versioner, lookback time.Duration, logger *zap.Logger) *Service {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		status:    status,
		news:      news,
		store:     store,
		versioner: versioner,
		lookback:  lookback,
		tracer:    tracer,
		logger:    logger,
		now:       time.Now,
	}
}

// Refresh runs one ingestion cycle. An upstream or malformed-payload failure
// aborts the cycle; rows stored before the failure stay. Only a completed
// cycle publishes a new dataset version, and only when rows were stored since
// the last published version.
func (s *Service) Refresh(ctx context.Context) (domain.IngestionResult, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.refresh")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	result := domain.IngestionResult{
		RunID:     uuid.NewString(),
		StartedAt: s.now().UTC(),
	}
	span.SetAttributes(attribute.String("run_id", result.RunID))
	log := s.logger.With(zap.String("run_id", result.RunID))

	status, err := s.status.FetchStatus(ctx)
	if err != nil {
		log.Warn("status fetch failed", zap.Error(err))
		return result, fmt.Errorf("refresh status: %w", err)
	}
	inserted, err := s.store.InsertStatusIfAbsent(ctx, status)
	if err != nil {
		return result, fmt.Errorf("store status: %w", err)
	}
	result.StatusInserted = inserted
	result.StatusDuplicate = !inserted
	if inserted {
		s.unpublished = true
	}

	to := s.now().UTC()
	batch, err := s.news.FetchNews(ctx, to.Add(-s.lookback), to)
	if err != nil {
		log.Warn("news fetch failed", zap.Error(err), zap.Bool("status_inserted", inserted))
		return result, fmt.Errorf("refresh news: %w", err)
	}
	result.NewsFetched = len(batch.Articles)
	result.NewsSkipped = batch.Skipped

	for i := range batch.Articles {
		article := &batch.Articles[i]
		inserted, err := s.store.InsertNewsIfAbsent(ctx, article)
		if err != nil {
			return result, fmt.Errorf("store news %s: %w", article.URLToPost, err)
		}
		if inserted {
			result.NewsInserted++
			s.unpublished = true
		} else {
			result.NewsDuplicates++
		}
	}

	if s.unpublished {
		result.Version = s.versioner.Publish(s.now())
		s.unpublished = false
	} else {
		result.Version, _ = s.versioner.Current()
	}
	log.Info("ingestion cycle complete",
		zap.Bool("status_inserted", result.StatusInserted),
		zap.Int("news_fetched", result.NewsFetched),
		zap.Int("news_inserted", result.NewsInserted),
		zap.Int("news_duplicates", result.NewsDuplicates),
		zap.Int("news_skipped", result.NewsSkipped),
		zap.Uint64("version", result.Version),
	)
	return result, nil
}

// Dataset reads the full store, stamped with the current version.
func (s *Service) Dataset(ctx context.Context) (*domain.Dataset, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.dataset")
	defer span.End()

	version, asOf := s.versioner.Current()
	dataset, err := s.store.ReadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	dataset.Version = version
	dataset.AsOf = asOf
	return dataset, nil
}

// Versioner exposes the token shared with the dashboard job.
func (s *Service) Versioner() *Versioner {
	return s.versioner
}
