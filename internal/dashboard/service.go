package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"daily-btc/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Enricher interface {
	Enrich(ctx context.Context, news []domain.NewsArticle) []domain.NewsArticle
}

// ReportCache keeps the last good report across restarts.
type ReportCache interface {
	SaveReport(ctx context.Context, report *domain.DashboardReport) error
	LoadReport(ctx context.Context) (*domain.DashboardReport, error)
}

// Service owns the current report. Readers never wait on aggregation: the
// new report is built outside the lock and swapped in.
type Service struct {
	enricher Enricher
	layout   Layout
	cache    ReportCache
	tracer   trace.Tracer
	logger   *zap.Logger

	refresh sync.Mutex
	mu      sync.RWMutex
	report  *domain.DashboardReport
}

func NewService(tracer trace.Tracer, enricher Enricher, layout Layout, cache ReportCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		enricher: enricher,
		layout:   layout,
		cache:    cache,
		tracer:   tracer,
		logger:   logger,
	}
}

// Refresh rebuilds the report from dataset. On failure the previous report
// stays current and the error is returned.
func (s *Service) Refresh(ctx context.Context, dataset *domain.Dataset) (*domain.DashboardReport, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.refresh")
	defer span.End()

	s.refresh.Lock()
	defer s.refresh.Unlock()

	if dataset == nil {
		dataset = &domain.Dataset{}
	}
	span.SetAttributes(
		attribute.Int64("dataset.version", int64(dataset.Version)),
		attribute.Int("dataset.statuses", len(dataset.Statuses)),
		attribute.Int("dataset.news", len(dataset.News)),
	)

	enriched := *dataset
	if s.enricher != nil {
		enriched.News = s.enricher.Enrich(ctx, dataset.News)
	}

	report, err := Aggregate(&enriched, s.layout)
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshots) {
			s.logger.Info("dashboard refresh skipped, no snapshots yet", zap.Uint64("version", dataset.Version))
		} else {
			s.logger.Error("dashboard refresh failed", zap.Error(err))
		}
		span.RecordError(err)
		return nil, fmt.Errorf("aggregate dataset: %w", err)
	}

	s.mu.Lock()
	s.report = report
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.SaveReport(ctx, report); err != nil {
			s.logger.Warn("cache dashboard report", zap.Error(err))
		}
	}

	s.logger.Info("dashboard refreshed",
		zap.Uint64("version", report.DatasetVersion),
		zap.Int("days", len(report.Days)),
		zap.Int("articles", len(enriched.News)),
	)
	return report, nil
}

// Current returns the last good report, or nil before the first successful
// refresh.
func (s *Service) Current() *domain.DashboardReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Restore seeds the current report from the cache. It is a no-op when a
// report is already held or no cache is configured.
func (s *Service) Restore(ctx context.Context) bool {
	if s.cache == nil {
		return false
	}
	ctx, span := s.tracer.Start(ctx, "dashboard.restore")
	defer span.End()

	report, err := s.cache.LoadReport(ctx)
	if err != nil {
		s.logger.Warn("restore dashboard report", zap.Error(err))
		return false
	}
	if report == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report != nil {
		return false
	}
	s.report = report
	s.logger.Info("dashboard report restored from cache", zap.Uint64("version", report.DatasetVersion))
	return true
}
