package dashboard

import (
	"context"
	"errors"
	"fmt"

	"daily-btc/internal/domain"
)

type DatasetStore interface {
	ReadDataset(ctx context.Context) (*domain.Dataset, error)
}

// Reader serves the report to processes that do not run ingestion (the SSH
// and MCP front ends). It prefers the report cached by the server and falls
// back to aggregating the store with the sentiments already persisted.
type Reader struct {
	cache  ReportCache
	store  DatasetStore
	layout Layout
}

func NewReader(cache ReportCache, store DatasetStore, layout Layout) *Reader {
	return &Reader{cache: cache, store: store, layout: layout}
}

// Report returns nil, nil when nothing has been ingested yet.
func (r *Reader) Report(ctx context.Context) (*domain.DashboardReport, error) {
	if r.cache != nil {
		report, err := r.cache.LoadReport(ctx)
		if err == nil && report != nil {
			return report, nil
		}
	}
	if r.store == nil {
		return nil, nil
	}

	dataset, err := r.store.ReadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	for _, status := range dataset.Statuses {
		if status.CreatedAt.After(dataset.AsOf) {
			dataset.AsOf = status.CreatedAt
		}
	}

	report, err := Aggregate(dataset, r.layout)
	if errors.Is(err, domain.ErrNoSnapshots) {
		return nil, nil
	}
	return report, err
}
