package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"daily-btc/internal/domain"
	"daily-btc/internal/ingestion"

	"go.opentelemetry.io/otel/trace"
)

type stubReader struct {
	versions *ingestion.Versioner
	err      error
}

func (r *stubReader) Dataset(ctx context.Context) (*domain.Dataset, error) {
	if r.err != nil {
		return nil, r.err
	}
	version, asOf := r.versions.Current()
	return &domain.Dataset{Version: version, AsOf: asOf}, nil
}

type stubDashboard struct {
	mu       sync.Mutex
	versions []uint64
	err      error
}

func (d *stubDashboard) Refresh(ctx context.Context, dataset *domain.Dataset) (*domain.DashboardReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.versions = append(d.versions, dataset.Version)
	if d.err != nil {
		return nil, d.err
	}
	return &domain.DashboardReport{DatasetVersion: dataset.Version}, nil
}

func (d *stubDashboard) seen() []uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint64(nil), d.versions...)
}

func newTestDashboardJob(reader *stubReader, dashboard *stubDashboard, poll time.Duration) *DashboardJob {
	return NewDashboardJob(trace.NewNoopTracerProvider().Tracer("test"), reader, reader.versions, dashboard, poll, nil)
}

func TestDashboardJobRefreshesOnlyOnNewVersion(t *testing.T) {
	versions := ingestion.NewVersioner(time.Now())
	dashboard := &stubDashboard{}
	job := newTestDashboardJob(&stubReader{versions: versions}, dashboard, time.Minute)

	if !job.runOnce(context.Background()) {
		t.Fatal("expected first run to refresh")
	}
	if job.runOnce(context.Background()) {
		t.Fatal("expected unchanged version to be skipped")
	}

	versions.Publish(time.Now())
	if !job.runOnce(context.Background()) {
		t.Fatal("expected refresh after new version")
	}
	if got := dashboard.seen(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("unexpected refreshed versions: %v", got)
	}
}

func TestDashboardJobNoSnapshotsWaitsForNextVersion(t *testing.T) {
	versions := ingestion.NewVersioner(time.Now())
	dashboard := &stubDashboard{err: domain.ErrNoSnapshots}
	job := newTestDashboardJob(&stubReader{versions: versions}, dashboard, time.Minute)

	job.runOnce(context.Background())
	if job.runOnce(context.Background()) {
		t.Fatal("expected no retry until a new version is published")
	}
}

func TestDashboardJobRetriesAfterReadError(t *testing.T) {
	versions := ingestion.NewVersioner(time.Now())
	reader := &stubReader{versions: versions, err: errors.New("database is locked")}
	dashboard := &stubDashboard{}
	job := newTestDashboardJob(reader, dashboard, time.Minute)

	job.runOnce(context.Background())
	reader.err = nil
	if !job.runOnce(context.Background()) {
		t.Fatal("expected retry after read error")
	}
	if len(dashboard.seen()) != 1 {
		t.Fatalf("expected one refresh, got %v", dashboard.seen())
	}
}

func TestDashboardJobWakesOnPublish(t *testing.T) {
	versions := ingestion.NewVersioner(time.Now())
	dashboard := &stubDashboard{}
	job := newTestDashboardJob(&stubReader{versions: versions}, dashboard, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	eventually(t, func() bool { return len(dashboard.seen()) == 1 })
	versions.Publish(time.Now())
	eventually(t, func() bool { return len(dashboard.seen()) == 2 })

	cancel()
	<-done
}
