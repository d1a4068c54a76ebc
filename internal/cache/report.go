package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"daily-btc/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const DefaultReportKey = "daily-btc:dashboard:report"

// KV is the subset of redis.Cmdable the cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ReportCache stores the last good dashboard report as JSON so a restarted
// process can serve it before the first aggregation completes.
type ReportCache struct {
	client KV
	key    string
	ttl    time.Duration
	tracer trace.Tracer
}

func NewReportCache(tracer trace.Tracer, client KV, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, key: DefaultReportKey, ttl: ttl, tracer: tracer}
}

func (c *ReportCache) SaveReport(ctx context.Context, report *domain.DashboardReport) error {
	ctx, span := c.tracer.Start(ctx, "cache.save_report")
	defer span.End()

	if report == nil {
		return nil
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.client.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}

// LoadReport returns nil, nil when nothing is cached.
func (c *ReportCache) LoadReport(ctx context.Context) (*domain.DashboardReport, error) {
	ctx, span := c.tracer.Start(ctx, "cache.load_report")
	defer span.End()

	payload, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", c.key, err)
	}

	var report domain.DashboardReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}
