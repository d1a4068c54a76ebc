package sentiment

import (
	"context"
	"sync"
	"time"

	"daily-btc/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SentimentWriter interface {
	UpdateNewsSentiment(ctx context.Context, articleID int64, sentiment domain.Sentiment) (bool, error)
}

// Enricher attaches a sentiment to every classifiable article. Each article
// is classified at most once per process: results are cached by article id
// and written back to the store, and articles loaded with a stored sentiment
// are never sent to the classifier.
type Enricher struct {
	scorer *Scorer
	writer SentimentWriter
	tracer trace.Tracer
	logger *zap.Logger
	now    func() time.Time

	// run serializes Enrich so concurrent refreshes cannot classify the
	// same article twice.
	run   sync.Mutex
	mu    sync.RWMutex
	cache map[int64]domain.Sentiment
}

func NewEnricher(tracer trace.Tracer, scorer *Scorer, writer SentimentWriter, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		scorer: scorer,
		writer: writer,
		tracer: tracer,
		logger: logger,
		now:    time.Now,
		cache:  make(map[int64]domain.Sentiment),
	}
}

// Enrich returns a copy of news with sentiments attached. Articles missing a
// title or description are left unlabelled.
func (e *Enricher) Enrich(ctx context.Context, news []domain.NewsArticle) []domain.NewsArticle {
	ctx, span := e.tracer.Start(ctx, "sentiment.enrich")
	defer span.End()

	e.run.Lock()
	defer e.run.Unlock()

	out := make([]domain.NewsArticle, len(news))
	copy(out, news)

	pending := make([]Input, 0)
	pendingIdx := make(map[int64]int)

	e.mu.Lock()
	for i := range out {
		article := &out[i]
		if article.Sentiment != nil {
			e.cache[article.ID] = *article.Sentiment
			continue
		}
		if cached, ok := e.cache[article.ID]; ok {
			s := cached
			article.Sentiment = &s
			continue
		}
		text, ok := article.ContentPreview()
		if !ok {
			continue
		}
		if _, queued := pendingIdx[article.ID]; queued {
			continue
		}
		pendingIdx[article.ID] = i
		pending = append(pending, Input{ArticleID: article.ID, Text: text})
	}
	e.mu.Unlock()

	if len(pending) == 0 {
		return out
	}

	results := e.scorer.Score(ctx, pending)
	scoredAt := e.now().UTC()

	e.mu.Lock()
	for _, res := range results {
		s := domain.Sentiment{Label: res.Label, Score: res.Score, Model: res.Model, ScoredAt: scoredAt}
		e.cache[res.ArticleID] = s
		attached := s
		out[pendingIdx[res.ArticleID]].Sentiment = &attached
	}
	e.mu.Unlock()

	persisted := 0
	for _, res := range results {
		if e.writer == nil {
			break
		}
		s := *out[pendingIdx[res.ArticleID]].Sentiment
		updated, err := e.writer.UpdateNewsSentiment(ctx, res.ArticleID, s)
		if err != nil {
			e.logger.Warn("persist sentiment failed",
				zap.Int64("article_id", res.ArticleID),
				zap.Error(err),
			)
			continue
		}
		if updated {
			persisted++
		}
	}

	e.logger.Info("classified news",
		zap.Int("classified", len(results)),
		zap.Int("persisted", persisted),
	)
	return out
}

// Cached reports how many article sentiments are held in memory.
func (e *Enricher) Cached() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
