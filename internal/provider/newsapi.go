package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"daily-btc/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	newsAPIBaseURL = "https://newsapi.org"
	newsTimeLayout = "2006-01-02T15:04:05"
)

// NewsAPIProvider searches the NewsAPI "everything" endpoint.
type NewsAPIProvider struct {
	upstream
	baseURL  string
	apiKey   string
	query    string
	language string
	tracer   trace.Tracer
}

// NewsBatch is one page of articles. Skipped counts articles dropped for a
// missing url or an unparsable publish time.
type NewsBatch struct {
	Articles []domain.NewsArticle
	Skipped  int
}

// NewNewsAPIProvider creates a provider searching titles and descriptions for query.
func NewNewsAPIProvider(tracer trace.Tracer, query, language string, opts Options) *NewsAPIProvider {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = newsAPIBaseURL
	}
	if language == "" {
		language = "en"
	}
	return &NewsAPIProvider{
		upstream: newUpstream("newsapi", opts, NewRateLimiter(2, time.Second)),
		baseURL:  baseURL,
		apiKey:   opts.APIKey,
		query:    query,
		language: language,
		tracer:   tracer,
	}
}

type newsEnvelope struct {
	Status   string         `json:"status"`
	Articles *[]newsArticle `json:"articles" validate:"required"`
}

type newsArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
}

// FetchNews returns articles published in [from, to].
func (p *NewsAPIProvider) FetchNews(ctx context.Context, from, to time.Time) (*NewsBatch, error) {
	ctx, span := p.tracer.Start(ctx, "newsapi.fetch-news")
	defer span.End()

	params := url.Values{}
	params.Set("q", p.query)
	params.Set("searchIn", "title,description")
	params.Set("language", p.language)
	params.Set("from", from.UTC().Format(newsTimeLayout))
	params.Set("to", to.UTC().Format(newsTimeLayout))
	endpoint := fmt.Sprintf("%s/v2/everything?%s", p.baseURL, params.Encode())

	body, err := p.get(ctx, endpoint, map[string]string{"X-Api-Key": p.apiKey})
	if err != nil {
		return nil, fmt.Errorf("fetch news for %q: %w", p.query, err)
	}

	batch, err := parseNews(body)
	if err != nil {
		return nil, err
	}
	if batch.Skipped > 0 {
		p.logger.Info("skipped malformed articles",
			zap.String("query", p.query),
			zap.Int("skipped", batch.Skipped),
		)
	}
	return batch, nil
}

func parseNews(body []byte) (*NewsBatch, error) {
	var raw newsEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse news: %w: %w", domain.ErrMalformedPayload, err)
	}
	if err := validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("news envelope: %w: %w", domain.ErrMalformedPayload, err)
	}

	batch := &NewsBatch{Articles: make([]domain.NewsArticle, 0, len(*raw.Articles))}
	for _, row := range *raw.Articles {
		link := strings.TrimSpace(row.URL)
		published := strings.TrimSpace(row.PublishedAt)
		if link == "" || domain.ParseTimestamp(published).IsZero() {
			batch.Skipped++
			continue
		}
		batch.Articles = append(batch.Articles, domain.NewsArticle{
			SourceName:         sanitizeText(row.Source.Name, 120),
			Author:             sanitizeText(deref(row.Author), 200),
			Title:              sanitizeText(htmlStrip(deref(row.Title)), 500),
			Description:        sanitizeText(htmlStrip(deref(row.Description)), 2000),
			URLToPost:          link,
			URLToImage:         strings.TrimSpace(deref(row.URLToImage)),
			PublishedTimestamp: published,
			PublishedDate:      domain.DateBucket(published),
		})
	}
	return batch, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
