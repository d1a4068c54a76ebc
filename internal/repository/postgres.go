package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daily-btc/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

type PostgresStore struct {
	pool   PgxPool
	tracer trace.Tracer
	now    func() time.Time
}

func NewPostgresStore(pool PgxPool, tracer trace.Tracer) *PostgresStore {
	return &PostgresStore{pool: pool, tracer: tracer, now: time.Now}
}

func (r *PostgresStore) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "postgres-store.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createPostgresSchema)
	return err
}

func (r *PostgresStore) InsertStatusIfAbsent(ctx context.Context, status *domain.StatusSnapshot) (bool, error) {
	_, span := r.tracer.Start(ctx, "postgres-store.insert-status")
	defer span.End()

	return r.insertIfAbsent(ctx,
		`SELECT EXISTS (SELECT 1 FROM statuses WHERE last_updated_timestamp = $1)`,
		status.LastUpdatedTimestamp,
		`INSERT INTO statuses (
    block_time_in_minutes, market_cap_rank, price_usd, ath_usd, ath_date, atl_usd, atl_date,
    market_cap_usd, fully_diluted_valuation_usd, total_volume_usd, circulating_supply, max_supply,
    last_updated_timestamp, last_updated_date, twitter_followers_count, github_total_issues_count,
    github_closed_issues_count, github_pull_requests_merged_count, github_pull_request_contributors_count,
    created_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7,
    $8, $9, $10, $11, $12,
    $13, $14, $15, $16,
    $17, $18, $19,
    $20
)
ON CONFLICT (last_updated_timestamp) DO NOTHING
RETURNING id`,
		statusArgs(status, r.now().UTC()),
		&status.ID,
	)
}

func (r *PostgresStore) InsertNewsIfAbsent(ctx context.Context, article *domain.NewsArticle) (bool, error) {
	_, span := r.tracer.Start(ctx, "postgres-store.insert-news")
	defer span.End()

	return r.insertIfAbsent(ctx,
		`SELECT EXISTS (SELECT 1 FROM news WHERE url_to_post = $1)`,
		article.URLToPost,
		`INSERT INTO news (
    source_name, author, title, description, url_to_post, url_to_image,
    published_timestamp, published_date, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (url_to_post) DO NOTHING
RETURNING id`,
		newsArgs(article, r.now().UTC()),
		&article.ID,
	)
}

// insertIfAbsent runs the existence check and the insert in one short
// transaction. The unique index covers writers racing past the check.
func (r *PostgresStore) insertIfAbsent(ctx context.Context, existsSQL string, key any, insertSQL string, args []any, id *int64) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, existsSQL, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		return false, nil
	}

	if err := tx.QueryRow(ctx, insertSQL, args...).Scan(id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

func (r *PostgresStore) UpdateNewsSentiment(ctx context.Context, articleID int64, sentiment domain.Sentiment) (bool, error) {
	_, span := r.tracer.Start(ctx, "postgres-store.update-news-sentiment")
	defer span.End()

	tag, err := r.pool.Exec(ctx, `
UPDATE news
SET sentiment_label = $2,
    sentiment_score = $3,
    sentiment_model = $4,
    scored_at = $5
WHERE id = $1 AND scored_at IS NULL`,
		articleID, string(sentiment.Label), sentiment.Score, sentiment.Model, sentiment.ScoredAt.UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresStore) ReadDataset(ctx context.Context) (*domain.Dataset, error) {
	_, span := r.tracer.Start(ctx, "postgres-store.read-dataset")
	defer span.End()

	statuses, err := r.queryStatuses(ctx, `SELECT `+statusColumns+` FROM statuses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read statuses: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+newsColumns+` FROM news ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read news: %w", err)
	}
	defer rows.Close()

	news := make([]domain.NewsArticle, 0)
	for rows.Next() {
		article, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		news = append(news, article)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.Dataset{Statuses: statuses, News: news}, nil
}

func (r *PostgresStore) LatestStatus(ctx context.Context) (*domain.StatusSnapshot, error) {
	_, span := r.tracer.Start(ctx, "postgres-store.latest-status")
	defer span.End()

	status, err := scanStatus(r.pool.QueryRow(ctx, `SELECT `+statusColumns+` FROM statuses ORDER BY id DESC LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoSnapshots
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *PostgresStore) Close() {
	r.pool.Close()
}

func (r *PostgresStore) queryStatuses(ctx context.Context, sql string) ([]domain.StatusSnapshot, error) {
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.StatusSnapshot, 0)
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, rows.Err()
}
