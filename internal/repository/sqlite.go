package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daily-btc/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// SQLiteStore is the embedded store used when no Postgres DSN is configured.
type SQLiteStore struct {
	db     *sql.DB
	tracer trace.Tracer
	now    func() time.Time
}

func NewSQLiteStore(db *sql.DB, tracer trace.Tracer) *SQLiteStore {
	return &SQLiteStore{db: db, tracer: tracer, now: time.Now}
}

func (r *SQLiteStore) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "sqlite-store.run-migrations")
	defer span.End()

	for _, stmt := range createSQLiteSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteStore) InsertStatusIfAbsent(ctx context.Context, status *domain.StatusSnapshot) (bool, error) {
	_, span := r.tracer.Start(ctx, "sqlite-store.insert-status")
	defer span.End()

	return r.insertIfAbsent(ctx,
		`SELECT EXISTS (SELECT 1 FROM statuses WHERE last_updated_timestamp = ?)`,
		status.LastUpdatedTimestamp,
		`INSERT INTO statuses (
    block_time_in_minutes, market_cap_rank, price_usd, ath_usd, ath_date, atl_usd, atl_date,
    market_cap_usd, fully_diluted_valuation_usd, total_volume_usd, circulating_supply, max_supply,
    last_updated_timestamp, last_updated_date, twitter_followers_count, github_total_issues_count,
    github_closed_issues_count, github_pull_requests_merged_count, github_pull_request_contributors_count,
    created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (last_updated_timestamp) DO NOTHING`,
		statusArgs(status, r.now().UTC()),
		&status.ID,
	)
}

func (r *SQLiteStore) InsertNewsIfAbsent(ctx context.Context, article *domain.NewsArticle) (bool, error) {
	_, span := r.tracer.Start(ctx, "sqlite-store.insert-news")
	defer span.End()

	return r.insertIfAbsent(ctx,
		`SELECT EXISTS (SELECT 1 FROM news WHERE url_to_post = ?)`,
		article.URLToPost,
		`INSERT INTO news (
    source_name, author, title, description, url_to_post, url_to_image,
    published_timestamp, published_date, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url_to_post) DO NOTHING`,
		newsArgs(article, r.now().UTC()),
		&article.ID,
	)
}

func (r *SQLiteStore) insertIfAbsent(ctx context.Context, existsSQL string, key any, insertSQL string, args []any, id *int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, existsSQL, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		return false, nil
	}

	res, err := tx.ExecContext(ctx, insertSQL, args...)
	if err != nil {
		return false, fmt.Errorf("insert: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, err
	}
	if *id, err = res.LastInsertId(); err != nil {
		return false, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

func (r *SQLiteStore) UpdateNewsSentiment(ctx context.Context, articleID int64, sentiment domain.Sentiment) (bool, error) {
	_, span := r.tracer.Start(ctx, "sqlite-store.update-news-sentiment")
	defer span.End()

	res, err := r.db.ExecContext(ctx, `
UPDATE news
SET sentiment_label = ?,
    sentiment_score = ?,
    sentiment_model = ?,
    scored_at = ?
WHERE id = ? AND scored_at IS NULL`,
		string(sentiment.Label), sentiment.Score, sentiment.Model, sentiment.ScoredAt.UTC(), articleID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteStore) ReadDataset(ctx context.Context) (*domain.Dataset, error) {
	_, span := r.tracer.Start(ctx, "sqlite-store.read-dataset")
	defer span.End()

	// Each query drains and closes its rows before the next one starts; an
	// in-memory database only has a single connection.
	statuses, err := r.readStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("read statuses: %w", err)
	}
	news, err := r.readNews(ctx)
	if err != nil {
		return nil, fmt.Errorf("read news: %w", err)
	}
	return &domain.Dataset{Statuses: statuses, News: news}, nil
}

func (r *SQLiteStore) readStatuses(ctx context.Context) ([]domain.StatusSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+statusColumns+` FROM statuses ORDER BY id`)
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

func (r *SQLiteStore) readNews(ctx context.Context) ([]domain.NewsArticle, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+newsColumns+` FROM news ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.NewsArticle, 0)
	for rows.Next() {
		article, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, article)
	}
	return out, rows.Err()
}

func (r *SQLiteStore) LatestStatus(ctx context.Context) (*domain.StatusSnapshot, error) {
	_, span := r.tracer.Start(ctx, "sqlite-store.latest-status")
	defer span.End()

	status, err := scanStatus(r.db.QueryRowContext(ctx, `SELECT `+statusColumns+` FROM statuses ORDER BY id DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoSnapshots
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *SQLiteStore) Close() {
	r.db.Close()
}
