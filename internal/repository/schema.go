package repository

const createPostgresSchema = `
CREATE TABLE IF NOT EXISTS statuses (
    id                                      BIGSERIAL        PRIMARY KEY,
    block_time_in_minutes                   BIGINT,
    market_cap_rank                         BIGINT,
    price_usd                               DOUBLE PRECISION,
    ath_usd                                 DOUBLE PRECISION,
    ath_date                                TEXT,
    atl_usd                                 DOUBLE PRECISION,
    atl_date                                TEXT,
    market_cap_usd                          DOUBLE PRECISION,
    fully_diluted_valuation_usd             DOUBLE PRECISION,
    total_volume_usd                        DOUBLE PRECISION,
    circulating_supply                      DOUBLE PRECISION,
    max_supply                              DOUBLE PRECISION,
    last_updated_timestamp                  TEXT             NOT NULL,
    last_updated_date                       TEXT             NOT NULL,
    twitter_followers_count                 BIGINT,
    github_total_issues_count               BIGINT,
    github_closed_issues_count              BIGINT,
    github_pull_requests_merged_count       BIGINT,
    github_pull_request_contributors_count  BIGINT,
    created_at                              TIMESTAMPTZ      NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_statuses_last_updated_timestamp
    ON statuses (last_updated_timestamp);

CREATE INDEX IF NOT EXISTS idx_statuses_last_updated_date
    ON statuses (last_updated_date);

CREATE TABLE IF NOT EXISTS news (
    id                   BIGSERIAL        PRIMARY KEY,
    source_name          TEXT,
    author               TEXT,
    title                TEXT,
    description          TEXT,
    url_to_post          TEXT             NOT NULL,
    url_to_image         TEXT,
    published_timestamp  TEXT             NOT NULL,
    published_date       TEXT             NOT NULL,
    sentiment_label      TEXT,
    sentiment_score      DOUBLE PRECISION,
    sentiment_model      TEXT,
    scored_at            TIMESTAMPTZ,
    created_at           TIMESTAMPTZ      NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_news_url_to_post
    ON news (url_to_post);

CREATE INDEX IF NOT EXISTS idx_news_published_date
    ON news (published_date);
`

// modernc's driver executes one statement per Exec, so the SQLite schema is a list.
var createSQLiteSchema = []string{
	`CREATE TABLE IF NOT EXISTS statuses (
    id                                      INTEGER  PRIMARY KEY AUTOINCREMENT,
    block_time_in_minutes                   INTEGER,
    market_cap_rank                         INTEGER,
    price_usd                               REAL,
    ath_usd                                 REAL,
    ath_date                                TEXT,
    atl_usd                                 REAL,
    atl_date                                TEXT,
    market_cap_usd                          REAL,
    fully_diluted_valuation_usd             REAL,
    total_volume_usd                        REAL,
    circulating_supply                      REAL,
    max_supply                              REAL,
    last_updated_timestamp                  TEXT     NOT NULL,
    last_updated_date                       TEXT     NOT NULL,
    twitter_followers_count                 INTEGER,
    github_total_issues_count               INTEGER,
    github_closed_issues_count              INTEGER,
    github_pull_requests_merged_count       INTEGER,
    github_pull_request_contributors_count  INTEGER,
    created_at                              DATETIME NOT NULL
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_statuses_last_updated_timestamp ON statuses (last_updated_timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_statuses_last_updated_date ON statuses (last_updated_date)`,
	`CREATE TABLE IF NOT EXISTS news (
    id                   INTEGER  PRIMARY KEY AUTOINCREMENT,
    source_name          TEXT,
    author               TEXT,
    title                TEXT,
    description          TEXT,
    url_to_post          TEXT     NOT NULL,
    url_to_image         TEXT,
    published_timestamp  TEXT     NOT NULL,
    published_date       TEXT     NOT NULL,
    sentiment_label      TEXT,
    sentiment_score      REAL,
    sentiment_model      TEXT,
    scored_at            DATETIME,
    created_at           DATETIME NOT NULL
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_news_url_to_post ON news (url_to_post)`,
	`CREATE INDEX IF NOT EXISTS idx_news_published_date ON news (published_date)`,
}
