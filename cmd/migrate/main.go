package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"daily-btc/internal/config"
	"daily-btc/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	cmdUp      = "up"
	cmdDown    = "down"
	cmdVersion = "version"
	cmdStatus  = "status"

	usage = "usage: go run ./cmd/migrate [up|down|version|status] [steps]"
)

// The SQLite store applies its schema on open; these files only cover Postgres.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	openPool       = pgxpool.New
)

type migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	logger := logging.Must(cfg.LogLevel, cfg.LogFormat).Named("migrate")
	defer func() { _ = logger.Sync() }()

	if len(os.Args) < 2 {
		logger.Fatal(usage)
	}
	if !cfg.UsesPostgres() {
		logger.Fatal("DATABASE_URL must be a postgres DSN", zap.String("db_path", cfg.DBPath))
	}

	ctx := context.Background()
	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := ensureMigrationTable(ctx, pool); err != nil {
		logger.Fatal("ensure schema_migrations table", zap.Error(err))
	}

	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		logger.Fatal("load migrations", zap.Error(err))
	}

	switch os.Args[1] {
	case cmdUp:
		applied, err := applyUp(ctx, pool, migrations)
		if err != nil {
			logger.Fatal("apply migrations up", zap.Int("applied", applied), zap.Error(err))
		}
		logger.Info("migrations up complete", zap.Int("applied", applied))
	case cmdDown:
		steps, err := parseSteps(os.Args[2:])
		if err != nil {
			logger.Fatal("invalid down steps", zap.Error(err))
		}
		rolledBack, err := applyDown(ctx, pool, migrations, steps)
		if err != nil {
			logger.Fatal("apply migrations down", zap.Int("rolled_back", rolledBack), zap.Error(err))
		}
		logger.Info("migrations down complete", zap.Int("rolled_back", rolledBack))
	case cmdVersion:
		version, name, err := currentVersion(ctx, pool)
		if err != nil {
			logger.Fatal("read current version", zap.Error(err))
		}
		if version == 0 {
			logger.Info("no migrations applied")
			return
		}
		logger.Info("current version", zap.Int64("version", version), zap.String("name", name))
	case cmdStatus:
		applied, err := loadAppliedVersions(ctx, pool)
		if err != nil {
			logger.Fatal("read applied versions", zap.Error(err))
		}
		todo := pending(migrations, applied)
		for _, m := range todo {
			logger.Info("pending", zap.Int64("version", m.Version), zap.String("name", m.Name))
		}
		logger.Info("migration status", zap.Int("applied", len(applied)), zap.Int("pending", len(todo)))
	default:
		logger.Fatal(usage, zap.String("command", os.Args[1]))
	}
}

// parseSteps reads the optional rollback count; one step when absent.
func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("steps must be a positive integer, got %q", args[0])
	}
	return n, nil
}

// pending returns the migrations not yet recorded, in version order.
func pending(migrations []migration, applied map[int64]struct{}) []migration {
	var out []migration
	for _, m := range migrations {
		if _, ok := applied[m.Version]; !ok {
			out = append(out, m)
		}
	}
	return out
}

func ensureMigrationTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version     BIGINT PRIMARY KEY,
    name        TEXT NOT NULL,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`)
	return err
}

func loadMigrations(fsys fs.FS) ([]migration, error) {
	paths, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("no migration files found")
	}

	re := regexp.MustCompile(`^migrations/([0-9]+)_([a-z0-9_]+)\.(up|down)\.sql$`)
	index := make(map[int64]*migration)

	for _, p := range paths {
		matches := re.FindStringSubmatch(p)
		if matches == nil {
			return nil, fmt.Errorf("invalid migration filename: %s", p)
		}

		version, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse version in %s: %w", p, err)
		}
		name := matches[2]
		direction := matches[3]

		sqlBytes, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", p, err)
		}
		sqlText := strings.TrimSpace(string(sqlBytes))
		if sqlText == "" {
			return nil, fmt.Errorf("empty migration file: %s", p)
		}

		m, ok := index[version]
		if !ok {
			m = &migration{Version: version, Name: name}
			index[version] = m
		} else if m.Name != name {
			return nil, fmt.Errorf("conflicting names for version %d: %s vs %s", version, m.Name, name)
		}

		switch direction {
		case "up":
			if m.UpSQL != "" {
				return nil, fmt.Errorf("duplicate up migration for version %d", version)
			}
			m.UpSQL = sqlText
		case "down":
			if m.DownSQL != "" {
				return nil, fmt.Errorf("duplicate down migration for version %d", version)
			}
			m.DownSQL = sqlText
		default:
			return nil, fmt.Errorf("invalid direction in migration: %s", p)
		}
	}

	migrations := make([]migration, 0, len(index))
	for _, m := range index {
		if m.UpSQL == "" || m.DownSQL == "" {
			return nil, fmt.Errorf("migration version %d must include both up and down files", m.Version)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

func loadAppliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[int64]struct{}, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}

	applied := make(map[int64]struct{}, len(versions))
	for _, v := range versions {
		applied[v] = struct{}{}
	}
	return applied, nil
}

// runStep executes one migration body and its bookkeeping statement in a
// single transaction.
func runStep(ctx context.Context, pool *pgxpool.Pool, body, bookkeeping string, m migration) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, body); err != nil {
			return err
		}
		args := []any{m.Version}
		if strings.HasPrefix(bookkeeping, "INSERT") {
			args = append(args, m.Name)
		}
		_, err := tx.Exec(ctx, bookkeeping, args...)
		return err
	})
}

func applyUp(ctx context.Context, pool *pgxpool.Pool, migrations []migration) (int, error) {
	appliedSet, err := loadAppliedVersions(ctx, pool)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range pending(migrations, appliedSet) {
		if err := runStep(ctx, pool, m.UpSQL, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m); err != nil {
			return applied, fmt.Errorf("version %d (%s) up: %w", m.Version, m.Name, err)
		}
		applied++
	}
	return applied, nil
}

func applyDown(ctx context.Context, pool *pgxpool.Pool, migrations []migration, steps int) (int, error) {
	if steps <= 0 {
		return 0, fmt.Errorf("steps must be > 0")
	}

	byVersion := make(map[int64]migration, len(migrations))
	for _, m := range migrations {
		byVersion[m.Version] = m
	}

	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations ORDER BY version DESC LIMIT $1`, steps)
	if err != nil {
		return 0, err
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, err
	}

	rolledBack := 0
	for _, version := range versions {
		m, ok := byVersion[version]
		if !ok {
			return rolledBack, fmt.Errorf("no migration source for applied version %d", version)
		}
		if err := runStep(ctx, pool, m.DownSQL, `DELETE FROM schema_migrations WHERE version = $1`, m); err != nil {
			return rolledBack, fmt.Errorf("version %d (%s) down: %w", m.Version, m.Name, err)
		}
		rolledBack++
	}
	return rolledBack, nil
}

func currentVersion(ctx context.Context, pool *pgxpool.Pool) (int64, string, error) {
	var version int64
	var name string
	err := pool.QueryRow(ctx, `SELECT version, name FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &name)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", nil
	}
	return version, name, err
}
