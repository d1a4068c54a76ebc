package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestInitPostgresPropagatesConnectError(t *testing.T) {
	orig := newPool
	t.Cleanup(func() { newPool = orig })

	newPool = func(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
		return nil, errors.New("refused")
	}
	if _, err := InitPostgres(context.Background(), "postgres://nowhere"); err == nil {
		t.Fatal("expected connect error")
	}
}

func TestOpenSQLiteMemory(t *testing.T) {
	conn, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(`CREATE TABLE t (v INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := conn.Exec(`INSERT INTO t (v) VALUES (1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("expected one row, got %d (%v)", n, err)
	}
}

func TestOpenSQLiteFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "daily.db")
	conn, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conn.Close()
}
