package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"daily-btc/internal/config"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestMainBootstrapStdio(t *testing.T) {
	restore := stubMCPDeps(&config.Config{DBPath: ":memory:", MCPTransport: "stdio"})
	defer restore()

	var ran bool
	runStdioFunc = func(ctx context.Context, server *mcp.Server) error {
		ran = server != nil
		return nil
	}

	runMain(t)
	if !ran {
		t.Fatal("expected stdio transport to run")
	}
}

func TestMainBootstrapHTTP(t *testing.T) {
	restore := stubMCPDeps(&config.Config{
		DBPath:             ":memory:",
		RedisURL:           "localhost:6379",
		MCPTransport:       "http",
		MCPHTTPBind:        "127.0.0.1",
		MCPHTTPPort:        8090,
		MCPRateLimitPerMin: 60,
	})
	defer restore()

	var addr string
	startHTTPFunc = func(srv *http.Server) error {
		addr = srv.Addr
		return http.ErrServerClosed
	}

	runMain(t)
	if addr != "127.0.0.1:8090" {
		t.Fatalf("unexpected addr %q", addr)
	}
}

func TestServeHTTPShutsDownOnCancel(t *testing.T) {
	restore := stubMCPDeps(&config.Config{})
	defer restore()

	started := make(chan struct{})
	startHTTPFunc = func(srv *http.Server) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		return http.ErrServerClosed
	}

	ctx, cancel := context.WithCancel(context.Background())
	cfg := &config.Config{MCPTransport: "http", MCPHTTPBind: "127.0.0.1", MCPHTTPPort: 0}
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, cfg, mcp.NewServer(&mcp.Implementation{Name: "t", Version: "v0"}, nil), zap.NewNop())
	}()

	<-started
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func runMain(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func stubMCPDeps(cfg *config.Config) func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origRunStdio := runStdioFunc
	origStartHTTP := startHTTPFunc
	origSetupSignal := setupSignalNotify

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config { return cfg }
	initRedisFunc = func(context.Context, string) (*redis.Client, error) {
		return redis.NewClient(&redis.Options{Addr: "localhost:6379"}), nil
	}
	initTracerFunc = func(ctx context.Context, name string) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		runStdioFunc = origRunStdio
		startHTTPFunc = origStartHTTP
		setupSignalNotify = origSetupSignal
	}
}
