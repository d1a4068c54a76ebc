package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"daily-btc/internal/cache"
	"daily-btc/internal/config"
	"daily-btc/internal/dashboard"
	"daily-btc/internal/logging"
	"daily-btc/internal/mcpserver"
	"daily-btc/internal/repository"
	"daily-btc/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	openStoreFunc     = repository.Open
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	runStdioFunc      = func(ctx context.Context, server *mcp.Server) error { return server.Run(ctx, &mcp.StdioTransport{}) }
	startHTTPFunc     = func(srv *http.Server) error { return srv.ListenAndServe() }
	setupSignalNotify = ossignal.Notify
)

// main serves the MCP tools over stdio (the default) or streamable HTTP.
// Logs go to stderr so they never corrupt the stdio protocol stream.
func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	logger := logging.Must(cfg.LogLevel, cfg.LogFormat).Named("mcp")
	defer func() { _ = logger.Sync() }()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-quit:
			stop()
		case <-ctx.Done():
		}
	}()

	tp, tracer, err := initTracerFunc(ctx, "daily-btc-mcp")
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	store, err := openStoreFunc(ctx, cfg, tracer)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	var reportCache dashboard.ReportCache
	if cfg.RedisURL != "" {
		client, err := initRedisFunc(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, aggregating from the store", zap.Error(err))
		} else {
			defer client.Close()
			reportCache = cache.NewReportCache(tracer, client, 0)
		}
	}

	layout, err := dashboard.LoadLayout(cfg.LayoutFile)
	if err != nil {
		logger.Warn("invalid dashboard layout, using defaults", zap.Error(err))
	}
	server := mcpserver.New(dashboard.NewReader(reportCache, store, layout), tracer, tracing.ServiceVersion)

	if err := serve(ctx, cfg, server, logger); err != nil {
		logger.Error("MCP server stopped", zap.Error(err))
	}
}

func serve(ctx context.Context, cfg *config.Config, server *mcp.Server, logger *zap.Logger) error {
	if cfg.MCPTransport != "http" {
		logger.Info("MCP server listening on stdio")
		err := runStdioFunc(ctx, server)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.MCPHTTPBind, cfg.MCPHTTPPort)
	if cfg.MCPAuthToken == "" {
		logger.Warn("MCP_AUTH_TOKEN not set, HTTP transport is unauthenticated", zap.String("addr", addr))
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           mcpserver.HTTPHandler(server, cfg.MCPAuthToken, cfg.MCPRateLimitPerMin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("MCP server listening", zap.String("addr", addr))
		errCh <- startHTTPFunc(srv)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
