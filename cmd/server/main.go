package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily-btc/internal/bot"
	"daily-btc/internal/cache"
	"daily-btc/internal/config"
	"daily-btc/internal/dashboard"
	"daily-btc/internal/handler"
	"daily-btc/internal/ingestion"
	"daily-btc/internal/job"
	"daily-btc/internal/logging"
	"daily-btc/internal/provider"
	"daily-btc/internal/repository"
	"daily-btc/internal/sentiment"
	"daily-btc/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	_ "daily-btc/docs"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	initTracerFunc       = tracing.InitTracer
	openStoreFunc        = repository.Open
	initRedisFunc        = cache.InitRedis
	newStatusFetcherFunc = func(tracer trace.Tracer, cfg *config.Config, opts provider.Options) ingestion.StatusFetcher {
		opts.BaseURL = cfg.CoinGeckoBaseURL
		opts.APIKey = cfg.CoinGeckoAPIKey
		return provider.NewCoinGeckoProvider(tracer, cfg.CoinID, cfg.CoinGeckoPro, opts)
	}
	newNewsFetcherFunc = func(tracer trace.Tracer, cfg *config.Config, opts provider.Options) ingestion.NewsFetcher {
		opts.BaseURL = cfg.NewsAPIBaseURL
		opts.APIKey = cfg.NewsAPIKey
		return provider.NewNewsAPIProvider(tracer, cfg.NewsQuery, cfg.NewsLanguage, opts)
	}
	startIngestionJobFunc = func(j scheduledJob, ctx context.Context, logger *zap.Logger) {
		go func() {
			if err := j.Start(ctx); err != nil {
				logger.Error("ingestion job did not start", zap.String("spec", j.Spec()), zap.Error(err))
			}
		}()
	}
	startDashboardJobFunc  = func(j *job.DashboardJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

type scheduledJob interface {
	Start(ctx context.Context) error
	Spec() string
}

// @title           The Daily BTC API
// @version         1.0
// @description     Market, social and news dashboard for one tracked coin.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()

	logger := logging.Must(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, "daily-btc")
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Store (Postgres or SQLite) with schema applied
	store, err := openStoreFunc(ctx, cfg, tracer)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()
	logger.Info("store ready", zap.Bool("postgres", cfg.UsesPostgres()))

	// Optional Redis report cache
	var reportCache dashboard.ReportCache
	if cfg.RedisURL != "" {
		client, err := initRedisFunc(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, report cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			reportCache = cache.NewReportCache(tracer, client, 0)
		}
	}

	layout, err := dashboard.LoadLayout(cfg.LayoutFile)
	if err != nil {
		logger.Warn("invalid dashboard layout, using defaults", zap.Error(err))
	}

	// Ingestion
	upstream := provider.Options{
		Timeout:       time.Duration(cfg.UpstreamTimeoutSecs) * time.Second,
		RetryAttempts: cfg.UpstreamRetryAttempts,
		RetryDelay:    time.Duration(cfg.UpstreamRetryDelaySecs) * time.Second,
		Logger:        logger.Named("provider"),
	}
	versioner := ingestion.NewVersioner(time.Now())
	ingestService := ingestion.NewService(
		tracer,
		newStatusFetcherFunc(tracer, cfg, upstream),
		newNewsFetcherFunc(tracer, cfg, upstream),
		store,
		versioner,
		time.Duration(cfg.NewsLookbackHrs)*time.Hour,
		logger.Named("ingestion"),
	)

	// Aggregation & presentation
	var llm sentiment.BatchClassifier
	if classifier := sentiment.NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.OpenAIModel); classifier != nil {
		llm = classifier
	}
	scorer := sentiment.NewScorer(llm, 0, logger.Named("sentiment"))
	enricher := sentiment.NewEnricher(tracer, scorer, store, logger.Named("sentiment"))
	dashService := dashboard.NewService(tracer, enricher, layout, reportCache, logger.Named("dashboard"))
	dashService.Restore(ctx)

	// Background jobs, stopped by ctx cancel
	startIngestionJobFunc(job.NewIngestionJob(tracer, ingestService, cfg.IngestIntervalSecs, logger.Named("job")), ctx, logger)
	startDashboardJobFunc(job.NewDashboardJob(
		tracer,
		ingestService,
		versioner,
		dashService,
		time.Duration(cfg.DashboardPollSecs)*time.Second,
		logger.Named("job"),
	), ctx)

	// Start Telegram bot
	telegram, err := startTelegramBotFunc(cfg.TelegramBotToken, dashService, logger.Named("telegram"))
	if err != nil {
		logger.Error("failed to start Telegram bot", zap.Error(err))
	}

	// Create handlers and routes
	h := handler.New(tracer, dashService, store, ingestService, cfg.APIKey, logger.Named("http"))

	r := newRouterFunc()
	r.Use(otelgin.Middleware("daily-btc"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info("shutting down server")

	cancel()
	if telegram != nil {
		telegram.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
