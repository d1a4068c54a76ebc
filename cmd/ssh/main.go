package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"daily-btc/internal/cache"
	"daily-btc/internal/config"
	"daily-btc/internal/dashboard"
	"daily-btc/internal/logging"
	"daily-btc/internal/repository"
	"daily-btc/internal/tui"
	"daily-btc/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	wishlogging "github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	gossh "golang.org/x/crypto/ssh"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	openStoreFunc     = repository.Open
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	readFileFunc      = os.ReadFile
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	logger := logging.Must(cfg.LogLevel, cfg.LogFormat).Named("ssh")
	defer func() { _ = logger.Sync() }()
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, "daily-btc-ssh")
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down tracer provider", zap.Error(err))
		}
	}()

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
	reader := dashboard.NewReader(reportCache, store, layout)

	allowed, err := loadAuthorizedKeys(cfg.SSHAuthorizedKeys)
	if err != nil {
		logger.Fatal("failed to load authorized keys", zap.Error(err))
	}
	if allowed == nil {
		logger.Warn("SSH_AUTHORIZED_KEYS not set, accepting any public key")
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)
	refreshEvery := time.Duration(cfg.DashboardPollSecs) * time.Second

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint := gossh.FingerprintSHA256(key)
			if allowed != nil && !allowed[fingerprint] {
				logger.Info("SSH auth denied", zap.String("user", ctx.User()), zap.String("fingerprint", fingerprint))
				return false
			}
			logger.Info("SSH auth accepted", zap.String("user", ctx.User()), zap.String("fingerprint", fingerprint))
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				model := tui.NewModel(reader, s.User(), refreshEvery)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)
				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			wishlogging.Middleware(),
		),
	)
	if err != nil {
		logger.Fatal("failed to create SSH server", zap.Error(err))
	}

	if srv != nil {
		go func() {
			logger.Info("SSH server listening", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && err != ssh.ErrServerClosed {
				logger.Error("SSH server stopped", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info("shutting down SSH server")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("SSH server shutdown error", zap.Error(err))
		}
	}

	logger.Info("SSH server exited")
}

// loadAuthorizedKeys returns the SHA256 fingerprints listed in path, or nil
// when path is empty.
func loadAuthorizedKeys(path string) (map[string]bool, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readFileFunc(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	allowed := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; scanner.Scan(); line++ {
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		key, _, _, _, err := gossh.ParseAuthorizedKey(text)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		allowed[gossh.FingerprintSHA256(key)] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return allowed, nil
}
