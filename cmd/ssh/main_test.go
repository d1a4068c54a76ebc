package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"testing"
	"time"

	"daily-btc/internal/config"

	"github.com/charmbracelet/ssh"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	gossh "golang.org/x/crypto/ssh"
)

func TestMainBootstrap(t *testing.T) {
	restore := stubSSHDeps()
	defer restore()

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

func TestLoadAuthorizedKeys(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	sshPub, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}

	orig := readFileFunc
	t.Cleanup(func() { readFileFunc = orig })
	readFileFunc = func(string) ([]byte, error) {
		return append([]byte("# team keys\n\n"), gossh.MarshalAuthorizedKey(sshPub)...), nil
	}

	allowed, err := loadAuthorizedKeys("authorized_keys")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(allowed) != 1 || !allowed[gossh.FingerprintSHA256(sshPub)] {
		t.Fatalf("unexpected fingerprints: %v", allowed)
	}

	readFileFunc = func(string) ([]byte, error) { return []byte("not-a-key\n"), nil }
	if _, err := loadAuthorizedKeys("authorized_keys"); err == nil {
		t.Fatal("expected parse error")
	}

	if allowed, err := loadAuthorizedKeys(""); err != nil || allowed != nil {
		t.Fatalf("expected open access for empty path, got %v %v", allowed, err)
	}
}

func stubSSHDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewWishServer := newWishServerFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			DBPath:            ":memory:",
			RedisURL:          "localhost:6379",
			SSHPort:           2222,
			SSHHostKeyPath:    ".ssh/test_key",
			DashboardPollSecs: 60,
		}
	}
	initRedisFunc = func(context.Context, string) (*redis.Client, error) {
		return redis.NewClient(&redis.Options{Addr: "localhost:6379"}), nil
	}
	initTracerFunc = func(ctx context.Context, name string) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newWishServerFunc = func(ops ...ssh.Option) (*ssh.Server, error) {
		return nil, nil
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newWishServerFunc = origNewWishServer
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
	}
}
