package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pitchframe/marketing-agent/internal/config"
	"github.com/pitchframe/marketing-agent/internal/flow"
	"github.com/pitchframe/marketing-agent/internal/httpapi"
	"github.com/pitchframe/marketing-agent/internal/llm"
	"github.com/pitchframe/marketing-agent/internal/lockfile"
	"github.com/pitchframe/marketing-agent/internal/mailer"
	"github.com/pitchframe/marketing-agent/internal/sessionstore"
	"github.com/pitchframe/marketing-agent/internal/websearch"
)

var (
	// Version is set via -ldflags at build time.
	Version = "dev"
	// Commit is set via -ldflags at build time.
	Commit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		runCmd(os.Args[2:])
	case "version":
		fmt.Printf("marketing-agent %s (%s)\n", Version, Commit)
	default:
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `marketing-agent

Usage:
  marketing-agent run [flags]
  marketing-agent version

Commands:
  run         Run the conversation engine HTTP service using the local config file.
  version     Print build information.

`)
}

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultConfigPath(), "Config file path")
	_ = fs.Parse(args)

	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.LogFormat, cfg.LogLevel)

	llmClient, err := llm.NewClient(llm.ProviderConfig{
		Type:    cfg.Provider.Type,
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Model:   cfg.Provider.Model,
	})
	if err != nil {
		logger.Error("init completion client", "err", err)
		os.Exit(1)
	}

	searchClient, err := websearch.NewBrave(cfg.Search.APIKey)
	if err != nil {
		logger.Error("init web search client", "err", err)
		os.Exit(1)
	}

	sender, err := mailer.NewSMTP(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		logger.Error("init mailer", "err", err)
		os.Exit(1)
	}

	if cfg.Store.Backend == config.StoreBackendSQLite {
		lock, err := lockfile.Acquire(cfg.Store.Path + ".lock")
		if err != nil {
			if errors.Is(err, lockfile.ErrAlreadyLocked) {
				logger.Error("another marketing-agent process owns the session database", "path", cfg.Store.Path)
			} else {
				logger.Error("acquire session db lock", "err", err)
			}
			os.Exit(1)
		}
		defer lock.Release()
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("open session store", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	engine := flow.NewEngine(llmClient, searchClient, sender, logger)
	server := httpapi.NewServer(engine, store, logger, cfg.TurnTimeout())

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("marketing-agent listening", "addr", cfg.ListenAddr, "store", cfg.Store.Backend)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", "err", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "err", err)
			os.Exit(1)
		}
	}
}

func openStore(cfg *config.Config) (sessionstore.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return sessionstore.OpenRedis(ctx, sessionstore.RedisConfig{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
			TTL:      time.Duration(cfg.Store.RedisTTLSeconds) * time.Second,
		})
	default:
		return sessionstore.OpenSQLite(cfg.Store.Path)
	}
}
