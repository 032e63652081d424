package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/wellbot/internal/auth"
	"github.com/geocoder89/wellbot/internal/chat"
	"github.com/geocoder89/wellbot/internal/config"
	"github.com/geocoder89/wellbot/internal/db"
	httpx "github.com/geocoder89/wellbot/internal/http"
	"github.com/geocoder89/wellbot/internal/http/handlers"
	"github.com/geocoder89/wellbot/internal/oauth"
	"github.com/geocoder89/wellbot/internal/observability"
	"github.com/geocoder89/wellbot/internal/redisclient"
	"github.com/geocoder89/wellbot/internal/repo/memory"
	"github.com/geocoder89/wellbot/internal/repo/postgres"
	"github.com/geocoder89/wellbot/internal/repo/sqlite"
	"github.com/geocoder89/wellbot/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type userStore interface {
	handlers.UserStore
	handlers.Pinger
}

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)
	cfg.Warn(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, "wellbot-api", cfg.Env, cfg.OTelEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewProm(reg)

	users, closeStore, err := openStore(ctx, cfg, log, metrics)
	if err != nil {
		log.Error("store init failed", "driver", cfg.DBDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	seedCtx, cancel := config.WithTimeout(5 * time.Second)
	demo, err := db.EnsureDemoUser(seedCtx, users, cfg)
	cancel()
	if err != nil {
		log.Error("demo user seed failed", "err", err)
		os.Exit(1)
	}
	if demo.ID != 0 {
		log.Info("demo user ready", "user_id", demo.ID)
	}

	ready := map[string]handlers.Pinger{"store": users}

	// oauth state lives in redis when configured so several api replicas can share it
	var states oauth.StateStore = oauth.NewMemoryStateStore(oauth.StateTTL)
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()

		states = oauth.NewRedisStateStore(rdb, oauth.StateTTL)
		ready["redis"] = rdb
	}

	var provider oauth.Provider
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		provider = oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}

	var gen chat.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Error("gemini client init failed, chat will use the fallback reply", "err", err)
		} else {
			gen = chat.NewProtectedGenerator(gemini, chat.ProtectedGeneratorConfig{Timeout: cfg.ChatTimeout})
			log.Info("gemini chat enabled", "model", gemini.Model())
		}
	}
	relay := chat.NewRelay(gen, chat.WellBot(), chat.WithObserver(metrics), chat.WithLogger(log))

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Users:     users,
		Tokens:    auth.NewManager(cfg.JWTSecret, cfg.JWTTTL),
		Relay:     relay,
		Extractor: report.NewMockExtractor(),
		OAuth:     provider,
		States:    states,
		Metrics:   metrics,
		Gatherer:  reg,
		Ready:     ready,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.ChatTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.DBDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// openStore picks the user store named by DB_DRIVER and brings its schema up
// to date.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger, metrics *observability.Prom) (userStore, func(), error) {
	switch cfg.DBDriver {
	case "postgres":
		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewUsersRepo(pool, metrics), pool.Close, nil

	case "sqlite", "":
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.MigrateSQLite(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return sqlite.NewUsersRepo(conn, metrics), func() { _ = conn.Close() }, nil

	case "memory":
		log.Warn("using in-memory user store, accounts are lost on restart")
		return memory.NewUsersRepo(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}
