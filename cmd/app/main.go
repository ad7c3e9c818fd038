package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mauv0809/expansion-radar/internal/config"
	"github.com/mauv0809/expansion-radar/internal/db"
	"github.com/mauv0809/expansion-radar/internal/handlers"
	"github.com/mauv0809/expansion-radar/internal/ingest"
	"github.com/mauv0809/expansion-radar/internal/logging"
	"github.com/mauv0809/expansion-radar/internal/news"
	"github.com/mauv0809/expansion-radar/internal/scheduler"
)

func main() {
	// Load .env file if it exists (local dev)
	envErr := godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Log.Level, nil)
	if envErr != nil {
		logger.Debug("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("opening company store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// News provider and optional cache
	provider, err := news.NewProvider(cfg.News)
	if err != nil {
		logger.Error("building news provider", "error", err)
		os.Exit(1)
	}
	var cache news.Cache
	if cfg.News.RedisURL != "" {
		rc, err := news.NewRedisCache(ctx, cfg.News.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, news cache disabled", "error", err)
		} else {
			defer rc.Close()
			cache = rc
			logger.Info("news cache enabled", "ttl", cfg.News.CacheTTL)
		}
	}
	newsService := news.NewService(provider, cache, cfg.News.Limit, cfg.News.CacheTTL)
	logger.Info("news provider ready", "provider", provider.Name(), "limit", cfg.News.Limit)

	// Importer; sector enrichment requires NASDAQ_API_KEY
	var tickers ingest.TickerSource
	if cfg.Import.NasdaqAPIKey != "" {
		tickers = ingest.NewClient(cfg.Import.NasdaqAPIKey)
	} else {
		logger.Info("NASDAQ_API_KEY not set, sector enrichment disabled")
	}
	importer := ingest.NewImporter(store, ingest.NewSheetReader(), tickers, cfg.Import.Source)

	if cfg.Import.Source != "" {
		if _, err := importer.Import(ctx); err != nil {
			logger.Warn("initial import failed, serving existing data", "error", err)
		}
	} else {
		logger.Warn("COMPANIES_SOURCE not set, serving existing data only")
	}

	if cfg.Import.Cron != "" && cfg.Import.Source != "" {
		sched := scheduler.New(ctx)
		if err := sched.Register("company-import", cfg.Import.Cron, func(ctx context.Context) error {
			_, err := importer.Import(ctx)
			return err
		}); err != nil {
			logger.Error("scheduling import", "error", err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()
	}

	// Setup Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error == nil {
				logger.Info("request", attrs...)
			} else {
				logger.Error("request", append(attrs, "error", v.Error)...)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	handlers.Register(e,
		handlers.New(store, newsService),
		handlers.NewIngestHandler(importer, store),
	)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutting down server", "error", err)
	}
}

// openStore picks Postgres, then SQLite, then memory, by what is configured.
func openStore(ctx context.Context, cfg *config.Config) (db.CompanyStore, error) {
	switch {
	case cfg.Database.URL != "":
		if err := db.RunMigrations(cfg.Database.URL); err != nil {
			return nil, err
		}
		slog.Info("migrations completed")
		pool, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		slog.Info("connected to postgres")
		return db.NewRepository(pool), nil

	case cfg.Database.SQLitePath != "":
		store, err := db.OpenSQLite(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("opened sqlite store", "path", cfg.Database.SQLitePath)
		return store, nil
	}

	slog.Warn("no database configured, using in-memory store")
	return db.NewMemoryStore(), nil
}
