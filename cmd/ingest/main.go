// Package main provides the candle ingestion daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/whatif-futures/internal/config"
	"github.com/yourusername/whatif-futures/internal/database"
	"github.com/yourusername/whatif-futures/internal/datasource"
	"github.com/yourusername/whatif-futures/internal/health"
	"github.com/yourusername/whatif-futures/internal/logger"
	"github.com/yourusername/whatif-futures/internal/metrics"
	"github.com/yourusername/whatif-futures/internal/models"
	"github.com/yourusername/whatif-futures/internal/repository"
	"github.com/yourusername/whatif-futures/internal/scheduler"
	"github.com/yourusername/whatif-futures/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath   = flag.String("config", "./config/config.yaml", "Path to configuration file")
		instruments  = flag.String("instruments", "", "Comma-separated instruments to sync (default: all known)")
		backfillDays = flag.Int("backfill", 0, "Backfill this many days of candles before starting the scheduler")
		once         = flag.Bool("once", false, "Run a single sync pass and exit")
	)
	flag.Parse()

	cfg, err := loadConfigWithSecrets(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(cfg.App.LogLevel)
	appLogger.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
	}).Info("Starting candle ingestion")

	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to build repositories")
	}

	symbols := models.KnownInstruments()
	if *instruments != "" {
		symbols = splitSymbols(*instruments)
	}

	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.DataSource.RequestTimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.DataSource.MaxRetries
	httpCfg.RateLimit = cfg.DataSource.RateLimitPerSecond
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, appLogger)

	source := datasource.NewCandleAPIClient(httpClient, cfg.DataSource.APIURL, cfg.DataSource.APIKey, true, appLogger)
	syncSvc := service.NewCandleSyncService(source, repos.Candle, symbols, appLogger)

	if *backfillDays > 0 {
		end := time.Now().UTC()
		start := end.AddDate(0, 0, -*backfillDays)
		appLogger.WithFields(logrus.Fields{
			"start": start.Format("2006-01-02"),
			"end":   end.Format("2006-01-02"),
		}).Info("Running backfill")
		if stats, err := syncSvc.Backfill(ctx, start, end); err != nil {
			appLogger.WithError(err).Error("Backfill completed with errors")
		} else {
			appLogger.Info(stats.String())
		}
	}

	if *once {
		if err := syncSvc.SyncLatest(ctx); err != nil {
			appLogger.WithError(err).Fatal("Sync failed")
		}
		appLogger.Info("Sync complete")
		return
	}

	sched := scheduler.NewScheduler(syncSvc, appLogger)
	if err := sched.ScheduleCandleSync(cfg.DataSource.SyncSchedule); err != nil {
		appLogger.WithError(err).Fatal("Failed to schedule candle sync")
	}
	if err := sched.Start(); err != nil {
		appLogger.WithError(err).Fatal("Failed to start scheduler")
	}
	defer sched.Stop()

	var stream *datasource.StreamClient
	if cfg.DataSource.StreamEnabled {
		stream = datasource.NewStreamClient(cfg.DataSource.StreamURL, cfg.DataSource.APIKey, appLogger)
		stream.AddHandler(syncSvc.StreamHandler(10 * time.Second))
		go func() {
			if err := stream.ConnectWithRetry(ctx); err != nil {
				appLogger.WithError(err).Error("Stream connection failed")
				return
			}
			metrics.UpdateStreamConnected(true)
			if err := stream.Subscribe(symbols); err != nil {
				appLogger.WithError(err).Error("Stream subscription failed")
			}
		}()
		defer stream.Close()
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: "whatif-ingest",
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLogger,
		DB:          db,
	})
	if stream != nil {
		healthServer.RegisterCheck("stream", func(ctx context.Context) error {
			if !stream.IsConnected() {
				return fmt.Errorf("stream disconnected")
			}
			return nil
		})
	}
	go func() {
		if err := healthServer.Start(ctx); err != nil {
			appLogger.WithError(err).Error("Health server stopped")
		}
	}()
	healthServer.SetReady(true)

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg, appLogger)
	}

	appLogger.WithFields(logrus.Fields{
		"schedule":    cfg.DataSource.SyncSchedule,
		"instruments": len(symbols),
		"next_run":    sched.GetNextRun().Format(time.RFC3339),
	}).Info("Ingestion running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	appLogger.WithField("signal", sig.String()).Info("Shutting down")

	healthServer.SetReady(false)
	cancel()
	if err := healthServer.Shutdown(); err != nil {
		appLogger.WithError(err).Warn("Health server shutdown error")
	}
}

// loadConfigWithSecrets loads config and optionally overlays AWS secrets
func loadConfigWithSecrets(configPath string) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serveMetrics(cfg *config.Config, appLogger *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	appLogger.WithField("addr", addr).Info("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		appLogger.WithError(err).Error("Metrics server stopped")
	}
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
