package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/infigaming-com/gold-monitor/cache"
	"github.com/infigaming-com/gold-monitor/config"
	"github.com/infigaming-com/gold-monitor/history"
	"github.com/infigaming-com/gold-monitor/hub"
	"github.com/infigaming-com/gold-monitor/internal/backoff"
	"github.com/infigaming-com/gold-monitor/observability/metrics"
	"github.com/infigaming-com/gold-monitor/poller"
	"github.com/infigaming-com/gold-monitor/rate"
	"github.com/infigaming-com/gold-monitor/util"
	"github.com/infigaming-com/gold-monitor/web"
	"github.com/infigaming-com/gold-monitor/web/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg, syncLogger := util.NewLogger(cfg.Log.Level)
	defer syncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, lg, cfg); err != nil {
		lg.Error("gold monitor exited", zap.Error(err))
		syncLogger()
		os.Exit(1)
	}
}

func run(ctx context.Context, lg *zap.Logger, cfg *config.Config) error {
	kv, closeCache, err := cache.Open(lg, cfg.Cache.Driver, cfg.Cache.Size, &cache.RedisCacheConfig{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer closeCache()
	latest := cache.NewLatestReading(kv, cache.DefaultLatestReadingKey, cfg.Cache.TTL)

	var (
		pollerOpts = []poller.Option{
			poller.WithLogger(lg),
			poller.WithInterval(cfg.Feed.Interval),
			poller.WithFetchTimeout(cfg.Feed.Timeout),
			poller.WithRetryDelay(cfg.Feed.RetryDelay),
		}
		hubOpts = []hub.Option{
			hub.WithLogger(lg),
			hub.WithKeepAlive(cfg.Hub.KeepAlive),
			hub.WithWriteTimeout(cfg.Hub.WriteTimeout),
		}
	)
	if cfg.Feed.MaxRetryDelay > cfg.Feed.RetryDelay {
		pollerOpts = append(pollerOpts, poller.WithRetryBackoff(backoff.Config{
			Initial:    cfg.Feed.RetryDelay,
			Max:        cfg.Feed.MaxRetryDelay,
			Multiplier: 2,
		}))
	}
	if cfg.Metrics.Enabled {
		exporter, _, err := metrics.NewMetricExporter(metricsOptions(cfg.Metrics)...)
		if err != nil {
			return fmt.Errorf("failed to create metric exporter: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := exporter.Close(shutdownCtx); err != nil {
				lg.Warn("failed to close metric exporter", zap.Error(err))
			}
		}()
		recorder := metrics.NewRecorder(lg, exporter)
		pollerOpts = append(pollerOpts, poller.WithMetrics(recorder))
		hubOpts = append(hubOpts, hub.WithMetrics(recorder))
	}

	window := history.NewStore()
	registry := hub.NewRegistry(window.Snapshot, hubOpts...)
	defer registry.Close()
	broadcaster := hub.NewBroadcaster(lg, registry)

	provider := rate.NewTreasuryRateProvider(lg, cfg.Feed.URL,
		rate.WithMethod(cfg.Feed.Method),
		rate.WithTimeout(cfg.Feed.Timeout),
		rate.WithSlowThreshold(cfg.Feed.SlowThreshold),
		rate.WithHeaders(cfg.Feed.Headers),
		rate.WithDebug(lg.Core().Enabled(zap.DebugLevel)),
	)
	pollerOpts = append(pollerOpts, poller.WithHooks(poller.Hooks{
		OnAccept: func(ctx context.Context, reading rate.Reading) {
			if err := latest.Put(ctx, reading); err != nil {
				lg.Warn("failed to cache latest reading", zap.Error(err))
			}
		},
	}))
	p := poller.New(provider, window, broadcaster, pollerOpts...)

	handler := web.NewHandler(window, registry,
		web.WithHandlerLogger(lg),
		web.WithLatest(latest),
		web.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		web.WithReportTitle(cfg.Server.ReportTitle),
	)
	server := web.NewServer(
		web.WithLogger(lg),
		web.WithMode(cfg.Server.Mode),
		web.WithPort(cfg.Server.Port),
		web.WithCustomHandler(middleware.CorrelationIdMiddleware()),
		web.WithCustomHandler(middleware.LoggingMiddleware(
			middleware.WithLogger(lg),
			middleware.WithExcludePaths("/ws", "/healthcheck"),
		)),
		web.WithRoutes(handler.Register),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.Run(ctx)
	})
	g.Go(func() error {
		err := server.Run(ctx)
		// hijacked websocket sessions outlive Shutdown; closing the registry ends them
		registry.Close()
		return err
	})
	return g.Wait()
}

func metricsOptions(cfg config.MetricsConfig) []metrics.Option {
	opts := []metrics.Option{
		metrics.WithServiceName(cfg.ServiceName),
		metrics.WithEnvironment(cfg.Environment),
	}
	if cfg.OTLPEndpoint != "" {
		opts = append(opts, metrics.WithOTLPEndpoint(cfg.OTLPEndpoint))
	}
	if cfg.OTLPGRPCEndpoint != "" {
		opts = append(opts, metrics.WithOTLPGRPCEndpoint(cfg.OTLPGRPCEndpoint))
	}
	return opts
}
