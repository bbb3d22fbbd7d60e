package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/polyscan/config"
	"github.com/alejandrodnm/polyscan/internal/adapters/cache"
	"github.com/alejandrodnm/polyscan/internal/adapters/notify"
	"github.com/alejandrodnm/polyscan/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyscan/internal/ports"
	"github.com/alejandrodnm/polyscan/internal/scanner"
	"github.com/alejandrodnm/polyscan/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan, print the table and exit")
	watch := flag.Bool("watch", false, "rescan every interval_seconds and print to the console")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	addr := flag.String("addr", "", "dashboard listen address (overrides config)")
	minReward := flag.Float64("min-reward", -1, "default min reward $/day (overrides config)")
	maxDays := flag.Int("max-days", -1, "default max days to resolution (overrides config)")
	minLiquidity := flag.Float64("min-liquidity", -1, "default min liquidity $ (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *minReward >= 0 {
		cfg.Scanner.MinReward = *minReward
	}
	if *maxDays >= 0 {
		cfg.Scanner.MaxDays = *maxDays
	}
	if *minLiquidity >= 0 {
		cfg.Scanner.MinLiquidity = *minLiquidity
	}
	setupLogger(cfg.Log)

	slog.Info("polyscan starting",
		"config", *configPath,
		"once", *once,
		"watch", *watch,
		"gamma", cfg.API.GammaBase,
		"limit", cfg.Scanner.Limit,
		"cache", cfg.Cache.Backend,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := polymarket.NewClient(polymarket.Options{
		GammaBase:  cfg.API.GammaBase,
		Timeout:    cfg.Timeout(),
		UserAgent:  cfg.API.UserAgent,
		RatePerSec: cfg.API.RatePerSec,
		Limit:      cfg.Scanner.Limit,
	})

	scanCfg := scanner.DefaultConfig()
	scanCfg.ScanInterval = cfg.ScanInterval()
	scanCfg.Params = cfg.DefaultParams()
	scanCfg.DryRun = *once

	if *once || *watch {
		console := notify.NewConsole(cfg.Scanner.ConsoleRows)
		s := scanner.New(scanCfg, client, console)
		if err := s.Run(ctx); err != nil {
			os.Exit(1)
		}
		return
	}

	resultCache, cachePing, closeCache := buildCache(ctx, cfg.Cache)
	defer closeCache()

	pipeline := scanner.NewCached(scanner.New(scanCfg, client, nil), resultCache, cfg.CacheTTL())

	srv, err := server.New(server.Config{
		Addr:     cfg.Server.Addr,
		Defaults: cfg.DefaultParams(),
	}, pipeline, cachePing, slog.Default())
	if err != nil {
		slog.Error("failed to build server", "err", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("polyscan stopped cleanly")
}

// buildCache devuelve el backend configurado. Si Redis no responde al arrancar
// se usa la caché en memoria.
func buildCache(ctx context.Context, cfg config.CacheConfig) (ports.ResultCache, server.Pinger, func()) {
	if cfg.Backend != "redis" {
		return cache.NewMemory(), nil, func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	r, err := cache.NewRedis(connectCtx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		slog.Warn("redis unavailable, using in-memory cache", "addr", cfg.Redis.Addr, "err", err)
		return cache.NewMemory(), nil, func() {}
	}

	slog.Info("redis cache connected", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return r, r, func() {
		if err := r.Close(); err != nil {
			slog.Warn("redis close", "err", err)
		}
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
