package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/clientdata"
	"github.com/aristath/relval/internal/clients/tiger"
	"github.com/aristath/relval/internal/clients/yahoo"
	"github.com/aristath/relval/internal/config"
	"github.com/aristath/relval/internal/database"
	"github.com/aristath/relval/internal/modules/allocation"
	"github.com/aristath/relval/internal/modules/backtest"
	"github.com/aristath/relval/internal/modules/scoring"
	"github.com/aristath/relval/internal/modules/screener"
	"github.com/aristath/relval/internal/modules/statarb"
	"github.com/aristath/relval/internal/modules/trading"
	"github.com/aristath/relval/internal/scheduler"
	"github.com/aristath/relval/internal/server"
	"github.com/aristath/relval/pkg/logger"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	mode := flag.String("mode", "run", "run | serve | schedule | backtest")
	period := flag.String("period", "2y", "backtest price history period")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Config{Level: "info", Pretty: true})
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	log.Info().Str("mode", *mode).Msg("Starting relative value engine")

	db, err := database.New(database.Config{
		Path:    cfg.CacheDBPath(),
		Profile: database.ProfileCache,
		Name:    "clientdata",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open client data cache")
	}
	defer db.Close()

	cache := clientdata.NewRepository(db.Conn())
	if err := cache.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}

	market := yahoo.NewClient(cache, log)
	tradeLog := trading.NewTradeLog(cfg.TradeLogFile)

	switch *mode {
	case "run":
		job := buildCycleJob(cfg, market, cache, tradeLog, log)
		if err := job.Run(); err != nil {
			log.Fatal().Err(err).Msg("Trade cycle aborted")
		}

	case "serve":
		runServer(cfg, tradeLog, log)

	case "schedule":
		job := buildCycleJob(cfg, market, cache, tradeLog, log)
		sched := scheduler.New(log)
		schedule := getEnv("CYCLE_SCHEDULE", "0 0 9 * * MON-FRI")
		if err := sched.AddJob(schedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", schedule).Msg("Failed to register trade cycle")
		}
		cleanup := scheduler.NewFuncJob("cache_cleanup", func() error {
			deleted, err := cache.DeleteAllExpired()
			if err != nil {
				return err
			}
			for table, n := range deleted {
				if n > 0 {
					log.Info().Str("table", table).Int64("deleted", n).Msg("Expired cache entries removed")
				}
			}
			return nil
		})
		if err := sched.AddJob("0 0 3 * * *", cleanup); err != nil {
			log.Fatal().Err(err).Msg("Failed to register cache cleanup")
		}
		sched.Start()
		defer sched.Stop()
		runServer(cfg, tradeLog, log)

	case "backtest":
		runBacktest(cfg, market, *period, log)

	default:
		log.Fatal().Str("mode", *mode).Msg("Unknown mode")
	}
}

// buildCycleJob wires the full screen/scan/reconcile pipeline.
func buildCycleJob(cfg *config.Config, market *yahoo.Client, cache *clientdata.Repository, tradeLog *trading.TradeLog, log zerolog.Logger) *scheduler.TradeCycleJob {
	allocator := allocation.NewAllocator(cfg.MaxSectorWeight, log)

	var dedup *allocation.Deduplicator
	if cfg.CorrelationPenalty {
		dedup = allocation.NewDeduplicator(market, cache, cfg.CorrelationCutoff, cfg.PenaltyFactor, log)
	}

	screen := screener.New(market, market, &scoring.LexiconAnalyzer{}, allocator, dedup, screener.Options{
		TechnicalSignals:   cfg.TechnicalSignals,
		CorrelationPenalty: cfg.CorrelationPenalty,
		Benchmark:          cfg.BenchmarkTicker,
		ScreenFile:         cfg.ScreenFile,
	}, log)

	broker := tiger.NewClient(getEnv("TIGER_BASE_URL", ""), cfg.TigerAPIKey, cfg.TigerAPISecret, cfg.TigerAccount, log)
	overlay := trading.NewRiskOverlay(market, log)
	blackout := trading.NewEarningsBlackout(market, log)
	reconciler := trading.NewReconciler(broker, overlay, blackout, tradeLog, cfg.LotAware, log)

	return scheduler.NewTradeCycleJob(scheduler.TradeCycleConfig{
		Log:         log,
		Market:      market,
		Screener:    screen,
		Scanner:     statarb.NewScanner(market, cfg.MaxEntryPairs, log),
		Reconciler:  reconciler,
		Broker:      broker,
		TickersFile: cfg.TickersFile,
		PairsFile:   cfg.PairsFile,
	})
}

// runServer blocks until SIGINT/SIGTERM, then shuts down gracefully.
func runServer(cfg *config.Config, tradeLog *trading.TradeLog, log zerolog.Logger) {
	srv := server.New(cfg, tradeLog, log)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}

// runBacktest replays the latest screen's target weights over history.
func runBacktest(cfg *config.Config, market *yahoo.Client, period string, log zerolog.Logger) {
	securities, err := screener.ReadScreen(cfg.ScreenFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ScreenFile).Msg("No screen results, run a cycle first")
	}

	weights := make(map[string]float64, len(securities))
	for _, sec := range securities {
		if sec.TargetWeight > 0 {
			weights[sec.Ticker] = sec.TargetWeight
		}
	}
	if len(weights) == 0 {
		log.Fatal().Msg("Screen results carry no positive weights")
	}

	result, err := backtest.NewEvaluator(market, log).Run(weights, period, cfg.BenchmarkTicker)
	if err != nil {
		log.Fatal().Err(err).Msg("Backtest failed")
	}

	event := log.Info().
		Int("months", len(result.MonthlyReturns)).
		Float64("total_return", result.TotalReturn).
		Float64("annualized_return", result.AnnualizedReturn).
		Float64("annualized_volatility", result.AnnualizedVolatility).
		Float64("max_drawdown", result.Drawdown.MaxDrawdown).
		Int("max_drawdown_months", result.Drawdown.MaxDuration).
		Float64("adjusted_ratio", result.AdjustedRatio)
	if result.HasBenchmark {
		event = event.Float64("benchmark_total_return", result.BenchmarkTotalReturn)
	}
	event.Msg("Backtest complete")
}
