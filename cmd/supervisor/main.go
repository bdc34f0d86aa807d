package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/perion0x/trading-supervisor/internal/logger"
	"github.com/perion0x/trading-supervisor/internal/marketdata"
	"github.com/perion0x/trading-supervisor/internal/metrics"
	"github.com/perion0x/trading-supervisor/internal/news"
	"github.com/perion0x/trading-supervisor/internal/server"
	"github.com/perion0x/trading-supervisor/internal/store"
	"github.com/perion0x/trading-supervisor/internal/supervisor"
	"github.com/perion0x/trading-supervisor/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	cfg, err := store.LoadConfig("config.yaml")
	must(err)

	logger.Init()
	must(trace.Init())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = trace.Shutdown(shutdownCtx)
	}()

	ctx := context.Background()

	prices := marketdata.NewClient(cfg.MarketData.BaseURL, cfg.MarketDataAPIKey(),
		time.Duration(cfg.MarketData.TimeoutSeconds)*time.Second)
	newsSource := news.NewService(cfg)
	recorder := metrics.New(nil)

	sup := supervisor.New(cfg, prices, newsSource, recorder)
	srv := server.New(cfg.Server.Addr, sup)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	logger.Info(ctx, "Supervisor started", "addr", cfg.Server.Addr)

	select {
	case err := <-errc:
		must(err)
	case sig := <-sigc:
		logger.Info(ctx, "Shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorWithErr(ctx, "Shutdown error", err)
		}
	}
}
