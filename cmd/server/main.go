package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/BHuysamen/MovieApiHomework/internal/backend"
	"github.com/BHuysamen/MovieApiHomework/internal/catalog"
	"github.com/BHuysamen/MovieApiHomework/internal/config"
	"github.com/BHuysamen/MovieApiHomework/internal/fixtures"
	httpserver "github.com/BHuysamen/MovieApiHomework/internal/http"
	"github.com/BHuysamen/MovieApiHomework/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := backend.Open(dbCtx, cfg, logg)
	if err != nil {
		logg.Fatal("connect database", "driver", cfg.DBDriver, "error", err)
	}
	defer st.Close()

	if cfg.SeedDemoData {
		if err := st.Seed(dbCtx, fixtures.Demo()); err != nil {
			logg.Fatal("seed demo data", "error", err)
		}
	}

	svc := catalog.NewService(st, catalog.WithTopN(cfg.TopN), catalog.WithLogger(logg))
	server := httpserver.New(cfg, svc, st, logg)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logg.Error("server error", "error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error("graceful shutdown error", "error", err)
	}
}
