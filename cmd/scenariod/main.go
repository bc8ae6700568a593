package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/scenario-engine/internal/engine"
	"github.com/GoSim-25-26J-441/scenario-engine/internal/perf"
	"github.com/GoSim-25-26J-441/scenario-engine/internal/scenariod"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/logger"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
)

func main() {
	var httpAddr string
	var logLevel string
	var forceFallback bool
	var workers int

	flag.StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.BoolVar(&forceFallback, "force-fallback", false, "disable the parallel backend and run sequentially")
	flag.IntVar(&workers, "workers", 0, "parallel backend worker count (0 = autodetect)")
	flag.Parse()

	logger.SetDefault(logger.NewText(logLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	eng, err := engine.New(engine.Options{
		ForceFallback: forceFallback,
		Workers:       workers,
	})
	if err != nil {
		logger.Error("engine initialization failed", "error", err)
		stop()
		os.Exit(1)
	}

	store := scenariod.NewRunStore()
	executor := scenariod.NewRunExecutor(store, eng, perf.NewMonitor())
	broadcaster := scenariod.NewBroadcaster()
	notifier := scenariod.NewNotifier()

	executor.SetOnTransition(func(rec *scenariod.RunRecord) {
		broadcaster.Publish(scenariod.RunEvent{
			RunID:         rec.Run.ID,
			Status:        rec.Run.Status,
			Backend:       rec.Run.Backend,
			ScenarioCount: rec.Run.ScenarioCount,
			Error:         rec.Run.Error,
			Timestamp:     time.Now().UTC().UnixMilli(),
		})
		if rec.Run.Status.IsTerminal() && rec.Run.Status != models.RunStatusCancelled {
			notifier.Notify(rec)
		}
	})

	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           scenariod.NewHTTPServer(store, executor, broadcaster).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", httpAddr, "backend", eng.BackendName())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
}
