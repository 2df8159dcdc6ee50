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

	"github.com/klabast/wb-services/tomme-kalender/internal/app"
	"github.com/klabast/wb-services/tomme-kalender/internal/commands"
	"github.com/klabast/wb-services/tomme-kalender/internal/logger"
)

func main() {
	// Check for subcommands
	if len(os.Args) > 1 && os.Args[1] == "lookup" {
		commands.Lookup(os.Args[2:])
		return
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the environment
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	flag.StringVar(&cfg.DataFile, "data", cfg.DataFile, "CSV data file")
	flag.Parse()

	logger.Init(cfg.LogLevel, cfg.Environment)
	log := logger.Log

	source, closeSource, err := app.NewSource(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to open record source")
	}
	defer closeSource()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	cache, closeCache, err := app.NewRenderCache(startupCtx, cfg)
	if err != nil {
		log.WithError(err).Warn("Render cache disabled")
		cache, closeCache = app.NoopCache{}, func() error { return nil }
	}
	defer closeCache()

	srv := app.NewServer(cfg, source, cache)
	err = srv.Reload(startupCtx)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to load dataset")
	}

	if cfg.ReloadCron != "" {
		reloader, err := srv.StartReloader(cfg.ReloadCron)
		if err != nil {
			log.WithError(err).Fatal("Failed to start dataset reloader")
		}
		defer reloader.Stop()
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting Tømmekalender on http://localhost:%d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Info("Server stopped")
}
