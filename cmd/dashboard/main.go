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

	"wip-dashboard/internal/config"
	"wip-dashboard/internal/logger"
	"wip-dashboard/internal/service/dashboard"
	generate_excel "wip-dashboard/internal/service/generate-excel"
	"wip-dashboard/internal/service/project"
	"wip-dashboard/internal/storage/docstore"
	"wip-dashboard/internal/storage/sqlstore"
)

func main() {
	cfg := config.MustConfig()

	log, closer := logger.Setup(cfg.Env, cfg.ErrorLog)
	defer closer.Close()

	sqlStorage, err := sqlstore.New(*cfg)
	if err != nil {
		log.Error("failed to open db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sqlStorage.Close()

	if cfg.DB.Driver == "sqlite" {
		if err := sqlStorage.InitSchema(context.Background()); err != nil {
			log.Error("failed to init schema", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	docs, err := docstore.New(*cfg)
	if err != nil {
		log.Error("failed to open docstore", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer docs.Close()

	sources := []dashboard.RecordSource{sqlStorage}
	if cfg.Sources.Legacy {
		sources = append(sources, docs)
	}

	dashboardService := dashboard.NewService(log, dashboard.RulesFromConfig(cfg.Exclusions), docs, sources...)
	projectService := project.NewService(log, sqlStorage, dashboardService)
	excelService := generate_excel.NewGenerateService(dashboardService)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, projectService, dashboardService, excelService),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: 2 * cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}
