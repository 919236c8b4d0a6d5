package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"wip-dashboard/internal/config"
	"wip-dashboard/internal/logger"
	"wip-dashboard/internal/service/dashboard"
	"wip-dashboard/internal/storage/docstore"
	"wip-dashboard/internal/storage/sqlstore"
)

// migrate copies legacy document store projects into the SQL store and
// reseeds the persisted dashboard summary from the combined data.
func main() {
	dryRun := flag.Bool("dry-run", false, "read legacy projects without writing them")
	flag.Parse()

	cfg := config.MustConfig()

	log, closer := logger.Setup(cfg.Env, cfg.ErrorLog)
	defer closer.Close()

	if err := run(log, *cfg, *dryRun); err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		closer.Close()
		os.Exit(1)
	}
}

func run(log *slog.Logger, cfg config.Config, dryRun bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	docs, err := docstore.New(cfg)
	if err != nil {
		return err
	}
	defer docs.Close()

	sqlStorage, err := sqlstore.New(cfg)
	if err != nil {
		return err
	}
	defer sqlStorage.Close()

	if err := sqlStorage.InitSchema(ctx); err != nil {
		return err
	}

	records, err := docs.GetAllProjects(ctx)
	if err != nil {
		return err
	}

	log.Info("legacy projects loaded", slog.Int("count", len(records)))

	if dryRun {
		return nil
	}

	if err := sqlStorage.SaveProjects(ctx, records); err != nil {
		return err
	}

	svc := dashboard.NewService(log, dashboard.RulesFromConfig(cfg.Exclusions), docs, sqlStorage)
	summary, err := svc.RebuildStored(ctx)
	if err != nil {
		return err
	}

	log.Info("migration complete",
		slog.Int("projects", len(records)),
		slog.String("total_sales", summary.TotalSales.String()),
	)

	return nil
}
