package main

import (
	"context"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/MILA-Wien/odoo-product-updater-bot/internal/config"
	"github.com/MILA-Wien/odoo-product-updater-bot/internal/feed"
	"github.com/MILA-Wien/odoo-product-updater-bot/internal/refdata"
	syncsvc "github.com/MILA-Wien/odoo-product-updater-bot/internal/sync"
	"github.com/MILA-Wien/odoo-product-updater-bot/pkg/clients/images"
	"github.com/MILA-Wien/odoo-product-updater-bot/pkg/clients/odoo"
	"github.com/MILA-Wien/odoo-product-updater-bot/pkg/logger"
)

func main() {
	all := pflag.Bool("all", false, "process every product enabled for the importer")
	productID := pflag.Int64("product-id", 0, "process only the product with this id")
	logLevel := pflag.StringP("loglevel", "v", "info", "log level: debug, info, warn, error")
	envFile := pflag.String("env-file", "", "optional env file to load configuration from")
	pflag.Parse()

	baseLogger := logger.Must(logger.New(*logLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	cfg, err := config.Load(*envFile)
	if err != nil {
		baseLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	erp := odoo.NewClient(cfg.Odoo)
	if err := erp.Authenticate(ctx); err != nil {
		baseLogger.Fatal("failed to authenticate against odoo", zap.Error(err))
	}

	terraFeed, err := feed.FetchTerra(cfg.Terra, logger.Named(baseLogger, "feed.terra"))
	if err != nil {
		baseLogger.Fatal("failed to fetch terra price lists", zap.Error(err))
	}

	agidraFeed, err := feed.LoadAgidra(cfg.Agidra, logger.Named(baseLogger, "feed.agidra"))
	if err != nil {
		baseLogger.Fatal("failed to load agidra catalogs", zap.Error(err))
	}

	producers, err := refdata.LoadProducers(cfg.Data.ProducersPath)
	if err != nil {
		baseLogger.Fatal("failed to load producer aliases", zap.Error(err))
	}

	tables := refdata.Default().WithProducers(producers)

	normalizer := syncsvc.NewNormalizer(
		tables,
		syncsvc.NewUoMResolver(erp),
		images.NewClient(cfg.Odoo.Timeout),
		logger.Named(baseLogger, "normalize"),
	)

	service := syncsvc.NewService(erp, normalizer, tables, syncsvc.Feeds{
		Terra:  terraFeed,
		Agidra: agidraFeed,
	}, logger.Named(baseLogger, "sync"))

	sel := syncsvc.Selector{All: *all, ProductID: *productID}
	if err := service.Run(ctx, sel); err != nil {
		baseLogger.Fatal("sync pass failed", zap.Error(err))
	}

	baseLogger.Info("sync pass finished")
}
