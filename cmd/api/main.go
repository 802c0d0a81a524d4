package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tradeforge/tradedocs-backend/api/routes"
	"github.com/tradeforge/tradedocs-backend/internal/counterparties"
	"github.com/tradeforge/tradedocs-backend/internal/documents"
	"github.com/tradeforge/tradedocs-backend/internal/inventory"
	"github.com/tradeforge/tradedocs-backend/internal/products"
	"github.com/tradeforge/tradedocs-backend/pkg/clock"
	"github.com/tradeforge/tradedocs-backend/pkg/config"
	"github.com/tradeforge/tradedocs-backend/pkg/db"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
	"github.com/tradeforge/tradedocs-backend/pkg/metrics"
	"github.com/tradeforge/tradedocs-backend/pkg/migrate"
	"github.com/tradeforge/tradedocs-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(registry)

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	inventoryService, err := inventory.NewService(dbClient, inventoryRepo, logg, engineMetrics, cfg.Inventory.AllowClamp)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(dbClient, products.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	counterpartyService, err := counterparties.NewService(dbClient, counterparties.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create counterparty service", err)
		os.Exit(1)
	}

	documentRepo := documents.NewRepository(dbClient.DB())
	documentService, err := documents.NewService(
		dbClient,
		documentRepo,
		inventoryService,
		clock.System(),
		logg,
		engineMetrics,
		cfg.Numbering.MaxRetries,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create document service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, documentService, inventoryService, productService, counterpartyService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
