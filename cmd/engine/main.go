package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Uddhav-Saikia/ElasticRev/internal/competitor"
	"github.com/Uddhav-Saikia/ElasticRev/internal/config"
	"github.com/Uddhav-Saikia/ElasticRev/internal/database"
	"github.com/Uddhav-Saikia/ElasticRev/internal/elasticity"
	"github.com/Uddhav-Saikia/ElasticRev/internal/logger"
	"github.com/Uddhav-Saikia/ElasticRev/internal/scenario"
	"github.com/Uddhav-Saikia/ElasticRev/internal/server"
	"github.com/Uddhav-Saikia/ElasticRev/internal/store"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		log.Fatalf("could not initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting elasticity engine")

	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		zapLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	st := store.New(db)

	engine := elasticity.NewEngine(zapLogger.Named("engine"), &cfg, st)
	scenarios := scenario.NewService(zapLogger.Named("scenario"), cfg.Scenario, st)

	if cfg.Competitor.BaseURL != "" {
		client := competitor.NewClient(&cfg.Competitor, zapLogger.Named("competitor"))
		feed := competitor.NewFeed(client, st, zapLogger.Named("competitor"))
		go syncCompetitorPrices(zapLogger, st, feed)
	} else {
		zapLogger.Info("No competitor feed configured, skipping price sync")
	}

	apiServer := server.NewAPIServer(cfg.Server.Port, engine, scenarios, zapLogger)
	apiServer.Start()

	// Block until shutdown signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Stop(ctx); err != nil {
		zapLogger.Error("Server shutdown failed", zap.Error(err))
	}
	zapLogger.Info("Engine stopped")
}

// syncCompetitorPrices pulls quotes for the whole catalog once at startup.
// Feed failures are logged and skipped so a flaky feed never blocks the
// engine itself.
func syncCompetitorPrices(zapLogger *zap.Logger, st *store.Store, feed *competitor.Feed) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ids, err := st.ProductIDs()
	if err != nil {
		zapLogger.Warn("Could not list products for competitor sync", zap.Error(err))
		return
	}
	for _, id := range ids {
		product, err := st.Product(id)
		if err != nil {
			zapLogger.Warn("Could not load product for competitor sync", zap.Uint("product_id", id), zap.Error(err))
			continue
		}
		if _, err := feed.SyncProduct(ctx, product); err != nil {
			zapLogger.Warn("Competitor sync failed", zap.String("sku", product.SKU), zap.Error(err))
		}
	}
}
