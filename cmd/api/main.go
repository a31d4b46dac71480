// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/handmade-storefront/internal/config"
	"github.com/your-org/handmade-storefront/internal/domain/cart"
	"github.com/your-org/handmade-storefront/internal/domain/order"
	"github.com/your-org/handmade-storefront/internal/domain/pricing"
	"github.com/your-org/handmade-storefront/internal/domain/product"
	"github.com/your-org/handmade-storefront/internal/domain/variation"
	"github.com/your-org/handmade-storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/handmade-storefront/internal/infrastructure/database/redis"
	"github.com/your-org/handmade-storefront/internal/infrastructure/remote"
	"github.com/your-org/handmade-storefront/internal/interfaces/http"
	"github.com/your-org/handmade-storefront/internal/pkg/auth"
	"github.com/your-org/handmade-storefront/internal/pkg/logger"
)

// backend is the record store holding the catalog and the orders
type backend struct {
	catalog    product.Reader
	variations variation.Source
	orders     order.Store
	health     http.HealthCheck
	close      func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"backend":     cfg.Store.Backend,
	}).Info("Starting storefront")

	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	store, err := openBackend(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open record store")
	}
	defer store.close()

	policy := pricing.PolicyFromConfig(cfg)
	sessions := cart.NewSessions(redis.NewKV(redisClient, cfg.Cart.TTL), cfg.Cart.StorageKey, log)

	server := http.NewServer(cfg, log, http.Dependencies{
		Sessions:   sessions,
		Catalog:    store.catalog,
		Variations: store.variations,
		Orders:     order.NewAssembler(store.orders, policy, log),
		Policy:     policy,
		JWT:        auth.NewJWTManager(cfg),
		Redis:      redisClient.GetClient(),
		Health: map[string]http.HealthCheck{
			"redis": redisClient.Health,
			"store": store.health,
		},
	})

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shut down HTTP server gracefully")
	}
	log.Info("Server shutdown completed")
}

// openBackend connects the configured record store. The postgres backend
// runs migrations and, in development, seeds a sample catalog.
func openBackend(cfg *config.Config, log *logrus.Logger) (*backend, error) {
	if cfg.Store.Backend == config.BackendREST {
		client, err := remote.New(cfg.Store)
		if err != nil {
			return nil, err
		}
		return &backend{
			catalog:    client,
			variations: client,
			orders:     client,
			health:     client.Health,
			close:      func() error { return nil },
		}, nil
	}

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := db.Health(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	migration := postgres.NewMigration(db.GetDB(), log)
	if err := migration.RunAutoMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("Index creation failed")
	}
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			log.WithError(err).Warn("Data seeding failed")
		}
	}

	catalog := postgres.NewCatalogRepository(db.GetDB())
	return &backend{
		catalog:    catalog,
		variations: catalog,
		orders:     postgres.NewOrderRepository(db.GetDB()),
		health:     db.Health,
		close:      db.Close,
	}, nil
}
