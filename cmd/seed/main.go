package main

import (
	"context"
	"errors"
	"log"
	"time"

	"jewelry-backoffice/config"
	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/service"
	"jewelry-backoffice/internal/store"
	"jewelry-backoffice/internal/util"

	"go.uber.org/zap"
)

// seedActor is the system identity recorded for seeded rows
var seedActor = models.Actor{Role: models.RoleAdmin}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	if cfg.Database.Driver != config.DriverPostgres {
		logger.Fatal("Seeding requires the postgres store", zap.String("driver", cfg.Database.Driver))
	}

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	result, err := seed(ctx, service.NewCatalogService(db))
	if err != nil {
		logger.Fatal("Failed to load jewelry data", zap.Error(err))
	}

	logger.Info("Jewelry store data loaded",
		zap.Int("products_created", result.productsCreated),
		zap.Int("products_total", len(products)),
		zap.Int("customers_created", result.customersCreated),
		zap.Int("customers_total", len(customers)))
}

type seedResult struct {
	productsCreated  int
	customersCreated int
}

// seed creates every demo product and customer whose SKU or code is not taken
func seed(ctx context.Context, catalog *service.CatalogService) (seedResult, error) {
	var result seedResult

	for i := range products {
		input := products[i]
		_, err := catalog.GetProductBySKU(ctx, input.SKU)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrNotFound) {
			return result, err
		}
		if _, err := catalog.CreateProduct(ctx, seedActor, &input); err != nil {
			return result, err
		}
		result.productsCreated++
	}

	for i := range customers {
		input := customers[i]
		_, err := catalog.GetCustomerByCode(ctx, input.CustomerCode)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrNotFound) {
			return result, err
		}
		if _, err := catalog.CreateCustomer(ctx, seedActor, &input); err != nil {
			return result, err
		}
		result.customersCreated++
	}

	return result, nil
}
