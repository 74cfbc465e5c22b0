package cli

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm/logger"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/events"
	httpapi "storefront/internal/http"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// app связывает хранилище, сервисы и HTTP-сервер по конфигурации
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	store     *repository.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	services  httpapi.Services
}

func gormLogLevel(level string) logger.LogLevel {
	if level == "debug" {
		return logger.Info
	}
	return logger.Warn
}

func openStore(ctx context.Context, cfg *config.Config, migrate bool) (*repository.Store, error) {
	return repository.Open(ctx, repository.Options{
		Driver:      cfg.Store.Driver,
		DSN:         cfg.Store.DSN,
		AutoMigrate: migrate,
		LogLevel:    gormLogLevel(cfg.Log.Level),
	})
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	store, err := openStore(ctx, cfg, cfg.Store.AutoMigrate)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:       cfg,
		log:       log,
		store:     store,
		publisher: events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic),
		metrics:   metrics.New(),
	}
	tokens := auth.NewTokenManager(cfg.Secret(), cfg.Auth.TokenTTL)
	a.services = httpapi.Services{
		Products: service.NewProductService(store.Products),
		Carts:    service.NewCartService(store.Carts, store.Products, store.Tx),
		Purchases: service.NewPurchaseEngine(store.Carts, store.Products, store.Tickets,
			service.WithCodeAttempts(cfg.Purchase.CodeAttempts),
			service.WithTxManager(store.Tx),
			service.WithPublisher(a.publisher),
			service.WithMetrics(a.metrics),
			service.WithLogger(log),
		),
		Users:   service.NewUserService(store.Users, store.Carts, store.Tx, tokens),
		Tickets: service.NewTicketService(store.Tickets),
		Export:  service.NewCatalogExporter(store.Products),
	}
	return a, nil
}

func (a *app) server() *httpapi.Server {
	return httpapi.NewServer(a.services, httpapi.Options{
		Logger:      a.log,
		Metrics:     a.metrics,
		CORSOrigins: a.cfg.HTTP.CORSOrigins,
		CookieName:  a.cfg.Auth.CookieName,
		TokenTTL:    a.cfg.Auth.TokenTTL,
	})
}

func (a *app) Close() error {
	return errors.Join(a.publisher.Close(), a.store.Close())
}
