// Package app wires the inventory service together.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/idgen"
	"github.com/abgdnv/inventory/internal/service"
	"github.com/abgdnv/inventory/internal/store"
	"github.com/abgdnv/inventory/internal/transport/rest"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	ProductService service.ProductService
	// Metrics serves the Prometheus scrape endpoint; nil leaves /metrics unrouted.
	Metrics http.Handler
	Logger  *slog.Logger
}

// SetupDependencies builds the generator, stores and service on dbPool.
// Every generator built here shares idgen.SharedGuard.
func SetupDependencies(dbPool *pgxpool.Pool, cfg *config.Config, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	var counterOpts []store.CounterStoreOption
	if cfg.IDGen.AdvisoryLock {
		counterOpts = append(counterOpts, store.WithAdvisoryLock(cfg.IDGen.AdvisoryLockKey))
	}
	generator := idgen.NewGenerator(
		store.NewPgCounterStore(dbPool, counterOpts...),
		idgen.WithAcquireTimeout(cfg.IDGen.AcquireTimeout),
		idgen.WithLogger(logger),
	)
	pService := service.NewService(store.NewPgStore(dbPool), generator, publisher, logger)

	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
	}
}

// SetupHttpHandler builds the router with middleware, API routes and /metrics.
// Used by E2E tests to serve the API from an httptest.Server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return server.Instrument(mux, "inventory-http")
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	rest.NewHandler(deps.ProductService, deps.Logger).RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
}

// SetupHttpServer creates the HTTP server for the inventory service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}
	return server.NewHTTPServer(httpCfg, SetupHttpHandler(deps))
}
