// Package app contains the application setup for the inventory service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/inventory/gateway"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/abgdnv/inventory/internal/inventory/transport/rest"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Coordinator *service.Coordinator
	Logger      *slog.Logger
}

func SetupDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	gw := gateway.NewClient(cfg.Upstream, logger)
	coordinator := service.NewCoordinator(gw, store.NewInMemoryStore(), rest.RoleAuthorizer{}, logger)

	return &Dependencies{
		Coordinator: coordinator,
		Logger:      logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the inventory service.
// Used by tests to exercise the full router without a listening server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the inventory service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	inventoryHandler := rest.NewHandler(deps.Coordinator, deps.Logger)
	inventoryHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the inventory service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
