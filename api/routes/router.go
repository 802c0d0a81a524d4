package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradeforge/tradedocs-backend/api/controllers"
	"github.com/tradeforge/tradedocs-backend/api/middleware"
	"github.com/tradeforge/tradedocs-backend/internal/counterparties"
	"github.com/tradeforge/tradedocs-backend/internal/documents"
	"github.com/tradeforge/tradedocs-backend/internal/inventory"
	"github.com/tradeforge/tradedocs-backend/internal/products"
	"github.com/tradeforge/tradedocs-backend/pkg/config"
	"github.com/tradeforge/tradedocs-backend/pkg/db"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
	"github.com/tradeforge/tradedocs-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	documentService documents.Service,
	inventoryService inventory.Service,
	productService products.Service,
	counterpartyService counterparties.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	writePolicy := middleware.NewWriteRateLimitPolicy(
		"write",
		cfg.RateLimit.WriteWindow,
		cfg.RateLimit.WriteLimit,
	)

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Use(middleware.WriteRateLimit(writePolicy, redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", controllers.CreateDocument(documentService, logg))
			r.Get("/", controllers.ListDocuments(documentService, logg))
			r.Get("/{documentId}", controllers.GetDocument(documentService, logg))
			r.Put("/{documentId}/items", controllers.UpdateDocumentItems(documentService, logg))
			r.Patch("/{documentId}/status", controllers.TransitionDocument(documentService, logg))
			r.Delete("/{documentId}", controllers.DeleteDocument(documentService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(productService, logg))
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Get("/{productId}", controllers.GetProduct(productService, logg))
			r.Patch("/{productId}", controllers.UpdateProduct(productService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(productService, logg))
		})

		r.Route("/counterparties", func(r chi.Router) {
			r.Post("/", controllers.CreateCounterparty(counterpartyService, logg))
			r.Get("/", controllers.ListCounterparties(counterpartyService, logg))
			r.Get("/{counterpartyId}", controllers.GetCounterparty(counterpartyService, logg))
			r.Patch("/{counterpartyId}", controllers.UpdateCounterparty(counterpartyService, logg))
			r.Delete("/{counterpartyId}", controllers.DeleteCounterparty(counterpartyService, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/balances", controllers.ListStockBalances(inventoryService, logg))
			r.Get("/balances/{productId}", controllers.GetStockBalance(inventoryService, logg))
			r.Patch("/balances/{productId}/settings", controllers.UpdateStockSettings(inventoryService, logg))
			r.Get("/balances/{productId}/movements", controllers.ListStockMovements(inventoryService, logg))
			r.Post("/balances/{productId}/movements", controllers.PostStockMovement(inventoryService, logg))
		})
	})

	return r
}
