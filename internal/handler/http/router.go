package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IGDevX/marche-conclu-shop-service/pkg/health"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/middleware"
)

// Services groups everything the router dispatches to.
type Services struct {
	Currencies     CurrencyService
	Units          UnitService
	Shelves        ShelfService
	Certifications CertificationService
	Categories     CategoryService
	Products       ProductService
	Search         SearchService
	Index          IndexAdmin
}

// RouterConfig holds the router settings that come from configuration.
type RouterConfig struct {
	ServiceName       string
	IndexAdminRPS     float64
	IndexAdminBurst   int
	PprofAllowedCIDRs []string
	CORS              middleware.CORSConfig
}

// NewRouter creates a chi router with all shop service routes registered.
func NewRouter(cfg RouterConfig, svc Services, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.CleanPath)
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/currencies", currencyRoutes(svc.Currencies, logger))
		r.Route("/units", unitRoutes(svc.Units, logger))
		r.Route("/shelves", shelfRoutes(svc.Shelves, logger))
		r.Route("/certifications", certificationRoutes(svc.Certifications, logger))
		r.Route("/categories", categoryRoutes(svc.Categories, logger))
		r.Route("/products", productRoutes(cfg, svc, logger))
	})

	return r
}

func productRoutes(cfg RouterConfig, svc Services, logger *slog.Logger) func(chi.Router) {
	products := NewProductHandler(svc.Products, logger)
	search := NewSearchHandler(svc.Search, logger)
	index := NewIndexHandler(svc.Index, logger)

	return func(r chi.Router) {
		r.Post("/search", search.Search)
		r.Get("/suggest", search.Suggest)
		r.Get("/producer/{producerId}", search.ByProducer)

		r.Route("/index", func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.IndexAdminRPS, cfg.IndexAdminBurst))
			r.Post("/recreate", index.Recreate)
			r.Post("/reindex-all", index.ReindexAll)
			r.Post("/recreate-and-reindex", index.RecreateAndReindex)
			r.Post("/reindex/{id}", index.ReindexOne)
			r.Delete("/clear", index.Clear)
		})

		r.Get("/", products.ListProducts(false))
		r.Get("/deleted", products.ListProducts(true))
		r.Post("/", products.CreateProduct)
		r.Get("/{id}", products.GetProduct)
		r.Put("/{id}", products.UpdateProduct)
		r.Post("/{id}/image", products.UploadImage)
		r.Delete("/{id}/image", products.DeleteImage)
		mountLifecycle(r, svc.Products, logger)
	}
}
