package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"gorecords/docs"
	"gorecords/internal/api/address"
	"gorecords/internal/api/product"
	"gorecords/internal/api/user"
	"gorecords/internal/domain"
	"gorecords/internal/pkg/cache"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/pkg/metrics"
	"gorecords/internal/pkg/middleware"
)

// Dependencies reúne os handlers e a infraestrutura usados pelo roteador.
// Tokens nil desliga a autenticação; RateLimiter nil desliga o rate limiting.
type Dependencies struct {
	Users     *user.Handler
	Products  *product.Handler
	Addresses *address.Handler

	Logger   logger.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	Tokens middleware.TokenValidator

	RateLimiter     cache.Client
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(d Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(d.Metrics))
	if d.RateLimiter != nil {
		r.Use(middleware.RateLimiter(d.RateLimiter, d.RateLimitMax, d.RateLimitWindow, d.Logger, d.Metrics))
	}

	r.Get("/ping", PingHandler)
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/swagger/doc.json", SwaggerDocHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// protect monta a cadeia de autenticação das rotas de escrita.
	protect := func(roles ...domain.UserRole) []func(http.Handler) http.Handler {
		if d.Tokens == nil {
			return nil
		}
		mws := []func(http.Handler) http.Handler{middleware.Authenticate(d.Tokens, d.Logger, d.Metrics)}
		if len(roles) > 0 {
			mws = append(mws, middleware.RequireRoles(d.Logger, d.Metrics, roles...))
		}
		return mws
	}

	r.Route("/api/users", func(r chi.Router) {
		h := d.Users
		r.Get("/", h.List)
		r.Get("/count", h.Count)
		r.Get("/search", h.Search)
		r.Get("/email/{email}", h.GetByEmail)
		r.Get("/role/{role}", h.ListByRole)
		r.Get("/{id}", h.GetByID)

		r.With(protect()...).Post("/", h.Create)
		r.With(protect()...).Put("/{id}", h.Update)
		r.With(protect(domain.RoleAdmin)...).Delete("/{id}", h.Delete)
	})

	r.Route("/api/products", func(r chi.Router) {
		h := d.Products
		r.Get("/", h.List)
		r.Get("/active", h.ListActive)
		r.Get("/in-stock", h.ListInStock)
		r.Get("/out-of-stock", h.ListOutOfStock)
		r.Get("/price-range", h.ListByPriceRange)
		r.Get("/search", h.Search)
		r.Get("/count", h.Count)
		r.Get("/count/active", h.CountActive)
		r.Get("/count/category/{category}", h.CountByCategory)
		r.Get("/name/{name}", h.GetByName)
		r.Get("/sku/{sku}", h.GetBySKU)
		r.Get("/category/{category}", h.ListByCategory)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(protect(domain.RoleAdmin)...)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Patch("/{id}/deactivate", h.Deactivate)
			r.Patch("/{id}/activate", h.Activate)
			r.Patch("/{id}/quantity", h.SetQuantity)
		})
	})

	r.Route("/api/addresses", func(r chi.Router) {
		h := d.Addresses
		r.Get("/", h.List)
		r.Get("/city/{city}", h.ListByCity)
		r.Get("/state/{state}", h.ListByState)
		r.Get("/country/{country}", h.ListByCountry)
		r.Get("/user/{userId}", h.ListByUser)
		r.Get("/user/{userId}/type/{type}", h.ListByUserAndType)
		r.Get("/user/{userId}/default", h.GetDefaultForUser)
		r.Get("/user/{userId}/count", h.CountByUser)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(protect()...)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Replace)
			r.Patch("/{id}", h.Update)
			r.Patch("/{id}/user/{userId}/set-default", h.SetDefault)
			r.Delete("/{id}", h.Delete)
			r.Delete("/user/{userId}", h.DeleteAllForUser)
		})
	})

	return r
}

// PingHandler é o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// SwaggerDocHandler serve o documento OpenAPI embutido.
func SwaggerDocHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(docs.SwaggerJSON)
}
