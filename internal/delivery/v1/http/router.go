package http

import (
	"net/http"
	"time"

	_ "github.com/DRSN-tech/storefront-backend/docs" // Регистрация swagger-спецификации
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// UseCases - зависимости HTTP-слоя
type UseCases struct {
	Order   usecase.OrderUC
	Cart    usecase.CartUC
	Product usecase.ProductUC
	Auth    usecase.AuthUC
}

type Router struct {
	router  *chi.Mux
	logger  logger.Logger
	metrics RequestMetrics
	// metricsHandler отдаёт /metrics, может быть nil
	metricsHandler http.Handler
}

func NewRouter(router *chi.Mux, logger logger.Logger, metrics RequestMetrics, metricsHandler http.Handler) *Router {
	return &Router{router: router, logger: logger, metrics: metrics, metricsHandler: metricsHandler}
}

func (r *Router) Init(uc UseCases, requestTimeout time.Duration) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(RequestLogger(r.logger))
	r.router.Use(middleware.Recoverer)
	if r.metrics != nil {
		r.router.Use(Metrics(r.metrics))
	}

	r.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler)
	}
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		if requestTimeout > 0 {
			v1.Use(middleware.Timeout(requestTimeout))
		}

		auth := Authenticate(uc.Auth, r.logger)

		registerAuthRoutes(v1, NewAuthHandler(uc.Auth, r.logger))
		registerProductRoutes(v1, NewProductHandler(uc.Product, r.logger), auth)
		registerCartRoutes(v1, NewCartHandler(uc.Cart, r.logger), auth)
		registerOrderRoutes(v1, NewOrderHandler(uc.Order, r.logger), auth)
	})
}

func registerAuthRoutes(router chi.Router, h *AuthHandler) {
	router.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", h.register)
		ar.Post("/login", h.login)
	})
}

func registerProductRoutes(router chi.Router, h *ProductHandler, auth func(http.Handler) http.Handler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Get("/{id}", h.getProduct)
		pr.With(auth).Post("/", h.createProduct)
	})
}

func registerCartRoutes(router chi.Router, h *CartHandler, auth func(http.Handler) http.Handler) {
	router.Route("/cart", func(cr chi.Router) {
		cr.Use(auth)
		cr.Get("/", h.getCart)
		cr.Post("/items", h.addItem)
		cr.Put("/items/{productId}", h.updateItem)
		cr.Delete("/items/{productId}", h.removeItem)
	})
}

func registerOrderRoutes(router chi.Router, h *OrderHandler, auth func(http.Handler) http.Handler) {
	router.Route("/orders", func(or chi.Router) {
		or.Use(auth)
		or.Post("/", h.placeOrder)
		or.Get("/", h.listOrders)
		or.Get("/{id}", h.getOrder)
		or.Put("/{id}/status", h.setOrderStatus)
		or.Get("/{id}/receipt", h.getReceipt)
	})
}
