package handlers

import (
	"net/http"

	"storefront/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers собирает обработчики для маршрутизатора.
type Handlers struct {
	Health      *HealthHandler
	RateLimit   *RateLimitHandler
	Shipping    *ShippingHandler
	Coupons     *CouponHandler
	Banners     *BannerHandler
	Promo       *PromoHandler
	GiftCards   *GiftCardHandler
	StoreCredit *StoreCreditHandler
	Reviews     *ReviewHandler
	Checkout    *CheckoutHandler
	Analytics   *AnalyticsHandler
}

// RouterOptions задаёт общие middleware.
type RouterOptions struct {
	Limiter      MiddlewareLimiter
	AllowOrigins []string
	Log          *logger.Logger
}

// NewRouter настраивает маршруты HTTP сервера
func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(opts.Log))
	r.Use(CORS(opts.AllowOrigins))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusNotFound, "Not found")
	})

	// Health check endpoints
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.Health.Health)
		r.Get("/readiness", h.Health.Readiness)
		r.Get("/liveness", h.Health.Liveness)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimitMiddleware(opts.Limiter, opts.Log))

		r.Get("/rate-limit/status", h.RateLimit.Status)
		r.Get("/shipping/options", h.Shipping.Options)
		r.Get("/banners", h.Banners.List)

		r.Route("/user", func(r chi.Router) {
			r.Get("/coupons", h.Coupons.ListForUser)
			r.Post("/coupons/{id}/evaluate", h.Coupons.Evaluate)
			r.Post("/coupons/{id}/redeem", h.Coupons.Redeem)
			r.Get("/store-credit", h.StoreCredit.Balance)
		})

		r.Post("/promo/validate", h.Promo.ValidatePromoCode)

		r.Route("/giftcards", func(r chi.Router) {
			r.Post("/", h.GiftCards.Issue)
			r.Post("/validate", h.GiftCards.Validate)
			r.Get("/{code}", h.GiftCards.Check)
			r.Post("/{code}/redeem", h.GiftCards.Redeem)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h.Reviews.List)
			r.Post("/", h.Reviews.Create)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/config", h.Checkout.Config)
			r.Post("/quote", h.Checkout.Quote)
			r.Post("/orders", h.Checkout.PlaceOrder)
		})

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Route("/promo-codes", func(r chi.Router) {
				r.Get("/", h.Promo.ListPromoCodes)
				r.Post("/", h.Promo.CreatePromoCode)
				r.Get("/{code}", h.Promo.GetPromoCode)
				r.Put("/{code}", h.Promo.UpdatePromoCode)
				r.Delete("/{code}", h.Promo.DeletePromoCode)
			})
			r.Post("/coupons", h.Coupons.Assign)
			r.Post("/store-credit", h.StoreCredit.Issue)
			r.Post("/store-credit/spend", h.StoreCredit.Spend)
			r.Route("/analytics", func(r chi.Router) {
				r.Get("/orders", h.Analytics.Orders)
				r.Get("/overview", h.Analytics.Overview)
				r.Get("/products", h.Analytics.Products)
			})
		})
	})

	return r
}
