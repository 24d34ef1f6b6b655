package router

import (
	"net/http"
	"time"

	"wellspring/internal/auth"
	"wellspring/internal/handler"
	"wellspring/internal/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Page     *handler.PageHandler
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Webhook  *handler.WebhookHandler
	Profile  *handler.ProfileHandler
	Admin    *handler.AdminHandler
}

// Options configures the middleware chain.
type Options struct {
	AllowedOrigins []string
	Verifier       auth.Verifier
	Admins         middleware.AdminChecker

	CartCookieName   string
	CartCookieSecure bool
	CartTTL          time.Duration

	// RateLimitClient enables per-client rate limiting when set.
	RateLimitClient *redis.Client
	RateLimit       int
	RateLimitWindow time.Duration

	// MediaDir, when set, is served under /media/ for locally stored uploads.
	MediaDir string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	authenticated := middleware.Authenticate(opts.Verifier, logger)
	optionalAuth := middleware.OptionalAuth(opts.Verifier, logger)
	admin := func(next http.HandlerFunc) http.Handler {
		return authenticated(middleware.RequireAdmin(opts.Admins, logger)(next))
	}

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", handler.Health)

	// Public content and catalog
	mux.HandleFunc("GET /api/pages/{slug}", h.Page.Get)
	mux.HandleFunc("GET /api/products", h.Catalog.ListProducts)
	mux.HandleFunc("GET /api/products/{slug}", h.Catalog.GetProduct)
	mux.HandleFunc("GET /api/services", h.Catalog.ListServices)
	mux.HandleFunc("GET /api/services/{slug}", h.Catalog.GetService)
	mux.HandleFunc("GET /api/services/{slug}/availability", h.Catalog.Availability)

	// Session cart
	mux.HandleFunc("GET /api/cart", h.Cart.Get)
	mux.HandleFunc("DELETE /api/cart", h.Cart.Clear)
	mux.HandleFunc("POST /api/cart/items", h.Cart.AddItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.Cart.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.Cart.RemoveItem)
	mux.HandleFunc("GET /api/cart/events", h.Cart.Events)

	// Checkout and payment
	mux.Handle("POST /api/checkout", optionalAuth(http.HandlerFunc(h.Checkout.Checkout)))
	mux.HandleFunc("GET /api/checkout/sessions/{sessionId}", h.Checkout.SessionStatus)
	mux.HandleFunc("POST /api/webhooks/stripe", h.Webhook.Stripe)

	// Authenticated caller
	mux.Handle("GET /api/me", authenticated(http.HandlerFunc(h.Profile.Me)))

	// Admin
	mux.Handle("GET /api/admin/pages", admin(h.Admin.ListPages))
	mux.Handle("POST /api/admin/pages", admin(h.Admin.CreatePage))
	mux.Handle("GET /api/admin/pages/{id}", admin(h.Admin.GetPage))
	mux.Handle("PUT /api/admin/pages/{id}", admin(h.Admin.UpdatePage))
	mux.Handle("DELETE /api/admin/pages/{id}", admin(h.Admin.DeletePage))
	mux.Handle("POST /api/admin/pages/{id}/sections", admin(h.Admin.CreateSection))
	mux.Handle("PUT /api/admin/sections/{id}", admin(h.Admin.UpdateSection))
	mux.Handle("DELETE /api/admin/sections/{id}", admin(h.Admin.DeleteSection))
	mux.Handle("POST /api/admin/sections/{id}/blocks", admin(h.Admin.CreateBlock))
	mux.Handle("PUT /api/admin/blocks/{id}", admin(h.Admin.UpdateBlock))
	mux.Handle("DELETE /api/admin/blocks/{id}", admin(h.Admin.DeleteBlock))
	mux.Handle("PUT /api/admin/blocks/{id}/translations/{lang}", admin(h.Admin.UpsertTranslation))
	mux.Handle("DELETE /api/admin/blocks/{id}/translations/{lang}", admin(h.Admin.DeleteTranslation))
	mux.Handle("POST /api/admin/media", admin(h.Admin.UploadMedia))
	mux.Handle("GET /api/admin/orders", admin(h.Admin.ListOrders))
	mux.Handle("GET /api/admin/orders/{id}", admin(h.Admin.GetOrder))

	if opts.MediaDir != "" {
		mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(opts.MediaDir))))
	}

	// Apply middleware in order: Recovery -> Logging -> CORS -> RateLimit -> CartSession
	var handler http.Handler = mux
	handler = middleware.CartSession(opts.CartCookieName, opts.CartCookieSecure, opts.CartTTL, logger)(handler)
	if opts.RateLimitClient != nil {
		handler = middleware.RateLimit(opts.RateLimitClient, opts.RateLimit, opts.RateLimitWindow, logger)(handler)
	}
	handler = middleware.CORS(opts.AllowedOrigins)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
