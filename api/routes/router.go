package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ojastore/storefront-backend/api/controllers"
	"github.com/ojastore/storefront-backend/api/middleware"
	"github.com/ojastore/storefront-backend/internal/auth"
	"github.com/ojastore/storefront-backend/internal/cart"
	"github.com/ojastore/storefront-backend/internal/checkout"
	"github.com/ojastore/storefront-backend/internal/favorites"
	"github.com/ojastore/storefront-backend/internal/orders"
	"github.com/ojastore/storefront-backend/internal/products"
	"github.com/ojastore/storefront-backend/internal/profile"
	"github.com/ojastore/storefront-backend/pkg/auth/session"
	"github.com/ojastore/storefront-backend/pkg/config"
	"github.com/ojastore/storefront-backend/pkg/logger"
	"github.com/ojastore/storefront-backend/pkg/metrics"
	"github.com/ojastore/storefront-backend/pkg/redis"
)

// SessionManager validates, rotates and revokes access sessions.
type SessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Dependencies are the services mounted by NewRouter. A nil Redis client
// disables idempotency replay and auth rate limiting.
type Dependencies struct {
	DB       controllers.Pinger
	Redis    *redis.Client
	Sessions SessionManager
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	Auth      auth.Service
	Products  products.Service
	Cart      cart.Service
	Favorites favorites.Service
	Orders    orders.Service
	Checkout  checkout.Service
	Profile   profile.Service

	// Identity overrides the guest cookie settings derived from config.
	Identity *middleware.IdentityOptions
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTP),
		middleware.CORS(cfg.App.AllowedOrigins),
		middleware.DebugDetails(!cfg.App.IsProd()),
	)

	identityOpts := middleware.IdentityOptionsFromConfig(cfg)
	if deps.Identity != nil {
		identityOpts = *deps.Identity
	}

	readiness := map[string]controllers.Pinger{}
	if deps.DB != nil {
		readiness["postgres"] = deps.DB
	}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(deps.Products, logg))
		r.Get("/featured", controllers.ProductsFeatured(deps.Products, logg))
		r.Get("/best-sellers", controllers.ProductsBestSellers(deps.Products, logg))
		r.Get("/categories", controllers.ProductsCategories(deps.Products, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.Products, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		login := r.With()
		signup := r.With()
		if deps.Redis != nil {
			login = r.With(middleware.AuthRateLimit(middleware.NewAuthRateLimitPolicy(
				"login",
				cfg.AuthRateLimit.LoginWindow,
				cfg.AuthRateLimit.LoginIPLimit,
				cfg.AuthRateLimit.LoginEmailLimit,
			), deps.Redis, logg))
			signup = r.With(middleware.AuthRateLimit(middleware.NewAuthRateLimitPolicy(
				"signup",
				cfg.AuthRateLimit.SignupWindow,
				cfg.AuthRateLimit.SignupIPLimit,
				cfg.AuthRateLimit.SignupEmailLimit,
			), deps.Redis, logg))
		}
		login.Post("/login", controllers.AuthLogin(deps.Auth, logg))
		signup.Post("/signup", controllers.AuthSignup(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Sessions, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg.JWT, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Identity(identityOpts, logg))
		if deps.Redis != nil {
			r.Use(middleware.Idempotency(deps.Redis, logg))
		}

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartList(deps.Cart, logg))
			r.Post("/", controllers.CartAdd(deps.Cart, logg))
			r.Patch("/", controllers.CartUpdate(deps.Cart, logg))
			r.Delete("/", controllers.CartRemove(deps.Cart, logg))
		})
		r.Route("/api/v1/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoritesList(deps.Favorites, logg))
			r.Post("/", controllers.FavoritesAdd(deps.Favorites, logg))
			r.Delete("/", controllers.FavoritesRemove(deps.Favorites, logg))
		})
		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Post("/", controllers.OrdersCreate(deps.Checkout, logg))
		})
		r.Route("/api/v1/profile", func(r chi.Router) {
			r.Use(middleware.RequireAccount(logg))
			r.Get("/", controllers.ProfileGet(deps.Profile, logg))
			r.Put("/", controllers.ProfileUpdate(deps.Profile, logg))
		})
	})

	return r
}
