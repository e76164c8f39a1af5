package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/ojastore/storefront-backend/api"
	"github.com/ojastore/storefront-backend/api/routes"
	"github.com/ojastore/storefront-backend/internal/auth"
	"github.com/ojastore/storefront-backend/internal/cart"
	"github.com/ojastore/storefront-backend/internal/checkout"
	"github.com/ojastore/storefront-backend/internal/favorites"
	"github.com/ojastore/storefront-backend/internal/orders"
	"github.com/ojastore/storefront-backend/internal/products"
	"github.com/ojastore/storefront-backend/internal/profile"
	"github.com/ojastore/storefront-backend/internal/users"
	"github.com/ojastore/storefront-backend/pkg/auth/session"
	"github.com/ojastore/storefront-backend/pkg/catalog"
	"github.com/ojastore/storefront-backend/pkg/config"
	"github.com/ojastore/storefront-backend/pkg/db"
	"github.com/ojastore/storefront-backend/pkg/logger"
	"github.com/ojastore/storefront-backend/pkg/metrics"
	"github.com/ojastore/storefront-backend/pkg/migrate"
	"github.com/ojastore/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("run dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps, err := buildDependencies(cfg, dbClient, redisClient, sessionManager, registry)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := api.NewServer(addr, routes.NewRouter(cfg, logg, deps), logg)
	return server.Run(ctx)
}

func buildDependencies(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client, sessionManager *session.Manager, registry *prometheus.Registry) (routes.Dependencies, error) {
	usersRepo := users.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	catalogClient := catalog.NewClient(
		catalog.WithBaseURL(cfg.Catalog.BaseURL),
		catalog.WithLimit(cfg.Catalog.Limit),
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.Catalog.Timeout}),
		catalog.WithCache(redisClient, cfg.Catalog.CacheTTL),
	)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("create auth service: %w", err)
	}
	productService, err := products.NewService(catalogClient, nil)
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("create products service: %w", err)
	}
	cartService, err := cart.NewService(cartRepo)
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("create cart service: %w", err)
	}
	favoritesService, err := favorites.NewService(favorites.NewRepository(dbClient.DB()))
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("create favorites service: %w", err)
	}
	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("create orders service: %w", err)
	}
	checkoutService, err := checkout.NewService(dbClient, ordersRepo, cartRepo, usersRepo, metrics.NewCheckoutMetrics(registry))
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("create checkout service: %w", err)
	}
	profileService, err := profile.NewService(usersRepo)
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("create profile service: %w", err)
	}

	return routes.Dependencies{
		DB:        dbClient,
		Redis:     redisClient,
		Sessions:  sessionManager,
		Gatherer:  registry,
		HTTP:      metrics.NewHTTPMetrics(registry),
		Auth:      authService,
		Products:  productService,
		Cart:      cartService,
		Favorites: favoritesService,
		Orders:    ordersService,
		Checkout:  checkoutService,
		Profile:   profileService,
	}, nil
}
