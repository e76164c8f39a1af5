// Command cartctl manages a local shopping cart from the terminal and places
// the order against the storefront API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/ojastore/storefront-backend/internal/cartstore"
	"github.com/ojastore/storefront-backend/pkg/catalog"
	"github.com/ojastore/storefront-backend/pkg/env"
	"github.com/ojastore/storefront-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	logg := logger.New(logger.Options{
		ServiceName: "cartctl",
		Level:       logger.ParseLevel(env.Get("STOREFRONT_LOG_LEVEL", "warn")),
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dir := env.Get("STOREFRONT_CART_DIR", defaultCartDir())
	store, err := cartstore.Open(cartstore.NewFileStorage(dir))
	if err != nil {
		logg.Error(ctx, "failed to open cart", err)
		os.Exit(1)
	}

	a := &app{
		store:   store,
		catalog: catalog.NewClient(catalog.WithBaseURL(env.Get("STOREFRONT_CATALOG_BASE_URL", catalog.DefaultBaseURL))),
		timeout: env.Duration("STOREFRONT_CART_HTTP_TIMEOUT", 15*time.Second),
		out:     os.Stdout,
		logg:    logg,
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "cartctl:", err)
		os.Exit(1)
	}
}

func defaultCartDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "oja")
	}
	return ".oja"
}
