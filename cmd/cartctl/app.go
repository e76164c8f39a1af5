package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ojastore/storefront-backend/internal/cartstore"
	"github.com/ojastore/storefront-backend/internal/checkout"
	"github.com/ojastore/storefront-backend/internal/orders"
	"github.com/ojastore/storefront-backend/pkg/catalog"
	"github.com/ojastore/storefront-backend/pkg/logger"
	"github.com/ojastore/storefront-backend/pkg/types"
	"github.com/shopspring/decimal"
)

const usage = `usage: cartctl <command> [flags]

commands:
  add -id N              add one unit of catalog product N
  update -id N -qty Q    set the quantity (0 removes)
  remove -id N           remove the product
  clear                  empty the cart
  show                   print the cart and totals
  checkout -api URL      place the order and clear the cart`

type productFetcher interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

type app struct {
	store   *cartstore.Store
	catalog productFetcher
	client  *http.Client
	timeout time.Duration
	out     io.Writer
	logg    *logger.Logger
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.Int64("id", 0, "product id")
	qty := fs.Int("qty", 0, "quantity")
	api := fs.String("api", "http://localhost:8080", "storefront API base URL")
	email := fs.String("email", "", "contact email for the order")
	name := fs.String("name", "", "recipient name")
	address := fs.String("address", "", "shipping address")
	if err := fs.Parse(rest); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}

	switch cmd {
	case "add":
		if *id <= 0 {
			return errors.New("add: -id is required")
		}
		product, err := a.catalog.GetProduct(ctx, *id)
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}
		if err := a.store.Add(*product); err != nil {
			return err
		}
		return a.show()
	case "update":
		if *id <= 0 {
			return errors.New("update: -id is required")
		}
		if err := a.store.UpdateQuantity(*id, *qty); err != nil {
			return err
		}
		return a.show()
	case "remove":
		if *id <= 0 {
			return errors.New("remove: -id is required")
		}
		if err := a.store.Remove(*id); err != nil {
			return err
		}
		return a.show()
	case "clear":
		return a.store.Clear()
	case "show":
		return a.show()
	case "checkout":
		return a.checkout(ctx, *api, checkoutContact{email: *email, name: *name, address: *address})
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func (a *app) show() error {
	items := a.store.Items()
	if len(items) == 0 {
		_, err := fmt.Fprintln(a.out, "cart is empty")
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tQTY")
	for _, line := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", line.Product.ID, line.Product.Title,
			decimal.NewFromFloat(line.Product.Price).StringFixed(2), line.Quantity)
	}
	fmt.Fprintf(tw, "\t\t%s\t%d\n", a.store.TotalPrice().StringFixed(2), a.store.TotalItems())
	return tw.Flush()
}

type checkoutContact struct {
	email, name, address string
}

func (a *app) checkout(ctx context.Context, baseURL string, contact checkoutContact) error {
	items := a.store.Items()
	if len(items) == 0 {
		return errors.New("checkout: cart is empty")
	}

	req := checkout.PlaceOrderRequest{
		Email:   optional(contact.email),
		Name:    optional(contact.name),
		Address: optional(contact.address),
	}
	for _, line := range items {
		input := checkout.ItemInput{
			ProductID: line.Product.ID,
			Title:     line.Product.Title,
			Price:     decimal.NewFromFloat(line.Product.Price).Round(2),
			Quantity:  line.Quantity,
		}
		input.Image = optional(line.Product.Image)
		req.Items = append(req.Items, input)
	}

	order, err := a.postOrder(ctx, strings.TrimRight(baseURL, "/")+"/api/v1/orders", req)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := a.store.Clear(); err != nil {
		return fmt.Errorf("checkout: order %s placed but clearing the cart failed: %w", order.ID, err)
	}
	a.logg.Info(a.logg.WithField(ctx, "order_id", order.ID.String()), "order placed")
	_, err = fmt.Fprintf(a.out, "order %s placed, total %s\n", order.ID, order.Total.StringFixed(2))
	return err
}

func (a *app) postOrder(ctx context.Context, url string, body checkout.PlaceOrderRequest) (*orders.OrderDTO, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client, err := a.httpClient()
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	decoded, err := types.DecodeEnvelope[struct {
		Order orders.OrderDTO `json:"order"`
	}](resp.StatusCode, raw)
	if err != nil {
		return nil, err
	}
	return &decoded.Order, nil
}

// httpClient keeps the guest session cookie the API issues on first contact.
func (a *app) httpClient() (*http.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	timeout := a.timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	a.client = &http.Client{Jar: jar, Timeout: timeout}
	return a.client, nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
