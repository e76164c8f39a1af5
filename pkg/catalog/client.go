package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
)

const (
	DefaultBaseURL = "https://dummyjson.com"
	DefaultLimit   = 100

	errorBodyReadLimit int64 = 1024
	bodyReadLimit      int64 = 8 << 20
)

// Cache stores raw catalog responses keyed by request path.
type Cache interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Store(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// Client reads products and categories from the external catalog API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limit      int
	cache      Cache
	cacheTTL   time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the catalog base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithLimit sets the page size used for listings.
func WithLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithCache enables response caching. A non-positive ttl disables it.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if cache != nil && ttl > 0 {
			c.cache = cache
			c.cacheTTL = ttl
		}
	}
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		limit:      DefaultLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// ListProducts returns the first page of the catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var page productPage
	if err := c.get(ctx, fmt.Sprintf("products?limit=%d", c.limit), &page); err != nil {
		return nil, err
	}
	return page.transform(), nil
}

// GetProduct returns one product. Unknown ids yield NOT_FOUND.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	var raw sourceProduct
	if err := c.get(ctx, fmt.Sprintf("products/%d", id), &raw); err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
		}
		return nil, err
	}
	product := raw.transform()
	return &product, nil
}

// ListCategories returns category slugs.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var raw []json.RawMessage
	if err := c.get(ctx, "products/categories", &raw); err != nil {
		return nil, err
	}
	return parseCategories(raw), nil
}

// ListByCategory returns the products of one category.
func (c *Client) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	var page productPage
	path := fmt.Sprintf("products/category/%s?limit=%d", url.PathEscape(trimmed), c.limit)
	if err := c.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.transform(), nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}

	if c.cache != nil {
		if payload, ok, err := c.cache.Load(ctx, path); err == nil && ok {
			if json.Unmarshal(payload, out) == nil {
				return nil
			}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build catalog request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute catalog request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "catalog resource not found")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "catalog request failed")
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, bodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read catalog response")
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog response")
	}

	if c.cache != nil {
		// a failed cache write only costs a refetch
		_ = c.cache.Store(ctx, path, payload, c.cacheTTL)
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"))
}
