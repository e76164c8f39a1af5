// Package products builds the storefront's catalog views on top of the
// upstream catalog client.
package products

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/ojastore/storefront-backend/pkg/catalog"
	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
)

const (
	DefaultFeaturedCount    = 8
	DefaultBestSellerCount  = 4
	bestSellerMinimumRating = 4.5
)

// Sort orders accepted by List.
const (
	SortDefault   = "default"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortName      = "name"
)

// Query filters the product list. Empty fields are ignored.
type Query struct {
	Category string
	Search   string
	Sort     string
}

type catalogSource interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListByCategory(ctx context.Context, category string) ([]catalog.Product, error)
}

type Service interface {
	List(ctx context.Context, q Query) ([]catalog.Product, error)
	Get(ctx context.Context, id int64) (*catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Featured(ctx context.Context, n int) ([]catalog.Product, error)
	BestSellers(ctx context.Context, n int) ([]catalog.Product, error)
}

type service struct {
	catalog catalogSource

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService builds the catalog views. rng may be nil.
func NewService(source catalogSource, rng *rand.Rand) (Service, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog client is required")
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &service{catalog: source, rng: rng}, nil
}

func (s *service) List(ctx context.Context, q Query) ([]catalog.Product, error) {
	sortKey := strings.TrimSpace(q.Sort)
	if sortKey == "" {
		sortKey = SortDefault
	}
	if !validSort(sortKey) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"sort": "must be one of default, price-low, price-high, rating, name"})
	}

	var (
		items []catalog.Product
		err   error
	)
	if category := strings.TrimSpace(q.Category); category != "" {
		items, err = s.catalog.ListByCategory(ctx, category)
	} else {
		items, err = s.catalog.ListProducts(ctx)
	}
	if err != nil {
		return nil, err
	}

	items = filterSearch(items, q.Search)
	sortProducts(items, sortKey)
	return items, nil
}

func (s *service) Get(ctx context.Context, id int64) (*catalog.Product, error) {
	return s.catalog.GetProduct(ctx, id)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.catalog.ListCategories(ctx)
}

// Featured returns n products drawn uniformly without replacement.
func (s *service) Featured(ctx context.Context, n int) ([]catalog.Product, error) {
	if n <= 0 {
		n = DefaultFeaturedCount
	}
	items, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	shuffled := append([]catalog.Product(nil), items...)

	s.mu.Lock()
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	s.mu.Unlock()

	return firstN(shuffled, n), nil
}

// BestSellers returns the first n products rated at least 4.5, in catalog order.
func (s *service) BestSellers(ctx context.Context, n int) ([]catalog.Product, error) {
	if n <= 0 {
		n = DefaultBestSellerCount
	}
	items, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, n)
	for _, p := range items {
		if p.Rating.Rate >= bestSellerMinimumRating {
			out = append(out, p)
		}
	}
	return firstN(out, n), nil
}

func filterSearch(items []catalog.Product, search string) []catalog.Product {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return items
	}
	out := make([]catalog.Product, 0, len(items))
	for _, p := range items {
		if strings.Contains(strings.ToLower(p.Title), term) || strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}

func sortProducts(items []catalog.Product, key string) {
	var less func(a, b catalog.Product) bool
	switch key {
	case SortPriceLow:
		less = func(a, b catalog.Product) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b catalog.Product) bool { return a.Price > b.Price }
	case SortRating:
		less = func(a, b catalog.Product) bool { return a.Rating.Rate > b.Rating.Rate }
	case SortName:
		less = func(a, b catalog.Product) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func validSort(key string) bool {
	switch key {
	case SortDefault, SortPriceLow, SortPriceHigh, SortRating, SortName:
		return true
	}
	return false
}

func firstN(items []catalog.Product, n int) []catalog.Product {
	if len(items) > n {
		return items[:n]
	}
	return items
}
