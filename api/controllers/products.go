package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ojastore/storefront-backend/api/responses"
	"github.com/ojastore/storefront-backend/api/validators"
	"github.com/ojastore/storefront-backend/internal/products"
	"github.com/ojastore/storefront-backend/pkg/catalog"
	"github.com/ojastore/storefront-backend/pkg/logger"
)

const maxProductLimit = 100

type productListResponse struct {
	Products []catalog.Product `json:"products"`
}

type productResponse struct {
	Product *catalog.Product `json:"product"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// ProductsList serves the catalog filtered by ?category, ?search and ?sort.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("products"))
			return
		}
		q := r.URL.Query()
		items, err := svc.List(r.Context(), products.Query{
			Category: strings.TrimSpace(q.Get("category")),
			Search:   strings.TrimSpace(q.Get("search")),
			Sort:     strings.TrimSpace(q.Get("sort")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productListResponse{Products: nonNil(items)})
	}
}

func ProductsFeatured(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("products"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", products.DefaultFeaturedCount, 1, maxProductLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Featured(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productListResponse{Products: nonNil(items)})
	}
}

func ProductsBestSellers(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("products"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", products.DefaultBestSellerCount, 1, maxProductLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.BestSellers(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productListResponse{Products: nonNil(items)})
	}
}

func ProductsCategories(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("products"))
			return
		}
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if categories == nil {
			categories = []string{}
		}
		responses.WriteSuccess(w, categoriesResponse{Categories: categories})
	}
}

func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("products"))
			return
		}
		id, err := validators.ParseProductID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productResponse{Product: product})
	}
}

func nonNil(items []catalog.Product) []catalog.Product {
	if items == nil {
		return []catalog.Product{}
	}
	return items
}
