package controllers

import (
	"net/http"

	"github.com/ojastore/storefront-backend/api/responses"
	"github.com/ojastore/storefront-backend/api/validators"
	"github.com/ojastore/storefront-backend/internal/checkout"
	"github.com/ojastore/storefront-backend/internal/orders"
	"github.com/ojastore/storefront-backend/pkg/logger"
)

type orderResponse struct {
	Order orders.OrderDTO `json:"order"`
}

// OrdersList returns the owner's orders, newest first, with their lines.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("orders"))
			return
		}
		owner, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrdersCreate places an order from the submitted lines and empties the cart.
func OrdersCreate(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("checkout"))
			return
		}
		owner, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkout.PlaceOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), owner, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{"order_id": order.ID.String(), "total": order.Total.StringFixed(2)})
			logg.Info(ctx, "checkout.order_placed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderResponse{Order: order})
	}
}
