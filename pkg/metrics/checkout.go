package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// CheckoutMetrics records order placement outcomes.
type CheckoutMetrics struct {
	placed *prometheus.CounterVec
	failed *prometheus.CounterVec
	totals prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_placed_total",
		Help: "Orders created by checkout.",
	}, []string{"owner_kind"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_failed_total",
		Help: "Checkout attempts rejected or failed, by error code.",
	}, []string{"code"})
	totals := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_order_total",
		Help:    "Order totals in store currency.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
	reg.MustRegister(placed, failed, totals)
	return &CheckoutMetrics{placed: placed, failed: failed, totals: totals}
}

// ObservePlaced counts a created order and records its total.
func (c *CheckoutMetrics) ObservePlaced(ownerKind string, total decimal.Decimal) {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.WithLabelValues(normalizeLabel(ownerKind)).Inc()
	c.totals.Observe(total.InexactFloat64())
}

// IncFailure counts a checkout that did not produce an order.
func (c *CheckoutMetrics) IncFailure(code string) {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.WithLabelValues(normalizeLabel(code)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
