package service

import "github.com/prometheus/client_golang/prometheus"

var (
	checkoutSessionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_sessions_total",
		Help: "Checkout sessions opened with the payment processor",
	}, []string{"result"})

	ordersCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Orders recorded from completed checkouts",
	})

	invoicesGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_invoices_generated_total",
		Help: "PDF invoices rendered",
	})
)

func init() {
	prometheus.MustRegister(checkoutSessionsTotal, ordersCreatedTotal, invoicesGeneratedTotal)
}
