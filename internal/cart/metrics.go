package cart

import "github.com/prometheus/client_golang/prometheus"

var (
	openCarts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_cart_open",
			Help: "Number of open draft carts",
		},
	)

	checkoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_checkouts_total",
			Help: "Total number of completed checkouts",
		},
		[]string{"payment_method"},
	)

	checkoutAmount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_checkout_amount",
			Help:    "Order amount per checkout",
			Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500},
		},
		[]string{"payment_method"},
	)

	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_scans_total",
			Help: "Scanned codes by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(openCarts, checkoutsTotal, checkoutAmount, scansTotal)
}
