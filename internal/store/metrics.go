package store

import "github.com/prometheus/client_golang/prometheus"

var (
	productsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_store_products",
			Help: "Number of products held by the record store",
		},
	)

	ordersRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_store_orders_recorded_total",
			Help: "Total number of orders recorded by the record store",
		},
	)

	mirrorFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_store_mirror_failures_total",
			Help: "Total number of failed mirror writes",
		},
		[]string{"mirror", "operation"},
	)

	mirrorDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_store_mirror_dropped_total",
			Help: "Mirror writes dropped after exhausting retries or outbox capacity",
		},
		[]string{"mirror"},
	)

	mirrorPending = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pos_store_mirror_outbox_pending",
			Help: "Mirror writes waiting in the retry outbox",
		},
		[]string{"mirror"},
	)
)

func init() {
	prometheus.MustRegister(productsGauge)
	prometheus.MustRegister(ordersRecorded)
	prometheus.MustRegister(mirrorFailures)
	prometheus.MustRegister(mirrorDropped)
	prometheus.MustRegister(mirrorPending)
}
