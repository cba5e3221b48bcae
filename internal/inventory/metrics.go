package inventory

import "github.com/prometheus/client_golang/prometheus"

var (
	restocksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_restocks_total",
			Help: "Total number of recorded restocks",
		},
	)

	restockedUnits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_restocked_units_total",
			Help: "Total units received through restocks",
		},
	)
)

func init() {
	prometheus.MustRegister(restocksTotal, restockedUnits)
}
