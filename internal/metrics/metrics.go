package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innkeep",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innkeep",
			Name:      "reservations_created_total",
			Help:      "Reservations created by booking channel.",
		},
		[]string{"channel"},
	)

	checkouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innkeep",
			Name:      "checkouts_total",
			Help:      "Completed check-outs by payment method.",
		},
		[]string{"method"},
	)

	ledgerExports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innkeep",
			Name:      "ledger_exports_total",
			Help:      "Ledger export tasks by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservationsCreated, checkouts, ledgerExports)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncReservation counts a created reservation for a channel.
func IncReservation(channel string) {
	reservationsCreated.WithLabelValues(channel).Inc()
}

// IncCheckout counts a completed check-out for a payment method.
func IncCheckout(method string) {
	checkouts.WithLabelValues(method).Inc()
}

// IncLedgerExport counts an export task outcome.
func IncLedgerExport(outcome string) {
	ledgerExports.WithLabelValues(outcome).Inc()
}
