// Package metrics exposes Prometheus instrumentation for the blood bank.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	DonationsTotal     prometheus.Counter
	DonatedUnits       prometheus.Counter
	RequestsTotal      *prometheus.CounterVec
	RegistrationsTotal *prometheus.CounterVec
	StockUnits         *prometheus.GaugeVec
}

// New registers the blood bank collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DonationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifelink_donations_total",
			Help: "Number of donation records created.",
		}),
		DonatedUnits: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifelink_donated_units_total",
			Help: "Units credited to the stock ledger by donations.",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelink_requests_total",
			Help: "Blood requests processed, by resulting status.",
		}, []string{"status"}),
		RegistrationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelink_camp_registrations_total",
			Help: "Camp registrations accepted, by mode.",
		}, []string{"mode"}),
		StockUnits: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lifelink_stock_units",
			Help: "Available units in the stock ledger, by blood group.",
		}, []string{"blood_group"}),
	}
}
