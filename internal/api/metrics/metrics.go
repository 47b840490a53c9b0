// Package metrics defines the custom Prometheus metrics for the sweet shop
// inventory API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Build one Metrics per registry with New. A nil *Metrics is valid and
// records nothing, which keeps handlers usable in tests without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sweetshop"

type Metrics struct {
	purchasesTotal         *prometheus.CounterVec
	purchasedUnitsTotal    *prometheus.CounterVec
	restockedUnitsTotal    *prometheus.CounterVec
	insufficientStockTotal prometheus.Counter
	loginsTotal            *prometheus.CounterVec
	registrationsTotal     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Label:
		//   - category: product category of the purchased item
		purchasesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "purchases_total",
				Help:      "Total number of successful purchases, by category.",
			},
			[]string{"category"},
		),
		purchasedUnitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "purchased_units_total",
				Help:      "Total number of units taken out of stock by purchases, by category.",
			},
			[]string{"category"},
		),
		restockedUnitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "restocked_units_total",
				Help:      "Total number of units added by restocks, by category.",
			},
			[]string{"category"},
		),
		insufficientStockTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insufficient_stock_total",
				Help:      "Total number of purchases rejected for insufficient stock.",
			},
		),
		// Label:
		//   - result: "success", "invalid_credentials", "locked" or "error"
		loginsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total number of login attempts, by result.",
			},
			[]string{"result"},
		),
		registrationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Total number of accounts registered, by role.",
			},
			[]string{"role"},
		),
	}
}

func (m *Metrics) ObservePurchase(category string, units int) {
	if m == nil {
		return
	}
	m.purchasesTotal.WithLabelValues(category).Inc()
	m.purchasedUnitsTotal.WithLabelValues(category).Add(float64(units))
}

func (m *Metrics) ObserveRestock(category string, units int) {
	if m == nil {
		return
	}
	m.restockedUnitsTotal.WithLabelValues(category).Add(float64(units))
}

func (m *Metrics) ObserveInsufficientStock() {
	if m == nil {
		return
	}
	m.insufficientStockTotal.Inc()
}

func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRegistration(role string) {
	if m == nil {
		return
	}
	m.registrationsTotal.WithLabelValues(role).Inc()
}
