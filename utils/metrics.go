package utils

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters for the booking and admin flows. A nil *Metrics is a no-op.
type Metrics struct {
	bookings     *prometheus.CounterVec
	blockToggles *prometheus.CounterVec
	liveSessions prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Name:      "booking_total",
			Help:      "Booking attempts by result",
		}, []string{"result"}),
		blockToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Name:      "block_toggle_total",
			Help:      "Admin block changes by action",
		}, []string{"action"}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agenda",
			Name:      "live_sessions",
			Help:      "Open admin live-update connections",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookings, m.blockToggles, m.liveSessions)
	return m
}

// ObserveBooking records "confirmed", "conflict", "invalid" or "error".
func (m *Metrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveBlock(action string) {
	if m == nil {
		return
	}
	m.blockToggles.WithLabelValues(action).Inc()
}

func (m *Metrics) LiveSessionOpened() {
	if m == nil {
		return
	}
	m.liveSessions.Inc()
}

func (m *Metrics) LiveSessionClosed() {
	if m == nil {
		return
	}
	m.liveSessions.Dec()
}
