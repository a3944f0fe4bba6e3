package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "bingo"

// Metrics groups the service's prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	Registry *prometheus.Registry

	matchesCreated   *prometheus.CounterVec
	matchesFinalized *prometheus.CounterVec
	matchesAnnulled  prometheus.Counter
	numbersDrawn     *prometheus.CounterVec
	playersCreated   *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// New registers every collector on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		matchesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "Matches started, by type.",
		}, []string{"type"}),
		matchesFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_finalized_total",
			Help:      "Matches finished with a winner, by type.",
		}, []string{"type"}),
		matchesAnnulled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_annulled_total",
			Help:      "Matches deleted.",
		}),
		numbersDrawn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "numbers_drawn_total",
			Help:      "Numbers drawn across all matches, by type.",
		}, []string{"type"}),
		playersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_registered_total",
			Help:      "Player registrations, by outcome (created or reactivated).",
		}, []string{"outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.matchesCreated,
		m.matchesFinalized,
		m.matchesAnnulled,
		m.numbersDrawn,
		m.playersCreated,
		m.requestDuration,
	)
	return m
}

func (m *Metrics) MatchCreated(matchType string) {
	if m == nil {
		return
	}
	m.matchesCreated.WithLabelValues(matchType).Inc()
}

func (m *Metrics) MatchFinalized(matchType string) {
	if m == nil {
		return
	}
	m.matchesFinalized.WithLabelValues(matchType).Inc()
}

func (m *Metrics) MatchAnnulled() {
	if m == nil {
		return
	}
	m.matchesAnnulled.Inc()
}

func (m *Metrics) NumberDrawn(matchType string) {
	if m == nil {
		return
	}
	m.numbersDrawn.WithLabelValues(matchType).Inc()
}

// PlayerRegistered counts a registration; outcome is "created" or "reactivated"
func (m *Metrics) PlayerRegistered(outcome string) {
	if m == nil {
		return
	}
	m.playersCreated.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
