package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "investiq"

// Registry holds the service metrics on a private prometheus registry.
// All methods are safe on a nil *Registry so components can run unmetered.
type Registry struct {
	reg *prometheus.Registry

	AnalysisDuration *prometheus.HistogramVec
	Recommendations  *prometheus.CounterVec
	ProviderCalls    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	CacheLookups     *prometheus.CounterVec
	BreakerState     *prometheus.GaugeVec
	HTTPRequests     *prometheus.CounterVec
}

func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Duration of each analyst and of the full decision in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"agent", "result"},
		),

		Recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommendations_total",
				Help:      "Decisions issued by recommendation",
			},
			[]string{"recommendation"},
		),

		ProviderCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Market data provider calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),

		ProviderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_duration_seconds",
				Help:      "Market data provider call latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Provider cache lookups by result",
			},
			[]string{"result"},
		),

		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}

	r.reg.MustRegister(
		r.AnalysisDuration,
		r.Recommendations,
		r.ProviderCalls,
		r.ProviderDuration,
		r.CacheLookups,
		r.BreakerState,
		r.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the exposition format for this registry.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (r *Registry) ObserveAnalysis(agent string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.AnalysisDuration.WithLabelValues(agent, result(err)).Observe(d.Seconds())
}

func (r *Registry) CountRecommendation(rec string) {
	if r == nil {
		return
	}
	r.Recommendations.WithLabelValues(rec).Inc()
}

// ObserveProvider records a provider call; outcome is one of ok, unavailable,
// circuit_open, cancelled or error.
func (r *Registry) ObserveProvider(op, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.ProviderCalls.WithLabelValues(op, outcome).Inc()
	r.ProviderDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (r *Registry) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	r.CacheLookups.WithLabelValues("miss").Inc()
}

func (r *Registry) SetBreakerState(name string, state float64) {
	if r == nil {
		return
	}
	r.BreakerState.WithLabelValues(name).Set(state)
}

func (r *Registry) CountHTTP(route string, code int) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
