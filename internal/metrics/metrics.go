package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	EligibleIncentives prometheus.Histogram
	CatalogCacheHits   prometheus.Counter
	CatalogCacheMisses prometheus.Counter
	PlaceholderItems   prometheus.Counter
}

// New creates the metrics and registers them with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "learningplan_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learningplan_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		EligibleIncentives: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "learningplan_eligible_incentives",
			Help:    "Number of incentives returned per eligibility request",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		}),
		CatalogCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "learningplan_catalog_cache_hits_total",
			Help: "Incentive catalog reads served from cache",
		}),
		CatalogCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "learningplan_catalog_cache_misses_total",
			Help: "Incentive catalog reads that went to the store",
		}),
		PlaceholderItems: factory.NewCounter(prometheus.CounterOpts{
			Name: "learningplan_placeholder_plan_items_total",
			Help: "Learning plan items resolved to the placeholder because their reference was missing",
		}),
	}
}

// ObserveEligible records the size of one eligibility result
func (m *Metrics) ObserveEligible(n int) {
	m.EligibleIncentives.Observe(float64(n))
}

// IncrementCacheHit increments the catalog cache hit counter by 1
func (m *Metrics) IncrementCacheHit() {
	m.CatalogCacheHits.Inc()
}

// IncrementCacheMiss increments the catalog cache miss counter by 1
func (m *Metrics) IncrementCacheMiss() {
	m.CatalogCacheMisses.Inc()
}

// AddPlaceholders adds n placeholder plan items
func (m *Metrics) AddPlaceholders(n int) {
	m.PlaceholderItems.Add(float64(n))
}
