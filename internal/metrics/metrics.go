// Package metrics provides the centralized Prometheus metrics registry for the analysis pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitchside",
		Name:      "analyses_total",
		Help:      "Total number of analyses produced, by generation source",
	}, []string{"source"})
	AIFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitchside",
		Name:      "ai_fallbacks_total",
		Help:      "Total number of AI-to-local fallback transitions, by reason",
	}, []string{"reason"})
	SubFetchFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitchside",
		Name:      "sub_fetch_failures_total",
		Help:      "Total number of tolerated aggregator sub-fetch failures, by branch",
	}, []string{"branch"})
	QuotaDenialsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pitchside",
		Name:      "quota_denials_total",
		Help:      "Total number of analysis requests denied by the quota gate",
	})
	QuotaConsumptionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pitchside",
		Name:      "quota_consumptions_total",
		Help:      "Total number of free analyses consumed",
	})
	PremiumGrantsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pitchside",
		Name:      "premium_grants_total",
		Help:      "Total number of premium grants",
	})
	StaleCacheServesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pitchside",
		Name:      "stale_cache_serves_total",
		Help:      "Total number of responses served from an expired cache entry after upstream failure",
	})
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitchside",
		Name:      "upstream_requests_total",
		Help:      "Total sports-data provider requests, by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	OddsStreamUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pitchside",
		Name:      "odds_stream_updates_total",
		Help:      "Total odds updates applied from the provider stream",
	})
)

// Gauge metrics
var (
	CacheHitRatio = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pitchside",
		Name:      "cache_hit_ratio",
		Help:      "Hit ratio per cache kind",
	}, []string{"cache"})
	OddsStreamConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pitchside",
		Name:      "odds_stream_connected",
		Help:      "Whether the live odds stream is currently connected (1/0)",
	})
)

// Histogram metrics
var (
	AIRequestLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pitchside",
		Name:      "ai_request_latency_seconds",
		Help:      "Latency of reasoning-service completions in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 15, 20},
	})
	AggregationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pitchside",
		Name:      "aggregation_duration_seconds",
		Help:      "Wall time of the concurrent fixture aggregation in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pitchside",
		Name:      "pipeline_duration_seconds",
		Help:      "End-to-end duration of one analysis request in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(AnalysesTotal)
		registry.MustRegister(AIFallbacksTotal)
		registry.MustRegister(SubFetchFailuresTotal)
		registry.MustRegister(QuotaDenialsTotal)
		registry.MustRegister(QuotaConsumptionsTotal)
		registry.MustRegister(PremiumGrantsTotal)
		registry.MustRegister(StaleCacheServesTotal)
		registry.MustRegister(UpstreamRequestsTotal)
		registry.MustRegister(OddsStreamUpdatesTotal)

		// Register gauge metrics
		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(OddsStreamConnected)

		// Register histogram metrics
		registry.MustRegister(AIRequestLatency)
		registry.MustRegister(AggregationDuration)
		registry.MustRegister(PipelineDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordAnalysis records a produced analysis by source path.
func RecordAnalysis(source string) {
	AnalysesTotal.WithLabelValues(source).Inc()
}

// RecordFallback records an AI-to-local fallback transition.
func RecordFallback(reason string) {
	AIFallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordQuotaDenial records a denied analysis request.
func RecordQuotaDenial() {
	QuotaDenialsTotal.Inc()
}

// RecordQuotaConsumption records a consumed free analysis.
func RecordQuotaConsumption() {
	QuotaConsumptionsTotal.Inc()
}
