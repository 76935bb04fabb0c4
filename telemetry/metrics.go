// Package telemetry replaces the original engine's global, mutex-guarded
// total_turnover/fee_income accumulators with per-market Prometheus
// metrics: counters are owned by whoever registers them, not
// shared mutable state every matching goroutine has to serialize on.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusHook implements engine.Hooks' observer interfaces against a
// private registry, so a process embedding this package never collides
// with the default global registry's metric names.
type PrometheusHook struct {
	registry     *prometheus.Registry
	matchLatency *prometheus.HistogramVec
	queueDepth   *prometheus.GaugeVec
	tradeCount   *prometheus.CounterVec
	tradeVolume  *prometheus.CounterVec
}

func NewPrometheusHook() *PrometheusHook {
	reg := prometheus.NewRegistry()
	h := &PrometheusHook{
		registry: reg,
		matchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matchcore_match_latency_seconds",
			Help:    "Time to process one submit/cancel/query request.",
			Buckets: prometheus.DefBuckets,
		}, []string{"market"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "matchcore_consumer_queue_depth",
			Help: "Pending requests in a market's owning consumer queue.",
		}, []string{"market"}),
		tradeCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchcore_trades_total",
			Help: "Total trades executed per market.",
		}, []string{"market"}),
		tradeVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchcore_trade_volume_total",
			Help: "Total quantity traded per market.",
		}, []string{"market"}),
	}
	reg.MustRegister(h.matchLatency, h.queueDepth, h.tradeCount, h.tradeVolume)
	return h
}

func (h *PrometheusHook) OnMatch(market string, latency time.Duration) {
	h.matchLatency.WithLabelValues(market).Observe(latency.Seconds())
}

func (h *PrometheusHook) OnQueueDepth(market string, depth int) {
	h.queueDepth.WithLabelValues(market).Set(float64(depth))
}

func (h *PrometheusHook) OnTrade(market string, price, quantity int64) {
	h.tradeCount.WithLabelValues(market).Inc()
	h.tradeVolume.WithLabelValues(market).Add(float64(quantity))
}

// Handler serves this hook's metrics in the Prometheus exposition format.
func (h *PrometheusHook) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})
}
