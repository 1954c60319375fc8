// Package metrics registers the service's Prometheus collectors and exposes
// the scrape handler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values for OperationsTotal.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	OperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridhash_operations_total",
		Help: "Geohash operations by name and result",
	}, []string{"op", "result"})
	OperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gridhash_operation_duration_seconds",
		Help:    "Geohash operation latency",
		Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2},
	}, []string{"op"})
	MarkersIndexed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridhash_markers_indexed",
		Help: "Markers currently held by the spatial index",
	})
)

func init() {
	prometheus.MustRegister(OperationsTotal)
	prometheus.MustRegister(OperationDuration)
	prometheus.MustRegister(MarkersIndexed)
}

// Observe records one operation: call it with the start time once the result
// is known.
func Observe(op string, start time.Time, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	OperationsTotal.WithLabelValues(op, result).Inc()
	OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Handler serves every registered collector for Prometheus to scrape.
func Handler() http.Handler { return promhttp.Handler() }
