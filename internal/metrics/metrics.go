// Package metrics exposes Prometheus counters for the analysis pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	UploadsStarted   prometheus.Counter
	UploadsCompleted prometheus.Counter
	UploadRetries    prometheus.Counter
	StageFailures    *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		UploadsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stagecoach",
			Name:      "uploads_started_total",
			Help:      "Number of performance uploads that entered the pipeline.",
		}),
		UploadsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stagecoach",
			Name:      "uploads_completed_total",
			Help:      "Number of uploads that reached the Complete state.",
		}),
		UploadRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stagecoach",
			Name:      "upload_retries_total",
			Help:      "Number of full-pipeline retry attempts after transport errors.",
		}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagecoach",
			Name:      "stage_failures_total",
			Help:      "Pipeline failures by stage.",
		}, []string{"stage"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stagecoach",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"stage"}),
	}
}

// Handler serves the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
