// Package metrics records frame-building activity for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder holds the fieldmap metrics on a private registry.
// A nil *Recorder records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	framesTotal   *prometheus.CounterVec
	frameDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its own registry, including Go runtime
// and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.framesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldmap_frames_total",
			Help: "Total number of frames built, by field kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	r.frameDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldmap_frame_duration_seconds",
			Help:    "Time to read, normalize and slice a frame",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"kind"},
	)

	r.registry.MustRegister(
		r.framesTotal,
		r.frameDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveFrame records one frame build of the given kind.
func (r *Recorder) ObserveFrame(kind string, started time.Time, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	r.framesTotal.WithLabelValues(kind, outcome).Inc()
	r.frameDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
