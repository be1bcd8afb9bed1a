// Package metrics collects frame loop and event routing telemetry.
// It wraps Prometheus collectors on a private registry; a nil *Collector
// is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector provides application metrics collection.
type Collector struct {
	registry *prometheus.Registry

	frames        prometheus.Counter
	framesSkipped prometheus.Counter
	frameDuration prometheus.Histogram

	events          *prometheus.CounterVec
	eventsUnhandled *prometheus.CounterVec

	layers prometheus.Gauge
}

// NewCollector creates a collector registered on its own registry.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "framelab"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.frames = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loop",
		Name:      "frames_total",
		Help:      "Frames that ran the update and render passes",
	})
	c.framesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loop",
		Name:      "frames_skipped_total",
		Help:      "Frames skipped because the window was minimized",
	})
	c.frameDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "loop",
		Name:      "frame_duration_seconds",
		Help:      "Elapsed time between consecutive frames",
		Buckets:   []float64{0.001, 0.004, 0.008, 0.016, 0.033, 0.066, 0.1, 0.25, 1},
	})
	c.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "dispatched_total",
		Help:      "Events routed through the application",
	}, []string{"kind"})
	c.eventsUnhandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "unhandled_total",
		Help:      "Events no layer consumed",
	}, []string{"kind"})
	c.layers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "layers",
		Name:      "count",
		Help:      "Layers currently in the layer stack",
	})

	c.registry.MustRegister(
		c.frames,
		c.framesSkipped,
		c.frameDuration,
		c.events,
		c.eventsUnhandled,
		c.layers,
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) FrameRendered(elapsed time.Duration) {
	if c == nil {
		return
	}
	c.frames.Inc()
	c.frameDuration.Observe(elapsed.Seconds())
}

func (c *Collector) FrameSkipped() {
	if c == nil {
		return
	}
	c.framesSkipped.Inc()
}

func (c *Collector) EventDispatched(kind string) {
	if c == nil {
		return
	}
	c.events.WithLabelValues(kind).Inc()
}

func (c *Collector) EventUnhandled(kind string) {
	if c == nil {
		return
	}
	c.eventsUnhandled.WithLabelValues(kind).Inc()
}

func (c *Collector) SetLayers(n int) {
	if c == nil {
		return
	}
	c.layers.Set(float64(n))
}

// Summary flattens counter and gauge values by metric name, summing over
// labels. Histograms report their sample count.
func (c *Collector) Summary() (map[string]float64, error) {
	if c == nil {
		return nil, nil
	}
	families, err := c.registry.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(families))
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		out[mf.GetName()] = total
	}
	return out, nil
}
