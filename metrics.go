package exportable

import (
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names recorded by [Instrument].
const (
	MetricExports  = "exportable_exports_total"
	MetricBytes    = "exportable_bytes_written_total"
	MetricDuration = "exportable_export_duration_seconds"
)

type exportMetrics struct {
	exports  *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// InstrumentedExporter records Prometheus metrics around another exporter.
type InstrumentedExporter struct {
	Exporter
	metrics *exportMetrics
}

// Instrument wraps e so that every Dump is counted, timed, and measured in
// bytes. Several exporters may be instrumented against the same registerer;
// they share the collectors and are told apart by the extension label.
func Instrument(e Exporter, reg prometheus.Registerer) (*InstrumentedExporter, error) {
	exports, err := registerOrReuse(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricExports,
			Help: "Total number of table exports by outcome",
		},
		[]string{"extension", "outcome"},
	))
	if err != nil {
		return nil, err
	}
	written, err := registerOrReuse(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricBytes,
			Help: "Total number of bytes written by exporters",
		},
		[]string{"extension"},
	))
	if err != nil {
		return nil, err
	}
	duration, err := registerOrReuse(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricDuration,
			Help:    "Duration of table exports",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"extension"},
	))
	if err != nil {
		return nil, err
	}
	return &InstrumentedExporter{
		Exporter: e,
		metrics:  &exportMetrics{exports: exports, bytes: written, duration: duration},
	}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RequiresStrict reports whether the wrapped exporter needs a strict table.
func (i *InstrumentedExporter) RequiresStrict() bool {
	s, ok := i.Exporter.(StrictExporter)
	return ok && s.RequiresStrict()
}

func (i *InstrumentedExporter) Dump(w io.Writer, t Table, h Hints) error {
	ext := i.Extension()
	cw := &countingWriter{w: w}
	start := time.Now()
	err := i.Exporter.Dump(cw, t, h)
	i.metrics.duration.WithLabelValues(ext).Observe(time.Since(start).Seconds())
	i.metrics.bytes.WithLabelValues(ext).Add(float64(cw.n))
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	i.metrics.exports.WithLabelValues(ext, outcome).Inc()
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
