// Package prometheus implements smbwire's metrics interfaces on top of
// prometheus/client_golang. Importing it registers the constructors used by
// pkg/metrics.
package prometheus

import (
	"github.com/marmos91/smbwire/pkg/metrics"
	"github.com/marmos91/smbwire/pkg/posixerr"
	"github.com/marmos91/smbwire/pkg/smbstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterStreamMetricsConstructor(NewStreamMetrics)
	metrics.RegisterProbeMetricsConstructor(NewProbeMetrics)
}

// streamMetrics is the Prometheus implementation of smbstream.Metrics.
type streamMetrics struct {
	bytes      *prometheus.CounterVec
	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
	chunkSize  *prometheus.HistogramVec
}

// NewStreamMetrics creates a new Prometheus-backed smbstream.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewStreamMetrics() smbstream.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &streamMetrics{
		bytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "smbwire_stream_bytes_total",
				Help: "Total bytes transferred over SMB transport streams by direction",
			},
			[]string{"direction"}, // "read", "write"
		),
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "smbwire_stream_operations_total",
				Help: "Total raw stream transfers by direction and status",
			},
			[]string{"direction", "status"},
		),
		errors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "smbwire_stream_errors_total",
				Help: "Total failed stream transfers by direction and errno",
			},
			[]string{"direction", "errno"},
		),
		chunkSize: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "smbwire_stream_transfer_bytes",
				Help: "Distribution of bytes moved by a single raw transfer",
				Buckets: []float64{
					4,       // NetBIOS session header
					64,      // SMB2 header
					512,     //
					4096,    // 4KB
					65536,   // 64KB - typical max read without LARGE_MTU
					1048576, // 1MB
					8388608, // 8MB - LARGE_MTU ceiling
				},
			},
			[]string{"direction"},
		),
	}
}

func (m *streamMetrics) ObserveRead(n int, err error) {
	m.observe("read", n, err)
}

func (m *streamMetrics) ObserveWrite(n int, err error) {
	m.observe("write", n, err)
}

func (m *streamMetrics) observe(direction string, n int, err error) {
	if m == nil {
		return
	}

	if err != nil {
		m.operations.WithLabelValues(direction, "error").Inc()
		m.errors.WithLabelValues(direction, errnoLabel(err)).Inc()
		return
	}

	m.operations.WithLabelValues(direction, "success").Inc()
	if n > 0 {
		m.bytes.WithLabelValues(direction).Add(float64(n))
		m.chunkSize.WithLabelValues(direction).Observe(float64(n))
	}
}

// errnoLabel renders the errno carried by err as its symbolic name, e.g.
// "ETIMEDOUT", falling back to "unknown".
func errnoLabel(err error) string {
	code, ok := posixerr.CodeOf(err)
	if !ok {
		return "unknown"
	}
	if name := posixerr.Name(code); name != "" {
		return name
	}
	return "unknown"
}
