package prometheus

import (
	"errors"
	"time"

	"github.com/marmos91/smbwire/internal/negotiate"
	"github.com/marmos91/smbwire/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// probeMetrics is the Prometheus implementation of negotiate.Metrics.
type probeMetrics struct {
	probesTotal   *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	dialects      *prometheus.CounterVec
}

// NewProbeMetrics creates Prometheus-backed NEGOTIATE probe metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewProbeMetrics() negotiate.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &probeMetrics{
		probesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "smbwire_probes_total",
				Help: "Total number of NEGOTIATE probes by outcome",
			},
			[]string{"status"}, // "success", "server_error", "error"
		),
		probeDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "smbwire_probe_duration_milliseconds",
				Help: "Duration of NEGOTIATE probes in milliseconds, dial included",
				Buckets: []float64{
					1,     // 1ms - loopback
					5,     // 5ms - LAN
					25,    // 25ms
					100,   // 100ms - WAN
					500,   // 500ms
					2000,  // 2s
					10000, // 10s - default timeout
				},
			},
			[]string{"status"},
		),
		dialects: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "smbwire_negotiated_dialects_total",
				Help: "Total successful negotiations by selected dialect",
			},
			[]string{"dialect"},
		),
	}
}

func (m *probeMetrics) ObserveProbe(dialect negotiate.Dialect, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	var statusErr *negotiate.StatusError
	switch {
	case errors.As(err, &statusErr):
		status = "server_error"
	case err != nil:
		status = "error"
	}

	m.probesTotal.WithLabelValues(status).Inc()
	m.probeDuration.WithLabelValues(status).Observe(duration.Seconds() * 1000)
	if err == nil {
		m.dialects.WithLabelValues(dialect.String()).Inc()
	}
}
