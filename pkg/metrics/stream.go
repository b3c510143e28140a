package metrics

import (
	"github.com/marmos91/smbwire/internal/negotiate"
	"github.com/marmos91/smbwire/pkg/smbstream"
)

// NewStreamMetrics returns a Prometheus-backed smbstream.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// smbstream.Conn treats as "do not observe".
//
//	metrics.InitRegistry()
//	conn := smbstream.NewConn(netConn, smbstream.WithMetrics(metrics.NewStreamMetrics()))
func NewStreamMetrics() smbstream.Metrics {
	if !IsEnabled() || newPrometheusStreamMetrics == nil {
		return nil
	}
	return newPrometheusStreamMetrics()
}

// NewProbeMetrics returns a Prometheus-backed negotiate.Metrics, or nil
// when metrics are disabled.
func NewProbeMetrics() negotiate.Metrics {
	if !IsEnabled() || newPrometheusProbeMetrics == nil {
		return nil
	}
	return newPrometheusProbeMetrics()
}

// Constructors are implemented in pkg/metrics/prometheus and registered
// from its init; the indirection avoids an import cycle.
var (
	newPrometheusStreamMetrics func() smbstream.Metrics
	newPrometheusProbeMetrics  func() negotiate.Metrics
)

// RegisterStreamMetricsConstructor registers the Prometheus stream metrics constructor.
func RegisterStreamMetricsConstructor(constructor func() smbstream.Metrics) {
	newPrometheusStreamMetrics = constructor
}

// RegisterProbeMetricsConstructor registers the Prometheus probe metrics constructor.
func RegisterProbeMetricsConstructor(constructor func() negotiate.Metrics) {
	newPrometheusProbeMetrics = constructor
}
