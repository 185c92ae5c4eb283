// Package metrics holds the Prometheus collectors owned by the sync layer.
// HTTP request metrics live with the HTTP middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"datasync/internal/logging"
	"datasync/internal/provider"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// WriteBehind counts background synchronization calls by outcome.
type WriteBehind struct {
	total  *prometheus.CounterVec
	logger *logging.Logger
}

// NewWriteBehind registers datasync_write_behind_total on reg.
// logger may be nil, in which case failures are only counted.
func NewWriteBehind(reg prometheus.Registerer, logger *logging.Logger) (*WriteBehind, error) {
	m := &WriteBehind{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datasync_write_behind_total",
				Help: "Total number of write-behind calls issued by the data provider.",
			},
			[]string{"operation", "store", "status"},
		),
		logger: logger,
	}

	if err := reg.Register(m.total); err != nil {
		return nil, err
	}
	return m, nil
}

// Observe records one write-behind outcome.
func (m *WriteBehind) Observe(op provider.Operation, target provider.Target, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}
	m.total.WithLabelValues(string(op), string(target), status).Inc()

	if err != nil && m.logger != nil {
		m.logger.Error("write-behind failed", err, map[string]any{
			"operation": string(op),
			"store":     string(target),
		})
	}
}

// Observer adapts m for provider.WithObserver.
func (m *WriteBehind) Observer() provider.WriteBehindObserver {
	return m.Observe
}
