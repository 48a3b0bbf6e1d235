// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-cryptoauth.
//
// go-cryptoauth is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for cryptoauth device
// operations: operation counters, latency histograms, error counters by
// taxonomy kind, and wake retry tracking.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all cryptoauth metrics
	Namespace = "cryptoauth"

	// Label names
	LabelOperation = "operation"
	LabelBackend   = "backend"
	LabelStatus    = "status"
	LabelErrorKind = "error_kind"
	LabelZone      = "zone"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	// OperationsTotal tracks the total number of device operations by type,
	// backend, and status. Use RecordOperation to increment this counter.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of device operations by type, backend, and status",
		},
		[]string{LabelOperation, LabelBackend, LabelStatus},
	)

	// OperationDuration tracks the duration of device operations in seconds.
	// Buckets cover the sub-millisecond software backend through the
	// hundred-millisecond ECC commands on real silicon.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of device operations in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{LabelOperation, LabelBackend},
	)

	// ErrorsTotal tracks the total number of errors by operation, backend,
	// and taxonomy kind (e.g. "slot_unusable", "device_unresponsive").
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation, backend, and error kind",
		},
		[]string{LabelOperation, LabelBackend, LabelErrorKind},
	)

	// WakeRetriesTotal tracks wake attempts beyond the first, by backend.
	WakeRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "wake_retries_total",
			Help:      "Total number of wake retries by backend",
		},
		[]string{LabelBackend},
	)

	// ZoneLocked indicates whether a zone has been observed locked (1) or
	// unlocked (0) on the attached device.
	ZoneLocked = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "zone_locked",
			Help:      "Whether a device zone is locked (1) or unlocked (0)",
		},
		[]string{LabelZone},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	// Metrics are enabled by default
	enabled.Store(true)
}

// RecordOperation records a device operation with its duration and status.
//
// Parameters:
//   - operation: The operation name (types.Operation.String() or a façade verb)
//   - backend: The backend identifier ("software", "i2c", "swi")
//   - status: StatusSuccess or StatusError
//   - duration: The operation duration in seconds
func RecordOperation(operation, backend, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, backend, status).Inc()
	OperationDuration.WithLabelValues(operation, backend).Observe(duration)
}

// RecordError records an error event with the taxonomy kind it mapped to.
func RecordError(operation, backend, errorKind string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, backend, errorKind).Inc()
}

// RecordWakeRetry records one wake attempt beyond the first.
func RecordWakeRetry(backend string) {
	if !enabled.Load() {
		return
	}
	WakeRetriesTotal.WithLabelValues(backend).Inc()
}

// SetZoneLocked sets the lock gauge for a zone.
func SetZoneLocked(zone string, locked bool) {
	if !enabled.Load() {
		return
	}
	value := 0.0
	if locked {
		value = 1.0
	}
	ZoneLocked.WithLabelValues(zone).Set(value)
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
// Useful for testing or when metrics are not desired.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
