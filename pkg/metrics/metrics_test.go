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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsEnabled(t *testing.T) {
	// Metrics should be enabled by default
	if !IsEnabled() {
		t.Error("Expected metrics to be enabled by default")
	}

	// Test disabling
	Disable()
	if IsEnabled() {
		t.Error("Expected metrics to be disabled after Disable()")
	}

	// Test enabling
	Enable()
	if !IsEnabled() {
		t.Error("Expected metrics to be enabled after Enable()")
	}
}

func TestRecordOperation(t *testing.T) {
	Enable()

	// Reset counters before test
	OperationsTotal.Reset()
	OperationDuration.Reset()

	// Record a successful operation
	RecordOperation("sign", "software", StatusSuccess, 0.002)

	// Verify counter incremented
	count := testutil.CollectAndCount(OperationsTotal)
	if count != 1 {
		t.Errorf("Expected 1 operation recorded, got %d", count)
	}

	// Verify histogram updated
	histCount := testutil.CollectAndCount(OperationDuration)
	if histCount != 1 {
		t.Errorf("Expected 1 histogram sample, got %d", histCount)
	}

	// Record an error operation
	RecordOperation("random", "i2c", StatusError, 0.05)

	// Verify counter incremented again
	count = testutil.CollectAndCount(OperationsTotal)
	if count != 2 {
		t.Errorf("Expected 2 operations recorded, got %d", count)
	}
}

func TestRecordOperationWhenDisabled(t *testing.T) {
	Disable()
	defer Enable()

	// Reset counters
	OperationsTotal.Reset()

	// Record operation while disabled
	RecordOperation("sign", "software", StatusSuccess, 0.002)

	// Verify nothing was recorded
	count := testutil.CollectAndCount(OperationsTotal)
	if count != 0 {
		t.Errorf("Expected 0 operations when disabled, got %d", count)
	}
}

func TestRecordError(t *testing.T) {
	Enable()
	ErrorsTotal.Reset()

	RecordError("write", "i2c", "data_zone_locked")

	count := testutil.CollectAndCount(ErrorsTotal)
	if count != 1 {
		t.Errorf("Expected 1 error recorded, got %d", count)
	}
}

func TestRecordWakeRetry(t *testing.T) {
	Enable()
	WakeRetriesTotal.Reset()

	RecordWakeRetry("i2c")
	RecordWakeRetry("i2c")

	if got := testutil.ToFloat64(WakeRetriesTotal.WithLabelValues("i2c")); got != 2 {
		t.Errorf("Expected 2 wake retries, got %v", got)
	}
}

func TestSetZoneLocked(t *testing.T) {
	Enable()

	SetZoneLocked("config", true)
	if got := testutil.ToFloat64(ZoneLocked.WithLabelValues("config")); got != 1 {
		t.Errorf("Expected zone gauge 1, got %v", got)
	}

	SetZoneLocked("config", false)
	if got := testutil.ToFloat64(ZoneLocked.WithLabelValues("config")); got != 0 {
		t.Errorf("Expected zone gauge 0, got %v", got)
	}
}
