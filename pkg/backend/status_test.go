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

package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

func TestStatusErr(t *testing.T) {
	tests := []struct {
		status Status
		want   error
	}{
		{StatusSuccess, nil},
		{StatusWakeSuccess, nil},
		{StatusConfigZoneLocked, types.ErrConfigZoneLocked},
		{StatusDataZoneLocked, types.ErrDataZoneLocked},
		{StatusNotLocked, types.ErrConfigZoneNotLocked},
		{StatusParseError, types.ErrInvalidParameter},
		{StatusBadParam, types.ErrInvalidParameter},
		{StatusInvalidID, types.ErrInvalidParameter},
		{StatusInvalidSize, types.ErrInvalidParameter},
		{StatusSmallBuffer, types.ErrInvalidParameter},
		{StatusBadOpcode, types.ErrInvalidParameter},
		{StatusWakeFailed, types.ErrDeviceUnresponsive},
		{StatusCRCError, types.ErrDeviceUnresponsive},
		{StatusRxCRCError, types.ErrDeviceUnresponsive},
		{StatusRxFail, types.ErrDeviceUnresponsive},
		{StatusRxNoResponse, types.ErrDeviceUnresponsive},
		{StatusResyncWithWakeup, types.ErrDeviceUnresponsive},
		{StatusParityError, types.ErrDeviceUnresponsive},
		{StatusTxTimeout, types.ErrDeviceUnresponsive},
		{StatusRxTimeout, types.ErrDeviceUnresponsive},
		{StatusTooManyCommRetries, types.ErrDeviceUnresponsive},
		{StatusCommFail, types.ErrDeviceUnresponsive},
		{StatusTimeout, types.ErrDeviceUnresponsive},
		{StatusTxFail, types.ErrDeviceUnresponsive},
		{StatusNoDevices, types.ErrDeviceUnresponsive},
		{StatusUnimplemented, types.ErrUnimplemented},
		{StatusCheckmacFailed, types.ErrExecutionError},
		{StatusECCFault, types.ErrExecutionError},
		{StatusSelfTestError, types.ErrExecutionError},
		{StatusFuncFail, types.ErrExecutionError},
		{StatusGenFail, types.ErrExecutionError},
		{StatusExecutionError, types.ErrExecutionError},
		{StatusAssertFailure, types.ErrExecutionError},
		{StatusHealthTestError, types.ErrExecutionError},
		{StatusAllocFailure, types.ErrExecutionError},
		{StatusUnknown, types.ErrExecutionError},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			err := tt.status.Err()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

// Every representable status byte must resolve to either nil or one of the
// taxonomy sentinels; nothing outside the closed set may escape.
func TestStatusErr_Total(t *testing.T) {
	taxonomy := []error{
		types.ErrInvalidParameter,
		types.ErrConfigZoneLocked,
		types.ErrConfigZoneNotLocked,
		types.ErrDataZoneLocked,
		types.ErrDataZoneNotLocked,
		types.ErrSlotUnusable,
		types.ErrDeviceUnresponsive,
		types.ErrExecutionError,
		types.ErrUnimplemented,
	}

	for code := 0; code <= 0xFF; code++ {
		err := Status(code).Err()
		if err == nil {
			continue
		}
		matched := false
		for _, sentinel := range taxonomy {
			if errors.Is(err, sentinel) {
				matched = true
				break
			}
		}
		assert.True(t, matched, "status 0x%02X resolved outside the taxonomy: %v", code, err)
	}
}

func TestStatusErr_UnknownCode(t *testing.T) {
	assert.ErrorIs(t, Status(0x3C).Err(), types.ErrExecutionError)
	assert.ErrorIs(t, Status(0xFF).Err(), types.ErrExecutionError)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ATCA_SUCCESS", StatusSuccess.String())
	assert.Equal(t, "ATCA_EXECUTION_ERROR", StatusExecutionError.String())
	assert.Equal(t, "ATCA_STATUS(0x3C)", Status(0x3C).String())
}
