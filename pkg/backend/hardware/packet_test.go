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

package hardware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-cryptoauth/pkg/backend"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

func TestBuildCommand(t *testing.T) {
	pkt := buildCommand(opRandom, 0x00, 0x0000, nil)

	require.Len(t, pkt, 7)
	assert.Equal(t, byte(7), pkt[0])
	assert.Equal(t, byte(opRandom), pkt[1])
	assert.True(t, checkCRC(pkt))
}

func TestBuildCommand_WithData(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	pkt := buildCommand(opWrite, zoneData|zoneReadWrite32, 0x0118, data)

	require.Len(t, pkt, 11)
	assert.Equal(t, byte(11), pkt[0])
	assert.Equal(t, byte(opWrite), pkt[1])
	assert.Equal(t, byte(zoneData|zoneReadWrite32), pkt[2])
	// param2 travels LSB first.
	assert.Equal(t, byte(0x18), pkt[3])
	assert.Equal(t, byte(0x01), pkt[4])
	assert.Equal(t, data, pkt[5:9])
	assert.True(t, checkCRC(pkt))
}

// frame wraps a payload in the device response framing: count, payload, CRC.
func frame(payload ...byte) []byte {
	buf := append([]byte{byte(len(payload) + 3)}, payload...)
	return appendCRC(buf)
}

func TestParseResponse_Status(t *testing.T) {
	tests := []struct {
		name   string
		status byte
		want   backend.Status
	}{
		{"Success", devStatusSuccess, backend.StatusSuccess},
		{"Miscompare", devStatusCheckmacFail, backend.StatusCheckmacFailed},
		{"ParseError", devStatusParseError, backend.StatusParseError},
		{"ECCFault", devStatusECCFault, backend.StatusECCFault},
		{"SelfTest", devStatusSelfTestError, backend.StatusSelfTestError},
		{"HealthTest", devStatusHealthTestErr, backend.StatusHealthTestError},
		{"Execution", devStatusExecutionError, backend.StatusExecutionError},
		{"AfterWake", devStatusAfterWake, backend.StatusWakeSuccess},
		{"Watchdog", devStatusWatchdogExpire, backend.StatusCommFail},
		{"CommError", devStatusCommError, backend.StatusCommFail},
		{"Unknown", 0x42, backend.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, st, err := parseResponse(frame(tt.status))
			require.NoError(t, err)
			assert.Nil(t, payload)
			assert.Equal(t, tt.want, st)
		})
	}
}

func TestParseResponse_Payload(t *testing.T) {
	data := make([]byte, types.RandomSize)
	for i := range data {
		data[i] = byte(i)
	}

	payload, st, err := parseResponse(frame(data...))
	require.NoError(t, err)
	assert.Equal(t, backend.StatusSuccess, st)
	assert.Equal(t, data, payload)
}

func TestParseResponse_Framing(t *testing.T) {
	// Short reads.
	_, _, err := parseResponse(nil)
	assert.ErrorIs(t, err, types.ErrDeviceUnresponsive)
	_, _, err = parseResponse([]byte{0x02, 0x00})
	assert.ErrorIs(t, err, types.ErrDeviceUnresponsive)

	// Count larger than what arrived.
	_, _, err = parseResponse([]byte{0x20, 0x00, 0x00, 0x00})
	assert.ErrorIs(t, err, types.ErrDeviceUnresponsive)

	// Bad CRC.
	bad := frame(devStatusSuccess)
	bad[len(bad)-1] ^= 0xFF
	_, _, err = parseResponse(bad)
	assert.ErrorIs(t, err, types.ErrDeviceUnresponsive)

	// Trailing garbage past the count byte is ignored.
	payload, st, err := parseResponse(append(frame(devStatusSuccess), 0xAA, 0xBB))
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, backend.StatusSuccess, st)
}

func TestEncodeAddress(t *testing.T) {
	zoneByte, addr, err := encodeAddress(types.ZoneConfig, 0, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, uint8(zoneConfig), zoneByte)
	assert.Equal(t, uint16(0x0015), addr)

	zoneByte, addr, err = encodeAddress(types.ZoneData, 3, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint8(zoneData), zoneByte)
	assert.Equal(t, uint16(0x011A), addr)

	_, _, err = encodeAddress(types.ZoneData, 16, 0, 0)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	_, _, err = encodeAddress(types.Zone(9), 0, 0, 0)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
}
