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
	"fmt"
	"time"

	"github.com/jeremyhahn/go-cryptoauth/pkg/backend"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// ATECC command opcodes.
const (
	opRead      = 0x02
	opWrite     = 0x12
	opNonce     = 0x16
	opLock      = 0x17
	opRandom    = 0x1B
	opCounter   = 0x24
	opInfo      = 0x30
	opGenKey    = 0x40
	opSign      = 0x41
	opVerify    = 0x45
	opPrivWrite = 0x46
	opSHA       = 0x47
	opAES       = 0x51
)

// Command mode bits.
const (
	// Zone selectors for Read/Write/Lock.
	zoneConfig = 0x00
	zoneData   = 0x02

	// Bit 7 of the zone byte selects 32-byte access.
	zoneReadWrite32 = 0x80

	// Lock: bit 7 skips the zone CRC check, bit 0 selects the data zone.
	lockModeNoCRC    = 0x80
	lockModeDataZone = 0x01

	// Nonce pass-through into TempKey.
	nonceModePassThrough = 0x03

	// GenKey: 0x04 creates a new private key, 0x00 derives the public key.
	genKeyModePrivate = 0x04
	genKeyModePublic  = 0x00

	// Sign external message from TempKey.
	signModeExternal = 0x80

	// Verify with an externally supplied public key.
	verifyModeExternal   = 0x02
	verifyParam2KeyTypeP = 0x0004

	// SHA command phases.
	shaModeStart  = 0x00
	shaModeUpdate = 0x01
	shaModeEnd    = 0x02
	shaBlockSize  = 64

	// Counter read/increment.
	counterModeRead      = 0x00
	counterModeIncrement = 0x01

	// AES single-block encrypt/decrypt with a slot key.
	aesModeEncrypt = 0x00
	aesModeDecrypt = 0x01
)

// Device status bytes returned in single-byte responses.
const (
	devStatusSuccess        = 0x00
	devStatusCheckmacFail   = 0x01
	devStatusParseError     = 0x03
	devStatusECCFault       = 0x05
	devStatusSelfTestError  = 0x07
	devStatusHealthTestErr  = 0x08
	devStatusExecutionError = 0x0F
	devStatusAfterWake      = 0x11
	devStatusWatchdogExpire = 0xEE
	devStatusCommError      = 0xFF
)

// wakeResponse is the framed status a healthy device returns after a wake
// pulse: count 4, status 0x11, CRC.
var wakeResponse = []byte{0x04, 0x11, 0x33, 0x43}

// execDelay is the worst-case command execution time per opcode for the
// ATECC608A, from the datasheet's typical execution time table with
// headroom. The bus stays quiet for this long between send and receive.
var execDelay = map[uint8]time.Duration{
	opRead:      5 * time.Millisecond,
	opWrite:     45 * time.Millisecond,
	opNonce:     20 * time.Millisecond,
	opLock:      35 * time.Millisecond,
	opRandom:    23 * time.Millisecond,
	opCounter:   25 * time.Millisecond,
	opInfo:      5 * time.Millisecond,
	opGenKey:    115 * time.Millisecond,
	opSign:      115 * time.Millisecond,
	opVerify:    105 * time.Millisecond,
	opPrivWrite: 50 * time.Millisecond,
	opSHA:       36 * time.Millisecond,
	opAES:       3 * time.Millisecond,
}

// defaultExecDelay covers opcodes missing from the table.
const defaultExecDelay = 120 * time.Millisecond

// buildCommand frames an ATECC command packet: count, opcode, param1,
// param2 (LSB first), data, CRC-16.
func buildCommand(opcode, param1 uint8, param2 uint16, data []byte) []byte {
	count := len(data) + 7
	buf := make([]byte, 0, count)
	buf = append(buf, byte(count), opcode, param1, byte(param2), byte(param2>>8))
	buf = append(buf, data...)
	return appendCRC(buf)
}

// responseStatus maps a device response status byte onto the native status
// vocabulary.
func responseStatus(b byte) backend.Status {
	switch b {
	case devStatusSuccess:
		return backend.StatusSuccess
	case devStatusCheckmacFail:
		return backend.StatusCheckmacFailed
	case devStatusParseError:
		return backend.StatusParseError
	case devStatusECCFault:
		return backend.StatusECCFault
	case devStatusSelfTestError:
		return backend.StatusSelfTestError
	case devStatusHealthTestErr:
		return backend.StatusHealthTestError
	case devStatusExecutionError:
		return backend.StatusExecutionError
	case devStatusAfterWake:
		return backend.StatusWakeSuccess
	case devStatusWatchdogExpire, devStatusCommError:
		return backend.StatusCommFail
	default:
		return backend.StatusUnknown
	}
}

// parseResponse validates the framing of a device response and splits it
// into payload and device status. The returned error covers framing faults
// only (short reads, bad CRC); callers translate the status themselves so
// commands like Verify can distinguish a miscompare from a fault.
func parseResponse(raw []byte) ([]byte, backend.Status, error) {
	if len(raw) < 4 {
		return nil, backend.StatusRxFail, backend.StatusRxFail.Err()
	}
	count := int(raw[0])
	if count < 4 || count > len(raw) {
		return nil, backend.StatusRxFail, backend.StatusRxFail.Err()
	}
	msg := raw[:count]
	if !checkCRC(msg) {
		return nil, backend.StatusRxCRCError, backend.StatusRxCRCError.Err()
	}

	payload := msg[1 : count-2]
	if len(payload) == 1 {
		return nil, responseStatus(payload[0]), nil
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return out, backend.StatusSuccess, nil
}

// expectLen fails with ErrExecutionError when a response payload does not
// have the size the command contract promises.
func expectLen(payload []byte, n int) error {
	if len(payload) != n {
		return fmt.Errorf("%w: expected %d response bytes, got %d",
			types.ErrExecutionError, n, len(payload))
	}
	return nil
}
