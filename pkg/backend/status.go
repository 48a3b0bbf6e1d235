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
	"fmt"

	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// Status is a native CryptoAuthLib-style status code: either a device
// response status byte promoted by the transport layer or a library-side
// condition. It is an opaque external enumeration translated exactly once,
// at this boundary, into the error taxonomy in pkg/types.
type Status uint8

// Native status codes. Values follow the CryptoAuthLib atca_status
// vocabulary so hardware traces line up with the C library's documentation.
const (
	StatusSuccess            Status = 0x00
	StatusConfigZoneLocked   Status = 0x01
	StatusDataZoneLocked     Status = 0x02
	StatusWakeFailed         Status = 0xD0
	StatusCheckmacFailed     Status = 0xD1
	StatusParseError         Status = 0xD2
	StatusCRCError           Status = 0xD4
	StatusUnknown            Status = 0xD5
	StatusECCFault           Status = 0xD6
	StatusSelfTestError      Status = 0xD7
	StatusFuncFail           Status = 0xE0
	StatusGenFail            Status = 0xE1
	StatusBadParam           Status = 0xE2
	StatusInvalidID          Status = 0xE3
	StatusInvalidSize        Status = 0xE4
	StatusRxCRCError         Status = 0xE5
	StatusRxFail             Status = 0xE6
	StatusRxNoResponse       Status = 0xE7
	StatusResyncWithWakeup   Status = 0xE8
	StatusParityError        Status = 0xE9
	StatusTxTimeout          Status = 0xEA
	StatusRxTimeout          Status = 0xEB
	StatusTooManyCommRetries Status = 0xEC
	StatusSmallBuffer        Status = 0xED
	StatusCommFail           Status = 0xF0
	StatusTimeout            Status = 0xF1
	StatusBadOpcode          Status = 0xF2
	StatusWakeSuccess        Status = 0xF3
	StatusExecutionError     Status = 0xF4
	StatusUnimplemented      Status = 0xF5
	StatusAssertFailure      Status = 0xF6
	StatusTxFail             Status = 0xF7
	StatusNotLocked          Status = 0xF8
	StatusNoDevices          Status = 0xF9
	StatusHealthTestError    Status = 0xFA
	StatusAllocFailure       Status = 0xFB
)

// Err translates the status into the error taxonomy. The mapping is total:
// every code resolves to exactly one taxonomy entry, success codes resolve
// to nil, and codes outside the known vocabulary resolve to
// ErrExecutionError so nothing unmapped ever leaks to a caller.
func (s Status) Err() error {
	switch s {
	case StatusSuccess, StatusWakeSuccess:
		return nil

	case StatusConfigZoneLocked:
		return types.ErrConfigZoneLocked
	case StatusDataZoneLocked:
		return types.ErrDataZoneLocked
	case StatusNotLocked:
		return types.ErrConfigZoneNotLocked

	case StatusParseError, StatusBadParam, StatusInvalidID, StatusInvalidSize,
		StatusSmallBuffer, StatusBadOpcode:
		return fmt.Errorf("%w: %s", types.ErrInvalidParameter, s)

	case StatusWakeFailed, StatusCRCError, StatusRxCRCError, StatusRxFail,
		StatusRxNoResponse, StatusResyncWithWakeup, StatusParityError,
		StatusTxTimeout, StatusRxTimeout, StatusTooManyCommRetries,
		StatusCommFail, StatusTimeout, StatusTxFail, StatusNoDevices:
		return fmt.Errorf("%w: %s", types.ErrDeviceUnresponsive, s)

	case StatusUnimplemented:
		return types.ErrUnimplemented

	case StatusCheckmacFailed, StatusECCFault, StatusSelfTestError,
		StatusFuncFail, StatusGenFail, StatusExecutionError,
		StatusAssertFailure, StatusHealthTestError, StatusAllocFailure,
		StatusUnknown:
		return fmt.Errorf("%w: %s", types.ErrExecutionError, s)

	default:
		return fmt.Errorf("%w: unknown status 0x%02X", types.ErrExecutionError, uint8(s))
	}
}

// String returns the CryptoAuthLib-style name of the status code.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "ATCA_SUCCESS"
	case StatusConfigZoneLocked:
		return "ATCA_CONFIG_ZONE_LOCKED"
	case StatusDataZoneLocked:
		return "ATCA_DATA_ZONE_LOCKED"
	case StatusWakeFailed:
		return "ATCA_WAKE_FAILED"
	case StatusCheckmacFailed:
		return "ATCA_CHECKMAC_VERIFY_FAILED"
	case StatusParseError:
		return "ATCA_PARSE_ERROR"
	case StatusCRCError:
		return "ATCA_STATUS_CRC"
	case StatusUnknown:
		return "ATCA_STATUS_UNKNOWN"
	case StatusECCFault:
		return "ATCA_STATUS_ECC"
	case StatusSelfTestError:
		return "ATCA_STATUS_SELFTEST_ERROR"
	case StatusFuncFail:
		return "ATCA_FUNC_FAIL"
	case StatusGenFail:
		return "ATCA_GEN_FAIL"
	case StatusBadParam:
		return "ATCA_BAD_PARAM"
	case StatusInvalidID:
		return "ATCA_INVALID_ID"
	case StatusInvalidSize:
		return "ATCA_INVALID_SIZE"
	case StatusRxCRCError:
		return "ATCA_RX_CRC_ERROR"
	case StatusRxFail:
		return "ATCA_RX_FAIL"
	case StatusRxNoResponse:
		return "ATCA_RX_NO_RESPONSE"
	case StatusResyncWithWakeup:
		return "ATCA_RESYNC_WITH_WAKEUP"
	case StatusParityError:
		return "ATCA_PARITY_ERROR"
	case StatusTxTimeout:
		return "ATCA_TX_TIMEOUT"
	case StatusRxTimeout:
		return "ATCA_RX_TIMEOUT"
	case StatusTooManyCommRetries:
		return "ATCA_TOO_MANY_COMM_RETRIES"
	case StatusSmallBuffer:
		return "ATCA_SMALL_BUFFER"
	case StatusCommFail:
		return "ATCA_COMM_FAIL"
	case StatusTimeout:
		return "ATCA_TIMEOUT"
	case StatusBadOpcode:
		return "ATCA_BAD_OPCODE"
	case StatusWakeSuccess:
		return "ATCA_WAKE_SUCCESS"
	case StatusExecutionError:
		return "ATCA_EXECUTION_ERROR"
	case StatusUnimplemented:
		return "ATCA_UNIMPLEMENTED"
	case StatusAssertFailure:
		return "ATCA_ASSERT_FAILURE"
	case StatusTxFail:
		return "ATCA_TX_FAIL"
	case StatusNotLocked:
		return "ATCA_NOT_LOCKED"
	case StatusNoDevices:
		return "ATCA_NO_DEVICES"
	case StatusHealthTestError:
		return "ATCA_HEALTH_TEST_ERROR"
	case StatusAllocFailure:
		return "ATCA_ALLOC_FAILURE"
	default:
		return fmt.Sprintf("ATCA_STATUS(0x%02X)", uint8(s))
	}
}
