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

// Package types contains shared type definitions used across the cryptoauth
// module, including zone and slot enumerations, backend identifiers and the
// error taxonomy surfaced to callers. This package has no dependencies on
// pkg/backend or pkg/atecc to prevent import cycles.
package types

import "errors"

// =============================================================================
// Device geometry
// =============================================================================

const (
	// SlotCount is the number of data zone slots on an ATECC device.
	SlotCount = 16

	// SerialNumberSize is the size in bytes of the device serial number.
	SerialNumberSize = 9

	// RevisionSize is the size in bytes of the chip revision field.
	RevisionSize = 4

	// ConfigZoneSize is the size in bytes of the ATECC configuration zone.
	ConfigZoneSize = 128

	// BlockSize is the size in bytes of one zone read/write block.
	BlockSize = 32

	// RandomSize is the number of bytes returned by the Random command.
	RandomSize = 32

	// DigestSize is the size in bytes of a SHA-256 digest.
	DigestSize = 32

	// PublicKeySize is the size in bytes of an uncompressed P-256 public
	// key (X || Y, no format byte).
	PublicKeySize = 64

	// PrivateKeySize is the size in bytes of a P-256 private key scalar.
	PrivateKeySize = 32

	// SignatureSize is the size in bytes of a P-256 ECDSA signature (R || S).
	SignatureSize = 64

	// AESKeySize is the size in bytes of an AES-128 key.
	AESKeySize = 16

	// AESBlockSize is the size in bytes of one AES cipher block.
	AESBlockSize = 16

	// AccessKeySize is the size in bytes of a slot access (read/write) key.
	AccessKeySize = 32

	// CounterCount is the number of monotonic counters on the device.
	CounterCount = 2

	// CounterMax is the maximum value of a monotonic counter.
	CounterMax = 2097151
)

// =============================================================================
// Zones
// =============================================================================

// Zone identifies one of the device's independently lockable storage
// partitions.
type Zone uint8

const (
	// ZoneConfig is the configuration zone holding slot and chip
	// configuration. Must be locked before the data zone.
	ZoneConfig Zone = iota

	// ZoneData is the data zone holding the key and data slots.
	ZoneData
)

// String returns the zone name.
func (z Zone) String() string {
	switch z {
	case ZoneConfig:
		return "config"
	case ZoneData:
		return "data"
	default:
		return "unknown"
	}
}

// IsValid returns true if the zone is a known zone.
func (z Zone) IsValid() bool {
	return z == ZoneConfig || z == ZoneData
}

// LockState reports whether a zone is locked. Lock state is monotonic: once
// a zone is locked it never returns to unlocked for the lifetime of the
// physical device.
type LockState uint8

const (
	// Unlocked means the zone contents may still be modified.
	Unlocked LockState = iota

	// Locked means the zone contents are frozen.
	Locked
)

// String returns the lock state name.
func (l LockState) String() string {
	if l == Locked {
		return "locked"
	}
	return "unlocked"
}

// =============================================================================
// Key types
// =============================================================================

// KeyType constrains which operations a slot accepts. It is decoded from the
// slot's KeyConfig field and fixed once the configuration zone is locked.
type KeyType uint8

const (
	// KeyTypeP256 is a NIST P-256 ECC key (private or public).
	KeyTypeP256 KeyType = iota

	// KeyTypeAES is an AES-128 key.
	KeyTypeAES

	// KeyTypeShaOrText is a SHA key, HMAC secret or raw data slot.
	KeyTypeShaOrText

	// KeyTypeRFU is a reserved key type; slots configured with it are
	// unusable.
	KeyTypeRFU
)

// String returns the key type name.
func (k KeyType) String() string {
	switch k {
	case KeyTypeP256:
		return "p256"
	case KeyTypeAES:
		return "aes"
	case KeyTypeShaOrText:
		return "sha-or-text"
	default:
		return "rfu"
	}
}

// WriteConfig is a slot's write permission, decoded from the SlotConfig
// field.
type WriteConfig uint8

const (
	// WriteConfigAlways allows clear-text writes at any time.
	WriteConfigAlways WriteConfig = iota

	// WriteConfigPubInvalid allows public key writes subject to
	// invalidation.
	WriteConfigPubInvalid

	// WriteConfigNever forbids writes once the data zone is locked.
	WriteConfigNever

	// WriteConfigEncrypt requires encrypted writes with an access key.
	WriteConfigEncrypt
)

// String returns the write config name.
func (w WriteConfig) String() string {
	switch w {
	case WriteConfigAlways:
		return "always"
	case WriteConfigPubInvalid:
		return "pub-invalid"
	case WriteConfigNever:
		return "never"
	default:
		return "encrypt"
	}
}

// =============================================================================
// Operations
// =============================================================================

// Operation identifies a slot-addressed command for permission validation.
type Operation uint8

const (
	OpGenKey Operation = iota
	OpSign
	OpGetPublicKey
	OpRead
	OpWrite
	OpAESEncrypt
	OpAESDecrypt
)

// String returns the operation name used in log records and metrics labels.
func (o Operation) String() string {
	switch o {
	case OpGenKey:
		return "genkey"
	case OpSign:
		return "sign"
	case OpGetPublicKey:
		return "get_public_key"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpAESEncrypt:
		return "aes_encrypt"
	case OpAESDecrypt:
		return "aes_decrypt"
	default:
		return "unknown"
	}
}

// =============================================================================
// Backend identification
// =============================================================================

// BackendType identifies the concrete execution strategy behind a device
// session.
type BackendType string

const (
	// BackendTypeSoftware is the deterministic in-memory emulation.
	BackendTypeSoftware BackendType = "software"

	// BackendTypeI2C is the hardware variant over an I2C bus.
	BackendTypeI2C BackendType = "i2c"

	// BackendTypeSWI is the hardware variant over a single-wire (UART)
	// interface.
	BackendTypeSWI BackendType = "swi"
)

// String returns the backend type identifier.
func (b BackendType) String() string {
	return string(b)
}

// IsValid returns true if the backend type is known.
func (b BackendType) IsValid() bool {
	switch b {
	case BackendTypeSoftware, BackendTypeI2C, BackendTypeSWI:
		return true
	default:
		return false
	}
}

// IsHardware returns true if the backend drives a physical bus.
func (b BackendType) IsHardware() bool {
	return b == BackendTypeI2C || b == BackendTypeSWI
}

// Capabilities describes what features a backend variant supports.
type Capabilities struct {
	// HardwareBacked indicates keys live in tamper-resistant silicon.
	HardwareBacked bool

	// AES indicates the chip (or emulation) supports AES slot operations.
	AES bool

	// Counters indicates monotonic counter support.
	Counters bool

	// FailureInjection indicates the backend supports injected failures
	// for negative-path testing.
	FailureInjection bool
}

// =============================================================================
// Error taxonomy
// =============================================================================

// The closed set of semantic error kinds surfaced to callers. Every native
// status code and internal validation failure maps to exactly one of these;
// no raw status byte ever crosses the API boundary.
var (
	// ErrInvalidParameter is returned when a request is malformed: bad
	// slot index, wrong buffer length, unknown zone or violated reserved
	// field constraints.
	ErrInvalidParameter = errors.New("cryptoauth: invalid parameter")

	// ErrConfigZoneLocked is returned when an operation requires an
	// unlocked configuration zone but the zone is already locked.
	ErrConfigZoneLocked = errors.New("cryptoauth: configuration zone locked")

	// ErrConfigZoneNotLocked is returned when an operation requires a
	// locked configuration zone but the zone is still unlocked.
	ErrConfigZoneNotLocked = errors.New("cryptoauth: configuration zone not locked")

	// ErrDataZoneLocked is returned when an operation requires an
	// unlocked data zone, or writes to a write-once slot after lock.
	ErrDataZoneLocked = errors.New("cryptoauth: data zone locked")

	// ErrDataZoneNotLocked is returned when an operation requires a
	// locked data zone but the zone is still unlocked.
	ErrDataZoneNotLocked = errors.New("cryptoauth: data zone not locked")

	// ErrSlotUnusable is returned when a slot's key type or permissions
	// cannot satisfy the requested operation. Detected before any bus
	// transaction is attempted.
	ErrSlotUnusable = errors.New("cryptoauth: slot unusable for requested operation")

	// ErrDeviceUnresponsive is returned on bus or timeout failures,
	// including wake failures that persist past the bounded retry, and on
	// any operation against a released session.
	ErrDeviceUnresponsive = errors.New("cryptoauth: device unresponsive")

	// ErrExecutionError is returned when the chip reports an internal
	// fault executing a command. Unknown native status codes map here.
	ErrExecutionError = errors.New("cryptoauth: command execution error")

	// ErrUnimplemented is returned when the active backend does not
	// support the requested operation.
	ErrUnimplemented = errors.New("cryptoauth: operation not implemented by backend")
)
