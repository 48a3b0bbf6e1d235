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

// Package backend defines the execution surface behind a device session:
// the capability set implemented by the hardware variant (real silicon over
// an I2C or SWI bus) and the software variant (deterministic in-memory
// emulation for tests).
//
// Backends translate every native status code into the error taxonomy in
// pkg/types at this boundary; raw status bytes never propagate further
// inward. Backends perform no permission or lock-state validation of their
// own beyond what the silicon itself enforces; that is the job of pkg/zone
// and the device session in pkg/atecc.
package backend

import (
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// InfoMode selects what the Info command reports.
type InfoMode uint8

const (
	// InfoRevision reports the 4-byte chip revision.
	InfoRevision InfoMode = 0x00

	// InfoKeyValid reports whether a slot holds a valid key.
	InfoKeyValid InfoMode = 0x01

	// InfoState reports the volatile TempKey/auth state.
	InfoState InfoMode = 0x02
)

// Backend is the capability set implemented by each execution variant. The
// device session selects one variant at construction time and is the only
// caller; it guarantees the wake→command→idle discipline and single-writer
// access, so implementations may assume calls are serialized.
//
// All byte-slice results are fresh allocations owned by the caller.
type Backend interface {
	// Type returns the backend variant identifier.
	Type() types.BackendType

	// Capabilities returns what features this variant supports.
	Capabilities() types.Capabilities

	// Initialize attaches the backend to its bus (or in-memory state).
	// It must be called exactly once before any other method.
	Initialize() error

	// Wake brings the device out of sleep or idle. The session retries
	// transient wake failures; Wake itself performs a single attempt.
	Wake() error

	// Idle places the device in the idle power state, preserving
	// volatile state (TempKey) and pausing the watchdog.
	Idle() error

	// Sleep places the device in the low-power sleep state, clearing
	// volatile state.
	Sleep() error

	// Close detaches the backend and releases the bus. After Close all
	// commands fail with ErrDeviceUnresponsive.
	Close() error

	// Random executes the Random command, returning 32 bytes from the
	// on-chip RNG.
	Random() ([]byte, error)

	// SHA256 computes a SHA-256 digest of message on the device.
	SHA256(message []byte) ([]byte, error)

	// GenKey generates a fresh P-256 private key in the slot and returns
	// the corresponding 64-byte public key.
	GenKey(slot uint8) ([]byte, error)

	// GetPublicKey returns the 64-byte public key for the slot, either
	// derived from the stored private key or read from a public slot.
	GetPublicKey(slot uint8) ([]byte, error)

	// Sign signs a 32-byte digest with the private key in the slot,
	// returning a 64-byte R||S signature.
	Sign(slot uint8, digest []byte) ([]byte, error)

	// PrivWrite writes a 32-byte private key scalar into the slot. Only
	// permitted while the data zone is unlocked; after data lock the
	// command is rejected by the device.
	PrivWrite(slot uint8, key []byte) error

	// Verify checks a 64-byte R||S signature over a 32-byte digest
	// against an externally supplied 64-byte public key. A well-formed
	// but non-matching signature returns (false, nil).
	Verify(publicKey, digest, signature []byte) (bool, error)

	// AESEncrypt encrypts one 16-byte block with the AES-128 key stored
	// in the slot.
	AESEncrypt(slot uint8, plaintext []byte) ([]byte, error)

	// AESDecrypt decrypts one 16-byte block with the AES-128 key stored
	// in the slot.
	AESDecrypt(slot uint8, ciphertext []byte) ([]byte, error)

	// ReadZone reads length bytes (4 or 32) from the addressed zone
	// block/offset.
	ReadZone(z types.Zone, slot uint8, block uint8, offset uint8, length uint8) ([]byte, error)

	// WriteZone writes 4 or 32 bytes to the addressed zone block/offset.
	WriteZone(z types.Zone, slot uint8, block uint8, offset uint8, data []byte) error

	// LockZone irreversibly locks the given zone.
	LockZone(z types.Zone) error

	// Counter reads the value of a monotonic counter.
	Counter(id uint8) (uint32, error)

	// IncrementCounter increments a monotonic counter and returns the
	// new value.
	IncrementCounter(id uint8) (uint32, error)

	// Info executes the Info command in the given mode, returning the
	// 4-byte response word.
	Info(mode InfoMode) ([]byte, error)

	// SerialNumber reads the 9-byte device serial number.
	SerialNumber() ([]byte, error)

	// ReadConfigZone reads the full 128-byte configuration zone.
	ReadConfigZone() ([]byte, error)
}
