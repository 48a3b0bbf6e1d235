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

package zone

import (
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// ReadKey describes how a slot's contents may be read back.
type ReadKey struct {
	// EncryptRead requires reads to be encrypted with the access key in
	// SlotNumber.
	EncryptRead bool

	// SlotNumber is the slot holding the read access key.
	SlotNumber uint8
}

// ECCKeyAttr carries the ECC-specific attribute bits of a slot.
type ECCKeyAttr struct {
	// Private indicates the slot holds (or will hold) a private key.
	Private bool

	// ExtSign permits the Sign command to produce externally verifiable
	// signatures with this slot.
	ExtSign bool

	// IntSign permits internal (attestation) signatures.
	IntSign bool

	// ECDHOperation permits the slot in ECDH key agreement.
	ECDHOperation bool

	// ECDHSecretOut permits the ECDH master secret in the clear.
	ECDHSecretOut bool
}

// SlotConfig is the decoded configuration of a single data zone slot. It is
// immutable once the configuration zone is locked.
type SlotConfig struct {
	// WriteConfig is the slot write permission.
	WriteConfig types.WriteConfig

	// KeyType constrains which operations the slot accepts.
	KeyType types.KeyType

	// ReadKey describes read permissions.
	ReadKey ReadKey

	// ECCKeyAttr carries ECC attribute bits; meaningful only for
	// KeyTypeP256 slots.
	ECCKeyAttr ECCKeyAttr

	// X509ID selects the certificate format template for this slot.
	X509ID uint8

	// AuthKey is the slot holding the authorizing key when ReqAuth is set.
	AuthKey uint8

	// WriteKey is the slot holding the write access key when WriteConfig
	// is WriteConfigEncrypt.
	WriteKey uint8

	// IsSecret marks the slot contents as secret; secret slots cannot be
	// read in the clear.
	IsSecret bool

	// LimitedUse ties slot usage to a monotonic counter.
	LimitedUse bool

	// NoMAC excludes the slot from MAC commands.
	NoMAC bool

	// PersistentDisable allows persistent latch gating of the slot.
	PersistentDisable bool

	// ReqAuth requires prior authorization for slot usage.
	ReqAuth bool

	// ReqRandom requires a random nonce for operations with this slot.
	ReqRandom bool

	// Lockable indicates the slot may be individually locked.
	Lockable bool

	// PubInfo, for private keys, indicates the public key may be
	// generated from the slot.
	PubInfo bool
}

// Slot pairs a slot index with its decoded configuration and individual
// lock state.
type Slot struct {
	// ID is the slot index, 0 through 15.
	ID uint8

	// IsLocked reports the slot's individual lock bit.
	IsLocked bool

	// Config is the decoded slot configuration.
	Config SlotConfig
}

// Capacity describes how much data a slot can hold.
type Capacity struct {
	// Blocks is the number of 32-byte blocks addressable in the slot.
	Blocks uint8

	// LastBlockBytes is the number of valid bytes in the final block.
	LastBlockBytes uint8

	// Bytes is the total slot capacity in bytes.
	Bytes uint16
}

// SlotCapacity returns the data capacity of the given slot. Slots 0-7 hold
// 36 bytes, slot 8 holds 416 bytes, and slots 9-15 hold 72 bytes. An
// out-of-range slot has zero capacity.
func SlotCapacity(slot uint8) Capacity {
	switch {
	case slot <= 7:
		return Capacity{Blocks: 2, LastBlockBytes: 4, Bytes: 36}
	case slot == 8:
		return Capacity{Blocks: 13, LastBlockBytes: 32, Bytes: 416}
	case slot <= 15:
		return Capacity{Blocks: 3, LastBlockBytes: 8, Bytes: 72}
	default:
		return Capacity{}
	}
}

// bitValue extracts a single bit from a config byte.
func bitValue(b byte, pos uint8) bool {
	if pos > 7 {
		return false
	}
	return (b>>pos)&1 != 0
}

// decodeWriteConfig decodes the 4-bit WriteConfig field. The encoding
// follows the ATECC datasheet: 0 always, 1 pub-invalid, 2-3 and 8-11 never,
// everything else encrypted.
func decodeWriteConfig(v byte) types.WriteConfig {
	switch v & 0x0F {
	case 0:
		return types.WriteConfigAlways
	case 1:
		return types.WriteConfigPubInvalid
	case 2, 3, 8, 9, 10, 11:
		return types.WriteConfigNever
	default:
		return types.WriteConfigEncrypt
	}
}

// decodeKeyType decodes the 3-bit KeyType field of a KeyConfig word.
func decodeKeyType(v byte) types.KeyType {
	switch v & 0x07 {
	case 4:
		return types.KeyTypeP256
	case 6:
		return types.KeyTypeAES
	case 7:
		return types.KeyTypeShaOrText
	default:
		return types.KeyTypeRFU
	}
}

// decodeSlot decodes one slot's SlotConfig and KeyConfig bytes plus its
// individual lock bit out of a raw configuration zone image.
func decodeSlot(config []byte, idx uint8) Slot {
	slotCfg := int(idxSlotConfig) + int(idx)*2
	keyCfg := int(idxKeyConfig) + int(idx)*2

	cfg := SlotConfig{
		WriteConfig: decodeWriteConfig(config[slotCfg+1] >> 4),
		KeyType:     decodeKeyType(config[keyCfg] >> 2),
		ReadKey: ReadKey{
			EncryptRead: bitValue(config[slotCfg], 6),
			SlotNumber:  config[slotCfg] & 0x0F,
		},
		ECCKeyAttr: ECCKeyAttr{
			Private:       bitValue(config[keyCfg], 0),
			ExtSign:       bitValue(config[slotCfg], 0),
			IntSign:       bitValue(config[slotCfg], 1),
			ECDHOperation: bitValue(config[slotCfg], 2),
			ECDHSecretOut: bitValue(config[slotCfg], 3),
		},
		X509ID:            (config[keyCfg+1] >> 6) & 0x03,
		AuthKey:           config[keyCfg+1] & 0x0F,
		WriteKey:          config[slotCfg+1] & 0x0F,
		IsSecret:          bitValue(config[slotCfg], 7),
		LimitedUse:        bitValue(config[slotCfg], 5),
		NoMAC:             bitValue(config[slotCfg], 4),
		PersistentDisable: bitValue(config[keyCfg+1], 4),
		ReqAuth:           bitValue(config[keyCfg], 7),
		ReqRandom:         bitValue(config[keyCfg], 6),
		Lockable:          bitValue(config[keyCfg], 5),
		PubInfo:           bitValue(config[keyCfg], 1),
	}

	// SlotLocked bits are inverted: 1 means still unlocked.
	lockByte := config[int(idxSlotLocked)+int(idx)/8]
	locked := (lockByte>>(idx%8))&1 != 1

	return Slot{ID: idx, IsLocked: locked, Config: cfg}
}
