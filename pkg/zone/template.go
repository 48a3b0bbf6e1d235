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

import "github.com/jeremyhahn/go-cryptoauth/pkg/types"

// DefaultConfigZone returns a factory-style ATECC608A configuration zone
// image with both zones unlocked. It is the default fixture used by the
// software backend and by tests that need a realistic slot layout:
//
//	slots 0-2   private P-256 signing keys (secret, PubInfo, ExtSign/IntSign)
//	slot  3     general data, write-once (writes forbidden after data lock)
//	slot  4     general data, always writable
//	slot  5     AES-128 key (secret)
//	slot  8     certificate/data store, always writable
//	slot  9     public P-256 key, always writable
//	slot  10    HMAC secret (secret, encrypted writes)
//	others      unconfigured (reserved key type)
//
// The returned slice is a fresh copy on every call; callers may mutate it.
func DefaultConfigZone() []byte {
	cfg := make([]byte, types.ConfigZoneSize)

	// Identity: SN[0:4], RevNum, SN[4:9]. SN[0:2] = 0x0123 and SN[8] =
	// 0xEE match the fixed bytes burned into every genuine device.
	copy(cfg[idxSerialPart1:], []byte{0x01, 0x23, 0xAA, 0x55})
	copy(cfg[idxRevision:], []byte{0x00, 0x00, 0x60, 0x02})
	copy(cfg[idxSerialPart2:], []byte{0x04, 0x05, 0x06, 0x07, 0xEE})

	// AES enable bit.
	cfg[idxAESEnable] = 0x01

	// Both zones unlocked, all slots unlocked.
	cfg[idxLockValue] = lockByteUnlocked
	cfg[idxLockConfig] = lockByteUnlocked
	cfg[idxSlotLocked] = 0xFF
	cfg[idxSlotLocked+1] = 0xFF

	setSlot := func(slot int, slotCfgLo, slotCfgHi, keyCfgLo, keyCfgHi byte) {
		cfg[idxSlotConfig+slot*2] = slotCfgLo
		cfg[idxSlotConfig+slot*2+1] = slotCfgHi
		cfg[idxKeyConfig+slot*2] = keyCfgLo
		cfg[idxKeyConfig+slot*2+1] = keyCfgHi
	}

	// Private P-256 signing keys: IsSecret|ExtSign|IntSign, write never,
	// KeyType P-256, Private, PubInfo, Lockable.
	for slot := 0; slot <= 2; slot++ {
		setSlot(slot, 0x83, 0x20, 0x33, 0x00)
	}

	// Slot 3: clear data, write-once.
	setSlot(3, 0x00, 0x20, 0x1C, 0x00)

	// Slot 4: clear data, always writable.
	setSlot(4, 0x00, 0x00, 0x1C, 0x00)

	// Slot 5: AES-128 key, secret, always writable (for provisioning).
	setSlot(5, 0x80, 0x00, 0x18, 0x00)

	// Slot 8: large data/certificate store.
	setSlot(8, 0x00, 0x00, 0x1C, 0x00)

	// Slot 9: public P-256 key, clear, always writable.
	setSlot(9, 0x00, 0x00, 0x10, 0x00)

	// Slot 10: HMAC secret, encrypted writes via access key in slot 10.
	setSlot(10, 0x80, 0x4A, 0x1C, 0x00)

	return cfg
}
