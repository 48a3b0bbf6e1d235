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
	"fmt"

	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// Byte offsets within the 128-byte ATECC configuration zone.
const (
	idxSerialPart1 = 0  // SN[0:4]
	idxRevision    = 4  // RevNum[0:4]
	idxSerialPart2 = 8  // SN[4:9]
	idxAESEnable   = 13 // AES enable, bit 0
	idxSlotConfig  = 20 // SlotConfig, 2 bytes per slot
	idxLockValue   = 86 // data zone lock byte
	idxLockConfig  = 87 // config zone lock byte
	idxSlotLocked  = 88 // SlotLocked bits, 2 bytes
	idxChipOptions = 90 // ChipOptions, 2 bytes
	idxKeyConfig   = 96 // KeyConfig, 2 bytes per slot
)

// A lock byte reads 0x55 while the zone is still unlocked; any other value
// means locked.
const lockByteUnlocked = 0x55

// ChipOptions carries the ATECC608-only feature flags decoded from the
// ChipOptions configuration word.
type ChipOptions struct {
	// AESEnabled indicates the chip supports AES commands.
	AESEnabled bool

	// IOKeyEnabled indicates host/chip transmission encryption.
	IOKeyEnabled bool

	// IOKeyInSlot is the slot holding the IO protection key.
	IOKeyInSlot uint8

	// KDFAESEnabled indicates AES is available to KDF operations.
	KDFAESEnabled bool

	// ECDHOutputProtection and KDFOutputProtection hold the 2-bit output
	// protection states.
	ECDHOutputProtection uint8
	KDFOutputProtection  uint8
}

// DeviceConfig is the decoded configuration zone of one device.
type DeviceConfig struct {
	// SerialNumber is the 9-byte device serial number.
	SerialNumber [types.SerialNumberSize]byte

	// Revision is the 4-byte chip revision.
	Revision [types.RevisionSize]byte

	// Slots holds the decoded configuration of all 16 data slots.
	Slots [types.SlotCount]Slot

	// ChipOptions holds the decoded chip option flags.
	ChipOptions ChipOptions

	configLocked bool
	dataLocked   bool
}

// ParseConfig decodes a raw 128-byte configuration zone image. A block of
// the wrong length fails with ErrInvalidParameter.
func ParseConfig(config []byte) (*DeviceConfig, error) {
	if len(config) != types.ConfigZoneSize {
		return nil, fmt.Errorf("%w: config zone must be %d bytes, got %d",
			types.ErrInvalidParameter, types.ConfigZoneSize, len(config))
	}

	dc := &DeviceConfig{
		configLocked: config[idxLockConfig] != lockByteUnlocked,
		dataLocked:   config[idxLockValue] != lockByteUnlocked,
		ChipOptions: ChipOptions{
			AESEnabled:           bitValue(config[idxAESEnable], 0),
			IOKeyEnabled:         bitValue(config[idxChipOptions], 1),
			KDFAESEnabled:        bitValue(config[idxChipOptions], 2),
			IOKeyInSlot:          (config[idxChipOptions+1] >> 4) & 0x0F,
			ECDHOutputProtection: config[idxChipOptions+1] & 0x03,
			KDFOutputProtection:  (config[idxChipOptions+1] >> 2) & 0x03,
		},
	}
	copy(dc.SerialNumber[:4], config[idxSerialPart1:idxSerialPart1+4])
	copy(dc.SerialNumber[4:], config[idxSerialPart2:idxSerialPart2+5])
	copy(dc.Revision[:], config[idxRevision:idxRevision+4])

	for i := uint8(0); i < types.SlotCount; i++ {
		dc.Slots[i] = decodeSlot(config, i)
	}

	return dc, nil
}

// IsLocked returns the lock state of the given zone. Unknown zones read as
// unlocked.
func (dc *DeviceConfig) IsLocked(z types.Zone) types.LockState {
	switch z {
	case types.ZoneConfig:
		if dc.configLocked {
			return types.Locked
		}
	case types.ZoneData:
		if dc.dataLocked {
			return types.Locked
		}
	}
	return types.Unlocked
}

// SetLocked records a zone transition to the locked state. Lock state is
// monotonic; unlocking is not representable.
func (dc *DeviceConfig) SetLocked(z types.Zone) {
	switch z {
	case types.ZoneConfig:
		dc.configLocked = true
	case types.ZoneData:
		dc.dataLocked = true
	}
}

// Slot returns the decoded configuration for the given slot index.
func (dc *DeviceConfig) Slot(slot uint8) (*Slot, error) {
	if slot >= types.SlotCount {
		return nil, fmt.Errorf("%w: slot %d out of range", types.ErrInvalidParameter, slot)
	}
	return &dc.Slots[slot], nil
}
