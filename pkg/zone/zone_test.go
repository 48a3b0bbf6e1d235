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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

func TestParseConfig_InvalidLength(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"Empty", 0},
		{"Short", 64},
		{"Long", 256},
		{"OffByOne", types.ConfigZoneSize - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(make([]byte, tt.size))
			assert.ErrorIs(t, err, types.ErrInvalidParameter)
		})
	}
}

func TestParseConfig_Identity(t *testing.T) {
	dc, err := ParseConfig(DefaultConfigZone())
	require.NoError(t, err)

	assert.Equal(t, byte(0x01), dc.SerialNumber[0])
	assert.Equal(t, byte(0x23), dc.SerialNumber[1])
	assert.Equal(t, byte(0xEE), dc.SerialNumber[8])
	assert.Equal(t, [4]byte{0x00, 0x00, 0x60, 0x02}, dc.Revision)
	assert.True(t, dc.ChipOptions.AESEnabled)
}

func TestParseConfig_LockBytes(t *testing.T) {
	cfg := DefaultConfigZone()
	dc, err := ParseConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, types.Unlocked, dc.IsLocked(types.ZoneConfig))
	assert.Equal(t, types.Unlocked, dc.IsLocked(types.ZoneData))

	// Any value other than 0x55 reads as locked.
	cfg[idxLockConfig] = 0x00
	cfg[idxLockValue] = 0x42
	dc, err = ParseConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, types.Locked, dc.IsLocked(types.ZoneConfig))
	assert.Equal(t, types.Locked, dc.IsLocked(types.ZoneData))
}

func TestParseConfig_SlotDecode(t *testing.T) {
	dc, err := ParseConfig(DefaultConfigZone())
	require.NoError(t, err)

	signing := dc.Slots[0].Config
	assert.Equal(t, types.KeyTypeP256, signing.KeyType)
	assert.True(t, signing.IsSecret)
	assert.True(t, signing.ECCKeyAttr.Private)
	assert.True(t, signing.ECCKeyAttr.ExtSign)
	assert.True(t, signing.PubInfo)
	assert.True(t, signing.Lockable)
	assert.Equal(t, types.WriteConfigNever, signing.WriteConfig)

	writeOnce := dc.Slots[3].Config
	assert.Equal(t, types.KeyTypeShaOrText, writeOnce.KeyType)
	assert.False(t, writeOnce.IsSecret)
	assert.Equal(t, types.WriteConfigNever, writeOnce.WriteConfig)

	aes := dc.Slots[5].Config
	assert.Equal(t, types.KeyTypeAES, aes.KeyType)
	assert.True(t, aes.IsSecret)

	pub := dc.Slots[9].Config
	assert.Equal(t, types.KeyTypeP256, pub.KeyType)
	assert.False(t, pub.IsSecret)
	assert.Equal(t, types.WriteConfigAlways, pub.WriteConfig)

	hmac := dc.Slots[10].Config
	assert.Equal(t, types.WriteConfigEncrypt, hmac.WriteConfig)
	assert.Equal(t, uint8(10), hmac.WriteKey)

	// Unconfigured slots decode to the reserved key type.
	assert.Equal(t, types.KeyTypeRFU, dc.Slots[15].Config.KeyType)
}

func TestParseConfig_SlotLockedBits(t *testing.T) {
	cfg := DefaultConfigZone()
	// Clear the lock bit for slot 2 (bit 2 of byte 88) and slot 9
	// (bit 1 of byte 89): cleared bits mean individually locked.
	cfg[idxSlotLocked] &^= 1 << 2
	cfg[idxSlotLocked+1] &^= 1 << 1

	dc, err := ParseConfig(cfg)
	require.NoError(t, err)
	assert.True(t, dc.Slots[2].IsLocked)
	assert.True(t, dc.Slots[9].IsLocked)
	assert.False(t, dc.Slots[0].IsLocked)
	assert.False(t, dc.Slots[8].IsLocked)
}

func TestSetLocked_Monotonic(t *testing.T) {
	dc, err := ParseConfig(DefaultConfigZone())
	require.NoError(t, err)

	dc.SetLocked(types.ZoneConfig)
	assert.Equal(t, types.Locked, dc.IsLocked(types.ZoneConfig))
	assert.Equal(t, types.Unlocked, dc.IsLocked(types.ZoneData))

	dc.SetLocked(types.ZoneData)
	assert.Equal(t, types.Locked, dc.IsLocked(types.ZoneData))
}

func TestSlotCapacity(t *testing.T) {
	tests := []struct {
		slot  uint8
		bytes uint16
	}{
		{0, 36}, {7, 36}, {8, 416}, {9, 72}, {15, 72}, {16, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.bytes, SlotCapacity(tt.slot).Bytes, "slot %d", tt.slot)
	}
}

func TestDecodeWriteConfig(t *testing.T) {
	tests := []struct {
		raw  byte
		want types.WriteConfig
	}{
		{0, types.WriteConfigAlways},
		{1, types.WriteConfigPubInvalid},
		{2, types.WriteConfigNever},
		{3, types.WriteConfigNever},
		{4, types.WriteConfigEncrypt},
		{7, types.WriteConfigEncrypt},
		{8, types.WriteConfigNever},
		{11, types.WriteConfigNever},
		{12, types.WriteConfigEncrypt},
		{15, types.WriteConfigEncrypt},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, decodeWriteConfig(tt.raw), "raw %d", tt.raw)
	}
}

func TestValidateOperation(t *testing.T) {
	dc, err := ParseConfig(DefaultConfigZone())
	require.NoError(t, err)

	tests := []struct {
		name string
		slot uint8
		op   types.Operation
		err  error
	}{
		{"GenKeyPrivateSlot", 0, types.OpGenKey, nil},
		{"GenKeyDataSlot", 3, types.OpGenKey, types.ErrSlotUnusable},
		{"GenKeyPublicSlot", 9, types.OpGenKey, types.ErrSlotUnusable},
		{"GenKeyAESSlot", 5, types.OpGenKey, types.ErrSlotUnusable},
		{"SignPrivateSlot", 1, types.OpSign, nil},
		{"SignDataSlot", 4, types.OpSign, types.ErrSlotUnusable},
		{"SignPublicSlot", 9, types.OpSign, types.ErrSlotUnusable},
		{"PubKeyFromPrivate", 0, types.OpGetPublicKey, nil},
		{"PubKeyFromPublicSlot", 9, types.OpGetPublicKey, nil},
		{"PubKeyFromDataSlot", 3, types.OpGetPublicKey, types.ErrSlotUnusable},
		{"ReadClearSlot", 3, types.OpRead, nil},
		{"ReadSecretSlot", 5, types.OpRead, types.ErrSlotUnusable},
		{"ReadHMACSecret", 10, types.OpRead, types.ErrSlotUnusable},
		{"WriteDataSlot", 4, types.OpWrite, nil},
		{"WriteWriteOnceSlot", 3, types.OpWrite, nil},
		{"AESOnAESSlot", 5, types.OpAESEncrypt, nil},
		{"AESOnDataSlot", 3, types.OpAESEncrypt, types.ErrSlotUnusable},
		{"ReservedSlot", 15, types.OpRead, types.ErrSlotUnusable},
		{"SlotOutOfRange", 16, types.OpRead, types.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dc.ValidateOperation(tt.slot, tt.op)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestValidateOperation_AESDisabled(t *testing.T) {
	cfg := DefaultConfigZone()
	cfg[idxAESEnable] = 0x00

	dc, err := ParseConfig(cfg)
	require.NoError(t, err)
	assert.ErrorIs(t, dc.ValidateOperation(5, types.OpAESEncrypt), types.ErrSlotUnusable)
}
