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

// ValidateOperation checks whether the given slot can ever satisfy the
// requested operation under the decoded configuration. It is pure and runs
// before any bus transaction; an incompatible pairing fails with
// ErrSlotUnusable and the backend is never called.
//
// The check is necessary but not sufficient: lock-state preconditions
// (for example Sign requiring a locked data zone) are enforced separately
// by the device session since they depend on mutable zone state.
func (dc *DeviceConfig) ValidateOperation(slot uint8, op types.Operation) error {
	if slot >= types.SlotCount {
		return fmt.Errorf("%w: slot %d out of range", types.ErrInvalidParameter, slot)
	}
	cfg := dc.Slots[slot].Config

	if cfg.KeyType == types.KeyTypeRFU {
		return fmt.Errorf("%w: slot %d has reserved key type", types.ErrSlotUnusable, slot)
	}

	switch op {
	case types.OpGenKey:
		// Key generation targets private ECC slots only.
		if cfg.KeyType != types.KeyTypeP256 {
			return unusable(slot, op, "key type is %s, want p256", cfg.KeyType)
		}
		if !cfg.IsSecret || !cfg.ECCKeyAttr.Private {
			return unusable(slot, op, "slot is not a private key slot")
		}

	case types.OpSign:
		if cfg.KeyType != types.KeyTypeP256 {
			return unusable(slot, op, "key type is %s, want p256", cfg.KeyType)
		}
		if !cfg.IsSecret || !cfg.ECCKeyAttr.Private {
			return unusable(slot, op, "slot does not hold a private key")
		}
		if !cfg.ECCKeyAttr.ExtSign {
			return unusable(slot, op, "external signatures not permitted")
		}

	case types.OpGetPublicKey:
		if cfg.KeyType != types.KeyTypeP256 {
			return unusable(slot, op, "key type is %s, want p256", cfg.KeyType)
		}
		switch {
		case cfg.IsSecret && cfg.ECCKeyAttr.Private && cfg.PubInfo:
			// Public key derived from the stored private key.
		case !cfg.IsSecret && cfg.WriteConfig == types.WriteConfigAlways:
			// Public key stored in the clear.
		default:
			return unusable(slot, op, "public key not retrievable")
		}

	case types.OpRead:
		if cfg.IsSecret && !cfg.ReadKey.EncryptRead {
			return unusable(slot, op, "secret slot is not readable")
		}

	case types.OpWrite:
		if cfg.WriteConfig == types.WriteConfigPubInvalid && cfg.KeyType != types.KeyTypeP256 {
			return unusable(slot, op, "pub-invalid write config on non-ECC slot")
		}

	case types.OpAESEncrypt, types.OpAESDecrypt:
		if cfg.KeyType != types.KeyTypeAES {
			return unusable(slot, op, "key type is %s, want aes", cfg.KeyType)
		}
		if !dc.ChipOptions.AESEnabled {
			return unusable(slot, op, "AES not enabled on this chip")
		}

	default:
		return fmt.Errorf("%w: unknown operation %d", types.ErrInvalidParameter, op)
	}

	return nil
}

func unusable(slot uint8, op types.Operation, format string, args ...any) error {
	return fmt.Errorf("%w: slot %d, op %s: %s",
		types.ErrSlotUnusable, slot, op, fmt.Sprintf(format, args...))
}
