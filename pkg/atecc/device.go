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

package atecc

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-cryptoauth/pkg/backend"
	"github.com/jeremyhahn/go-cryptoauth/pkg/logging"
	"github.com/jeremyhahn/go-cryptoauth/pkg/metrics"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
	"github.com/jeremyhahn/go-cryptoauth/pkg/zone"
)

// Device is the public handle to one secure element. All methods are safe
// for concurrent use; the underlying session serializes bus access.
type Device struct {
	cfg     Config
	id      uuid.UUID
	log     *logging.Logger
	session *session
	label   string

	mu         sync.RWMutex
	dc         *zone.DeviceConfig
	serial     []byte
	accessKeys map[uint8][]byte
}

// New attaches to the configured device, reads its identity and
// configuration zone up front, and caches serial number, slot configuration
// and lock states. Only one live Device is allowed per process until
// Release is called.
func New(cfg Config) (*Device, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := acquireDevice(); err != nil {
		return nil, err
	}

	b, err := cfg.buildBackend()
	if err != nil {
		releaseDevice()
		return nil, err
	}
	if err := b.Initialize(); err != nil {
		releaseDevice()
		return nil, err
	}

	d := &Device{
		cfg:        cfg,
		id:         uuid.New(),
		log:        cfg.Logger,
		session:    newSession(b, cfg.WakeRetries, cfg.WakeRetryInterval),
		label:      b.Type().String(),
		accessKeys: make(map[uint8][]byte),
	}

	if err := d.bootstrap(); err != nil {
		_ = d.session.release()
		releaseDevice()
		return nil, err
	}

	d.log.Debug("device attached",
		"device_id", d.id,
		"backend", d.label,
		"serial", hex.EncodeToString(d.serial),
		"config_locked", d.IsLocked(types.ZoneConfig).String(),
		"data_locked", d.IsLocked(types.ZoneData).String())

	return d, nil
}

// bootstrap reads serial number and configuration zone in one session pass.
func (d *Device) bootstrap() error {
	return d.session.execute(func(b backend.Backend) error {
		serial, err := b.SerialNumber()
		if err != nil {
			return err
		}
		raw, err := b.ReadConfigZone()
		if err != nil {
			return err
		}
		dc, err := zone.ParseConfig(raw)
		if err != nil {
			return err
		}

		d.mu.Lock()
		d.serial = serial
		d.dc = dc
		d.mu.Unlock()

		metrics.SetZoneLocked(types.ZoneConfig.String(), dc.IsLocked(types.ZoneConfig) == types.Locked)
		metrics.SetZoneLocked(types.ZoneData.String(), dc.IsLocked(types.ZoneData) == types.Locked)
		return nil
	})
}

// Refresh re-reads the configuration zone, replacing the cached view.
func (d *Device) Refresh() error {
	start := time.Now()
	err := d.bootstrap()
	d.observe("refresh", start, err)
	return err
}

// Release puts the device to sleep, closes the backend and frees the
// process-wide device claim. Subsequent operations fail
// ErrDeviceUnresponsive; the Device is not reusable.
func (d *Device) Release() error {
	err := d.session.release()
	releaseDevice()
	d.log.Debug("device released", "device_id", d.id)
	return err
}

// BackendType returns the active backend variant.
func (d *Device) BackendType() types.BackendType {
	return d.session.backend.Type()
}

// Capabilities returns the active backend's capability set.
func (d *Device) Capabilities() types.Capabilities {
	return d.session.backend.Capabilities()
}

// SerialNumber returns the cached 9-byte device serial number.
func (d *Device) SerialNumber() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]byte, len(d.serial))
	copy(out, d.serial)
	return out
}

// GetConfig returns the cached decoded configuration zone. The caller must
// treat it as read-only.
func (d *Device) GetConfig() *zone.DeviceConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dc
}

// IsLocked returns the cached lock state of the given zone.
func (d *Device) IsLocked(z types.Zone) types.LockState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dc.IsLocked(z)
}

// Random returns 32 bytes from the device RNG. Unlike most commands this
// carries no lock-state precondition; it works on factory-fresh parts.
func (d *Device) Random() ([]byte, error) {
	var out []byte
	err := d.run("random", func(b backend.Backend) error {
		var err error
		out, err = b.Random()
		return err
	})
	return out, err
}

// SHA256 computes a SHA-256 digest of message on the device.
func (d *Device) SHA256(message []byte) ([]byte, error) {
	var out []byte
	err := d.run("sha256", func(b backend.Backend) error {
		var err error
		out, err = b.SHA256(message)
		return err
	})
	return out, err
}

// GenerateKey generates a fresh P-256 private key in the slot and returns
// the public key. Requires a locked configuration zone and a slot
// configured for private keys.
func (d *Device) GenerateKey(slot uint8) ([]byte, error) {
	const op = "genkey"
	if d.IsLocked(types.ZoneConfig) != types.Locked {
		return nil, d.reject(op, fmt.Errorf(
			"%w: key generation requires a locked configuration zone",
			types.ErrConfigZoneNotLocked))
	}
	if err := d.validate(slot, types.OpGenKey); err != nil {
		return nil, d.reject(op, err)
	}

	var out []byte
	err := d.run(op, func(b backend.Backend) error {
		var err error
		out, err = b.GenKey(slot)
		return err
	})
	return out, err
}

// ImportKey writes an externally generated key into the slot: a 32-byte
// P-256 scalar for private ECC slots, a 16-byte key for AES slots. Only
// possible while the data zone is unlocked.
func (d *Device) ImportKey(slot uint8, key []byte) error {
	const op = "import_key"
	if d.IsLocked(types.ZoneConfig) != types.Locked {
		return d.reject(op, fmt.Errorf(
			"%w: key import requires a locked configuration zone",
			types.ErrConfigZoneNotLocked))
	}
	if d.IsLocked(types.ZoneData) == types.Locked {
		return d.reject(op, fmt.Errorf(
			"%w: key import requires an unlocked data zone", types.ErrDataZoneLocked))
	}
	cfg, err := d.slotConfig(slot)
	if err != nil {
		return d.reject(op, err)
	}

	switch cfg.KeyType {
	case types.KeyTypeP256:
		if err := d.validate(slot, types.OpGenKey); err != nil {
			return d.reject(op, err)
		}
		return d.run(op, func(b backend.Backend) error {
			return b.PrivWrite(slot, key)
		})

	case types.KeyTypeAES:
		if len(key) != types.AESKeySize {
			return d.reject(op, fmt.Errorf("%w: AES key must be %d bytes, got %d",
				types.ErrInvalidParameter, types.AESKeySize, len(key)))
		}
		block := make([]byte, types.BlockSize)
		copy(block, key)
		return d.run(op, func(b backend.Backend) error {
			return b.WriteZone(types.ZoneData, slot, 0, 0, block)
		})

	default:
		return d.reject(op, fmt.Errorf("%w: slot %d does not hold a key",
			types.ErrSlotUnusable, slot))
	}
}

// ExportKey reads key material back from a clear-readable slot: 64 bytes
// for public P-256 slots, the full slot contents otherwise. Secret slots
// fail ErrSlotUnusable.
func (d *Device) ExportKey(slot uint8) ([]byte, error) {
	const op = "export_key"
	cfg, err := d.slotConfig(slot)
	if err != nil {
		return nil, d.reject(op, err)
	}
	if err := d.validate(slot, types.OpRead); err != nil {
		return nil, d.reject(op, err)
	}

	data, err := d.readSlot(op, slot)
	if err != nil {
		return nil, err
	}
	if cfg.KeyType == types.KeyTypeP256 && len(data) >= types.PublicKeySize {
		return data[:types.PublicKeySize], nil
	}
	return data, nil
}

// GetPublicKey returns the 64-byte public key for the slot: derived on the
// device for private slots with PubInfo, read back for clear public slots.
func (d *Device) GetPublicKey(slot uint8) ([]byte, error) {
	const op = "get_public_key"
	cfg, err := d.slotConfig(slot)
	if err != nil {
		return nil, d.reject(op, err)
	}
	if err := d.validate(slot, types.OpGetPublicKey); err != nil {
		return nil, d.reject(op, err)
	}

	if cfg.IsSecret && cfg.ECCKeyAttr.Private {
		var out []byte
		err := d.run(op, func(b backend.Backend) error {
			var err error
			out, err = b.GetPublicKey(slot)
			return err
		})
		return out, err
	}

	data, err := d.readSlot(op, slot)
	if err != nil {
		return nil, err
	}
	return data[:types.PublicKeySize], nil
}

// Sign signs a 32-byte digest with the private key in the slot, returning
// a 64-byte R||S signature. Requires a locked data zone and a slot
// permitting external signatures.
func (d *Device) Sign(slot uint8, digest []byte) ([]byte, error) {
	const op = "sign"
	if len(digest) != types.DigestSize {
		return nil, d.reject(op, fmt.Errorf("%w: digest must be %d bytes, got %d",
			types.ErrInvalidParameter, types.DigestSize, len(digest)))
	}
	if d.IsLocked(types.ZoneData) != types.Locked {
		return nil, d.reject(op, fmt.Errorf(
			"%w: signing requires a locked data zone", types.ErrDataZoneNotLocked))
	}
	if err := d.validate(slot, types.OpSign); err != nil {
		return nil, d.reject(op, err)
	}

	var out []byte
	err := d.run(op, func(b backend.Backend) error {
		var err error
		out, err = b.Sign(slot, digest)
		return err
	})
	return out, err
}

// Verify checks a 64-byte R||S signature over a 32-byte digest against an
// externally supplied public key. A well-formed but non-matching signature
// returns (false, nil); only malformed requests or device faults error.
func (d *Device) Verify(publicKey, digest, signature []byte) (bool, error) {
	var ok bool
	err := d.run("verify", func(b backend.Backend) error {
		var err error
		ok, err = b.Verify(publicKey, digest, signature)
		return err
	})
	return ok, err
}

// AESEncrypt encrypts one 16-byte plaintext block with the AES-128 key in
// the slot, the chip's native single-block primitive. Requires a locked
// data zone, an AES slot and an AES-enabled chip.
func (d *Device) AESEncrypt(slot uint8, plaintext []byte) ([]byte, error) {
	return d.aesBlock("aes_encrypt", types.OpAESEncrypt, slot, plaintext)
}

// AESDecrypt decrypts one 16-byte ciphertext block with the AES-128 key in
// the slot. Requires a locked data zone, an AES slot and an AES-enabled chip.
func (d *Device) AESDecrypt(slot uint8, ciphertext []byte) ([]byte, error) {
	return d.aesBlock("aes_decrypt", types.OpAESDecrypt, slot, ciphertext)
}

func (d *Device) aesBlock(op string, aesOp types.Operation, slot uint8, in []byte) ([]byte, error) {
	if len(in) != types.AESBlockSize {
		return nil, d.reject(op, fmt.Errorf("%w: AES block must be %d bytes, got %d",
			types.ErrInvalidParameter, types.AESBlockSize, len(in)))
	}
	if d.IsLocked(types.ZoneData) != types.Locked {
		return nil, d.reject(op, fmt.Errorf(
			"%w: AES key use requires a locked data zone", types.ErrDataZoneNotLocked))
	}
	if err := d.validate(slot, aesOp); err != nil {
		return nil, d.reject(op, err)
	}

	var out []byte
	err := d.run(op, func(b backend.Backend) error {
		var err error
		if aesOp == types.OpAESEncrypt {
			out, err = b.AESEncrypt(slot, in)
		} else {
			out, err = b.AESDecrypt(slot, in)
		}
		return err
	})
	return out, err
}

// ReadSlot reads the full contents of a clear-readable slot.
func (d *Device) ReadSlot(slot uint8) ([]byte, error) {
	const op = "read"
	if err := d.validate(slot, types.OpRead); err != nil {
		return nil, d.reject(op, err)
	}
	cfg, err := d.slotConfig(slot)
	if err != nil {
		return nil, d.reject(op, err)
	}
	if cfg.IsSecret && cfg.ReadKey.EncryptRead {
		// Host-side encrypted read transport is not implemented; the
		// access key registry gates writes only.
		return nil, d.reject(op, fmt.Errorf(
			"%w: encrypted reads not supported", types.ErrUnimplemented))
	}
	return d.readSlot(op, slot)
}

// WriteSlot writes data into the slot, starting at offset zero. Writable at
// any time while the data zone is unlocked (configuration zone must be
// locked first); after data lock the slot's WriteConfig governs.
func (d *Device) WriteSlot(slot uint8, data []byte) error {
	const op = "write"
	if err := d.validate(slot, types.OpWrite); err != nil {
		return d.reject(op, err)
	}
	cfg, err := d.slotConfig(slot)
	if err != nil {
		return d.reject(op, err)
	}

	capacity := zone.SlotCapacity(slot)
	if len(data) == 0 || len(data) > int(capacity.Bytes) {
		return d.reject(op, fmt.Errorf("%w: slot %d holds at most %d bytes, got %d",
			types.ErrInvalidParameter, slot, capacity.Bytes, len(data)))
	}

	if d.IsLocked(types.ZoneData) == types.Locked {
		switch cfg.WriteConfig {
		case types.WriteConfigAlways:
		case types.WriteConfigEncrypt:
			d.mu.RLock()
			_, haveKey := d.accessKeys[cfg.WriteKey]
			d.mu.RUnlock()
			if !haveKey {
				return d.reject(op, fmt.Errorf(
					"%w: slot %d requires the access key in slot %d for encrypted writes",
					types.ErrSlotUnusable, slot, cfg.WriteKey))
			}
		default:
			return d.reject(op, fmt.Errorf("%w: slot %d is not writable after data lock",
				types.ErrDataZoneLocked, slot))
		}
	}

	// Pad to the 4-byte write granularity.
	padded := make([]byte, (len(data)+3)&^3)
	copy(padded, data)

	return d.run(op, func(b backend.Backend) error {
		for i := 0; i < len(padded); {
			block := uint8(i / types.BlockSize)
			offset := uint8((i % types.BlockSize) / 4)
			if offset == 0 && len(padded)-i >= types.BlockSize {
				if err := b.WriteZone(types.ZoneData, slot, block, 0,
					padded[i:i+types.BlockSize]); err != nil {
					return err
				}
				i += types.BlockSize
				continue
			}
			if err := b.WriteZone(types.ZoneData, slot, block, offset,
				padded[i:i+4]); err != nil {
				return err
			}
			i += 4
		}
		return nil
	})
}

// LockZone irreversibly locks the given zone. The configuration zone must
// lock before the data zone; locking a locked zone fails with that zone's
// already-locked error.
func (d *Device) LockZone(z types.Zone) error {
	const op = "lock"
	if !z.IsValid() {
		return d.reject(op, fmt.Errorf("%w: unknown zone %d", types.ErrInvalidParameter, z))
	}

	switch z {
	case types.ZoneConfig:
		if d.IsLocked(types.ZoneConfig) == types.Locked {
			return d.reject(op, fmt.Errorf("%w: configuration zone is already locked",
				types.ErrConfigZoneLocked))
		}
	case types.ZoneData:
		if d.IsLocked(types.ZoneConfig) != types.Locked {
			return d.reject(op, fmt.Errorf(
				"%w: data zone cannot lock before the configuration zone",
				types.ErrConfigZoneNotLocked))
		}
		if d.IsLocked(types.ZoneData) == types.Locked {
			return d.reject(op, fmt.Errorf("%w: data zone is already locked",
				types.ErrDataZoneLocked))
		}
	}

	err := d.run(op, func(b backend.Backend) error {
		return b.LockZone(z)
	})
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.dc.SetLocked(z)
	d.mu.Unlock()
	metrics.SetZoneLocked(z.String(), true)

	d.log.Info("zone locked", "device_id", d.id, "zone", z.String())
	return nil
}

// Counter reads the value of a monotonic counter.
func (d *Device) Counter(id uint8) (uint32, error) {
	var out uint32
	err := d.run("counter", func(b backend.Backend) error {
		var err error
		out, err = b.Counter(id)
		return err
	})
	return out, err
}

// IncrementCounter increments a monotonic counter and returns the new
// value. Counters only ever move forward; there is no reset.
func (d *Device) IncrementCounter(id uint8) (uint32, error) {
	var out uint32
	err := d.run("counter_increment", func(b backend.Backend) error {
		var err error
		out, err = b.IncrementCounter(id)
		return err
	})
	return out, err
}

// Info executes the Info command, returning the 4-byte response word.
func (d *Device) Info(mode backend.InfoMode) ([]byte, error) {
	var out []byte
	err := d.run("info", func(b backend.Backend) error {
		var err error
		out, err = b.Info(mode)
		return err
	})
	return out, err
}

// AddAccessKey registers a host-side access key for a slot that requires
// encrypted writes. The key lives in the Device only, never on the chip.
func (d *Device) AddAccessKey(slot uint8, key []byte) error {
	if slot >= types.SlotCount {
		return fmt.Errorf("%w: slot %d out of range", types.ErrInvalidParameter, slot)
	}
	if len(key) != types.AccessKeySize {
		return fmt.Errorf("%w: access key must be %d bytes, got %d",
			types.ErrInvalidParameter, types.AccessKeySize, len(key))
	}

	cp := make([]byte, types.AccessKeySize)
	copy(cp, key)
	d.mu.Lock()
	d.accessKeys[slot] = cp
	d.mu.Unlock()
	return nil
}

// FlushAccessKeys removes all registered access keys.
func (d *Device) FlushAccessKeys() {
	d.mu.Lock()
	d.accessKeys = make(map[uint8][]byte)
	d.mu.Unlock()
}

// readSlot reads a slot's full capacity: 32-byte blocks first, then the
// trailing partial block in 4-byte words.
func (d *Device) readSlot(op string, slot uint8) ([]byte, error) {
	capacity := zone.SlotCapacity(slot)
	out := make([]byte, 0, capacity.Bytes)

	err := d.run(op, func(b backend.Backend) error {
		fullBlocks := capacity.Bytes / types.BlockSize
		for block := uint16(0); block < fullBlocks; block++ {
			data, err := b.ReadZone(types.ZoneData, slot, uint8(block), 0, types.BlockSize)
			if err != nil {
				return err
			}
			out = append(out, data...)
		}
		remainder := capacity.Bytes % types.BlockSize
		for offset := uint16(0); offset < remainder/4; offset++ {
			data, err := b.ReadZone(types.ZoneData, slot, uint8(fullBlocks), uint8(offset), 4)
			if err != nil {
				return err
			}
			out = append(out, data...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// slotConfig returns the cached configuration of the slot.
func (d *Device) slotConfig(slot uint8) (*zone.SlotConfig, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, err := d.dc.Slot(slot)
	if err != nil {
		return nil, err
	}
	return &s.Config, nil
}

// validate runs the pure zone-model check for a slot/operation pairing.
// Failures are rejected before any bus traffic.
func (d *Device) validate(slot uint8, op types.Operation) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dc.ValidateOperation(slot, op)
}

// run executes fn inside the serialized session and records the outcome.
func (d *Device) run(op string, fn func(b backend.Backend) error) error {
	start := time.Now()
	err := d.session.execute(fn)
	d.observe(op, start, err)
	return err
}

// reject records a validation failure that never reached the bus.
func (d *Device) reject(op string, err error) error {
	d.observe(op, time.Now(), err)
	return err
}

// observe emits the per-operation metrics and, on failure, one structured
// log record.
func (d *Device) observe(op string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	if err == nil {
		metrics.RecordOperation(op, d.label, metrics.StatusSuccess, duration)
		return
	}
	kind := errKind(err)
	metrics.RecordOperation(op, d.label, metrics.StatusError, duration)
	metrics.RecordError(op, d.label, kind)
	d.log.Error("device operation failed",
		"device_id", d.id,
		"operation", op,
		"error_kind", kind,
		"error", err.Error())
}

// errKind maps a taxonomy error onto its metrics label.
func errKind(err error) string {
	switch {
	case errors.Is(err, types.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, types.ErrConfigZoneLocked):
		return "config_zone_locked"
	case errors.Is(err, types.ErrConfigZoneNotLocked):
		return "config_zone_not_locked"
	case errors.Is(err, types.ErrDataZoneLocked):
		return "data_zone_locked"
	case errors.Is(err, types.ErrDataZoneNotLocked):
		return "data_zone_not_locked"
	case errors.Is(err, types.ErrSlotUnusable):
		return "slot_unusable"
	case errors.Is(err, types.ErrDeviceUnresponsive):
		return "device_unresponsive"
	case errors.Is(err, types.ErrUnimplemented):
		return "unimplemented"
	case errors.Is(err, types.ErrExecutionError):
		return "execution_error"
	default:
		return "unknown"
	}
}
