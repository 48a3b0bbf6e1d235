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

package software

import (
	"crypto/aes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/jeremyhahn/go-cryptoauth/pkg/backend"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
	"github.com/jeremyhahn/go-cryptoauth/pkg/zone"
)

// Raw configuration zone lock byte offsets, patched in place on LockZone so
// ReadConfigZone always reflects current lock state.
const (
	rawLockValue  = 86
	rawLockConfig = 87
	lockedByte    = 0x00
)

// Backend is the in-memory secure element emulation. It takes no internal
// command lock: the device session is the only caller and serializes all
// access, and the re-entrancy detector exists precisely to catch callers
// that violate that contract.
type Backend struct {
	cfg Config

	initialized bool
	closed      bool
	awake       bool

	config []byte
	slots  [types.SlotCount][]byte
	keys   map[uint8]*ecdsa.PrivateKey

	// dcmu guards dc. Commands read dc under the session mutex, but
	// Capabilities is callable outside the session and must not race the
	// reparse after a config write or lock.
	dcmu sync.RWMutex
	dc   *zone.DeviceConfig

	counters [types.CounterCount]uint32

	instruments
}

var _ backend.Backend = (*Backend)(nil)

// New creates a software backend from the given configuration. The returned
// backend must be Initialized before use.
func New(cfg Config) (*Backend, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	image := make([]byte, types.ConfigZoneSize)
	copy(image, cfg.ConfigZone)
	if cfg.LockConfigZone {
		image[rawLockConfig] = lockedByte
	}
	if cfg.LockDataZone {
		image[rawLockValue] = lockedByte
	}

	dc, err := zone.ParseConfig(image)
	if err != nil {
		return nil, err
	}

	b := &Backend{
		cfg:    cfg,
		config: image,
		dc:     dc,
		keys:   make(map[uint8]*ecdsa.PrivateKey),
	}
	for i := uint8(0); i < types.SlotCount; i++ {
		b.slots[i] = make([]byte, zone.SlotCapacity(i).Bytes)
	}
	b.instruments.init()
	return b, nil
}

// Type implements backend.Backend.
func (b *Backend) Type() types.BackendType {
	return types.BackendTypeSoftware
}

// Capabilities implements backend.Backend.
func (b *Backend) Capabilities() types.Capabilities {
	b.dcmu.RLock()
	aesEnabled := b.dc.ChipOptions.AESEnabled
	b.dcmu.RUnlock()

	return types.Capabilities{
		HardwareBacked:   false,
		AES:              aesEnabled,
		Counters:         true,
		FailureInjection: true,
	}
}

// Initialize implements backend.Backend.
func (b *Backend) Initialize() error {
	if err := b.begin("initialize"); err != nil {
		return err
	}
	if b.initialized {
		return fmt.Errorf("%w: backend already initialized", types.ErrInvalidParameter)
	}
	b.initialized = true
	return nil
}

// Wake implements backend.Backend.
func (b *Backend) Wake() error {
	if err := b.begin("wake"); err != nil {
		return err
	}
	if !b.initialized || b.closed {
		return fmt.Errorf("%w: backend not available", types.ErrDeviceUnresponsive)
	}
	b.awake = true
	return nil
}

// Idle implements backend.Backend.
func (b *Backend) Idle() error {
	if err := b.begin("idle"); err != nil {
		return err
	}
	b.awake = false
	return nil
}

// Sleep implements backend.Backend.
func (b *Backend) Sleep() error {
	if err := b.begin("sleep"); err != nil {
		return err
	}
	b.awake = false
	return nil
}

// Close implements backend.Backend.
func (b *Backend) Close() error {
	b.count("close")
	b.closed = true
	b.awake = false
	return nil
}

// Random implements backend.Backend.
func (b *Backend) Random() ([]byte, error) {
	exit, err := b.command("random")
	if err != nil {
		return nil, err
	}
	defer exit()

	out := make([]byte, types.RandomSize)
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrExecutionError, err)
	}
	return out, nil
}

// SHA256 implements backend.Backend.
func (b *Backend) SHA256(message []byte) ([]byte, error) {
	exit, err := b.command("sha256")
	if err != nil {
		return nil, err
	}
	defer exit()

	sum := sha256.Sum256(message)
	return sum[:], nil
}

// GenKey implements backend.Backend. Key generation is rejected until the
// configuration zone is locked, matching silicon behavior.
func (b *Backend) GenKey(slot uint8) ([]byte, error) {
	exit, err := b.command("genkey")
	if err != nil {
		return nil, err
	}
	defer exit()

	if slot >= types.SlotCount {
		return nil, fmt.Errorf("%w: slot %d out of range", types.ErrInvalidParameter, slot)
	}
	if b.dc.IsLocked(types.ZoneConfig) != types.Locked {
		return nil, backend.StatusNotLocked.Err()
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrExecutionError, err)
	}
	b.keys[slot] = key
	return marshalPublicKey(&key.PublicKey), nil
}

// GetPublicKey implements backend.Backend. Private slots derive the public
// key from the stored private key; other slots read back stored bytes.
func (b *Backend) GetPublicKey(slot uint8) ([]byte, error) {
	exit, err := b.command("get_public_key")
	if err != nil {
		return nil, err
	}
	defer exit()

	if slot >= types.SlotCount {
		return nil, fmt.Errorf("%w: slot %d out of range", types.ErrInvalidParameter, slot)
	}
	if key, ok := b.keys[slot]; ok {
		return marshalPublicKey(&key.PublicKey), nil
	}

	if len(b.slots[slot]) < types.PublicKeySize {
		return nil, backend.StatusExecutionError.Err()
	}
	pub := make([]byte, types.PublicKeySize)
	copy(pub, b.slots[slot][:types.PublicKeySize])
	if allZero(pub) {
		return nil, backend.StatusExecutionError.Err()
	}
	return pub, nil
}

// Sign implements backend.Backend. Signing is rejected until the data zone
// is locked.
func (b *Backend) Sign(slot uint8, digest []byte) ([]byte, error) {
	exit, err := b.command("sign")
	if err != nil {
		return nil, err
	}
	defer exit()

	if slot >= types.SlotCount {
		return nil, fmt.Errorf("%w: slot %d out of range", types.ErrInvalidParameter, slot)
	}
	if len(digest) != types.DigestSize {
		return nil, fmt.Errorf("%w: digest must be %d bytes, got %d",
			types.ErrInvalidParameter, types.DigestSize, len(digest))
	}
	if b.dc.IsLocked(types.ZoneData) != types.Locked {
		return nil, fmt.Errorf("%w: sign requires a locked data zone", types.ErrDataZoneNotLocked)
	}
	key, ok := b.keys[slot]
	if !ok {
		return nil, fmt.Errorf("%w: slot %d holds no private key",
			types.ErrExecutionError, slot)
	}

	r, s, err := ecdsa.Sign(rand.Reader, key, digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrExecutionError, err)
	}
	sig := make([]byte, types.SignatureSize)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return sig, nil
}

// PrivWrite implements backend.Backend. Allowed only between config lock and
// data lock, the provisioning window the silicon enforces.
func (b *Backend) PrivWrite(slot uint8, key []byte) error {
	exit, err := b.command("priv_write")
	if err != nil {
		return err
	}
	defer exit()

	if slot >= types.SlotCount {
		return fmt.Errorf("%w: slot %d out of range", types.ErrInvalidParameter, slot)
	}
	if len(key) != types.PrivateKeySize {
		return fmt.Errorf("%w: private key must be %d bytes, got %d",
			types.ErrInvalidParameter, types.PrivateKeySize, len(key))
	}
	if b.dc.IsLocked(types.ZoneConfig) != types.Locked {
		return backend.StatusNotLocked.Err()
	}
	if b.dc.IsLocked(types.ZoneData) == types.Locked {
		return fmt.Errorf("%w: clear-text private key write forbidden after data lock",
			types.ErrDataZoneLocked)
	}

	d := new(big.Int).SetBytes(key)
	curve := elliptic.P256()
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return fmt.Errorf("%w: scalar out of range for P-256", types.ErrInvalidParameter)
	}
	priv := &ecdsa.PrivateKey{D: d}
	priv.Curve = curve
	priv.X, priv.Y = curve.ScalarBaseMult(d.Bytes())
	b.keys[slot] = priv
	return nil
}

// Verify implements backend.Backend. A well-formed signature that does not
// match returns (false, nil); malformed inputs fail ErrInvalidParameter.
func (b *Backend) Verify(publicKey, digest, signature []byte) (bool, error) {
	exit, err := b.command("verify")
	if err != nil {
		return false, err
	}
	defer exit()

	if len(publicKey) != types.PublicKeySize {
		return false, fmt.Errorf("%w: public key must be %d bytes, got %d",
			types.ErrInvalidParameter, types.PublicKeySize, len(publicKey))
	}
	if len(digest) != types.DigestSize {
		return false, fmt.Errorf("%w: digest must be %d bytes, got %d",
			types.ErrInvalidParameter, types.DigestSize, len(digest))
	}
	if len(signature) != types.SignatureSize {
		return false, fmt.Errorf("%w: signature must be %d bytes, got %d",
			types.ErrInvalidParameter, types.SignatureSize, len(signature))
	}

	pub := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(publicKey[:32]),
		Y:     new(big.Int).SetBytes(publicKey[32:]),
	}
	if !pub.Curve.IsOnCurve(pub.X, pub.Y) {
		return false, fmt.Errorf("%w: public key not on curve", types.ErrInvalidParameter)
	}

	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])
	return ecdsa.Verify(pub, digest, r, s), nil
}

// AESEncrypt implements backend.Backend.
func (b *Backend) AESEncrypt(slot uint8, plaintext []byte) ([]byte, error) {
	return b.aesBlock("aes_encrypt", slot, plaintext, true)
}

// AESDecrypt implements backend.Backend.
func (b *Backend) AESDecrypt(slot uint8, ciphertext []byte) ([]byte, error) {
	return b.aesBlock("aes_decrypt", slot, ciphertext, false)
}

// aesBlock runs one AES-128 block operation with the key stored in the slot.
// Slot keys are only usable once the data zone is locked, matching silicon.
func (b *Backend) aesBlock(op string, slot uint8, in []byte, encrypt bool) ([]byte, error) {
	exit, err := b.command(op)
	if err != nil {
		return nil, err
	}
	defer exit()

	if slot >= types.SlotCount {
		return nil, fmt.Errorf("%w: slot %d out of range", types.ErrInvalidParameter, slot)
	}
	if len(in) != types.AESBlockSize {
		return nil, fmt.Errorf("%w: AES block must be %d bytes, got %d",
			types.ErrInvalidParameter, types.AESBlockSize, len(in))
	}
	if !b.dc.ChipOptions.AESEnabled || b.dc.Slots[slot].Config.KeyType != types.KeyTypeAES {
		return nil, backend.StatusExecutionError.Err()
	}
	if b.dc.IsLocked(types.ZoneData) != types.Locked {
		return nil, fmt.Errorf("%w: AES key use requires a locked data zone",
			types.ErrDataZoneNotLocked)
	}

	c, err := aes.NewCipher(b.slots[slot][:types.AESKeySize])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrExecutionError, err)
	}
	out := make([]byte, types.AESBlockSize)
	if encrypt {
		c.Encrypt(out, in)
	} else {
		c.Decrypt(out, in)
	}
	return out, nil
}

// ReadZone implements backend.Backend.
func (b *Backend) ReadZone(z types.Zone, slot, block, offset, length uint8) ([]byte, error) {
	exit, err := b.command("read")
	if err != nil {
		return nil, err
	}
	defer exit()

	if length != 4 && length != types.BlockSize {
		return nil, fmt.Errorf("%w: read length must be 4 or %d bytes",
			types.ErrInvalidParameter, types.BlockSize)
	}

	switch z {
	case types.ZoneConfig:
		addr := int(block)*types.BlockSize + int(offset)*4
		if addr+int(length) > types.ConfigZoneSize {
			return nil, fmt.Errorf("%w: config read beyond zone end", types.ErrInvalidParameter)
		}
		out := make([]byte, length)
		copy(out, b.config[addr:])
		return out, nil

	case types.ZoneData:
		if slot >= types.SlotCount {
			return nil, fmt.Errorf("%w: slot %d out of range", types.ErrInvalidParameter, slot)
		}
		if b.dc.Slots[slot].Config.IsSecret {
			// Secret slots never read in the clear.
			return nil, backend.StatusExecutionError.Err()
		}
		addr := int(block)*types.BlockSize + int(offset)*4
		if addr+int(length) > len(b.slots[slot]) {
			return nil, fmt.Errorf("%w: read beyond slot %d capacity",
				types.ErrInvalidParameter, slot)
		}
		out := make([]byte, length)
		copy(out, b.slots[slot][addr:])
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unknown zone %d", types.ErrInvalidParameter, z)
	}
}

// WriteZone implements backend.Backend.
func (b *Backend) WriteZone(z types.Zone, slot, block, offset uint8, data []byte) error {
	exit, err := b.command("write")
	if err != nil {
		return err
	}
	defer exit()

	if len(data) != 4 && len(data) != types.BlockSize {
		return fmt.Errorf("%w: write length must be 4 or %d bytes",
			types.ErrInvalidParameter, types.BlockSize)
	}

	switch z {
	case types.ZoneConfig:
		if b.dc.IsLocked(types.ZoneConfig) == types.Locked {
			return backend.StatusConfigZoneLocked.Err()
		}
		addr := int(block)*types.BlockSize + int(offset)*4
		if addr+len(data) > types.ConfigZoneSize {
			return fmt.Errorf("%w: config write beyond zone end", types.ErrInvalidParameter)
		}
		// Lock bytes are not writable through the Write command on real
		// silicon either; only the Lock command flips them.
		if addr <= rawLockConfig && addr+len(data) > rawLockValue {
			return backend.StatusExecutionError.Err()
		}
		copy(b.config[addr:], data)
		return b.reparse()

	case types.ZoneData:
		if slot >= types.SlotCount {
			return fmt.Errorf("%w: slot %d out of range", types.ErrInvalidParameter, slot)
		}
		if b.dc.IsLocked(types.ZoneConfig) != types.Locked {
			// Data zone is inaccessible until the config zone locks.
			return backend.StatusNotLocked.Err()
		}
		if b.dc.IsLocked(types.ZoneData) == types.Locked {
			switch b.dc.Slots[slot].Config.WriteConfig {
			case types.WriteConfigAlways, types.WriteConfigEncrypt:
				// Encrypted-write MAC handling happens a layer up.
			default:
				return fmt.Errorf("%w: slot %d is not writable after data lock",
					types.ErrDataZoneLocked, slot)
			}
		}
		addr := int(block)*types.BlockSize + int(offset)*4
		if addr+len(data) > len(b.slots[slot]) {
			return fmt.Errorf("%w: write beyond slot %d capacity",
				types.ErrInvalidParameter, slot)
		}
		copy(b.slots[slot][addr:], data)
		return nil

	default:
		return fmt.Errorf("%w: unknown zone %d", types.ErrInvalidParameter, z)
	}
}

// LockZone implements backend.Backend. Locking is monotonic and the data
// zone cannot lock before the configuration zone.
func (b *Backend) LockZone(z types.Zone) error {
	exit, err := b.command("lock")
	if err != nil {
		return err
	}
	defer exit()

	switch z {
	case types.ZoneConfig:
		if b.dc.IsLocked(types.ZoneConfig) == types.Locked {
			return backend.StatusConfigZoneLocked.Err()
		}
		b.config[rawLockConfig] = lockedByte
	case types.ZoneData:
		if b.dc.IsLocked(types.ZoneConfig) != types.Locked {
			return backend.StatusNotLocked.Err()
		}
		if b.dc.IsLocked(types.ZoneData) == types.Locked {
			return backend.StatusDataZoneLocked.Err()
		}
		b.config[rawLockValue] = lockedByte
	default:
		return fmt.Errorf("%w: unknown zone %d", types.ErrInvalidParameter, z)
	}
	return b.reparse()
}

// Counter implements backend.Backend.
func (b *Backend) Counter(id uint8) (uint32, error) {
	exit, err := b.command("counter")
	if err != nil {
		return 0, err
	}
	defer exit()

	if id >= types.CounterCount {
		return 0, fmt.Errorf("%w: counter %d out of range", types.ErrInvalidParameter, id)
	}
	return b.counters[id], nil
}

// IncrementCounter implements backend.Backend. A saturated counter fails
// ErrExecutionError rather than wrapping.
func (b *Backend) IncrementCounter(id uint8) (uint32, error) {
	exit, err := b.command("counter_increment")
	if err != nil {
		return 0, err
	}
	defer exit()

	if id >= types.CounterCount {
		return 0, fmt.Errorf("%w: counter %d out of range", types.ErrInvalidParameter, id)
	}
	if b.counters[id] >= types.CounterMax {
		return 0, fmt.Errorf("%w: counter %d saturated", types.ErrExecutionError, id)
	}
	b.counters[id]++
	return b.counters[id], nil
}

// Info implements backend.Backend.
func (b *Backend) Info(mode backend.InfoMode) ([]byte, error) {
	exit, err := b.command("info")
	if err != nil {
		return nil, err
	}
	defer exit()

	out := make([]byte, types.RevisionSize)
	switch mode {
	case backend.InfoRevision:
		copy(out, b.config[4:8])
	case backend.InfoKeyValid, backend.InfoState:
		// Volatile state is not modeled; the response word reads zero.
	default:
		return nil, fmt.Errorf("%w: unknown info mode %d", types.ErrInvalidParameter, mode)
	}
	return out, nil
}

// SerialNumber implements backend.Backend.
func (b *Backend) SerialNumber() ([]byte, error) {
	exit, err := b.command("serial_number")
	if err != nil {
		return nil, err
	}
	defer exit()

	sn := make([]byte, types.SerialNumberSize)
	copy(sn[:4], b.config[0:4])
	copy(sn[4:], b.config[8:13])
	return sn, nil
}

// ReadConfigZone implements backend.Backend.
func (b *Backend) ReadConfigZone() ([]byte, error) {
	exit, err := b.command("read_config")
	if err != nil {
		return nil, err
	}
	defer exit()

	out := make([]byte, types.ConfigZoneSize)
	copy(out, b.config)
	return out, nil
}

// command performs common entry bookkeeping for a chip command: re-entrancy
// detection, call counting, injected failures, power and lifecycle checks.
// The returned exit func must be deferred by the caller.
func (b *Backend) command(op string) (func(), error) {
	exit := b.enter()

	if err := b.begin(op); err != nil {
		exit()
		return nil, err
	}
	if b.closed || !b.initialized {
		exit()
		return nil, fmt.Errorf("%w: backend is closed", types.ErrDeviceUnresponsive)
	}
	if !b.awake {
		exit()
		return nil, fmt.Errorf("%w: device is asleep", types.ErrDeviceUnresponsive)
	}
	if b.cfg.ExecDelay > 0 {
		time.Sleep(b.cfg.ExecDelay)
	}
	return exit, nil
}

// begin records the call and pops any injected failure for the operation.
func (b *Backend) begin(op string) error {
	b.count(op)
	if st, ok := b.popInjected(op); ok {
		return st.Err()
	}
	return nil
}

// reparse refreshes the decoded view after a config image mutation.
func (b *Backend) reparse() error {
	dc, err := zone.ParseConfig(b.config)
	if err != nil {
		return err
	}
	b.dcmu.Lock()
	b.dc = dc
	b.dcmu.Unlock()
	return nil
}

func marshalPublicKey(pub *ecdsa.PublicKey) []byte {
	out := make([]byte, types.PublicKeySize)
	pub.X.FillBytes(out[:32])
	pub.Y.FillBytes(out[32:])
	return out
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
