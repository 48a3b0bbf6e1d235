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

package hardware

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-cryptoauth/pkg/backend"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// Backend drives a physical secure element over a Transport.
type Backend struct {
	cfg       Config
	transport Transport
	open      bool
	closed    bool
}

var _ backend.Backend = (*Backend)(nil)

// New creates a hardware backend from the given configuration. The returned
// backend must be Initialized before use.
func New(cfg Config) (*Backend, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := cfg.Transport
	if transport == nil {
		switch cfg.Interface {
		case types.BackendTypeI2C:
			transport = newI2CTransport(cfg.Device, cfg.Address)
		case types.BackendTypeSWI:
			transport = newSWITransport(cfg.Device)
		}
	}
	return &Backend{cfg: cfg, transport: transport}, nil
}

// Type implements backend.Backend.
func (b *Backend) Type() types.BackendType {
	if b.cfg.Interface.IsHardware() {
		return b.cfg.Interface
	}
	return types.BackendTypeI2C
}

// Capabilities implements backend.Backend.
func (b *Backend) Capabilities() types.Capabilities {
	return types.Capabilities{
		HardwareBacked: true,
		AES:            true,
		Counters:       true,
	}
}

// Initialize implements backend.Backend.
func (b *Backend) Initialize() error {
	if b.open {
		return fmt.Errorf("%w: backend already initialized", types.ErrInvalidParameter)
	}
	if err := b.transport.Open(); err != nil {
		return err
	}
	b.open = true
	b.closed = false
	return nil
}

// Wake implements backend.Backend. A single wake attempt: pulse the bus and
// check the device answers 0x11.
func (b *Backend) Wake() error {
	if err := b.available(); err != nil {
		return err
	}
	raw, err := b.transport.Wake()
	if err != nil {
		return err
	}
	if bytes.Equal(raw, wakeResponse) {
		return nil
	}
	_, st, err := parseResponse(raw)
	if err != nil {
		return backend.StatusWakeFailed.Err()
	}
	if st != backend.StatusWakeSuccess {
		return backend.StatusWakeFailed.Err()
	}
	return nil
}

// Idle implements backend.Backend.
func (b *Backend) Idle() error {
	if err := b.available(); err != nil {
		return err
	}
	return b.transport.Idle()
}

// Sleep implements backend.Backend.
func (b *Backend) Sleep() error {
	if err := b.available(); err != nil {
		return err
	}
	return b.transport.Sleep()
}

// Close implements backend.Backend.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.open = false
	return b.transport.Close()
}

// Random implements backend.Backend.
func (b *Backend) Random() ([]byte, error) {
	payload, err := b.execute(opRandom, 0x00, 0x0000, nil)
	if err != nil {
		return nil, err
	}
	if err := expectLen(payload, types.RandomSize); err != nil {
		return nil, err
	}
	return payload, nil
}

// SHA256 implements backend.Backend. The digest is computed on-chip with
// the SHA command's start/update/end sequence.
func (b *Backend) SHA256(message []byte) ([]byte, error) {
	if _, err := b.execute(opSHA, shaModeStart, 0x0000, nil); err != nil {
		return nil, err
	}
	for len(message) >= shaBlockSize {
		block := message[:shaBlockSize]
		message = message[shaBlockSize:]
		if _, err := b.execute(opSHA, shaModeUpdate, shaBlockSize, block); err != nil {
			return nil, err
		}
	}
	payload, err := b.execute(opSHA, shaModeEnd, uint16(len(message)), message)
	if err != nil {
		return nil, err
	}
	if err := expectLen(payload, types.DigestSize); err != nil {
		return nil, err
	}
	return payload, nil
}

// GenKey implements backend.Backend.
func (b *Backend) GenKey(slot uint8) ([]byte, error) {
	payload, err := b.execute(opGenKey, genKeyModePrivate, uint16(slot), nil)
	if err != nil {
		return nil, err
	}
	if err := expectLen(payload, types.PublicKeySize); err != nil {
		return nil, err
	}
	return payload, nil
}

// GetPublicKey implements backend.Backend. GenKey in public mode recomputes
// the public key from the stored private key.
func (b *Backend) GetPublicKey(slot uint8) ([]byte, error) {
	payload, err := b.execute(opGenKey, genKeyModePublic, uint16(slot), nil)
	if err != nil {
		return nil, err
	}
	if err := expectLen(payload, types.PublicKeySize); err != nil {
		return nil, err
	}
	return payload, nil
}

// Sign implements backend.Backend. The digest is loaded into TempKey with a
// pass-through nonce, then signed from there.
func (b *Backend) Sign(slot uint8, digest []byte) ([]byte, error) {
	if len(digest) != types.DigestSize {
		return nil, fmt.Errorf("%w: digest must be %d bytes, got %d",
			types.ErrInvalidParameter, types.DigestSize, len(digest))
	}
	if _, err := b.execute(opNonce, nonceModePassThrough, 0x0000, digest); err != nil {
		return nil, err
	}
	payload, err := b.execute(opSign, signModeExternal, uint16(slot), nil)
	if err != nil {
		return nil, err
	}
	if err := expectLen(payload, types.SignatureSize); err != nil {
		return nil, err
	}
	return payload, nil
}

// PrivWrite implements backend.Backend. Clear-text form: 4 pad bytes plus
// the 32-byte scalar; the device rejects it once the data zone locks.
func (b *Backend) PrivWrite(slot uint8, key []byte) error {
	if len(key) != types.PrivateKeySize {
		return fmt.Errorf("%w: private key must be %d bytes, got %d",
			types.ErrInvalidParameter, types.PrivateKeySize, len(key))
	}
	data := make([]byte, 4+types.PrivateKeySize)
	copy(data[4:], key)
	_, err := b.execute(opPrivWrite, 0x00, uint16(slot), data)
	return err
}

// Verify implements backend.Backend. A checkmac/verify miscompare from the
// device means a well-formed signature that does not match: (false, nil).
func (b *Backend) Verify(publicKey, digest, signature []byte) (bool, error) {
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

	if _, err := b.execute(opNonce, nonceModePassThrough, 0x0000, digest); err != nil {
		return false, err
	}

	data := make([]byte, 0, types.SignatureSize+types.PublicKeySize)
	data = append(data, signature...)
	data = append(data, publicKey...)

	_, st, err := b.executeStatus(opVerify, verifyModeExternal, verifyParam2KeyTypeP, data)
	if err != nil {
		return false, err
	}
	switch st {
	case backend.StatusSuccess:
		return true, nil
	case backend.StatusCheckmacFailed:
		return false, nil
	default:
		return false, st.Err()
	}
}

// AESEncrypt implements backend.Backend.
func (b *Backend) AESEncrypt(slot uint8, plaintext []byte) ([]byte, error) {
	return b.aesCmd(aesModeEncrypt, slot, plaintext)
}

// AESDecrypt implements backend.Backend.
func (b *Backend) AESDecrypt(slot uint8, ciphertext []byte) ([]byte, error) {
	return b.aesCmd(aesModeDecrypt, slot, ciphertext)
}

func (b *Backend) aesCmd(mode, slot uint8, block []byte) ([]byte, error) {
	if len(block) != types.AESBlockSize {
		return nil, fmt.Errorf("%w: AES block must be %d bytes, got %d",
			types.ErrInvalidParameter, types.AESBlockSize, len(block))
	}
	payload, err := b.execute(opAES, mode, uint16(slot), block)
	if err != nil {
		return nil, err
	}
	if err := expectLen(payload, types.AESBlockSize); err != nil {
		return nil, err
	}
	return payload, nil
}

// ReadZone implements backend.Backend.
func (b *Backend) ReadZone(z types.Zone, slot, block, offset, length uint8) ([]byte, error) {
	zoneByte, addr, err := encodeAddress(z, slot, block, offset)
	if err != nil {
		return nil, err
	}
	if length == types.BlockSize {
		zoneByte |= zoneReadWrite32
	} else if length != 4 {
		return nil, fmt.Errorf("%w: read length must be 4 or %d bytes",
			types.ErrInvalidParameter, types.BlockSize)
	}

	payload, err := b.execute(opRead, zoneByte, addr, nil)
	if err != nil {
		return nil, err
	}
	if err := expectLen(payload, int(length)); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteZone implements backend.Backend.
func (b *Backend) WriteZone(z types.Zone, slot, block, offset uint8, data []byte) error {
	zoneByte, addr, err := encodeAddress(z, slot, block, offset)
	if err != nil {
		return err
	}
	if len(data) == types.BlockSize {
		zoneByte |= zoneReadWrite32
	} else if len(data) != 4 {
		return fmt.Errorf("%w: write length must be 4 or %d bytes",
			types.ErrInvalidParameter, types.BlockSize)
	}

	_, err = b.execute(opWrite, zoneByte, addr, data)
	return err
}

// LockZone implements backend.Backend. The zone CRC check is skipped; the
// caller has already read back and validated the zone contents.
func (b *Backend) LockZone(z types.Zone) error {
	mode := uint8(lockModeNoCRC)
	switch z {
	case types.ZoneConfig:
	case types.ZoneData:
		mode |= lockModeDataZone
	default:
		return fmt.Errorf("%w: unknown zone %d", types.ErrInvalidParameter, z)
	}
	_, err := b.execute(opLock, mode, 0x0000, nil)
	return err
}

// Counter implements backend.Backend.
func (b *Backend) Counter(id uint8) (uint32, error) {
	return b.counterCmd(counterModeRead, id)
}

// IncrementCounter implements backend.Backend.
func (b *Backend) IncrementCounter(id uint8) (uint32, error) {
	return b.counterCmd(counterModeIncrement, id)
}

func (b *Backend) counterCmd(mode, id uint8) (uint32, error) {
	if id >= types.CounterCount {
		return 0, fmt.Errorf("%w: counter %d out of range", types.ErrInvalidParameter, id)
	}
	payload, err := b.execute(opCounter, mode, uint16(id), nil)
	if err != nil {
		return 0, err
	}
	if err := expectLen(payload, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(payload), nil
}

// Info implements backend.Backend.
func (b *Backend) Info(mode backend.InfoMode) ([]byte, error) {
	payload, err := b.execute(opInfo, uint8(mode), 0x0000, nil)
	if err != nil {
		return nil, err
	}
	if err := expectLen(payload, 4); err != nil {
		return nil, err
	}
	return payload, nil
}

// SerialNumber implements backend.Backend. The serial number spans bytes
// 0-3 and 8-12 of the first configuration block.
func (b *Backend) SerialNumber() ([]byte, error) {
	block, err := b.ReadZone(types.ZoneConfig, 0, 0, 0, types.BlockSize)
	if err != nil {
		return nil, err
	}
	sn := make([]byte, types.SerialNumberSize)
	copy(sn[:4], block[0:4])
	copy(sn[4:], block[8:13])
	return sn, nil
}

// ReadConfigZone implements backend.Backend.
func (b *Backend) ReadConfigZone() ([]byte, error) {
	out := make([]byte, 0, types.ConfigZoneSize)
	for block := uint8(0); block < types.ConfigZoneSize/types.BlockSize; block++ {
		data, err := b.ReadZone(types.ZoneConfig, 0, block, 0, types.BlockSize)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

// execute runs one command round trip and translates the device status.
func (b *Backend) execute(opcode, param1 uint8, param2 uint16, data []byte) ([]byte, error) {
	payload, st, err := b.executeStatus(opcode, param1, param2, data)
	if err != nil {
		return nil, err
	}
	if err := st.Err(); err != nil {
		return nil, err
	}
	return payload, nil
}

// executeStatus runs one command round trip: send, wait the opcode's
// execution time, receive, unframe. The device status is returned
// untranslated.
func (b *Backend) executeStatus(opcode, param1 uint8, param2 uint16, data []byte) ([]byte, backend.Status, error) {
	if err := b.available(); err != nil {
		return nil, backend.StatusCommFail, err
	}

	packet := buildCommand(opcode, param1, param2, data)
	if err := b.transport.SendCommand(packet); err != nil {
		return nil, backend.StatusTxFail, err
	}

	delay, ok := execDelay[opcode]
	if !ok {
		delay = defaultExecDelay
	}
	time.Sleep(delay)

	raw, err := b.transport.ReceiveResponse(maxResponseSize)
	if err != nil {
		return nil, backend.StatusRxFail, err
	}
	return parseResponse(raw)
}

func (b *Backend) available() error {
	if !b.open || b.closed {
		return fmt.Errorf("%w: backend is closed", types.ErrDeviceUnresponsive)
	}
	return nil
}

// encodeAddress computes the Read/Write zone byte and 16-bit word address.
func encodeAddress(z types.Zone, slot, block, offset uint8) (uint8, uint16, error) {
	switch z {
	case types.ZoneConfig:
		return zoneConfig, uint16(block)<<3 | uint16(offset&0x07), nil
	case types.ZoneData:
		if slot >= types.SlotCount {
			return 0, 0, fmt.Errorf("%w: slot %d out of range",
				types.ErrInvalidParameter, slot)
		}
		addr := uint16(slot)<<3 | uint16(offset&0x07) | uint16(block)<<8
		return zoneData, addr, nil
	default:
		return 0, 0, fmt.Errorf("%w: unknown zone %d", types.ErrInvalidParameter, z)
	}
}
