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
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-cryptoauth/pkg/backend"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// newBackend returns an initialized, awake backend with the given fixture
// configuration.
func newBackend(t *testing.T, cfg Config) *Backend {
	t.Helper()
	b, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, b.Initialize())
	require.NoError(t, b.Wake())
	return b
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"Defaults", Config{}, nil},
		{"ShortConfigZone", Config{ConfigZone: make([]byte, 64)}, types.ErrInvalidParameter},
		{"DataLockWithoutConfigLock", Config{LockDataZone: true}, types.ErrInvalidParameter},
		{"BothLocked", Config{LockConfigZone: true, LockDataZone: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLifecycle(t *testing.T) {
	b, err := New(Config{})
	require.NoError(t, err)

	// Commands before Initialize fail unresponsive.
	_, err = b.Random()
	assert.ErrorIs(t, err, types.ErrDeviceUnresponsive)

	require.NoError(t, b.Initialize())
	assert.ErrorIs(t, b.Initialize(), types.ErrInvalidParameter)

	// Still asleep.
	_, err = b.Random()
	assert.ErrorIs(t, err, types.ErrDeviceUnresponsive)

	require.NoError(t, b.Wake())
	_, err = b.Random()
	assert.NoError(t, err)

	require.NoError(t, b.Idle())
	_, err = b.Random()
	assert.ErrorIs(t, err, types.ErrDeviceUnresponsive)

	require.NoError(t, b.Wake())
	require.NoError(t, b.Close())
	_, err = b.Random()
	assert.ErrorIs(t, err, types.ErrDeviceUnresponsive)
	assert.ErrorIs(t, b.Wake(), types.ErrDeviceUnresponsive)
}

func TestRandom_Differs(t *testing.T) {
	b := newBackend(t, Config{})

	first, err := b.Random()
	require.NoError(t, err)
	second, err := b.Random()
	require.NoError(t, err)

	assert.Len(t, first, types.RandomSize)
	assert.NotEqual(t, first, second)
}

func TestSHA256(t *testing.T) {
	b := newBackend(t, Config{})

	want := sha256.Sum256([]byte("abc"))
	got, err := b.SHA256([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, want[:], got)
}

func TestGenKey_RequiresConfigLock(t *testing.T) {
	b := newBackend(t, Config{})
	_, err := b.GenKey(0)
	assert.ErrorIs(t, err, types.ErrConfigZoneNotLocked)

	b = newBackend(t, Config{LockConfigZone: true})
	pub, err := b.GenKey(0)
	require.NoError(t, err)
	assert.Len(t, pub, types.PublicKeySize)
}

func TestSign_RequiresDataLock(t *testing.T) {
	b := newBackend(t, Config{LockConfigZone: true})
	_, err := b.GenKey(0)
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("message"))
	_, err = b.Sign(0, digest[:])
	assert.ErrorIs(t, err, types.ErrDataZoneNotLocked)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	b := newBackend(t, Config{LockConfigZone: true, LockDataZone: true})

	pub, err := b.GenKey(0)
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("message"))
	sig, err := b.Sign(0, digest[:])
	require.NoError(t, err)
	require.Len(t, sig, types.SignatureSize)

	ok, err := b.Verify(pub, digest[:], sig)
	require.NoError(t, err)
	assert.True(t, ok)

	// Mismatched digest verifies false without error.
	other := sha256.Sum256([]byte("other"))
	ok, err = b.Verify(pub, other[:], sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSign_EmptySlot(t *testing.T) {
	b := newBackend(t, Config{LockConfigZone: true, LockDataZone: true})

	digest := sha256.Sum256([]byte("message"))
	_, err := b.Sign(1, digest[:])
	assert.ErrorIs(t, err, types.ErrExecutionError)
}

func TestVerify_MalformedInputs(t *testing.T) {
	b := newBackend(t, Config{})
	digest := make([]byte, types.DigestSize)
	sig := make([]byte, types.SignatureSize)

	_, err := b.Verify(make([]byte, 10), digest, sig)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	_, err = b.Verify(make([]byte, types.PublicKeySize), make([]byte, 10), sig)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	_, err = b.Verify(make([]byte, types.PublicKeySize), digest, make([]byte, 10))
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	// All-zero point is not on the curve.
	_, err = b.Verify(make([]byte, types.PublicKeySize), digest, sig)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
}

func TestPrivWrite(t *testing.T) {
	b := newBackend(t, Config{LockConfigZone: true})

	scalar := make([]byte, types.PrivateKeySize)
	scalar[31] = 0x01
	require.NoError(t, b.PrivWrite(2, scalar))

	pub, err := b.GetPublicKey(2)
	require.NoError(t, err)
	assert.Len(t, pub, types.PublicKeySize)

	// Scalar of zero is invalid.
	assert.ErrorIs(t, b.PrivWrite(2, make([]byte, types.PrivateKeySize)),
		types.ErrInvalidParameter)

	// Forbidden after data lock.
	require.NoError(t, b.LockZone(types.ZoneData))
	assert.ErrorIs(t, b.PrivWrite(2, scalar), types.ErrDataZoneLocked)
}

func TestGetPublicKey_EmptySlot(t *testing.T) {
	b := newBackend(t, Config{LockConfigZone: true})
	_, err := b.GetPublicKey(9)
	assert.ErrorIs(t, err, types.ErrExecutionError)
}

func TestLockZone_Ordering(t *testing.T) {
	b := newBackend(t, Config{})

	// Data before config is forbidden.
	assert.ErrorIs(t, b.LockZone(types.ZoneData), types.ErrConfigZoneNotLocked)

	require.NoError(t, b.LockZone(types.ZoneConfig))
	assert.ErrorIs(t, b.LockZone(types.ZoneConfig), types.ErrConfigZoneLocked)

	require.NoError(t, b.LockZone(types.ZoneData))
	assert.ErrorIs(t, b.LockZone(types.ZoneData), types.ErrDataZoneLocked)
}

func TestWriteZone_ConfigRules(t *testing.T) {
	b := newBackend(t, Config{})

	// Config writes allowed while unlocked.
	require.NoError(t, b.WriteZone(types.ZoneConfig, 0, 0, 5, []byte{1, 2, 3, 4}))

	// Lock bytes only flip via the Lock command.
	err := b.WriteZone(types.ZoneConfig, 0, 2, 5, []byte{0, 0, 0, 0})
	assert.ErrorIs(t, err, types.ErrExecutionError)

	require.NoError(t, b.LockZone(types.ZoneConfig))
	err = b.WriteZone(types.ZoneConfig, 0, 0, 5, []byte{1, 2, 3, 4})
	assert.ErrorIs(t, err, types.ErrConfigZoneLocked)
}

func TestWriteZone_DataRules(t *testing.T) {
	b := newBackend(t, Config{})

	// Data zone inaccessible before config lock.
	err := b.WriteZone(types.ZoneData, 3, 0, 0, []byte{1, 2, 3, 4})
	assert.ErrorIs(t, err, types.ErrConfigZoneNotLocked)

	require.NoError(t, b.LockZone(types.ZoneConfig))
	require.NoError(t, b.WriteZone(types.ZoneData, 3, 0, 0, []byte{'h', 'i', '!', 0}))

	require.NoError(t, b.LockZone(types.ZoneData))

	// Slot 3 is write-once; slot 4 stays writable.
	err = b.WriteZone(types.ZoneData, 3, 0, 0, []byte{'n', 'o', 'p', 'e'})
	assert.ErrorIs(t, err, types.ErrDataZoneLocked)
	assert.NoError(t, b.WriteZone(types.ZoneData, 4, 0, 0, []byte{1, 2, 3, 4}))

	// Original contents survive.
	got, err := b.ReadZone(types.ZoneData, 3, 0, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{'h', 'i', '!', 0}, got)
}

func TestReadZone_SecretSlot(t *testing.T) {
	b := newBackend(t, Config{LockConfigZone: true})
	_, err := b.ReadZone(types.ZoneData, 5, 0, 0, types.BlockSize)
	assert.ErrorIs(t, err, types.ErrExecutionError)
}

func TestReadZone_Bounds(t *testing.T) {
	b := newBackend(t, Config{LockConfigZone: true})

	_, err := b.ReadZone(types.ZoneData, 0, 3, 0, types.BlockSize)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	_, err = b.ReadZone(types.ZoneConfig, 0, 0, 0, 7)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
}

func TestCounters(t *testing.T) {
	b := newBackend(t, Config{})

	v, err := b.Counter(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)

	v, err = b.IncrementCounter(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)

	v, err = b.Counter(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)

	// Counter 1 is independent.
	v, err = b.Counter(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)

	_, err = b.Counter(2)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
}

func TestCounter_Saturation(t *testing.T) {
	b := newBackend(t, Config{})
	b.counters[1] = types.CounterMax

	_, err := b.IncrementCounter(1)
	assert.ErrorIs(t, err, types.ErrExecutionError)
}

func TestSerialNumber(t *testing.T) {
	b := newBackend(t, Config{})

	sn, err := b.SerialNumber()
	require.NoError(t, err)
	require.Len(t, sn, types.SerialNumberSize)
	assert.Equal(t, byte(0x01), sn[0])
	assert.Equal(t, byte(0x23), sn[1])
	assert.Equal(t, byte(0xEE), sn[8])
}

func TestInfo(t *testing.T) {
	b := newBackend(t, Config{})

	rev, err := b.Info(backend.InfoRevision)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x60, 0x02}, rev)

	_, err = b.Info(backend.InfoMode(0x7F))
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
}

func TestReadConfigZone_ReflectsLocks(t *testing.T) {
	b := newBackend(t, Config{})

	cfg, err := b.ReadConfigZone()
	require.NoError(t, err)
	require.Len(t, cfg, types.ConfigZoneSize)
	assert.Equal(t, byte(0x55), cfg[rawLockConfig])

	require.NoError(t, b.LockZone(types.ZoneConfig))
	cfg, err = b.ReadConfigZone()
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), cfg[rawLockConfig])
}

func TestFailNext(t *testing.T) {
	b := newBackend(t, Config{})

	b.FailNext("random", backend.StatusExecutionError)
	_, err := b.Random()
	assert.ErrorIs(t, err, types.ErrExecutionError)

	// One injection fails exactly one call.
	_, err = b.Random()
	assert.NoError(t, err)
}

func TestFailWakes(t *testing.T) {
	b := newBackend(t, Config{})

	b.FailWakes(2)
	assert.ErrorIs(t, b.Wake(), types.ErrDeviceUnresponsive)
	assert.ErrorIs(t, b.Wake(), types.ErrDeviceUnresponsive)
	assert.NoError(t, b.Wake())
}

func TestCallCounters(t *testing.T) {
	b := newBackend(t, Config{})
	b.ResetCounters()

	_, _ = b.Random()
	_, _ = b.Random()
	_, _ = b.SHA256([]byte("x"))
	_ = b.Idle()

	assert.Equal(t, 2, b.CallCount("random"))
	assert.Equal(t, 1, b.CallCount("sha256"))
	assert.Equal(t, 3, b.TotalCalls())
	assert.False(t, b.Overlapped())
}
