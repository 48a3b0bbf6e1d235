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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-cryptoauth/pkg/atecc"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cryptoauth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "backend: software\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "software", cfg.Backend)
	assert.Equal(t, atecc.DefaultWakeRetries, cfg.Wake.Retries)
	assert.Equal(t, atecc.DefaultWakeRetryInterval, cfg.Wake.Interval)
	assert.Equal(t, uint8(0x60), cfg.Hardware.Address)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Logging.Debug)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
backend: i2c
hardware:
  device: /dev/i2c-1
  address: 0x60
wake:
  retries: 5
  interval: 10ms
logging:
  debug: true
metrics:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "i2c", cfg.Backend)
	assert.Equal(t, "/dev/i2c-1", cfg.Hardware.Device)
	assert.Equal(t, uint8(0x60), cfg.Hardware.Address)
	assert.Equal(t, 5, cfg.Wake.Retries)
	assert.Equal(t, 10*time.Millisecond, cfg.Wake.Interval)
	assert.True(t, cfg.Logging.Debug)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "backend: software\n")

	t.Setenv("CRYPTOAUTH_BACKEND", "i2c")
	t.Setenv("CRYPTOAUTH_HARDWARE_DEVICE", "/dev/i2c-9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "i2c", cfg.Backend)
	assert.Equal(t, "/dev/i2c-9", cfg.Hardware.Device)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"UnknownBackend", "backend: tpm\n"},
		{"HardwareWithoutDevice", "backend: i2c\n"},
		{"DataLockWithoutConfigLock", "backend: software\nsoftware:\n  lock_data_zone: true\n"},
		{"NegativeRetries", "backend: software\nwake:\n  retries: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.ErrorIs(t, err, types.ErrInvalidParameter)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cryptoauth.yaml")
	require.NoError(t, Default().Save(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDeviceConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
backend: software
software:
  lock_config_zone: true
  lock_data_zone: true
`))
	require.NoError(t, err)

	dc := cfg.DeviceConfig()
	assert.Equal(t, types.BackendTypeSoftware, dc.Backend)
	require.NotNil(t, dc.Software)
	assert.True(t, dc.Software.LockConfigZone)
	assert.True(t, dc.Software.LockDataZone)
	assert.Nil(t, dc.Hardware)

	cfg, err = Load(writeConfig(t, "backend: swi\nhardware:\n  device: /dev/ttyS0\n"))
	require.NoError(t, err)

	dc = cfg.DeviceConfig()
	assert.Equal(t, types.BackendTypeSWI, dc.Backend)
	require.NotNil(t, dc.Hardware)
	assert.Equal(t, "/dev/ttyS0", dc.Hardware.Device)
	assert.Nil(t, dc.Software)
}
