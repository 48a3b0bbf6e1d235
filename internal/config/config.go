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

// Package config loads the cryptoauth configuration file and environment
// overrides. Every key may be overridden through the environment with a
// CRYPTOAUTH_ prefix, e.g. CRYPTOAUTH_BACKEND=i2c or
// CRYPTOAUTH_HARDWARE_DEVICE=/dev/i2c-1.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-cryptoauth/pkg/atecc"
	"github.com/jeremyhahn/go-cryptoauth/pkg/backend/hardware"
	"github.com/jeremyhahn/go-cryptoauth/pkg/backend/software"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// EnvPrefix is the environment variable prefix for configuration overrides.
const EnvPrefix = "CRYPTOAUTH"

// Config is the on-disk configuration of the cryptoauth tooling.
type Config struct {
	// Backend selects the execution variant: software, i2c or swi.
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Software configures the software backend emulation.
	Software SoftwareSection `mapstructure:"software" yaml:"software"`

	// Hardware configures the bus transport for hardware backends.
	Hardware HardwareSection `mapstructure:"hardware" yaml:"hardware"`

	// Wake configures the bounded wake retry policy.
	Wake WakeSection `mapstructure:"wake" yaml:"wake"`

	// Logging controls log output.
	Logging LoggingSection `mapstructure:"logging" yaml:"logging"`

	// Metrics controls Prometheus instrumentation.
	Metrics MetricsSection `mapstructure:"metrics" yaml:"metrics"`
}

// SoftwareSection configures the software backend.
type SoftwareSection struct {
	// LockConfigZone starts the emulated device with a locked
	// configuration zone.
	LockConfigZone bool `mapstructure:"lock_config_zone" yaml:"lock_config_zone"`

	// LockDataZone starts the emulated device with a locked data zone.
	// Requires LockConfigZone.
	LockDataZone bool `mapstructure:"lock_data_zone" yaml:"lock_data_zone"`
}

// HardwareSection configures the hardware bus transport.
type HardwareSection struct {
	// Device is the bus device path, e.g. /dev/i2c-1 or /dev/ttyS0.
	Device string `mapstructure:"device" yaml:"device"`

	// Address is the 7-bit I2C address of the chip.
	Address uint8 `mapstructure:"address" yaml:"address"`
}

// WakeSection configures the wake retry policy.
type WakeSection struct {
	// Retries bounds the wake attempts per operation.
	Retries int `mapstructure:"retries" yaml:"retries"`

	// Interval is the pause between wake attempts.
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// LoggingSection controls log output.
type LoggingSection struct {
	// Debug enables debug-level logging.
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// MetricsSection controls Prometheus instrumentation.
type MetricsSection struct {
	// Enabled toggles metric collection.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Load reads the configuration from the given file, falling back to the
// default search path when path is empty, and applies environment overrides.
// A missing file is only an error when an explicit path was given; the
// defaults alone form a valid software-backend configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("cryptoauth")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.cryptoauth")
		v.AddConfigPath("/etc/cryptoauth")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", types.BackendTypeSoftware.String())
	v.SetDefault("software.lock_config_zone", false)
	v.SetDefault("software.lock_data_zone", false)
	v.SetDefault("hardware.device", "")
	v.SetDefault("hardware.address", int(hardware.DefaultI2CAddress))
	v.SetDefault("wake.retries", atecc.DefaultWakeRetries)
	v.SetDefault("wake.interval", atecc.DefaultWakeRetryInterval)
	v.SetDefault("logging.debug", false)
	v.SetDefault("metrics.enabled", true)
}

// Default returns the built-in configuration: software backend, default wake
// retry policy, metrics enabled.
func Default() *Config {
	return &Config{
		Backend: types.BackendTypeSoftware.String(),
		Hardware: HardwareSection{
			Address: hardware.DefaultI2CAddress,
		},
		Wake: WakeSection{
			Retries:  atecc.DefaultWakeRetries,
			Interval: atecc.DefaultWakeRetryInterval,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
	}
}

// Save writes the configuration to the given path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	backend := types.BackendType(c.Backend)
	if !backend.IsValid() {
		return fmt.Errorf("%w: unknown backend %q", types.ErrInvalidParameter, c.Backend)
	}
	if backend.IsHardware() && c.Hardware.Device == "" {
		return fmt.Errorf("%w: %s backend requires hardware.device",
			types.ErrInvalidParameter, c.Backend)
	}
	if c.Software.LockDataZone && !c.Software.LockConfigZone {
		return fmt.Errorf("%w: software.lock_data_zone requires software.lock_config_zone",
			types.ErrInvalidParameter)
	}
	if c.Wake.Retries < 0 {
		return fmt.Errorf("%w: wake.retries must not be negative", types.ErrInvalidParameter)
	}
	return nil
}

// DeviceConfig converts the file configuration into a device configuration.
func (c *Config) DeviceConfig() atecc.Config {
	cfg := atecc.Config{
		Backend:           types.BackendType(c.Backend),
		WakeRetries:       c.Wake.Retries,
		WakeRetryInterval: c.Wake.Interval,
		Debug:             c.Logging.Debug,
	}

	if cfg.Backend == types.BackendTypeSoftware {
		cfg.Software = &software.Config{
			LockConfigZone: c.Software.LockConfigZone,
			LockDataZone:   c.Software.LockDataZone,
		}
	} else {
		cfg.Hardware = &hardware.Config{
			Device:  c.Hardware.Device,
			Address: c.Hardware.Address,
		}
	}
	return cfg
}
