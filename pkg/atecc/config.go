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
	"fmt"
	"time"

	"github.com/jeremyhahn/go-cryptoauth/pkg/backend"
	"github.com/jeremyhahn/go-cryptoauth/pkg/backend/hardware"
	"github.com/jeremyhahn/go-cryptoauth/pkg/backend/software"
	"github.com/jeremyhahn/go-cryptoauth/pkg/logging"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

const (
	// DefaultWakeRetries is the bounded number of wake attempts per
	// operation before the device is reported unresponsive.
	DefaultWakeRetries = 3

	// DefaultWakeRetryInterval is the pause between wake attempts,
	// covering the chip's wake high delay with margin.
	DefaultWakeRetryInterval = 2500 * time.Microsecond
)

// Config contains configuration parameters for Device construction. Backend
// selection happens here, once; it cannot change per call.
type Config struct {
	// Backend selects the execution variant: "software", "i2c" or "swi".
	Backend types.BackendType `json:"backend" yaml:"backend"`

	// Software configures the software backend. Used when Backend is
	// "software"; nil means defaults.
	Software *software.Config `json:"software,omitempty" yaml:"software,omitempty"`

	// Hardware configures the hardware backend. Required when Backend is
	// "i2c" or "swi".
	Hardware *hardware.Config `json:"hardware,omitempty" yaml:"hardware,omitempty"`

	// WakeRetries bounds the number of wake attempts per operation.
	// Default: 3.
	WakeRetries int `json:"wake_retries,omitempty" yaml:"wake_retries,omitempty"`

	// WakeRetryInterval is the pause between wake attempts.
	// Default: 2.5ms.
	WakeRetryInterval time.Duration `json:"wake_retry_interval,omitempty" yaml:"wake_retry_interval,omitempty"`

	// Debug enables debug logging.
	Debug bool `json:"debug" yaml:"debug"`

	// Logger overrides the default logger.
	Logger *logging.Logger `json:"-" yaml:"-"`

	// backendOverride injects a pre-built backend; used by tests.
	backendOverride backend.Backend
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = types.BackendTypeSoftware
	}
	if c.WakeRetries <= 0 {
		c.WakeRetries = DefaultWakeRetries
	}
	if c.WakeRetryInterval <= 0 {
		c.WakeRetryInterval = DefaultWakeRetryInterval
	}
	if c.Logger == nil {
		c.Logger = logging.NewLogger(c.Debug)
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.backendOverride != nil {
		return nil
	}
	if !c.Backend.IsValid() {
		return fmt.Errorf("%w: unknown backend %q", types.ErrInvalidParameter, c.Backend)
	}
	if c.Backend.IsHardware() && c.Hardware == nil {
		return fmt.Errorf("%w: hardware backend requires a hardware section",
			types.ErrInvalidParameter)
	}
	return nil
}

// buildBackend constructs the configured backend variant.
func (c *Config) buildBackend() (backend.Backend, error) {
	if c.backendOverride != nil {
		return c.backendOverride, nil
	}

	switch c.Backend {
	case types.BackendTypeSoftware:
		cfg := software.Config{}
		if c.Software != nil {
			cfg = *c.Software
		}
		return software.New(cfg)
	case types.BackendTypeI2C, types.BackendTypeSWI:
		cfg := *c.Hardware
		cfg.Interface = c.Backend
		return hardware.New(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", types.ErrInvalidParameter, c.Backend)
	}
}
