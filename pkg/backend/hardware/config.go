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
	"fmt"

	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// DefaultI2CAddress is the factory-default 7-bit bus address of ATECC parts.
const DefaultI2CAddress = 0x60

// Config contains configuration parameters for the hardware backend.
type Config struct {
	// Interface selects the bus attachment: "i2c" or "swi".
	Interface types.BackendType `json:"interface" yaml:"interface"`

	// Device is the bus device path: /dev/i2c-N for I2C, a UART device
	// such as /dev/ttyAMA0 for SWI.
	Device string `json:"device" yaml:"device"`

	// Address is the 7-bit I2C device address. Ignored for SWI.
	// Default: 0x60.
	Address uint8 `json:"address,omitempty" yaml:"address,omitempty"`

	// Transport overrides the bus attachment entirely; used by tests to
	// substitute a scripted transport. When set, Interface/Device/Address
	// are not consulted for bus construction.
	Transport Transport `json:"-" yaml:"-"`
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Interface == "" {
		c.Interface = types.BackendTypeI2C
	}
	if c.Address == 0 {
		c.Address = DefaultI2CAddress
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Transport != nil {
		return nil
	}
	if !c.Interface.IsHardware() {
		return fmt.Errorf("%w: interface must be i2c or swi, got %q",
			types.ErrInvalidParameter, c.Interface)
	}
	if c.Device == "" {
		return fmt.Errorf("%w: bus device path required", types.ErrInvalidParameter)
	}
	return nil
}
