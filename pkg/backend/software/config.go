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
	"fmt"
	"time"

	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
	"github.com/jeremyhahn/go-cryptoauth/pkg/zone"
)

// Config contains configuration parameters for the software backend.
type Config struct {
	// ConfigZone is the initial 128-byte configuration zone image. When
	// nil, zone.DefaultConfigZone() is used.
	ConfigZone []byte `json:"config_zone,omitempty" yaml:"config_zone,omitempty"`

	// LockConfigZone marks the configuration zone locked at construction
	// time, as a provisioned device would be.
	LockConfigZone bool `json:"lock_config_zone" yaml:"lock_config_zone"`

	// LockDataZone marks the data zone locked at construction time.
	// Requires LockConfigZone.
	LockDataZone bool `json:"lock_data_zone" yaml:"lock_data_zone"`

	// ExecDelay is an artificial per-command execution delay. Zero by
	// default; tests set it to widen the window in which unserialized
	// concurrent calls would overlap.
	ExecDelay time.Duration `json:"exec_delay,omitempty" yaml:"exec_delay,omitempty"`
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.ConfigZone == nil {
		c.ConfigZone = zone.DefaultConfigZone()
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if len(c.ConfigZone) != types.ConfigZoneSize {
		return fmt.Errorf("%w: config zone must be %d bytes, got %d",
			types.ErrInvalidParameter, types.ConfigZoneSize, len(c.ConfigZone))
	}
	if c.LockDataZone && !c.LockConfigZone {
		return fmt.Errorf("%w: data zone cannot be locked before the config zone",
			types.ErrInvalidParameter)
	}
	if c.ExecDelay < 0 {
		return fmt.Errorf("%w: exec delay must not be negative", types.ErrInvalidParameter)
	}
	return nil
}
