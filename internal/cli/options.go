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

package cli

import (
	"fmt"

	"github.com/jeremyhahn/go-cryptoauth/internal/config"
	"github.com/jeremyhahn/go-cryptoauth/pkg/atecc"
	"github.com/jeremyhahn/go-cryptoauth/pkg/metrics"
)

// Options holds global CLI options. Flags override the config file.
type Options struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// Backend is the backend name to use (software, i2c, swi)
	Backend string

	// Device is the bus device path for hardware backends
	Device string

	// OutputFormat controls output formatting (text, json)
	OutputFormat string

	// Verbose enables verbose logging
	Verbose bool
}

// NewOptions creates Options with default values
func NewOptions() *Options {
	return &Options{
		OutputFormat: "text",
	}
}

// Attach loads the configuration, applies flag overrides and attaches to the
// device. The caller must Release the returned device.
func (o *Options) Attach() (*atecc.Device, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	if o.Device != "" {
		cfg.Hardware.Device = o.Device
	}
	if o.Verbose {
		cfg.Logging.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.Metrics.Enabled {
		metrics.Disable()
	}

	printVerbose("Attaching to %s backend", cfg.Backend)
	return atecc.New(cfg.DeviceConfig())
}

// withDevice attaches to the device, runs fn and releases the device. Any
// error exits the process with code 1.
func withDevice(fn func(d *atecc.Device) error) {
	d, err := getOptions().Attach()
	if err != nil {
		handleError(err)
		return
	}
	defer func() { _ = d.Release() }()

	if err := fn(d); err != nil {
		_ = d.Release()
		handleError(err)
	}
}
