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
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-cryptoauth/pkg/atecc"
	"github.com/jeremyhahn/go-cryptoauth/pkg/backend"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// infoCmd prints device identity, lock state and the slot table
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device identity, lock state and slot configuration",
	Run: func(cmd *cobra.Command, args []string) {
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)

			revision, err := d.Info(backend.InfoRevision)
			if err != nil {
				return err
			}
			if err := printer.PrintDeviceInfo(
				d.BackendType().String(),
				d.SerialNumber(),
				revision,
				d.IsLocked(types.ZoneConfig),
				d.IsLocked(types.ZoneData),
				d.Capabilities(),
			); err != nil {
				return err
			}
			return printer.PrintSlotTable(d.GetConfig())
		})
	},
}

// serialCmd prints the device serial number
var serialCmd = &cobra.Command{
	Use:   "serial",
	Short: "Print the device serial number",
	Run: func(cmd *cobra.Command, args []string) {
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			return printer.PrintHex("serial_number", d.SerialNumber())
		})
	},
}

// randomCmd reads bytes from the device RNG
var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Read 32 bytes from the device random number generator",
	Run: func(cmd *cobra.Command, args []string) {
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			out, err := d.Random()
			if err != nil {
				return err
			}
			return printer.PrintHex("random", out)
		})
	},
}

// parseSlot parses a slot number argument
func parseSlot(arg string) (uint8, error) {
	n, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, err
	}
	return uint8(n), nil
}
