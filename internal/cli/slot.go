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
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-cryptoauth/pkg/atecc"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// slotCmd represents the slot command
var slotCmd = &cobra.Command{
	Use:   "slot",
	Short: "Read and write data zone slots",
}

// slotReadCmd reads the full contents of a slot
var slotReadCmd = &cobra.Command{
	Use:   "read <slot>",
	Short: "Read the full contents of a clear-readable slot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		slot, err := parseSlot(args[0])
		if err != nil {
			handleError(fmt.Errorf("invalid slot: %w", err))
			return
		}
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			data, err := d.ReadSlot(slot)
			if err != nil {
				return err
			}
			return printer.PrintHex("data", data)
		})
	},
}

// slotWriteCmd writes hex data into a slot
var slotWriteCmd = &cobra.Command{
	Use:   "write <slot> <data-hex>",
	Short: "Write data into a slot",
	Long: `Write hex-encoded data into the given slot starting at offset zero.
The configuration zone must be locked; after the data zone locks, the slot's
write configuration governs.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		slot, err := parseSlot(args[0])
		if err != nil {
			handleError(fmt.Errorf("invalid slot: %w", err))
			return
		}
		data, err := hex.DecodeString(args[1])
		if err != nil {
			handleError(fmt.Errorf("invalid data: %w", err))
			return
		}
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			if err := d.WriteSlot(slot, data); err != nil {
				return err
			}
			return printer.PrintSuccess(
				fmt.Sprintf("Wrote %d bytes to slot %d", len(data), slot))
		})
	},
}

// lockCmd irreversibly locks a device zone
var lockCmd = &cobra.Command{
	Use:   "lock <config|data>",
	Short: "Irreversibly lock a device zone",
	Long: `Lock the configuration or data zone. Locking is PERMANENT and cannot
be undone; the configuration zone must lock before the data zone. Requires
the --yes flag as confirmation.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var z types.Zone
		switch args[0] {
		case "config":
			z = types.ZoneConfig
		case "data":
			z = types.ZoneData
		default:
			handleError(fmt.Errorf("unknown zone %q, want config or data", args[0]))
			return
		}

		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			handleError(fmt.Errorf("locking the %s zone is permanent; pass --yes to confirm", args[0]))
			return
		}

		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			if err := d.LockZone(z); err != nil {
				return err
			}
			return printer.PrintSuccess(fmt.Sprintf("Locked %s zone", args[0]))
		})
	},
}

func init() {
	lockCmd.Flags().Bool("yes", false, "confirm the irreversible lock")

	slotCmd.AddCommand(slotReadCmd)
	slotCmd.AddCommand(slotWriteCmd)
}
