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
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-cryptoauth/pkg/atecc"
)

// counterCmd represents the counter command
var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Read and increment monotonic counters",
}

// counterReadCmd reads a counter value
var counterReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Read a monotonic counter",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseCounterID(args[0])
		if err != nil {
			handleError(err)
			return
		}
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			value, err := d.Counter(id)
			if err != nil {
				return err
			}
			return printer.PrintCounter(id, value)
		})
	},
}

// counterIncrementCmd increments a counter
var counterIncrementCmd = &cobra.Command{
	Use:   "increment <id>",
	Short: "Increment a monotonic counter",
	Long: `Increment a monotonic counter and print the new value. Counters only
ever move forward; there is no reset.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseCounterID(args[0])
		if err != nil {
			handleError(err)
			return
		}
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			value, err := d.IncrementCounter(id)
			if err != nil {
				return err
			}
			return printer.PrintCounter(id, value)
		})
	},
}

func parseCounterID(arg string) (uint8, error) {
	n, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid counter id: %w", err)
	}
	return uint8(n), nil
}

func init() {
	counterCmd.AddCommand(counterReadCmd)
	counterCmd.AddCommand(counterIncrementCmd)
}
