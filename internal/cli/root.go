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

	"github.com/spf13/cobra"
)

var (
	// Global CLI options
	globalOpts *Options
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cryptoauth",
	Short: "cryptoauth CLI - ATECC508A/608A secure element tool",
	Long: `cryptoauth provides a command-line interface to ATECC508A and
ATECC608A secure elements: device provisioning, key management,
signing and verification, slot data access and monotonic counters.

Supported backends:
  - software: deterministic in-memory emulation (default)
  - i2c:      hardware device on an I2C bus
  - swi:      hardware device on a single-wire UART`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	globalOpts = NewOptions()

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigFile, "config", "",
		"config file (default is ./cryptoauth.yaml, $HOME/.cryptoauth, /etc/cryptoauth)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.Backend, "backend", "",
		"backend to use (software, i2c, swi)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.Device, "device", "",
		"bus device path for hardware backends (e.g. /dev/i2c-1)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.OutputFormat, "output", "o", "text",
		"output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Verbose, "verbose", "v", false,
		"verbose output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(serialCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(slotCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(counterCmd)
	rootCmd.AddCommand(configCmd)
}

// getOptions returns the global CLI options
func getOptions() *Options {
	return globalOpts
}

// handleError prints an error and exits with code 1
func handleError(err error) {
	printer := NewPrinter(globalOpts.OutputFormat, os.Stderr)
	_ = printer.PrintError(err) // Error printing to stderr is best-effort
	os.Exit(1)
}

// printVerbose prints a message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if globalOpts.Verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] "+format+"\n", args...)
	}
}
