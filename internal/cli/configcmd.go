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

	"github.com/jeremyhahn/go-cryptoauth/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the cryptoauth configuration file",
}

// configInitCmd writes a starter configuration file
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter configuration file with defaults",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "cryptoauth.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil {
			handleError(fmt.Errorf("%s already exists", path))
			return
		}

		printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
		if err := config.Default().Save(path); err != nil {
			handleError(err)
			return
		}
		if err := printer.PrintSuccess(fmt.Sprintf("Wrote %s", path)); err != nil {
			handleError(err)
		}
	},
}

// configShowCmd prints the effective configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration after file and environment overrides",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(getOptions().ConfigFile)
		if err != nil {
			handleError(err)
			return
		}

		printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
		if getOptions().OutputFormat == "json" {
			_ = printer.printJSON(cfg)
			return
		}
		fmt.Printf("Backend:      %s\n", cfg.Backend)
		fmt.Printf("Device:       %s\n", cfg.Hardware.Device)
		fmt.Printf("Address:      0x%02X\n", cfg.Hardware.Address)
		fmt.Printf("Wake retries: %d (every %s)\n", cfg.Wake.Retries, cfg.Wake.Interval)
		fmt.Printf("Debug:        %t\n", cfg.Logging.Debug)
		fmt.Printf("Metrics:      %t\n", cfg.Metrics.Enabled)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
