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
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-cryptoauth/pkg/atecc"
)

// keyCmd represents the key command
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage device keys",
	Long:  `Generate, import and export keys, sign digests and verify signatures`,
}

// keyGenerateCmd generates a P-256 key in a slot
var keyGenerateCmd = &cobra.Command{
	Use:   "generate <slot>",
	Short: "Generate a P-256 private key in a slot",
	Long: `Generate a fresh P-256 private key in the given slot and print the
public key. Requires a locked configuration zone and a slot configured for
private keys.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		slot, err := parseSlot(args[0])
		if err != nil {
			handleError(fmt.Errorf("invalid slot: %w", err))
			return
		}
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			printVerbose("Generating P-256 key in slot %d", slot)
			pub, err := d.GenerateKey(slot)
			if err != nil {
				return err
			}
			return printer.PrintHex("public_key", pub)
		})
	},
}

// keyImportCmd imports key material into a slot
var keyImportCmd = &cobra.Command{
	Use:   "import <slot> <key-hex>",
	Short: "Import a private key into a slot",
	Long: `Import externally generated key material into the given slot: a
32-byte hex P-256 scalar for private ECC slots, a 16-byte hex key for AES
slots. Only possible while the data zone is unlocked.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		slot, err := parseSlot(args[0])
		if err != nil {
			handleError(fmt.Errorf("invalid slot: %w", err))
			return
		}
		key, err := hex.DecodeString(args[1])
		if err != nil {
			handleError(fmt.Errorf("invalid key material: %w", err))
			return
		}
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			if err := d.ImportKey(slot, key); err != nil {
				return err
			}
			return printer.PrintSuccess(fmt.Sprintf("Imported key into slot %d", slot))
		})
	},
}

// keyExportCmd exports key material from a clear-readable slot
var keyExportCmd = &cobra.Command{
	Use:   "export <slot>",
	Short: "Export key material from a clear-readable slot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		slot, err := parseSlot(args[0])
		if err != nil {
			handleError(fmt.Errorf("invalid slot: %w", err))
			return
		}
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			data, err := d.ExportKey(slot)
			if err != nil {
				return err
			}
			return printer.PrintHex("key", data)
		})
	},
}

// keyPubCmd prints the public key for a slot
var keyPubCmd = &cobra.Command{
	Use:   "pub <slot>",
	Short: "Print the public key for a slot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		slot, err := parseSlot(args[0])
		if err != nil {
			handleError(fmt.Errorf("invalid slot: %w", err))
			return
		}
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			pub, err := d.GetPublicKey(slot)
			if err != nil {
				return err
			}
			return printer.PrintHex("public_key", pub)
		})
	},
}

// keySignCmd signs a message digest with a slot key
var keySignCmd = &cobra.Command{
	Use:   "sign <slot> <message>",
	Short: "Sign a message with the private key in a slot",
	Long: `Hash the message with SHA-256 and sign the digest with the private
key in the given slot. Requires a locked data zone. Pass --digest to treat
the argument as a 32-byte hex digest instead of a message.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		slot, err := parseSlot(args[0])
		if err != nil {
			handleError(fmt.Errorf("invalid slot: %w", err))
			return
		}
		digest, err := digestArg(cmd, args[1])
		if err != nil {
			handleError(err)
			return
		}
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			sig, err := d.Sign(slot, digest)
			if err != nil {
				return err
			}
			return printer.PrintSignature(sig)
		})
	},
}

// keyVerifyCmd verifies a signature against a public key
var keyVerifyCmd = &cobra.Command{
	Use:   "verify <public-key-hex> <message> <signature-base64>",
	Short: "Verify a signature against an external public key",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		pub, err := hex.DecodeString(args[0])
		if err != nil {
			handleError(fmt.Errorf("invalid public key: %w", err))
			return
		}
		digest, err := digestArg(cmd, args[1])
		if err != nil {
			handleError(err)
			return
		}
		sig, err := base64.StdEncoding.DecodeString(args[2])
		if err != nil {
			handleError(fmt.Errorf("invalid signature: %w", err))
			return
		}
		withDevice(func(d *atecc.Device) error {
			printer := NewPrinter(getOptions().OutputFormat, os.Stdout)
			ok, err := d.Verify(pub, digest, sig)
			if err != nil {
				return err
			}
			if err := printer.PrintVerifyResult(ok); err != nil {
				return err
			}
			if !ok {
				os.Exit(1)
			}
			return nil
		})
	},
}

// digestArg resolves the message argument into a 32-byte digest
func digestArg(cmd *cobra.Command, arg string) ([]byte, error) {
	isDigest, _ := cmd.Flags().GetBool("digest")
	if isDigest {
		digest, err := hex.DecodeString(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid digest: %w", err)
		}
		return digest, nil
	}
	sum := sha256.Sum256([]byte(arg))
	return sum[:], nil
}

func init() {
	keySignCmd.Flags().Bool("digest", false, "treat the argument as a 32-byte hex digest")
	keyVerifyCmd.Flags().Bool("digest", false, "treat the argument as a 32-byte hex digest")

	keyCmd.AddCommand(keyGenerateCmd)
	keyCmd.AddCommand(keyImportCmd)
	keyCmd.AddCommand(keyExportCmd)
	keyCmd.AddCommand(keyPubCmd)
	keyCmd.AddCommand(keySignCmd)
	keyCmd.AddCommand(keyVerifyCmd)
}
