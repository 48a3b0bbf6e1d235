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
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
	"github.com/jeremyhahn/go-cryptoauth/pkg/zone"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintDeviceInfo prints device identity and lock state
func (p *Printer) PrintDeviceInfo(backend string, serial, revision []byte,
	configLock, dataLock types.LockState, caps types.Capabilities) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"backend":       backend,
			"serial_number": hex.EncodeToString(serial),
			"revision":      hex.EncodeToString(revision),
			"config_zone":   configLock.String(),
			"data_zone":     dataLock.String(),
			"capabilities": map[string]interface{}{
				"hardware_backed":   caps.HardwareBacked,
				"aes":               caps.AES,
				"counters":          caps.Counters,
				"failure_injection": caps.FailureInjection,
			},
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Backend:       %s\n", backend)
		fmt.Fprintf(p.writer, "Serial Number: %s\n", hex.EncodeToString(serial))
		fmt.Fprintf(p.writer, "Revision:      %s\n", hex.EncodeToString(revision))
		fmt.Fprintf(p.writer, "Config Zone:   %s\n", configLock)
		fmt.Fprintf(p.writer, "Data Zone:     %s\n", dataLock)
		fmt.Fprintln(p.writer, "Capabilities:")
		fmt.Fprintf(p.writer, "  Hardware Backed:   %t\n", caps.HardwareBacked)
		fmt.Fprintf(p.writer, "  AES:               %t\n", caps.AES)
		fmt.Fprintf(p.writer, "  Counters:          %t\n", caps.Counters)
		fmt.Fprintf(p.writer, "  Failure Injection: %t\n", caps.FailureInjection)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSlotTable prints the decoded slot configuration table
func (p *Printer) PrintSlotTable(dc *zone.DeviceConfig) error {
	switch p.format {
	case OutputFormatJSON:
		slots := make([]map[string]interface{}, len(dc.Slots))
		for i, s := range dc.Slots {
			slots[i] = map[string]interface{}{
				"slot":         s.ID,
				"key_type":     s.Config.KeyType.String(),
				"secret":       s.Config.IsSecret,
				"private":      s.Config.ECCKeyAttr.Private,
				"write_config": s.Config.WriteConfig.String(),
				"locked":       s.IsLocked,
			}
		}
		return p.printJSON(map[string]interface{}{"slots": slots})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "%-5s %-12s %-7s %-8s %-12s %-7s\n",
			"SLOT", "KEY TYPE", "SECRET", "PRIVATE", "WRITE", "LOCKED")
		for _, s := range dc.Slots {
			fmt.Fprintf(p.writer, "%-5d %-12s %-7t %-8t %-12s %-7t\n",
				s.ID, s.Config.KeyType, s.Config.IsSecret,
				s.Config.ECCKeyAttr.Private, s.Config.WriteConfig, s.IsLocked)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintHex prints binary data as hex under the given label
func (p *Printer) PrintHex(label string, data []byte) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			label: hex.EncodeToString(data),
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, hex.EncodeToString(data))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSignature prints a signature (base64 encoded)
func (p *Printer) PrintSignature(signature []byte) error {
	encoded := base64.StdEncoding.EncodeToString(signature)
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"signature": encoded,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, encoded)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintVerifyResult prints a signature verification verdict
func (p *Printer) PrintVerifyResult(valid bool) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"valid": valid,
		})
	case OutputFormatText:
		if valid {
			fmt.Fprintln(p.writer, "Signature valid")
		} else {
			fmt.Fprintln(p.writer, "Signature INVALID")
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintCounter prints a monotonic counter value
func (p *Printer) PrintCounter(id uint8, value uint32) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"counter": id,
			"value":   value,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Counter %d: %d\n", id, value)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status":  "success",
			"message": message,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
