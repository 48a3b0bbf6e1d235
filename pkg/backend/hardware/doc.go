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

// Package hardware drives a physical ATECC508A/608A secure element. It
// encodes the chip's command packets (count, opcode, param1, param2, data,
// CRC-16), applies per-opcode execution delays, and translates device status
// bytes into the error taxonomy.
//
// Bus access goes through the Transport interface. Two transports are
// provided: I2C via the Linux /dev/i2c-N character device and SWI (single
// wire interface) bit-banged over a UART. Transport framing (word addresses,
// SWI flag tokens) lives in the transports; this package deals only in
// command packets and responses.
package hardware
