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

package hardware

// Transport is one physical bus attachment to the device. Implementations
// own the bus framing: the I2C word address byte and the SWI flag tokens
// never appear above this interface.
//
// Transports are not safe for concurrent use; the backend's single caller
// (the device session) serializes access.
type Transport interface {
	// Open attaches to the bus.
	Open() error

	// Close detaches from the bus.
	Close() error

	// Wake generates the wake pulse and returns the raw framed wake
	// response read back from the device.
	Wake() ([]byte, error)

	// SendCommand transmits one framed command packet.
	SendCommand(packet []byte) error

	// ReceiveResponse reads a framed response of at most max bytes.
	ReceiveResponse(max int) ([]byte, error)

	// Idle sends the idle word, pausing the watchdog and preserving
	// volatile state.
	Idle() error

	// Sleep sends the sleep word, clearing volatile state.
	Sleep() error
}

// Wire framing constants shared by transports.
const (
	// I2C word address values.
	wordAddressReset   = 0x00
	wordAddressSleep   = 0x01
	wordAddressIdle    = 0x02
	wordAddressCommand = 0x03

	// Longest possible device response: count + 64 payload + CRC.
	maxResponseSize = 75
)
