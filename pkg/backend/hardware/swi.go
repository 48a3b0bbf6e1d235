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

import (
	"fmt"
	"io"
	"time"

	"github.com/cesanta/go-serial/serial"

	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// SWI flag tokens. Every logical byte on the single wire, flags included, is
// transmitted one bit per UART character.
const (
	swiFlagCommand  = 0x77
	swiFlagTransmit = 0x88
	swiFlagIdle     = 0xBB
	swiFlagSleep    = 0xCC

	// UART characters encoding a single logical bit at 230400 baud 7N1.
	swiBitOne  = 0x7F
	swiBitZero = 0x7D

	swiBaudRate = 230400

	// Turnaround before polling for a response.
	swiTurnaround = 90 * time.Microsecond
)

type serialPort interface {
	io.ReadWriteCloser
	Flush() error
}

// swiTransport drives the device over its single-wire interface using a
// UART: the wire idles high, and each logical bit becomes one 7-bit UART
// character whose start bit provides the low pulse.
type swiTransport struct {
	device string
	port   serialPort
}

// newSWITransport returns a transport for the given UART device path.
func newSWITransport(device string) Transport {
	return &swiTransport{device: device}
}

func (t *swiTransport) Open() error {
	port, err := serial.Open(serial.OpenOptions{
		PortName:              t.device,
		BaudRate:              swiBaudRate,
		DataBits:              7,
		ParityMode:            serial.PARITY_NONE,
		StopBits:              1,
		InterCharacterTimeout: 100,
		MinimumReadSize:       0,
	})
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", types.ErrDeviceUnresponsive, t.device, err)
	}
	t.port = port
	return nil
}

func (t *swiTransport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return fmt.Errorf("%w: close %s: %v", types.ErrDeviceUnresponsive, t.device, err)
	}
	return nil
}

// Wake pulls the wire low for ~60µs by transmitting a zero byte, which the
// UART start bit plus seven zero data bits stretch into a wake pulse.
func (t *swiTransport) Wake() ([]byte, error) {
	if t.port == nil {
		return nil, fmt.Errorf("%w: transport not open", types.ErrDeviceUnresponsive)
	}
	if _, err := t.port.Write([]byte{0x00}); err != nil {
		return nil, fmt.Errorf("%w: wake pulse: %v", types.ErrDeviceUnresponsive, err)
	}
	time.Sleep(tWHD)
	_ = t.port.Flush()

	if err := t.sendFlag(swiFlagTransmit); err != nil {
		return nil, err
	}
	return t.readFrame(len(wakeResponse))
}

func (t *swiTransport) SendCommand(packet []byte) error {
	if err := t.sendFlag(swiFlagCommand); err != nil {
		return err
	}
	return t.sendBytes(packet)
}

func (t *swiTransport) ReceiveResponse(max int) ([]byte, error) {
	time.Sleep(swiTurnaround)
	if err := t.sendFlag(swiFlagTransmit); err != nil {
		return nil, err
	}
	return t.readFrame(max)
}

func (t *swiTransport) Idle() error {
	return t.sendFlag(swiFlagIdle)
}

func (t *swiTransport) Sleep() error {
	return t.sendFlag(swiFlagSleep)
}

// tWHD is the wake high delay for SWI parts.
const tWHD = 2500 * time.Microsecond

func (t *swiTransport) sendFlag(flag byte) error {
	return t.sendBytes([]byte{flag})
}

// sendBytes encodes each logical byte LSB first, one UART character per bit,
// then drains the echo the shared wire reflects back.
func (t *swiTransport) sendBytes(data []byte) error {
	if t.port == nil {
		return fmt.Errorf("%w: transport not open", types.ErrDeviceUnresponsive)
	}

	encoded := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for bit := uint8(0); bit < 8; bit++ {
			if (b>>bit)&1 == 1 {
				encoded = append(encoded, swiBitOne)
			} else {
				encoded = append(encoded, swiBitZero)
			}
		}
	}
	if _, err := t.port.Write(encoded); err != nil {
		return fmt.Errorf("%w: bus write: %v", types.ErrDeviceUnresponsive, err)
	}

	// The single wire echoes transmitted characters into the receiver.
	echo := make([]byte, len(encoded))
	if _, err := io.ReadFull(t.port, echo); err != nil {
		return fmt.Errorf("%w: drain echo: %v", types.ErrDeviceUnresponsive, err)
	}
	return nil
}

// readFrame reads up to max logical bytes, decoding eight UART characters
// per byte. A short read ends the frame once at least the count byte's worth
// of data arrived.
func (t *swiTransport) readFrame(max int) ([]byte, error) {
	if t.port == nil {
		return nil, fmt.Errorf("%w: transport not open", types.ErrDeviceUnresponsive)
	}

	out := make([]byte, 0, max)
	raw := make([]byte, 8)
	for len(out) < max {
		n, err := io.ReadFull(t.port, raw)
		if err != nil {
			if len(out) > 0 && n == 0 {
				break
			}
			return nil, fmt.Errorf("%w: bus read: %v", types.ErrDeviceUnresponsive, err)
		}

		var b byte
		for bit := uint8(0); bit < 8; bit++ {
			// A dominant low in the bit cell flips more than the two
			// low-order UART bits; 0x7D and anything below reads as 0.
			if raw[bit]&0x7F > 0x7D {
				b |= 1 << bit
			}
		}
		out = append(out, b)

		// Stop once the frame's own count byte is satisfied.
		if len(out) >= 1 && int(out[0]) <= len(out) {
			break
		}
	}
	return out, nil
}
