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

//go:build linux

package hardware

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// tWHI is the wake high delay: time the device needs after the wake pulse
// before it will answer.
const tWHI = 1500 * time.Microsecond

// i2cSlave is the I2C_SLAVE ioctl request from linux/i2c-dev.h.
// golang.org/x/sys/unix does not export the i2c-dev constants.
const i2cSlave = 0x0703

// i2cTransport drives the device through a Linux /dev/i2c-N character
// device using the I2C_SLAVE ioctl.
type i2cTransport struct {
	device  string
	address uint8
	fd      int
	open    bool
}

// newI2CTransport returns a transport for the given bus device path and
// 7-bit device address.
func newI2CTransport(device string, address uint8) Transport {
	return &i2cTransport{device: device, address: address, fd: -1}
}

func (t *i2cTransport) Open() error {
	fd, err := unix.Open(t.device, unix.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", types.ErrDeviceUnresponsive, t.device, err)
	}
	if err := unix.IoctlSetInt(fd, i2cSlave, int(t.address)); err != nil {
		unix.Close(fd)
		return fmt.Errorf("%w: bind address 0x%02X: %v",
			types.ErrDeviceUnresponsive, t.address, err)
	}
	t.fd = fd
	t.open = true
	return nil
}

func (t *i2cTransport) Close() error {
	if !t.open {
		return nil
	}
	t.open = false
	if err := unix.Close(t.fd); err != nil {
		return fmt.Errorf("%w: close %s: %v", types.ErrDeviceUnresponsive, t.device, err)
	}
	t.fd = -1
	return nil
}

// Wake holds SDA low by addressing 0x00 with a zero byte. The write is
// expected to fail (nothing ACKs address zero); the bus activity itself is
// the wake pulse.
func (t *i2cTransport) Wake() ([]byte, error) {
	if !t.open {
		return nil, fmt.Errorf("%w: transport not open", types.ErrDeviceUnresponsive)
	}

	if err := unix.IoctlSetInt(t.fd, i2cSlave, 0x00); err == nil {
		_, _ = unix.Write(t.fd, []byte{0x00})
	}
	if err := unix.IoctlSetInt(t.fd, i2cSlave, int(t.address)); err != nil {
		return nil, fmt.Errorf("%w: rebind address 0x%02X: %v",
			types.ErrDeviceUnresponsive, t.address, err)
	}
	time.Sleep(tWHI)

	buf := make([]byte, len(wakeResponse))
	n, err := unix.Read(t.fd, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: wake response: %v", types.ErrDeviceUnresponsive, err)
	}
	return buf[:n], nil
}

func (t *i2cTransport) SendCommand(packet []byte) error {
	return t.write(append([]byte{wordAddressCommand}, packet...))
}

func (t *i2cTransport) ReceiveResponse(max int) ([]byte, error) {
	if !t.open {
		return nil, fmt.Errorf("%w: transport not open", types.ErrDeviceUnresponsive)
	}
	buf := make([]byte, max)
	n, err := unix.Read(t.fd, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", types.ErrDeviceUnresponsive, err)
	}
	return buf[:n], nil
}

func (t *i2cTransport) Idle() error {
	return t.write([]byte{wordAddressIdle})
}

func (t *i2cTransport) Sleep() error {
	return t.write([]byte{wordAddressSleep})
}

func (t *i2cTransport) write(data []byte) error {
	if !t.open {
		return fmt.Errorf("%w: transport not open", types.ErrDeviceUnresponsive)
	}
	if _, err := unix.Write(t.fd, data); err != nil {
		return fmt.Errorf("%w: bus write: %v", types.ErrDeviceUnresponsive, err)
	}
	return nil
}
