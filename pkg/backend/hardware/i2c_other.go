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

//go:build !linux

package hardware

import (
	"fmt"

	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// I2C requires the Linux i2c-dev character device interface.
func newI2CTransport(device string, address uint8) Transport {
	return unsupportedTransport{reason: "i2c requires linux"}
}

type unsupportedTransport struct {
	reason string
}

func (u unsupportedTransport) err() error {
	return fmt.Errorf("%w: %s", types.ErrUnimplemented, u.reason)
}

func (u unsupportedTransport) Open() error                        { return u.err() }
func (u unsupportedTransport) Close() error                       { return nil }
func (u unsupportedTransport) Wake() ([]byte, error)              { return nil, u.err() }
func (u unsupportedTransport) SendCommand([]byte) error           { return u.err() }
func (u unsupportedTransport) ReceiveResponse(int) ([]byte, error) { return nil, u.err() }
func (u unsupportedTransport) Idle() error                        { return u.err() }
func (u unsupportedTransport) Sleep() error                       { return u.err() }
