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
	"testing"

	"github.com/stretchr/testify/assert"
)

// The I2C_SLAVE request value comes from linux/i2c-dev.h and is not exported
// by golang.org/x/sys/unix; pin the locally defined value against the kernel
// ABI so it cannot drift.
func TestI2CSlaveIoctlRequest(t *testing.T) {
	assert.Equal(t, 0x0703, i2cSlave)
}

func TestNewI2CTransport(t *testing.T) {
	tr := newI2CTransport("/dev/i2c-1", DefaultI2CAddress)
	it, ok := tr.(*i2cTransport)
	assert.True(t, ok)
	assert.Equal(t, "/dev/i2c-1", it.device)
	assert.Equal(t, uint8(DefaultI2CAddress), it.address)
	assert.Equal(t, -1, it.fd)
}
