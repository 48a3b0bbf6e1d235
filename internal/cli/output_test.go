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
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-cryptoauth/pkg/zone"
)

func TestPrintHex(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("text", &buf)
	require.NoError(t, p.PrintHex("data", []byte{0xDE, 0xAD, 0xBE, 0xEF}))
	assert.Equal(t, "deadbeef\n", buf.String())

	buf.Reset()
	p = NewPrinter("json", &buf)
	require.NoError(t, p.PrintHex("data", []byte{0xDE, 0xAD}))

	var out map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "dead", out["data"])
}

func TestPrintVerifyResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("text", &buf)
	require.NoError(t, p.PrintVerifyResult(true))
	assert.Contains(t, buf.String(), "valid")

	buf.Reset()
	require.NoError(t, p.PrintVerifyResult(false))
	assert.Contains(t, buf.String(), "INVALID")
}

func TestPrintCounter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("json", &buf)
	require.NoError(t, p.PrintCounter(1, 42))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, float64(1), out["counter"])
	assert.Equal(t, float64(42), out["value"])
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("text", &buf)
	require.NoError(t, p.PrintError(errors.New("boom")))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestPrintSlotTable(t *testing.T) {
	dc, err := zone.ParseConfig(zone.DefaultConfigZone())
	require.NoError(t, err)

	var buf bytes.Buffer
	p := NewPrinter("text", &buf)
	require.NoError(t, p.PrintSlotTable(dc))
	assert.Contains(t, buf.String(), "SLOT")
	assert.Contains(t, buf.String(), "p256")
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("xml", &buf)
	assert.Error(t, p.PrintHex("data", nil))
	assert.Error(t, p.PrintSuccess("ok"))
}

func TestParseSlot(t *testing.T) {
	slot, err := parseSlot("15")
	require.NoError(t, err)
	assert.Equal(t, uint8(15), slot)

	slot, err = parseSlot("0x0A")
	require.NoError(t, err)
	assert.Equal(t, uint8(10), slot)

	_, err = parseSlot("256")
	assert.Error(t, err)

	_, err = parseSlot("abc")
	assert.Error(t, err)
}
