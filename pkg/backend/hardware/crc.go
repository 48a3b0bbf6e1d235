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

// crc16 computes the ATECC packet CRC: polynomial 0x8005, bits fed LSB
// first, no reflection of the result. The two CRC bytes travel on the wire
// least significant byte first.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, d := range data {
		for shift := uint8(0); shift < 8; shift++ {
			dataBit := uint16(d>>shift) & 1
			crcBit := crc >> 15
			crc <<= 1
			if dataBit != crcBit {
				crc ^= 0x8005
			}
		}
	}
	return crc
}

// appendCRC appends the two CRC bytes, LSB first, over everything already in
// the buffer.
func appendCRC(buf []byte) []byte {
	crc := crc16(buf)
	return append(buf, byte(crc), byte(crc>>8))
}

// checkCRC verifies the trailing two CRC bytes of a framed message.
func checkCRC(msg []byte) bool {
	if len(msg) < 3 {
		return false
	}
	body := msg[:len(msg)-2]
	crc := crc16(body)
	return msg[len(msg)-2] == byte(crc) && msg[len(msg)-1] == byte(crc>>8)
}
