// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package format

import (
	"encoding/binary"
)

func AppendUint24(b []byte, v uint32) []byte {
	if v > 0xFFFFFF {
		panic("AppendUint24 value out of range")
	}
	return append(b, byte(v>>16), byte(v>>8), byte(v))
}

func AppendUint48(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	if tmp[0] != 0 || tmp[1] != 0 {
		panic("AppendUint48 value out of range")
	}
	return append(b, tmp[2:]...)
}

func MarkUint24Offset(body []byte) ([]byte, int) {
	body = append(body, 0, 0, 0)
	return body, len(body)
}

func FillUint24Offset(body []byte, mark int) {
	length := len(body) - mark
	if length > 0xFFFFFF {
		panic("FillUint24Offset value out of range")
	}
	body[mark-3] = byte(length >> 16)
	body[mark-2] = byte(length >> 8)
	body[mark-1] = byte(length)
}
